package fakeindicatorrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/impact-portal/indicators"
	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
)

var _ indicators.Repo = (*FakeIndicatorRepo)(nil)

type FakeIndicatorRepo struct {
	indicators map[string]*indicators.Indicator
	lock       sync.RWMutex
}

func NewFakeIndicatorRepo() *FakeIndicatorRepo {
	return &FakeIndicatorRepo{
		indicators: make(map[string]*indicators.Indicator),
	}
}

func (ir *FakeIndicatorRepo) Create(_ context.Context, indicator *indicators.Indicator) error {
	ir.lock.Lock()
	defer ir.lock.Unlock()

	if indicator.ID == "" {
		indicator.ID = uuid.New().String()
	}
	if _, exists := ir.indicators[indicator.ID]; exists {
		return apperrors.ErrAlreadyExists
	}
	now := time.Now().UTC()
	if indicator.CreatedAt.IsZero() {
		indicator.CreatedAt = now
	}
	if indicator.LastUpdated.IsZero() {
		indicator.LastUpdated = now
	}
	indicator.UpdatedAt = now

	stored := *indicator
	ir.indicators[indicator.ID] = &stored
	return nil
}

func (ir *FakeIndicatorRepo) Update(_ context.Context, indicator *indicators.Indicator) error {
	ir.lock.Lock()
	defer ir.lock.Unlock()

	existing, ok := ir.indicators[indicator.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored := *indicator
	stored.CreatedAt = existing.CreatedAt
	stored.ProjectID = existing.ProjectID
	ir.indicators[indicator.ID] = &stored
	return nil
}

func (ir *FakeIndicatorRepo) Delete(_ context.Context, id string) error {
	ir.lock.Lock()
	defer ir.lock.Unlock()

	if _, ok := ir.indicators[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(ir.indicators, id)
	return nil
}

func (ir *FakeIndicatorRepo) DeleteByProject(_ context.Context, projectID string) error {
	ir.lock.Lock()
	defer ir.lock.Unlock()

	for id, v := range ir.indicators {
		if v.ProjectID == projectID {
			delete(ir.indicators, id)
		}
	}
	return nil
}

func (ir *FakeIndicatorRepo) Get(_ context.Context, id string) (*indicators.Indicator, error) {
	ir.lock.RLock()
	defer ir.lock.RUnlock()

	indicator, ok := ir.indicators[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	i := *indicator
	return &i, nil
}

func (ir *FakeIndicatorRepo) List(_ context.Context, filter indicators.Filter) ([]*indicators.Indicator, error) {
	ir.lock.RLock()
	defer ir.lock.RUnlock()

	list := make([]*indicators.Indicator, 0, len(ir.indicators))
	for _, v := range ir.indicators {
		if filter.ProjectID != "" && v.ProjectID != filter.ProjectID {
			continue
		}
		i := *v
		list = append(list, &i)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
	return list, nil
}
