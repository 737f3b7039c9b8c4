package fakeprojectrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
	"github.com/jrsteele09/impact-portal/projects"
)

var _ projects.Repo = (*FakeProjectRepo)(nil)

type FakeProjectRepo struct {
	projects map[string]*projects.Project
	lock     sync.RWMutex
}

func NewFakeProjectRepo() *FakeProjectRepo {
	return &FakeProjectRepo{
		projects: make(map[string]*projects.Project),
	}
}

func (pr *FakeProjectRepo) Create(_ context.Context, project *projects.Project) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	if _, exists := pr.projects[project.ID]; exists {
		return apperrors.ErrAlreadyExists
	}
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now

	stored := *project
	pr.projects[project.ID] = &stored
	return nil
}

func (pr *FakeProjectRepo) Update(_ context.Context, project *projects.Project) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	existing, ok := pr.projects[project.ID]
	if !ok {
		return apperrors.ErrNotFound
	}
	stored := *project
	stored.CreatedAt = existing.CreatedAt
	stored.CreatedBy = existing.CreatedBy
	pr.projects[project.ID] = &stored
	return nil
}

func (pr *FakeProjectRepo) Delete(_ context.Context, id string) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	if _, ok := pr.projects[id]; !ok {
		return apperrors.ErrNotFound
	}
	delete(pr.projects, id)
	return nil
}

func (pr *FakeProjectRepo) Get(_ context.Context, id string) (*projects.Project, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	project, ok := pr.projects[id]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	p := *project
	return &p, nil
}

func (pr *FakeProjectRepo) List(_ context.Context, filter projects.Filter) ([]*projects.Project, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	list := make([]*projects.Project, 0, len(pr.projects))
	for _, v := range pr.projects {
		if filter.Status != "" && v.Status != filter.Status {
			continue
		}
		if filter.CreatedBy != "" && v.CreatedBy != filter.CreatedBy {
			continue
		}
		p := *v
		list = append(list, &p)
	}

	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
	return list, nil
}
