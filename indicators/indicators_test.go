package indicators_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/impact-portal/indicators"
	fakeindicatorrepo "github.com/jrsteele09/impact-portal/indicators/repofake"
	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
	"github.com/jrsteele09/impact-portal/internal/utils"
	"github.com/stretchr/testify/require"
)

func validIndicator() *indicators.Indicator {
	return &indicators.Indicator{
		ProjectID:   "project-1",
		Name:        "Wells built",
		Unit:        "wells",
		TargetValue: 20,
		Trend:       indicators.TrendStable,
	}
}

func TestIndicatorValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(i *indicators.Indicator)
		wantErr string
	}{
		{"valid", func(i *indicators.Indicator) {}, ""},
		{"missing project", func(i *indicators.Indicator) { i.ProjectID = "" }, "Project ID is required"},
		{"missing name", func(i *indicators.Indicator) { i.Name = "" }, "Name is required"},
		{"missing unit", func(i *indicators.Indicator) { i.Unit = " " }, "Unit is required"},
		{"zero target", func(i *indicators.Indicator) { i.TargetValue = 0 }, "Target value must be greater than 0"},
		{"negative current", func(i *indicators.Indicator) { i.CurrentValue = -2 }, "Current value cannot be negative"},
		{"bad trend", func(i *indicators.Indicator) { i.Trend = "sideways" }, `Invalid trend "sideways"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i := validIndicator()
			tt.mutate(i)
			err := i.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, apperrors.ErrValidation)
			require.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestPatchDerivesTrend(t *testing.T) {
	now := time.Now().UTC()
	i := validIndicator()
	i.CurrentValue = 5

	indicators.Patch{CurrentValue: utils.Ptr(8.0)}.Apply(i, now)
	require.Equal(t, indicators.TrendUp, i.Trend)
	require.Equal(t, 8.0, i.CurrentValue)
	require.Equal(t, now, i.LastUpdated)
	require.Equal(t, 40.0, i.Progress())

	indicators.Patch{CurrentValue: utils.Ptr(3.0)}.Apply(i, now)
	require.Equal(t, indicators.TrendDown, i.Trend)

	indicators.Patch{CurrentValue: utils.Ptr(3.0)}.Apply(i, now)
	require.Equal(t, indicators.TrendStable, i.Trend)

	indicators.Patch{CurrentValue: utils.Ptr(9.0), Trend: utils.Ptr(indicators.TrendStable)}.Apply(i, now)
	require.Equal(t, indicators.TrendStable, i.Trend, "explicit trend wins")
}

func TestFakeIndicatorRepo(t *testing.T) {
	ctx := context.Background()
	repo := fakeindicatorrepo.NewFakeIndicatorRepo()

	a := validIndicator()
	require.NoError(t, repo.Create(ctx, a))
	b := validIndicator()
	b.ProjectID = "project-2"
	require.NoError(t, repo.Create(ctx, b))

	forProject, err := repo.List(ctx, indicators.Filter{ProjectID: "project-1"})
	require.NoError(t, err)
	require.Len(t, forProject, 1)
	require.Equal(t, a.ID, forProject[0].ID)
	require.False(t, forProject[0].LastUpdated.IsZero())

	require.NoError(t, repo.DeleteByProject(ctx, "project-1"))
	_, err = repo.Get(ctx, a.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)

	all, err := repo.List(ctx, indicators.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 1)

	require.ErrorIs(t, repo.Update(ctx, a), apperrors.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, b.ID))
	require.ErrorIs(t, repo.Delete(ctx, b.ID), apperrors.ErrNotFound)
}
