package projects_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
	"github.com/jrsteele09/impact-portal/internal/utils"
	"github.com/jrsteele09/impact-portal/projects"
	fakeprojectrepo "github.com/jrsteele09/impact-portal/projects/repofake"
	"github.com/stretchr/testify/require"
)

func validProject() *projects.Project {
	return &projects.Project{
		Name:      "Clean Water",
		Status:    projects.StatusPlanning,
		Budget:    10000,
		StartDate: projects.NewDate(2026, time.March, 1),
	}
}

func TestProjectValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(p *projects.Project)
		wantErr string
	}{
		{"valid", func(p *projects.Project) {}, ""},
		{"missing name", func(p *projects.Project) { p.Name = "  " }, "Name is required"},
		{"zero budget", func(p *projects.Project) { p.Budget = 0 }, "Budget must be greater than 0"},
		{"negative budget", func(p *projects.Project) { p.Budget = -5 }, "Budget must be greater than 0"},
		{"negative spent", func(p *projects.Project) { p.Spent = -1 }, "Spent cannot be negative"},
		{"bad status", func(p *projects.Project) { p.Status = "archived" }, `Invalid project status "archived"`},
		{"missing start", func(p *projects.Project) { p.StartDate = projects.Date{} }, "Start date is required"},
		{"end before start", func(p *projects.Project) {
			end := projects.NewDate(2026, time.February, 1)
			p.EndDate = &end
		}, "End date cannot be before start date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := validProject()
			tt.mutate(p)
			err := p.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, apperrors.ErrValidation)
			require.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestDateJSON(t *testing.T) {
	var payload struct {
		Start projects.Date  `json:"start"`
		End   *projects.Date `json:"end"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"start":"2026-03-01","end":"2026-06-30T10:00:00Z"}`), &payload))
	require.Equal(t, "2026-03-01", payload.Start.String())
	require.Equal(t, "2026-06-30", payload.End.String())

	out, err := json.Marshal(payload.Start)
	require.NoError(t, err)
	require.JSONEq(t, `"2026-03-01"`, string(out))

	require.Error(t, json.Unmarshal([]byte(`{"start":"01/03/2026"}`), &payload))
}

func TestPatchApply(t *testing.T) {
	p := validProject()
	now := time.Now().UTC()

	projects.Patch{
		Budget: utils.Ptr(2500.0),
		Spent:  utils.Ptr(100.0),
		Status: utils.Ptr(projects.StatusActive),
	}.Apply(p, now)

	require.Equal(t, 2500.0, p.Budget)
	require.Equal(t, 2400.0, p.Remaining())
	require.Equal(t, projects.StatusActive, p.Status)
	require.Equal(t, "Clean Water", p.Name)
	require.Equal(t, now, p.UpdatedAt)
}

func TestFakeProjectRepo(t *testing.T) {
	ctx := context.Background()
	repo := fakeprojectrepo.NewFakeProjectRepo()

	a := validProject()
	a.CreatedBy = "pm-1"
	a.CreatedAt = time.Now().Add(-time.Hour)
	require.NoError(t, repo.Create(ctx, a))

	b := validProject()
	b.CreatedBy = "pm-2"
	b.Status = projects.StatusActive
	require.NoError(t, repo.Create(ctx, b))

	all, err := repo.List(ctx, projects.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, b.ID, all[0].ID)

	mine, err := repo.List(ctx, projects.Filter{CreatedBy: "pm-1"})
	require.NoError(t, err)
	require.Len(t, mine, 1)

	active, err := repo.List(ctx, projects.Filter{Status: projects.StatusActive})
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, b.ID, active[0].ID)

	a.CreatedBy = "someone-else"
	a.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, a))
	got, err := repo.Get(ctx, a.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.Name)
	require.Equal(t, "pm-1", got.CreatedBy, "creator is immutable")

	require.NoError(t, repo.Delete(ctx, a.ID))
	require.ErrorIs(t, repo.Delete(ctx, a.ID), apperrors.ErrNotFound)
	_, err = repo.Get(ctx, a.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
