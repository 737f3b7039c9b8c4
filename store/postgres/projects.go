package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jrsteele09/impact-portal/projects"
)

var _ projects.Repo = (*ProjectRepo)(nil)

const projectColumns = `id, name, description, status, budget, spent, start_date, end_date, created_by, created_at, updated_at`

type ProjectRepo struct {
	db DB
}

func NewProjectRepo(db DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

func (r *ProjectRepo) Create(ctx context.Context, project *projects.Project) error {
	if project.ID == "" {
		project.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now

	_, err := r.db.Exec(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		project.ID, project.Name, project.Description, string(project.Status), project.Budget, project.Spent,
		project.StartDate.Time, endDateArg(project.EndDate), project.CreatedBy, project.CreatedAt, project.UpdatedAt)
	return mapError(err, "failed to insert project")
}

// Update never rewrites created_by or created_at
func (r *ProjectRepo) Update(ctx context.Context, project *projects.Project) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE projects
		SET name = $2, description = $3, status = $4, budget = $5, spent = $6,
		    start_date = $7, end_date = $8, updated_at = $9
		WHERE id = $1`,
		project.ID, project.Name, project.Description, string(project.Status), project.Budget, project.Spent,
		project.StartDate.Time, endDateArg(project.EndDate), project.UpdatedAt)
	if err != nil {
		return mapError(err, "failed to update project %s", project.ID)
	}
	return requireAffected(tag)
}

// Delete removes the project; indicators go with it through ON DELETE CASCADE
func (r *ProjectRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "failed to delete project %s", id)
	}
	return requireAffected(tag)
}

func (r *ProjectRepo) Get(ctx context.Context, id string) (*projects.Project, error) {
	row := r.db.QueryRow(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = $1`, id)
	project, err := scanProject(row)
	if err != nil {
		return nil, mapError(err, "failed to get project %s", id)
	}
	return project, nil
}

func (r *ProjectRepo) List(ctx context.Context, filter projects.Filter) ([]*projects.Project, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+projectColumns+`
		FROM projects
		WHERE ($1 = '' OR status = $1)
		  AND ($2 = '' OR created_by = $2)
		ORDER BY created_at DESC`, string(filter.Status), filter.CreatedBy)
	if err != nil {
		return nil, mapError(err, "failed to list projects")
	}
	defer rows.Close()

	list := make([]*projects.Project, 0)
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan project")
		}
		list = append(list, project)
	}
	return list, mapError(rows.Err(), "failed to list projects")
}

func endDateArg(d *projects.Date) *time.Time {
	if d == nil {
		return nil
	}
	return &d.Time
}

func scanProject(row pgx.Row) (*projects.Project, error) {
	var (
		p       projects.Project
		status  string
		endDate *time.Time
	)
	err := row.Scan(&p.ID, &p.Name, &p.Description, &status, &p.Budget, &p.Spent,
		&p.StartDate.Time, &endDate, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.Status = projects.Status(status)
	if endDate != nil {
		p.EndDate = &projects.Date{Time: *endDate}
	}
	return &p, nil
}
