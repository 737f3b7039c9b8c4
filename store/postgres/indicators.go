package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jrsteele09/impact-portal/indicators"
)

var _ indicators.Repo = (*IndicatorRepo)(nil)

const indicatorColumns = `id, project_id, name, description, target_value, current_value, unit, trend, last_updated, created_at, updated_at`

type IndicatorRepo struct {
	db DB
}

func NewIndicatorRepo(db DB) *IndicatorRepo {
	return &IndicatorRepo{db: db}
}

func (r *IndicatorRepo) Create(ctx context.Context, indicator *indicators.Indicator) error {
	if indicator.ID == "" {
		indicator.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if indicator.CreatedAt.IsZero() {
		indicator.CreatedAt = now
	}
	if indicator.LastUpdated.IsZero() {
		indicator.LastUpdated = now
	}
	indicator.UpdatedAt = now

	_, err := r.db.Exec(ctx, `
		INSERT INTO indicators (`+indicatorColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		indicator.ID, indicator.ProjectID, indicator.Name, indicator.Description, indicator.TargetValue,
		indicator.CurrentValue, indicator.Unit, string(indicator.Trend), indicator.LastUpdated,
		indicator.CreatedAt, indicator.UpdatedAt)
	return mapError(err, "failed to insert indicator")
}

// Update never moves an indicator to another project
func (r *IndicatorRepo) Update(ctx context.Context, indicator *indicators.Indicator) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE indicators
		SET name = $2, description = $3, target_value = $4, current_value = $5, unit = $6,
		    trend = $7, last_updated = $8, updated_at = $9
		WHERE id = $1`,
		indicator.ID, indicator.Name, indicator.Description, indicator.TargetValue, indicator.CurrentValue,
		indicator.Unit, string(indicator.Trend), indicator.LastUpdated, indicator.UpdatedAt)
	if err != nil {
		return mapError(err, "failed to update indicator %s", indicator.ID)
	}
	return requireAffected(tag)
}

func (r *IndicatorRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM indicators WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "failed to delete indicator %s", id)
	}
	return requireAffected(tag)
}

func (r *IndicatorRepo) DeleteByProject(ctx context.Context, projectID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM indicators WHERE project_id = $1`, projectID)
	return mapError(err, "failed to delete indicators for project %s", projectID)
}

func (r *IndicatorRepo) Get(ctx context.Context, id string) (*indicators.Indicator, error) {
	row := r.db.QueryRow(ctx, `SELECT `+indicatorColumns+` FROM indicators WHERE id = $1`, id)
	indicator, err := scanIndicator(row)
	if err != nil {
		return nil, mapError(err, "failed to get indicator %s", id)
	}
	return indicator, nil
}

func (r *IndicatorRepo) List(ctx context.Context, filter indicators.Filter) ([]*indicators.Indicator, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+indicatorColumns+`
		FROM indicators
		WHERE ($1 = '' OR project_id = $1)
		ORDER BY created_at ASC`, filter.ProjectID)
	if err != nil {
		return nil, mapError(err, "failed to list indicators")
	}
	defer rows.Close()

	list := make([]*indicators.Indicator, 0)
	for rows.Next() {
		indicator, err := scanIndicator(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan indicator")
		}
		list = append(list, indicator)
	}
	return list, mapError(rows.Err(), "failed to list indicators")
}

func scanIndicator(row pgx.Row) (*indicators.Indicator, error) {
	var (
		i     indicators.Indicator
		trend string
	)
	err := row.Scan(&i.ID, &i.ProjectID, &i.Name, &i.Description, &i.TargetValue, &i.CurrentValue,
		&i.Unit, &trend, &i.LastUpdated, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	i.Trend = indicators.Trend(trend)
	return &i, nil
}
