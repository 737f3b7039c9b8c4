package indicators

import "context"

// Filter narrows List by equality; zero values are ignored
type Filter struct {
	ProjectID string
}

// Repo is the indicators table. Missing rows yield internal/errors.ErrNotFound.
type Repo interface {
	Create(ctx context.Context, indicator *Indicator) error
	Update(ctx context.Context, indicator *Indicator) error
	Delete(ctx context.Context, id string) error
	DeleteByProject(ctx context.Context, projectID string) error
	Get(ctx context.Context, id string) (*Indicator, error)
	List(ctx context.Context, filter Filter) ([]*Indicator, error)
}
