package projects

import "context"

// Filter narrows List by equality; zero values are ignored
type Filter struct {
	Status    Status
	CreatedBy string
}

// Repo is the projects table. Missing rows yield internal/errors.ErrNotFound.
type Repo interface {
	Create(ctx context.Context, project *Project) error
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context, filter Filter) ([]*Project, error) // newest first
}
