package users

import "context"

// Filter narrows List by equality; zero values are ignored
type Filter struct {
	Role RoleType
}

// Repo is the users table. Implementations return internal/errors.ErrNotFound for
// missing rows and ErrAlreadyExists when an email is taken.
type Repo interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context, filter Filter) ([]*User, error) // newest first
}
