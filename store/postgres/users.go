package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jrsteele09/impact-portal/users"
)

var _ users.Repo = (*UserRepo)(nil)

const userColumns = `id, email, full_name, role, password_hash, created_at, updated_at`

type UserRepo struct {
	db DB
}

func NewUserRepo(db DB) *UserRepo {
	return &UserRepo{db: db}
}

func (r *UserRepo) Create(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	user.Email = users.NormaliseEmail(user.Email)

	_, err := r.db.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		user.ID, user.Email, user.FullName, string(user.Role), user.PasswordHash, user.CreatedAt, user.UpdatedAt)
	return mapError(err, "failed to insert user")
}

func (r *UserRepo) Update(ctx context.Context, user *users.User) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET full_name = $2, role = $3, password_hash = $4, updated_at = $5
		WHERE id = $1`,
		user.ID, user.FullName, string(user.Role), user.PasswordHash, user.UpdatedAt)
	if err != nil {
		return mapError(err, "failed to update user %s", user.ID)
	}
	return requireAffected(tag)
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "failed to delete user %s", id)
	}
	return requireAffected(tag)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, "failed to get user %s", id)
	}
	return user, nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, users.NormaliseEmail(email))
	user, err := scanUser(row)
	if err != nil {
		return nil, mapError(err, "failed to get user by email")
	}
	return user, nil
}

func (r *UserRepo) List(ctx context.Context, filter users.Filter) ([]*users.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE ($1 = '' OR role = $1)
		ORDER BY created_at DESC`, string(filter.Role))
	if err != nil {
		return nil, mapError(err, "failed to list users")
	}
	defer rows.Close()

	list := make([]*users.User, 0)
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan user")
		}
		list = append(list, user)
	}
	return list, mapError(rows.Err(), "failed to list users")
}

func scanUser(row pgx.Row) (*users.User, error) {
	var (
		u    users.User
		role string
	)
	if err := row.Scan(&u.ID, &u.Email, &u.FullName, &role, &u.PasswordHash, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = users.RoleType(role)
	return &u, nil
}
