package users_test

import (
	"context"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
	"github.com/jrsteele09/impact-portal/internal/utils"
	"github.com/jrsteele09/impact-portal/users"
	fakeuserrepo "github.com/jrsteele09/impact-portal/users/repofake"
	"github.com/stretchr/testify/require"
)

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Password1", ""},
		{"too short", "Pass1", "password must be at least 8 characters long"},
		{"no upper", "password1", "password must contain at least one uppercase letter"},
		{"no lower", "PASSWORD1", "password must contain at least one lowercase letter"},
		{"no number", "Passwords", "password must contain at least one number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := users.ValidatePasswordStrength(tt.password)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestCheckPassword(t *testing.T) {
	hash, err := users.HashPassword("Secret123")
	require.NoError(t, err)

	u := &users.User{PasswordHash: hash}
	require.True(t, u.CheckPassword("Secret123"))
	require.False(t, u.CheckPassword("secret123"))
	require.False(t, (&users.User{}).CheckPassword("Secret123"))
}

func TestRoles(t *testing.T) {
	require.True(t, users.RoleDonor.Valid())
	require.False(t, users.RoleType("superuser").Valid())
	require.Equal(t, "/project-manager", users.RoleProjectManager.DashboardPath())
	require.Equal(t, "/", users.RoleType("").DashboardPath())

	u := &users.User{Role: users.RoleProjectManager}
	require.True(t, u.HasRole(users.RoleAdmin, users.RoleProjectManager))
	require.False(t, u.HasRole(users.RoleAdmin))
}

func TestPatchApply(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	u := &users.User{FullName: "Old", Role: users.RoleDonor}

	users.Patch{FullName: utils.Ptr("  New Name ")}.Apply(u, now)
	require.Equal(t, "New Name", u.FullName)
	require.Equal(t, users.RoleDonor, u.Role)
	require.Equal(t, now, u.UpdatedAt)
}

func TestFakeUserRepo(t *testing.T) {
	ctx := context.Background()
	repo := fakeuserrepo.NewFakeUserRepo()

	first := &users.User{Email: "Admin@Example.org", FullName: "Admin", Role: users.RoleAdmin, CreatedAt: time.Now().Add(-time.Hour)}
	require.NoError(t, repo.Create(ctx, first))
	require.NotEmpty(t, first.ID)

	second := &users.User{Email: "donor@example.org", FullName: "Donor", Role: users.RoleDonor}
	require.NoError(t, repo.Create(ctx, second))

	err := repo.Create(ctx, &users.User{Email: "admin@example.org"})
	require.ErrorIs(t, err, apperrors.ErrAlreadyExists)

	got, err := repo.GetByEmail(ctx, "ADMIN@example.org")
	require.NoError(t, err)
	require.Equal(t, first.ID, got.ID)

	list, err := repo.List(ctx, users.Filter{})
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID, "newest first")

	donors, err := repo.List(ctx, users.Filter{Role: users.RoleDonor})
	require.NoError(t, err)
	require.Len(t, donors, 1)

	got.FullName = "Renamed"
	require.NoError(t, repo.Update(ctx, got))
	got, err = repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, "Renamed", got.FullName)

	require.ErrorIs(t, repo.Update(ctx, &users.User{ID: "missing"}), apperrors.ErrNotFound)
	require.NoError(t, repo.Delete(ctx, first.ID))
	_, err = repo.GetByID(ctx, first.ID)
	require.ErrorIs(t, err, apperrors.ErrNotFound)
}
