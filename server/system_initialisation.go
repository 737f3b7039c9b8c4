package server

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/jrsteele09/impact-portal/identity"
	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
	"github.com/jrsteele09/impact-portal/users"
	"github.com/rs/zerolog/log"
)

const DefaultAdminFullName = "System Administrator"

// InitialiseSystem makes sure the configured bootstrap administrator exists so
// a fresh deployment can sign in and create the other accounts.
// Nothing happens when no bootstrap email is configured.
func (s *Server) InitialiseSystem(ctx context.Context) error {
	email := users.NormaliseEmail(s.config.GetBootstrapAdminEmail())
	if email == "" {
		return nil
	}

	if existing, err := s.repos.Users.GetByEmail(ctx, email); err == nil {
		if !existing.HasRole(users.RoleAdmin) {
			log.Warn().Str("email", email).Str("role", string(existing.Role)).Msg("Bootstrap admin email belongs to a non-admin user")
		}
		return nil
	} else if !apperrors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("[Server InitialiseSystem] failed to look up admin: %w", err)
	}

	generatedPassword, err := s.createAdmin(ctx, email, s.config.GetBootstrapAdminPassword())
	if apperrors.Is(err, identity.ErrUnsupported) {
		log.Warn().Str("email", email).Msg("Identity provider does not support sign up, create the bootstrap admin at the provider")
		return nil
	}
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to bootstrap admin: %w", err)
	}

	if generatedPassword != "" {
		log.Warn().
			Str("email", email).
			Str("password", generatedPassword).
			Msg("Bootstrap admin created with a generated password, change it after first sign in")
	} else {
		log.Info().Str("email", email).Msg("Bootstrap admin created")
	}
	return nil
}

// createAdmin registers the admin with the identity provider and writes the
// profile row. The generated password is returned when none was configured.
func (s *Server) createAdmin(ctx context.Context, email, password string) (generatedPassword string, err error) {
	if password == "" {
		// Generate a secure random password
		passwordBytes := make([]byte, 16)
		if _, err := rand.Read(passwordBytes); err != nil {
			return "", fmt.Errorf("failed to generate password: %w", err)
		}
		password = base64.URLEncoding.EncodeToString(passwordBytes)
		generatedPassword = password
	}

	id, err := s.provider.SignUp(ctx, identity.Credentials{
		Email:    email,
		Password: password,
		FullName: DefaultAdminFullName,
		Role:     users.RoleAdmin,
	})
	if err != nil {
		return "", err
	}

	if _, err := s.repos.Users.GetByID(ctx, id.Subject); apperrors.Is(err, apperrors.ErrNotFound) {
		profile := &users.User{ID: id.Subject, Email: email, FullName: DefaultAdminFullName, Role: users.RoleAdmin}
		if err := s.repos.Users.Create(ctx, profile); err != nil {
			return "", fmt.Errorf("failed to create admin profile: %w", err)
		}
	} else if err != nil {
		return "", err
	}
	return generatedPassword, nil
}
