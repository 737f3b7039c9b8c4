package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/impact-portal/identity"
	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
	"github.com/jrsteele09/impact-portal/users"
	"github.com/rs/zerolog/log"
)

const (
	msgInvalidLogin         = "Invalid email or password"
	msgEmailRegistered      = "Email already registered"
	msgProfileNotFound      = "User profile not found"
	msgRegistrationDisabled = "Registration is not available"
)

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
	User      *users.User `json:"user"`
}

// LoginHandler exchanges credentials for a session and sets both session cookies
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeServiceError(w, r, err, "")
			return
		}
		if err := s.validateRequest(&req); err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		session, err := s.provider.SignIn(r.Context(), req.Email, req.Password)
		if err != nil {
			if apperrors.Is(err, identity.ErrInvalidCredentials) {
				writeError(w, http.StatusUnauthorized, msgInvalidLogin)
				return
			}
			writeServiceError(w, r, err, "")
			return
		}

		profile, err := s.sessionProfile(r, session)
		if err != nil {
			writeServiceError(w, r, err, msgProfileNotFound)
			return
		}

		s.setSessionCookies(w, session)
		log.Info().Str("user_id", profile.ID).Str("role", string(profile.Role)).Msg("User signed in")
		writeData(w, http.StatusOK, loginResponse{
			Token:     session.AccessToken,
			ExpiresAt: session.ExpiresAt,
			User:      profile,
		})
	}
}

// sessionProfile loads the users-table profile for a new session. A provider
// account without a profile row is described from the identity alone.
func (s *Server) sessionProfile(r *http.Request, session *identity.Session) (*users.User, error) {
	id := session.Identity
	if id == nil {
		var err error
		if id, err = s.provider.GetUser(r.Context(), session.AccessToken); err != nil {
			return nil, err
		}
	}

	profile, err := s.repos.Users.GetByID(r.Context(), id.Subject)
	if err == nil {
		return profile, nil
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	return &users.User{ID: id.Subject, Email: id.Email, Role: id.Role}, nil
}

// LogoutHandler revokes the refresh token where the provider supports it and clears the cookies
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if refreshToken := cookieValue(r, refreshCookieName); refreshToken != "" {
			if err := s.provider.SignOut(r.Context(), refreshToken); err != nil {
				log.Warn().Err(err).Msg("Failed to revoke refresh token on logout")
			}
		}
		s.forgetAccessToken(cookieValue(r, authCookieName))
		s.forgetAccessToken(bearerToken(r))
		s.clearSessionCookies(w)
		writeData(w, http.StatusOK, map[string]bool{"success": true})
	}
}

func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.authenticate(r)
		if err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		profile, err := s.repos.Users.GetByID(r.Context(), id.Subject)
		if err != nil {
			writeServiceError(w, r, err, msgProfileNotFound)
			return
		}
		writeData(w, http.StatusOK, profile)
	}
}

type registerRequest struct {
	Email    string         `json:"email" validate:"required,email"`
	Password string         `json:"password" validate:"required"`
	FullName string         `json:"full_name" validate:"required,max=200"`
	Role     users.RoleType `json:"role" validate:"required,portal_role"`
}

// RegisterHandler creates an account with the identity provider and its users-table profile.
// Only an authenticated admin may create another admin.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeServiceError(w, r, err, "")
			return
		}
		req.Email = users.NormaliseEmail(req.Email)
		req.FullName = strings.TrimSpace(req.FullName)
		if err := s.validateRequest(&req); err != nil {
			writeServiceError(w, r, err, "")
			return
		}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			writeError(w, http.StatusBadRequest, sentenceCase(err.Error()))
			return
		}

		if req.Role == users.RoleAdmin {
			if _, err := s.requireRole(r, users.RoleAdmin); err != nil {
				writeError(w, http.StatusForbidden, msgForbidden)
				return
			}
		}

		id, err := s.provider.SignUp(r.Context(), identity.Credentials{
			Email:    req.Email,
			Password: req.Password,
			FullName: req.FullName,
			Role:     req.Role,
		})
		switch {
		case apperrors.Is(err, identity.ErrAlreadyRegistered):
			writeError(w, http.StatusBadRequest, msgEmailRegistered)
			return
		case apperrors.Is(err, identity.ErrUnsupported):
			writeError(w, http.StatusNotImplemented, msgRegistrationDisabled)
			return
		case err != nil:
			writeServiceError(w, r, err, "")
			return
		}

		profile, err := s.ensureProfile(r, id, req)
		if err != nil {
			if apperrors.Is(err, apperrors.ErrAlreadyExists) {
				writeError(w, http.StatusBadRequest, msgEmailRegistered)
				return
			}
			writeServiceError(w, r, err, "")
			return
		}

		log.Info().Str("user_id", profile.ID).Str("role", string(profile.Role)).Msg("User registered")
		writeData(w, http.StatusCreated, profile)
	}
}

// ensureProfile creates the users-table row for providers that do not own it
func (s *Server) ensureProfile(r *http.Request, id *identity.Identity, req registerRequest) (*users.User, error) {
	profile, err := s.repos.Users.GetByID(r.Context(), id.Subject)
	if err == nil {
		return profile, nil
	}
	if !apperrors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	profile = &users.User{
		ID:       id.Subject,
		Email:    req.Email,
		FullName: req.FullName,
		Role:     req.Role,
	}
	if err := s.repos.Users.Create(r.Context(), profile); err != nil {
		return nil, err
	}
	return profile, nil
}

type validatePasswordRequest struct {
	Password string `json:"password"`
}

type validatePasswordResponse struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// ValidatePasswordHandler lets the registration form check password strength before submitting
func (s *Server) ValidatePasswordHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validatePasswordRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeServiceError(w, r, err, "")
			return
		}
		resp := validatePasswordResponse{Valid: true}
		if err := users.ValidatePasswordStrength(req.Password); err != nil {
			resp = validatePasswordResponse{Valid: false, Error: sentenceCase(err.Error())}
		}
		writeData(w, http.StatusOK, resp)
	}
}

func sentenceCase(msg string) string {
	if msg == "" {
		return msg
	}
	return strings.ToUpper(msg[:1]) + msg[1:]
}
