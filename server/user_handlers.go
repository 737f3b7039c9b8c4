package server

import (
	"net/http"
	"time"

	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
	"github.com/jrsteele09/impact-portal/users"
	"github.com/rs/zerolog/log"
)

const (
	msgUserIDRequired = "User ID is required"
	msgUserNotFound   = "User not found"
)

// ListUsersHandler is admin only; users are returned newest first
func (s *Server) ListUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.requireRole(r, users.RoleAdmin); err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		filter := users.Filter{Role: users.RoleType(r.URL.Query().Get("role"))}
		if filter.Role != "" && !filter.Role.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid role")
			return
		}

		list, err := s.repos.Users.List(r.Context(), filter)
		if err != nil {
			writeServiceError(w, r, err, "")
			return
		}
		writeData(w, http.StatusOK, list)
	}
}

type updateUserRequest struct {
	ID string `json:"id"`
	users.Patch
}

// UpdateUserHandler lets an admin edit any profile and any user edit their own name
func (s *Server) UpdateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := s.authenticate(r)
		if err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		var req updateUserRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeServiceError(w, r, err, "")
			return
		}
		if req.ID == "" {
			writeError(w, http.StatusBadRequest, msgUserIDRequired)
			return
		}

		isAdmin := caller.Role == users.RoleAdmin
		isSelf := caller.Subject == req.ID
		if !isAdmin && (!isSelf || req.Role != nil) {
			writeServiceError(w, r, apperrors.ErrForbidden, "")
			return
		}
		if req.Role != nil && !req.Role.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid role")
			return
		}

		user, err := s.repos.Users.GetByID(r.Context(), req.ID)
		if err != nil {
			writeServiceError(w, r, err, msgUserNotFound)
			return
		}
		req.Patch.Apply(user, time.Now().UTC())

		if err := s.repos.Users.Update(r.Context(), user); err != nil {
			writeServiceError(w, r, err, msgUserNotFound)
			return
		}
		s.forgetSubject(user.ID)
		if req.Role != nil {
			log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Str("changed_by", caller.Subject).Msg("User role changed")
		}
		writeData(w, http.StatusOK, user)
	}
}
