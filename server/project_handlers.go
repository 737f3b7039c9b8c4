package server

import (
	"net/http"
	"time"

	"github.com/jrsteele09/impact-portal/identity"
	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
	"github.com/jrsteele09/impact-portal/projects"
	"github.com/jrsteele09/impact-portal/users"
	"github.com/rs/zerolog/log"
)

const msgProjectNotFound = "Project not found"

// Budget is declared first so a zero budget is reported before any other field
type createProjectRequest struct {
	Budget      float64         `json:"budget" validate:"gt=0"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description string          `json:"description" validate:"max=5000"`
	Status      projects.Status `json:"status"`
	StartDate   *projects.Date  `json:"start_date"`
	EndDate     *projects.Date  `json:"end_date"`
}

// ListProjectsHandler returns projects newest first. Project managers only see their own.
func (s *Server) ListProjectsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.requireRole(r, users.Roles...)
		if err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		filter := projects.Filter{Status: projects.Status(r.URL.Query().Get("status"))}
		if filter.Status != "" && !filter.Status.Valid() {
			writeError(w, http.StatusBadRequest, "Invalid project status")
			return
		}
		if id.Role == users.RoleProjectManager {
			filter.CreatedBy = id.Subject
		}

		list, err := s.repos.Projects.List(r.Context(), filter)
		if err != nil {
			writeServiceError(w, r, err, "")
			return
		}
		writeData(w, http.StatusOK, list)
	}
}

func (s *Server) CreateProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.requireRole(r, users.RoleAdmin, users.RoleProjectManager)
		if err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		var req createProjectRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeServiceError(w, r, err, "")
			return
		}
		if err := s.validateRequest(&req); err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		project := &projects.Project{
			Name:        req.Name,
			Description: req.Description,
			Status:      req.Status,
			Budget:      req.Budget,
			Spent:       0,
			EndDate:     req.EndDate,
			CreatedBy:   id.Subject,
		}
		if project.Status == "" {
			project.Status = projects.StatusPlanning
		}
		if req.StartDate != nil {
			project.StartDate = *req.StartDate
		} else {
			y, m, d := time.Now().UTC().Date()
			project.StartDate = projects.NewDate(y, m, d)
		}
		if err := project.Validate(); err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		if err := s.repos.Projects.Create(r.Context(), project); err != nil {
			writeServiceError(w, r, err, "")
			return
		}
		log.Info().Str("project_id", project.ID).Str("created_by", id.Subject).Msg("Project created")
		writeData(w, http.StatusCreated, project)
	}
}

func (s *Server) GetProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.requireRole(r, users.Roles...); err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		project, err := s.repos.Projects.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, r, err, msgProjectNotFound)
			return
		}
		writeData(w, http.StatusOK, project)
	}
}

// UpdateProjectHandler applies a partial update. Project managers may only edit projects they created.
func (s *Server) UpdateProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.requireRole(r, users.RoleAdmin, users.RoleProjectManager)
		if err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		project, err := s.repos.Projects.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, r, err, msgProjectNotFound)
			return
		}
		if err := canEditProject(id, project); err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		var patch projects.Patch
		if err := decodeJSON(w, r, &patch); err != nil {
			writeServiceError(w, r, err, "")
			return
		}
		patch.Apply(project, time.Now().UTC())
		if err := project.Validate(); err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		if err := s.repos.Projects.Update(r.Context(), project); err != nil {
			writeServiceError(w, r, err, msgProjectNotFound)
			return
		}
		writeData(w, http.StatusOK, project)
	}
}

// DeleteProjectHandler removes a project together with its indicators
func (s *Server) DeleteProjectHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.requireRole(r, users.RoleAdmin); err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		projectID := r.PathValue("id")
		if _, err := s.repos.Projects.Get(r.Context(), projectID); err != nil {
			writeServiceError(w, r, err, msgProjectNotFound)
			return
		}
		if err := s.repos.Indicators.DeleteByProject(r.Context(), projectID); err != nil {
			writeServiceError(w, r, err, "")
			return
		}
		if err := s.repos.Projects.Delete(r.Context(), projectID); err != nil {
			writeServiceError(w, r, err, msgProjectNotFound)
			return
		}
		log.Info().Str("project_id", projectID).Msg("Project deleted")
		writeData(w, http.StatusOK, map[string]string{"message": "Project deleted"})
	}
}

// canEditProject limits project managers to the projects they created, and
// to those projects' indicators
func canEditProject(caller *identity.Identity, project *projects.Project) error {
	if caller.Role == users.RoleProjectManager && project.CreatedBy != caller.Subject {
		return apperrors.ErrForbidden
	}
	return nil
}
