package server

import (
	"net/http"
	"time"

	"github.com/jrsteele09/impact-portal/indicators"
	"github.com/jrsteele09/impact-portal/users"
)

const msgIndicatorNotFound = "Indicator not found"

type createIndicatorRequest struct {
	ProjectID   string  `json:"project_id" validate:"required"`
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	TargetValue float64 `json:"target_value" validate:"gt=0"`
	Unit        string  `json:"unit" validate:"required,max=50"`
}

func (s *Server) ListIndicatorsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.requireRole(r, users.Roles...); err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		filter := indicators.Filter{ProjectID: r.URL.Query().Get("project_id")}
		list, err := s.repos.Indicators.List(r.Context(), filter)
		if err != nil {
			writeServiceError(w, r, err, "")
			return
		}
		writeData(w, http.StatusOK, list)
	}
}

// CreateIndicatorHandler starts a new indicator at zero with a stable trend
func (s *Server) CreateIndicatorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, err := s.requireRole(r, users.RoleAdmin, users.RoleProjectManager)
		if err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		var req createIndicatorRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeServiceError(w, r, err, "")
			return
		}
		if err := s.validateRequest(&req); err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		project, err := s.repos.Projects.Get(r.Context(), req.ProjectID)
		if err != nil {
			writeServiceError(w, r, err, msgProjectNotFound)
			return
		}
		if err := canEditProject(caller, project); err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		now := time.Now().UTC()
		indicator := &indicators.Indicator{
			ProjectID:    req.ProjectID,
			Name:         req.Name,
			Description:  req.Description,
			TargetValue:  req.TargetValue,
			CurrentValue: 0,
			Unit:         req.Unit,
			Trend:        indicators.TrendStable,
			LastUpdated:  now,
		}
		if err := indicator.Validate(); err != nil {
			writeServiceError(w, r, err, "")
			return
		}
		if err := s.repos.Indicators.Create(r.Context(), indicator); err != nil {
			writeServiceError(w, r, err, "")
			return
		}
		writeData(w, http.StatusCreated, indicator)
	}
}

func (s *Server) GetIndicatorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := s.requireRole(r, users.Roles...); err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		indicator, err := s.repos.Indicators.Get(r.Context(), r.PathValue("id"))
		if err != nil {
			writeServiceError(w, r, err, msgIndicatorNotFound)
			return
		}
		writeData(w, http.StatusOK, indicator)
	}
}

// UpdateIndicatorHandler records a new reading; last_updated is always stamped
func (s *Server) UpdateIndicatorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		indicator, ok := s.editableIndicator(w, r)
		if !ok {
			return
		}

		var patch indicators.Patch
		if err := decodeJSON(w, r, &patch); err != nil {
			writeServiceError(w, r, err, "")
			return
		}
		patch.Apply(indicator, time.Now().UTC())
		if err := indicator.Validate(); err != nil {
			writeServiceError(w, r, err, "")
			return
		}

		if err := s.repos.Indicators.Update(r.Context(), indicator); err != nil {
			writeServiceError(w, r, err, msgIndicatorNotFound)
			return
		}
		writeData(w, http.StatusOK, indicator)
	}
}

func (s *Server) DeleteIndicatorHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		indicator, ok := s.editableIndicator(w, r)
		if !ok {
			return
		}

		if err := s.repos.Indicators.Delete(r.Context(), indicator.ID); err != nil {
			writeServiceError(w, r, err, msgIndicatorNotFound)
			return
		}
		writeData(w, http.StatusOK, map[string]string{"message": "Indicator deleted"})
	}
}

// editableIndicator loads the indicator named in the path and checks the
// caller may edit its project. It writes the error response itself.
func (s *Server) editableIndicator(w http.ResponseWriter, r *http.Request) (*indicators.Indicator, bool) {
	caller, err := s.requireRole(r, users.RoleAdmin, users.RoleProjectManager)
	if err != nil {
		writeServiceError(w, r, err, "")
		return nil, false
	}

	indicator, err := s.repos.Indicators.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err, msgIndicatorNotFound)
		return nil, false
	}

	project, err := s.repos.Projects.Get(r.Context(), indicator.ProjectID)
	if err != nil {
		writeServiceError(w, r, err, msgProjectNotFound)
		return nil, false
	}
	if err := canEditProject(caller, project); err != nil {
		writeServiceError(w, r, err, "")
		return nil, false
	}
	return indicator, true
}
