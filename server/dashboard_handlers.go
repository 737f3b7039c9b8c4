package server

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/jrsteele09/impact-portal/identity"
	"github.com/jrsteele09/impact-portal/indicators"
	"github.com/jrsteele09/impact-portal/projects"
	"github.com/jrsteele09/impact-portal/users"
	"github.com/rs/zerolog/log"
)

type dashboard struct {
	role  users.RoleType
	path  string
	title string
}

var (
	dashboardAdmin          = dashboard{role: users.RoleAdmin, path: RouteAdminDashboard, title: "Administration"}
	dashboardProjectManager = dashboard{role: users.RoleProjectManager, path: RouteProjectManagerDashboard, title: "My projects"}
	dashboardDonor          = dashboard{role: users.RoleDonor, path: RouteDonorDashboard, title: "Impact overview"}

	dashboards = []dashboard{dashboardAdmin, dashboardProjectManager, dashboardDonor}
)

// DashboardSummary is the headline figures shown on every dashboard
type DashboardSummary struct {
	ProjectCount    int
	ActiveCount     int
	TotalBudget     float64
	TotalSpent      float64
	IndicatorCount  int
	AverageProgress float64
	UserCount       int
}

type dashboardPage struct {
	AppName   string
	Title     string
	Email     string
	ShowUsers bool
	Summary   DashboardSummary
	Projects  []*projects.Project
}

// DashboardHandler renders the dashboard for one role. Callers with a
// different role are sent to their own dashboard.
func (s *Server) DashboardHandler(d dashboard) http.HandlerFunc {
	tmpl, err := ParseTemplate("dashboard.html")
	if err != nil {
		panic("Failed to parse dashboard template: " + err.Error())
	}

	return func(w http.ResponseWriter, r *http.Request) {
		id, err := s.authenticate(r)
		if err != nil || id.Role == "" {
			s.clearSessionCookies(w)
			http.Redirect(w, r, RouteIndex, http.StatusFound)
			return
		}
		if id.Role != d.role {
			http.Redirect(w, r, id.Role.DashboardPath(), http.StatusFound)
			return
		}

		page, err := s.buildDashboard(r, d, id)
		if err != nil {
			log.Error().Err(err).Str("dashboard", d.path).Msg("Failed to load dashboard data")
			http.Error(w, msgInternalError, http.StatusInternalServerError)
			return
		}

		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, "dashboard.html", page); err != nil {
			log.Error().Err(err).Str("dashboard", d.path).Msg("Failed to render dashboard")
			http.Error(w, "Failed to render template", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = buf.WriteTo(w)
	}
}

func (s *Server) buildDashboard(r *http.Request, d dashboard, id *identity.Identity) (*dashboardPage, error) {
	ctx := r.Context()

	filter := projects.Filter{}
	if d.role == users.RoleProjectManager {
		filter.CreatedBy = id.Subject
	}
	projectList, err := s.repos.Projects.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	page := &dashboardPage{
		AppName:   s.config.GetAppName(),
		Title:     d.title,
		Email:     id.Email,
		ShowUsers: d.role == users.RoleAdmin,
		Projects:  projectList,
	}

	var progressTotal float64
	for _, p := range projectList {
		page.Summary.ProjectCount++
		page.Summary.TotalBudget += p.Budget
		page.Summary.TotalSpent += p.Spent
		if p.Status == projects.StatusActive {
			page.Summary.ActiveCount++
		}

		projectIndicators, err := s.repos.Indicators.List(ctx, indicators.Filter{ProjectID: p.ID})
		if err != nil {
			return nil, fmt.Errorf("list indicators for %s: %w", p.ID, err)
		}
		for _, i := range projectIndicators {
			page.Summary.IndicatorCount++
			progressTotal += i.Progress()
		}
	}
	if page.Summary.IndicatorCount > 0 {
		page.Summary.AverageProgress = progressTotal / float64(page.Summary.IndicatorCount)
	}

	if page.ShowUsers {
		userList, err := s.repos.Users.List(ctx, users.Filter{})
		if err != nil {
			return nil, fmt.Errorf("list users: %w", err)
		}
		page.Summary.UserCount = len(userList)
	}
	return page, nil
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.0f%%", v)
}
