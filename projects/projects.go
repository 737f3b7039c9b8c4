package projects

import (
	"strings"
	"time"

	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
)

type Status string

const (
	StatusPlanning  Status = "planning"
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusPaused    Status = "paused"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPlanning, StatusActive, StatusCompleted, StatusPaused:
		return true
	}
	return false
}

type Project struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Status      Status    `json:"status"`
	Budget      float64   `json:"budget"`
	Spent       float64   `json:"spent"`
	StartDate   Date      `json:"start_date"`
	EndDate     *Date     `json:"end_date"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Validate checks the field rules shared by create and update
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return apperrors.Invalid("Name is required")
	}
	if p.Budget <= 0 {
		return apperrors.Invalid("Budget must be greater than 0")
	}
	if p.Spent < 0 {
		return apperrors.Invalid("Spent cannot be negative")
	}
	if !p.Status.Valid() {
		return apperrors.Invalid("Invalid project status %q", p.Status)
	}
	if p.StartDate.IsZero() {
		return apperrors.Invalid("Start date is required")
	}
	if p.EndDate != nil && p.EndDate.Before(p.StartDate.Time) {
		return apperrors.Invalid("End date cannot be before start date")
	}
	return nil
}

// Remaining is the unspent part of the budget
func (p *Project) Remaining() float64 {
	return p.Budget - p.Spent
}

// Patch holds the mutable project fields; nil means unchanged
type Patch struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Status      *Status  `json:"status,omitempty"`
	Budget      *float64 `json:"budget,omitempty"`
	Spent       *float64 `json:"spent,omitempty"`
	StartDate   *Date    `json:"start_date,omitempty"`
	EndDate     *Date    `json:"end_date,omitempty"`
}

// Apply copies the set fields onto p. The result still needs Validate.
func (pt Patch) Apply(p *Project, now time.Time) {
	if pt.Name != nil {
		p.Name = strings.TrimSpace(*pt.Name)
	}
	if pt.Description != nil {
		p.Description = *pt.Description
	}
	if pt.Status != nil {
		p.Status = *pt.Status
	}
	if pt.Budget != nil {
		p.Budget = *pt.Budget
	}
	if pt.Spent != nil {
		p.Spent = *pt.Spent
	}
	if pt.StartDate != nil {
		p.StartDate = *pt.StartDate
	}
	if pt.EndDate != nil {
		end := *pt.EndDate
		p.EndDate = &end
	}
	p.UpdatedAt = now
}
