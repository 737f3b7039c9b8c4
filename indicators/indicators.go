package indicators

import (
	"strings"
	"time"

	apperrors "github.com/jrsteele09/impact-portal/internal/errors"
)

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

func (t Trend) Valid() bool {
	switch t {
	case TrendUp, TrendDown, TrendStable:
		return true
	}
	return false
}

// DeriveTrend compares two readings of the same indicator
func DeriveTrend(previous, current float64) Trend {
	switch {
	case current > previous:
		return TrendUp
	case current < previous:
		return TrendDown
	}
	return TrendStable
}

type Indicator struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	TargetValue  float64   `json:"target_value"`
	CurrentValue float64   `json:"current_value"`
	Unit         string    `json:"unit"`
	Trend        Trend     `json:"trend"`
	LastUpdated  time.Time `json:"last_updated"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (i *Indicator) Validate() error {
	if strings.TrimSpace(i.ProjectID) == "" {
		return apperrors.Invalid("Project ID is required")
	}
	if strings.TrimSpace(i.Name) == "" {
		return apperrors.Invalid("Name is required")
	}
	if strings.TrimSpace(i.Unit) == "" {
		return apperrors.Invalid("Unit is required")
	}
	if i.TargetValue <= 0 {
		return apperrors.Invalid("Target value must be greater than 0")
	}
	if i.CurrentValue < 0 {
		return apperrors.Invalid("Current value cannot be negative")
	}
	if !i.Trend.Valid() {
		return apperrors.Invalid("Invalid trend %q", i.Trend)
	}
	return nil
}

// Progress is the share of the target reached, as a percentage
func (i *Indicator) Progress() float64 {
	if i.TargetValue == 0 {
		return 0
	}
	return i.CurrentValue / i.TargetValue * 100
}

// Patch holds the mutable indicator fields; nil means unchanged
type Patch struct {
	Name         *string  `json:"name,omitempty"`
	Description  *string  `json:"description,omitempty"`
	TargetValue  *float64 `json:"target_value,omitempty"`
	CurrentValue *float64 `json:"current_value,omitempty"`
	Unit         *string  `json:"unit,omitempty"`
	Trend        *Trend   `json:"trend,omitempty"`
}

// Apply copies the set fields onto i and stamps LastUpdated. A new reading
// without an explicit trend gets one derived from the previous value.
func (p Patch) Apply(i *Indicator, now time.Time) {
	if p.Name != nil {
		i.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		i.Description = *p.Description
	}
	if p.TargetValue != nil {
		i.TargetValue = *p.TargetValue
	}
	if p.Unit != nil {
		i.Unit = strings.TrimSpace(*p.Unit)
	}
	if p.CurrentValue != nil {
		if p.Trend == nil {
			i.Trend = DeriveTrend(i.CurrentValue, *p.CurrentValue)
		}
		i.CurrentValue = *p.CurrentValue
	}
	if p.Trend != nil {
		i.Trend = *p.Trend
	}
	i.LastUpdated = now
	i.UpdatedAt = now
}
