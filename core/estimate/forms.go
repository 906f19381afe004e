// Package estimate runs the manual and site-based capacity estimators.
package estimate

import (
	"strings"

	"hotel-capacity/core/capacity"
	"hotel-capacity/core/site"
	"hotel-capacity/internal/errors"
)

// Form bounds. The manual form takes the efficiency factor as a percentage,
// the site form as a fraction; both are converted to a fraction before
// calculating.
const (
	MinEfficiencyPercent = 50.0
	MaxEfficiencyPercent = 100.0

	MinEfficiencyFraction = 0.6
	MaxEfficiencyFraction = 0.95

	MinRoomSizeSqm = 20.0
	MaxRoomSizeSqm = 50.0
)

// Form field names
const (
	FieldSiteName          = "site_name"
	FieldEfficiencyPercent = "efficiency_percent"
)

// ManualForm collects the inputs of the manual estimator
type ManualForm struct {
	LandAreaSqm       float64  `json:"land_area_sqm"`
	PlotRatio         float64  `json:"plot_ratio"`
	EfficiencyPercent float64  `json:"efficiency_percent"`
	AvgRoomSizeSqm    float64  `json:"avg_room_size_sqm"`
	HeightLimitM      *float64 `json:"height_limit_m,omitempty"`
}

// DefaultManualForm returns the form as first presented to a user
func DefaultManualForm() ManualForm {
	return ManualForm{
		LandAreaSqm:       1000,
		PlotRatio:         3.0,
		EfficiencyPercent: 80,
		AvgRoomSizeSqm:    25,
	}
}

// Validate checks the form ranges
func (f ManualForm) Validate() error {
	if f.EfficiencyPercent < MinEfficiencyPercent || f.EfficiencyPercent > MaxEfficiencyPercent {
		return errors.Validationf(FieldEfficiencyPercent, "must be between %.0f and %.0f, got %v",
			MinEfficiencyPercent, MaxEfficiencyPercent, f.EfficiencyPercent)
	}
	return validateRoomSize(f.AvgRoomSizeSqm)
}

// Input converts the form into a calculator input
func (f ManualForm) Input() (capacity.Input, error) {
	if err := f.Validate(); err != nil {
		return capacity.Input{}, err
	}
	efficiency, err := capacity.EfficiencyFromPercent(f.EfficiencyPercent)
	if err != nil {
		return capacity.Input{}, err
	}
	return capacity.Input{
		LandAreaSqm:      f.LandAreaSqm,
		PlotRatio:        f.PlotRatio,
		EfficiencyFactor: efficiency,
		AvgRoomSizeSqm:   f.AvgRoomSizeSqm,
		HeightLimitM:     f.HeightLimitM,
	}, nil
}

// SiteForm collects the inputs of the site-based estimator
type SiteForm struct {
	SiteName            string   `json:"site_name"`
	LandAreaOverrideSqm *float64 `json:"land_area_override_sqm,omitempty"`
	EfficiencyFactor    float64  `json:"efficiency_factor"`
	AvgRoomSizeSqm      float64  `json:"avg_room_size_sqm"`
}

// DefaultSiteForm returns the site form defaults for name
func DefaultSiteForm(name string) SiteForm {
	return SiteForm{
		SiteName:         name,
		EfficiencyFactor: 0.8,
		AvgRoomSizeSqm:   25,
	}
}

// Validate checks the form ranges
func (f SiteForm) Validate() error {
	if strings.TrimSpace(f.SiteName) == "" {
		return errors.Validation(FieldSiteName, "a site must be selected")
	}
	if f.EfficiencyFactor < MinEfficiencyFraction || f.EfficiencyFactor > MaxEfficiencyFraction {
		return errors.Validationf(capacity.FieldEfficiencyFactor, "must be between %.2f and %.2f, got %v",
			MinEfficiencyFraction, MaxEfficiencyFraction, f.EfficiencyFactor)
	}
	if f.LandAreaOverrideSqm != nil && *f.LandAreaOverrideSqm <= 0 {
		return errors.Validationf(site.FieldLandAreaOverride, "must be greater than zero, got %v", *f.LandAreaOverrideSqm)
	}
	return validateRoomSize(f.AvgRoomSizeSqm)
}

func validateRoomSize(v float64) error {
	if v < MinRoomSizeSqm || v > MaxRoomSizeSqm {
		return errors.Validationf(capacity.FieldAvgRoomSize, "must be between %.0f and %.0f sqm, got %v",
			MinRoomSizeSqm, MaxRoomSizeSqm, v)
	}
	return nil
}
