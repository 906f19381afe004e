package site

import (
	"math"

	"hotel-capacity/internal/errors"
)

// FieldLandAreaOverride is the input field of the manual land-area fallback
const FieldLandAreaOverride = "land_area_override_sqm"

// ResolveLandArea picks the land area for a calculation. A present, non-zero
// dataset area wins; otherwise overrideSqm must be a positive value.
func ResolveLandArea(rec Record, overrideSqm *float64) (float64, error) {
	if rec.SiteAreaSqm != nil && *rec.SiteAreaSqm != 0 {
		return *rec.SiteAreaSqm, nil
	}

	if overrideSqm == nil {
		return 0, errors.MissingInput(FieldLandAreaOverride,
			"site "+rec.Name+" has no land area in the dataset; supply a manual land area").
			WithContext("site", rec.Name)
	}

	v := *overrideSqm
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, errors.Validationf(FieldLandAreaOverride, "must be greater than zero, got %v", v)
	}
	return v, nil
}

// NeedsLandArea reports whether rec requires a manual land-area override
func NeedsLandArea(rec Record) bool {
	return rec.SiteAreaSqm == nil || *rec.SiteAreaSqm == 0
}
