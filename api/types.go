// Package api - API types for capacity estimation
// These types define the contract of the HTTP endpoints.
package api

import (
	"time"

	"hotel-capacity/core/estimate"
	"hotel-capacity/core/site"
)

// SessionHeader carries the caller's session id. Requests with it store
// their estimate as the session's last result.
const SessionHeader = "X-Session-ID"

// SiteEstimateRequest is the body of POST /sites/{name}/estimate.
// Absent fields take the site form defaults.
type SiteEstimateRequest struct {
	LandAreaOverrideSqm *float64 `json:"land_area_override_sqm,omitempty"`
	EfficiencyFactor    *float64 `json:"efficiency_factor,omitempty"`
	AvgRoomSizeSqm      *float64 `json:"avg_room_size_sqm,omitempty"`
}

// Form merges the request over the defaults for the named site
func (r SiteEstimateRequest) Form(name string) estimate.SiteForm {
	form := estimate.DefaultSiteForm(name)
	form.LandAreaOverrideSqm = r.LandAreaOverrideSqm
	if r.EfficiencyFactor != nil {
		form.EfficiencyFactor = *r.EfficiencyFactor
	}
	if r.AvgRoomSizeSqm != nil {
		form.AvgRoomSizeSqm = *r.AvgRoomSizeSqm
	}
	return form
}

// EstimateResponse is the output of the estimate endpoints
type EstimateResponse struct {
	// Request tracking
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
	InputHash string    `json:"input_hash"`

	// Session the estimate was stored under, if any
	SessionID string `json:"session_id,omitempty"`

	Estimate *estimate.Estimate `json:"estimate"`
}

// SitesResponse is the output of GET /sites
type SitesResponse struct {
	Source     string   `json:"source"`
	Count      int      `json:"count"`
	Sites      []string `json:"sites"`
	Duplicates []string `json:"duplicates,omitempty"`
}

// SiteResponse is the output of GET /sites/{name}
type SiteResponse struct {
	site.Record

	// NeedsLandArea is set when the dataset has no usable area for the site
	// and an estimate must supply land_area_override_sqm.
	NeedsLandArea bool `json:"needs_land_area"`
}

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail provides error information
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}
