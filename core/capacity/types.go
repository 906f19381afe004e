// Package capacity derives floor areas, level counts and room counts from
// land-parcel parameters.
//
// All operations are pure. Arithmetic runs on decimal values so that floor
// operations are exact for inputs written in decimal notation (0.8, 2.5, 3.5).
package capacity

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// DefaultStoreyHeightM is the assumed vertical height of one building level.
const DefaultStoreyHeightM = 3.5

// Input is a single calculation request. EfficiencyFactor is a fraction in (0,1].
type Input struct {
	LandAreaSqm      float64  `json:"land_area_sqm"`
	PlotRatio        float64  `json:"plot_ratio"`
	EfficiencyFactor float64  `json:"efficiency_factor"`
	AvgRoomSizeSqm   float64  `json:"avg_room_size_sqm"`
	HeightLimitM     *float64 `json:"height_limit_m,omitempty"`
}

// Result is derived deterministically from an Input.
type Result struct {
	GrossFloorAreaSqm decimal.Decimal `json:"gross_floor_area_sqm"`
	NetFloorAreaSqm   decimal.Decimal `json:"net_floor_area_sqm"`

	// MaxLevels is nil when no height limit is known
	MaxLevels *int `json:"max_levels,omitempty"`

	EstimatedMaxRooms int `json:"estimated_max_rooms"`
}

// MarshalJSON writes both areas as JSON numbers fixed at two decimals
func (r Result) MarshalJSON() ([]byte, error) {
	type plain Result
	return json.Marshal(struct {
		plain
		GrossFloorAreaSqm json.Number `json:"gross_floor_area_sqm"`
		NetFloorAreaSqm   json.Number `json:"net_floor_area_sqm"`
	}{
		plain:             plain(r),
		GrossFloorAreaSqm: json.Number(r.GrossFloorAreaSqm.StringFixed(2)),
		NetFloorAreaSqm:   json.Number(r.NetFloorAreaSqm.StringFixed(2)),
	})
}

// HasLevels reports whether a level estimate is available
func (r Result) HasLevels() bool {
	return r.MaxLevels != nil
}

// Field names used in validation errors
const (
	FieldLandArea         = "land_area_sqm"
	FieldPlotRatio        = "plot_ratio"
	FieldEfficiencyFactor = "efficiency_factor"
	FieldAvgRoomSize      = "avg_room_size_sqm"
	FieldHeightLimit      = "height_limit_m"
	FieldStoreyHeight     = "storey_height_m"
	FieldGrossFloorArea   = "gross_floor_area_sqm"
	FieldNetFloorArea     = "net_floor_area_sqm"
)

// Float returns a pointer to v. Handy for optional inputs.
func Float(v float64) *float64 {
	return &v
}
