// Package scenario evaluates batches of capacity estimates described in HCL.
//
//	scenario "tower-a" {
//	  land_area    = 1000
//	  plot_ratio   = 3
//	  efficiency   = 0.8
//	  room_size    = 25
//	  height_limit = 35
//	}
//
//	scenario "lot-7" {
//	  site               = "Lot 7"
//	  land_area_override = 1200
//	  efficiency         = 0.8
//	  room_size          = 23
//	}
//
// A scenario naming a site is estimated against the site dataset; any other
// scenario is a manual estimate.
package scenario

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"

	"hotel-capacity/core/capacity"
	"hotel-capacity/core/estimate"
	"hotel-capacity/core/site"
	"hotel-capacity/internal/errors"
)

// File is a decoded scenario file
type File struct {
	Scenarios []Scenario `hcl:"scenario,block"`
}

// Scenario is one named estimate
type Scenario struct {
	Name string `hcl:"name,label"`

	Site             *string  `hcl:"site,optional"`
	LandArea         *float64 `hcl:"land_area,optional"`
	LandAreaOverride *float64 `hcl:"land_area_override,optional"`
	PlotRatio        *float64 `hcl:"plot_ratio,optional"`
	HeightLimit      *float64 `hcl:"height_limit,optional"`

	Efficiency float64 `hcl:"efficiency"`
	RoomSize   float64 `hcl:"room_size"`
}

// IsSite reports whether the scenario is estimated against the dataset
func (s Scenario) IsSite() bool {
	return s.Site != nil
}

// Outcome is the result of one scenario. Exactly one of Estimate and Err is set.
type Outcome struct {
	Name     string
	Estimate *estimate.Estimate
	Err      error
}

// Report collects the outcomes of a batch in file order
type Report struct {
	Source   string
	Outcomes []Outcome
}

// Failed returns the number of scenarios that produced an error
func (r *Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// LoadFile reads and decodes a scenario file
func LoadFile(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.DataSource(fmt.Sprintf("failed to read scenario file %s", path), err)
	}
	return Parse(path, src)
}

// Parse decodes scenario source. filename selects the syntax: ".hcl" for
// native syntax, ".json" for HCL's JSON form.
func Parse(filename string, src []byte) (*File, error) {
	var f File
	if err := hclsimple.Decode(filename, src, nil, &f); err != nil {
		return nil, errors.Wrap(errors.TypeValidation, "invalid scenario file "+filename, err)
	}

	seen := make(map[string]bool, len(f.Scenarios))
	for _, s := range f.Scenarios {
		if seen[s.Name] {
			return nil, errors.Validationf("scenario", "duplicate scenario %q", s.Name)
		}
		seen[s.Name] = true
	}
	return &f, nil
}

// Run evaluates every scenario. A failing scenario is recorded in its Outcome
// and does not stop the rest of the batch. ds may be nil when no scenario
// names a site.
func Run(f *File, est *estimate.Estimator, ds *site.Dataset) *Report {
	report := &Report{Outcomes: make([]Outcome, 0, len(f.Scenarios))}
	if ds != nil {
		report.Source = ds.Source()
	}

	for _, s := range f.Scenarios {
		out := Outcome{Name: s.Name}
		out.Estimate, out.Err = evaluate(s, est, ds)
		if out.Err != nil {
			out.Err = fmt.Errorf("scenario %s: %w", s.Name, out.Err)
		}
		report.Outcomes = append(report.Outcomes, out)
	}
	return report
}

func evaluate(s Scenario, est *estimate.Estimator, ds *site.Dataset) (*estimate.Estimate, error) {
	if s.IsSite() {
		if s.LandArea != nil || s.PlotRatio != nil || s.HeightLimit != nil {
			return nil, errors.Validation("site",
				"site scenarios take land area, plot ratio and height from the dataset; use land_area_override")
		}
		return est.Site(ds, estimate.SiteForm{
			SiteName:            *s.Site,
			LandAreaOverrideSqm: s.LandAreaOverride,
			EfficiencyFactor:    s.Efficiency,
			AvgRoomSizeSqm:      s.RoomSize,
		})
	}

	if s.LandAreaOverride != nil {
		return nil, errors.Validation(site.FieldLandAreaOverride, "only site scenarios take an override")
	}
	if s.LandArea == nil {
		return nil, errors.MissingInput(capacity.FieldLandArea, "manual scenarios need land_area")
	}
	if s.PlotRatio == nil {
		return nil, errors.MissingInput(capacity.FieldPlotRatio, "manual scenarios need plot_ratio")
	}

	return est.Calculate(capacity.Input{
		LandAreaSqm:      *s.LandArea,
		PlotRatio:        *s.PlotRatio,
		EfficiencyFactor: s.Efficiency,
		AvgRoomSizeSqm:   s.RoomSize,
		HeightLimitM:     s.HeightLimit,
	})
}
