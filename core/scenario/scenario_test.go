package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"hotel-capacity/core/estimate"
	"hotel-capacity/core/site"
	"hotel-capacity/internal/errors"
)

const batch = `
scenario "tower-a" {
  land_area    = 1000
  plot_ratio   = 3
  efficiency   = 0.8
  room_size    = 25
  height_limit = 35
}

scenario "broken" {
  land_area  = 1000
  efficiency = 0.8
  room_size  = 25
}

scenario "lot-7" {
  site               = "Lot 7"
  land_area_override = 1200
  efficiency         = 0.8
  room_size          = 23
}

scenario "nowhere" {
  site       = "Nowhere"
  efficiency = 0.8
  room_size  = 25
}
`

const sites = `{"type":"FeatureCollection","features":[
	{"type":"Feature","properties":{"site_name":"Lot 7","site_area":0,"plot_ratio":2.5,"max_height":28},"geometry":null}
]}`

func parseBatch(t *testing.T) *File {
	t.Helper()
	f, err := Parse("batch.hcl", []byte(batch))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return f
}

func TestParse(t *testing.T) {
	f := parseBatch(t)

	if len(f.Scenarios) != 4 {
		t.Fatalf("scenarios = %d, want 4", len(f.Scenarios))
	}
	if f.Scenarios[0].Name != "tower-a" || f.Scenarios[0].IsSite() {
		t.Errorf("first scenario = %+v", f.Scenarios[0])
	}
	if f.Scenarios[0].HeightLimit == nil || *f.Scenarios[0].HeightLimit != 35 {
		t.Errorf("height limit not decoded")
	}
	if f.Scenarios[1].PlotRatio != nil {
		t.Errorf("absent plot_ratio should decode as nil")
	}
	lot := f.Scenarios[2]
	if !lot.IsSite() || *lot.Site != "Lot 7" || *lot.LandAreaOverride != 1200 {
		t.Errorf("site scenario = %+v", lot)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax", `scenario "a" {`},
		{"missing required", `scenario "a" { land_area = 1 }`},
		{"unknown attribute", `scenario "a" { efficiency = 0.8 room_size = 25 colour = "red" }`},
		{"duplicate name", "scenario \"a\" {\n efficiency = 0.8\n room_size = 25\n}\nscenario \"a\" {\n efficiency = 0.8\n room_size = 25\n}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse("bad.hcl", []byte(tt.src))
			if !errors.IsType(err, errors.TypeValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestRunContinuesPastFailures(t *testing.T) {
	ds, err := site.Parse([]byte(sites), "sites.geojson", site.DefaultFields())
	if err != nil {
		t.Fatalf("site.Parse: %v", err)
	}

	report := Run(parseBatch(t), estimate.NewEstimator(0, nil), ds)

	if len(report.Outcomes) != 4 {
		t.Fatalf("outcomes = %d, want 4", len(report.Outcomes))
	}
	if report.Failed() != 2 {
		t.Errorf("failed = %d, want 2", report.Failed())
	}
	if report.Source != "sites.geojson" {
		t.Errorf("source = %q", report.Source)
	}

	tower := report.Outcomes[0]
	if tower.Err != nil {
		t.Fatalf("tower-a: %v", tower.Err)
	}
	if tower.Estimate.Result.EstimatedMaxRooms != 96 {
		t.Errorf("tower-a rooms = %d, want 96", tower.Estimate.Result.EstimatedMaxRooms)
	}
	if lv := tower.Estimate.Result.MaxLevels; lv == nil || *lv != 6 {
		t.Errorf("tower-a levels = %v, want 6", lv)
	}

	if !errors.IsType(report.Outcomes[1].Err, errors.TypeMissingInput) {
		t.Errorf("broken: expected missing input, got %v", report.Outcomes[1].Err)
	}

	lot := report.Outcomes[2]
	if lot.Err != nil {
		t.Fatalf("lot-7: %v", lot.Err)
	}
	if lot.Estimate.Result.EstimatedMaxRooms != 104 {
		t.Errorf("lot-7 rooms = %d, want 104", lot.Estimate.Result.EstimatedMaxRooms)
	}
	if lot.Estimate.LandAreaSource != estimate.LandAreaFromOverride {
		t.Errorf("lot-7 land area source = %q", lot.Estimate.LandAreaSource)
	}

	if !errors.IsType(report.Outcomes[3].Err, errors.TypeNotFound) {
		t.Errorf("nowhere: expected not found, got %v", report.Outcomes[3].Err)
	}
}

func TestRunWithoutDataset(t *testing.T) {
	report := Run(parseBatch(t), estimate.NewEstimator(0, nil), nil)

	if report.Outcomes[0].Err != nil {
		t.Errorf("manual scenario should not need a dataset: %v", report.Outcomes[0].Err)
	}
	if !errors.IsType(report.Outcomes[2].Err, errors.TypeDataSource) {
		t.Errorf("site scenario without dataset: got %v", report.Outcomes[2].Err)
	}
}

func TestRunRejectsMixedScenario(t *testing.T) {
	f, err := Parse("mixed.hcl", []byte(`
scenario "mixed" {
  site       = "Lot 7"
  land_area  = 900
  efficiency = 0.8
  room_size  = 25
}
scenario "override" {
  land_area          = 900
  plot_ratio         = 2
  land_area_override = 100
  efficiency         = 0.8
  room_size          = 25
}
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	report := Run(f, estimate.NewEstimator(0, nil), nil)
	for _, o := range report.Outcomes {
		if !errors.IsType(o.Err, errors.TypeValidation) {
			t.Errorf("%s: expected validation error, got %v", o.Name, o.Err)
		}
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.hcl")
	if err := os.WriteFile(path, []byte(batch), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(f.Scenarios) != 4 {
		t.Errorf("scenarios = %d", len(f.Scenarios))
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.hcl")); !errors.IsType(err, errors.TypeDataSource) {
		t.Errorf("missing file: got %v", err)
	}
}
