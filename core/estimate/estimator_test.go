package estimate

import (
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"hotel-capacity/core/capacity"
	"hotel-capacity/core/site"
	"hotel-capacity/internal/errors"
)

const planningData = `{"type":"FeatureCollection","features":[
	{"type":"Feature","properties":{"site_name":"Lot 7","site_area":0,"plot_ratio":2.5,"max_height":28},"geometry":null},
	{"type":"Feature","properties":{"site_name":"Quay","site_area":2000,"plot_ratio":4,"max_height":null},"geometry":null},
	{"type":"Feature","properties":{"site_name":"Verge","site_area":500,"plot_ratio":null,"max_height":20},"geometry":null}
]}`

func newTestEstimator(t *testing.T) (*Estimator, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	e := NewEstimator(capacity.DefaultStoreyHeightM, zap.New(core))
	e.now = func() time.Time { return time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC) }
	return e, logs
}

func planningDataset(t *testing.T) *site.Dataset {
	t.Helper()
	ds, err := site.Parse([]byte(planningData), "test", site.Fields{})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return ds
}

func TestManualDefaultForm(t *testing.T) {
	e, logs := newTestEstimator(t)

	est, err := e.Manual(DefaultManualForm())
	if err != nil {
		t.Fatalf("Manual: %v", err)
	}

	if est.Variant != VariantManual {
		t.Errorf("variant = %s", est.Variant)
	}
	if est.Input.EfficiencyFactor != 0.8 {
		t.Errorf("efficiency = %v, want 0.8", est.Input.EfficiencyFactor)
	}
	if got := est.Result.GrossFloorAreaSqm.StringFixed(2); got != "3000.00" {
		t.Errorf("GFA = %s", got)
	}
	if got := est.Result.NetFloorAreaSqm.StringFixed(2); got != "2400.00" {
		t.Errorf("usable area = %s", got)
	}
	if est.Result.EstimatedMaxRooms != 96 {
		t.Errorf("rooms = %d, want 96", est.Result.EstimatedMaxRooms)
	}
	if !est.CalculatedAt.Equal(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("calculated at = %v", est.CalculatedAt)
	}
	if logs.FilterMessage("capacity calculated").Len() != 1 {
		t.Errorf("expected one calculation log entry, got %d", logs.Len())
	}
}

func TestManualFormRanges(t *testing.T) {
	e, logs := newTestEstimator(t)

	tests := []struct {
		name  string
		edit  func(f *ManualForm)
		field string
	}{
		{"efficiency below slider", func(f *ManualForm) { f.EfficiencyPercent = 45 }, FieldEfficiencyPercent},
		{"efficiency above slider", func(f *ManualForm) { f.EfficiencyPercent = 101 }, FieldEfficiencyPercent},
		{"room size too small", func(f *ManualForm) { f.AvgRoomSizeSqm = 19 }, capacity.FieldAvgRoomSize},
		{"room size too large", func(f *ManualForm) { f.AvgRoomSizeSqm = 51 }, capacity.FieldAvgRoomSize},
		{"negative land area", func(f *ManualForm) { f.LandAreaSqm = -1 }, capacity.FieldLandArea},
		{"zero plot ratio", func(f *ManualForm) { f.PlotRatio = 0 }, capacity.FieldPlotRatio},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			form := DefaultManualForm()
			tt.edit(&form)
			_, err := e.Manual(form)
			de, ok := errors.As(err)
			if !ok || de.Type != errors.TypeValidation || de.Field != tt.field {
				t.Errorf("expected validation error on %s, got %v", tt.field, err)
			}
		})
	}

	if logs.FilterMessage("capacity calculation rejected").Len() != len(tests) {
		t.Errorf("every rejection should be logged")
	}
}

func TestSiteWithOverride(t *testing.T) {
	e, _ := newTestEstimator(t)
	ds := planningDataset(t)

	form := SiteForm{
		SiteName:            "Lot 7",
		LandAreaOverrideSqm: capacity.Float(1200),
		EfficiencyFactor:    0.8,
		AvgRoomSizeSqm:      23,
	}
	est, err := e.Site(ds, form)
	if err != nil {
		t.Fatalf("Site: %v", err)
	}

	if est.SiteName != "Lot 7" || est.LandAreaSource != LandAreaFromOverride {
		t.Errorf("site = %q source = %q", est.SiteName, est.LandAreaSource)
	}
	if got := est.Result.GrossFloorAreaSqm.StringFixed(2); got != "3000.00" {
		t.Errorf("GFA = %s", got)
	}
	if got := est.Result.NetFloorAreaSqm.StringFixed(2); got != "2400.00" {
		t.Errorf("NFA = %s", got)
	}
	if est.Result.MaxLevels == nil || *est.Result.MaxLevels != 5 {
		t.Errorf("levels = %v, want 5", est.Result.MaxLevels)
	}
	if est.Result.EstimatedMaxRooms != 104 {
		t.Errorf("rooms = %d, want 104", est.Result.EstimatedMaxRooms)
	}
}

func TestSiteDatasetAreaAndUnknownHeight(t *testing.T) {
	e, _ := newTestEstimator(t)

	est, err := e.Site(planningDataset(t), DefaultSiteForm("Quay"))
	if err != nil {
		t.Fatalf("Site: %v", err)
	}
	if est.LandAreaSource != LandAreaFromDataset || est.Input.LandAreaSqm != 2000 {
		t.Errorf("expected dataset land area 2000, got %v from %s", est.Input.LandAreaSqm, est.LandAreaSource)
	}
	if est.Result.HasLevels() {
		t.Errorf("levels should be unknown without a height limit")
	}
	// 2000 * 4 * 0.8 / 25
	if est.Result.EstimatedMaxRooms != 256 {
		t.Errorf("rooms = %d, want 256", est.Result.EstimatedMaxRooms)
	}
}

func TestSiteFailures(t *testing.T) {
	e, _ := newTestEstimator(t)
	ds := planningDataset(t)

	tests := []struct {
		name     string
		ds       *site.Dataset
		form     SiteForm
		wantType errors.Type
	}{
		{"dataset not loaded", nil, DefaultSiteForm("Lot 7"), errors.TypeDataSource},
		{"unknown site", ds, DefaultSiteForm("X"), errors.TypeNotFound},
		{"missing area without override", ds, DefaultSiteForm("Lot 7"), errors.TypeMissingInput},
		{"missing plot ratio", ds, DefaultSiteForm("Verge"), errors.TypeMissingInput},
		{"no site selected", ds, DefaultSiteForm(""), errors.TypeValidation},
		{"efficiency outside slider", ds, SiteForm{SiteName: "Quay", EfficiencyFactor: 0.5, AvgRoomSizeSqm: 25}, errors.TypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			est, err := e.Site(tt.ds, tt.form)
			if est != nil {
				t.Errorf("no estimate expected on failure")
			}
			if !errors.IsType(err, tt.wantType) {
				t.Errorf("expected %s, got %v", tt.wantType, err)
			}
		})
	}
}
