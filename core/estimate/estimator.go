package estimate

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"hotel-capacity/core/capacity"
	"hotel-capacity/core/site"
	"hotel-capacity/internal/errors"
	"hotel-capacity/internal/metrics"
)

// Variant identifies which estimator produced an Estimate
type Variant string

const (
	VariantManual Variant = "manual"
	VariantSite   Variant = "site"
)

// Land area sources of a site estimate
const (
	LandAreaFromDataset  = "dataset"
	LandAreaFromOverride = "override"
)

// Estimate is one completed calculation. It is never modified after creation;
// a recalculation produces a new Estimate.
type Estimate struct {
	Variant        Variant         `json:"variant"`
	SiteName       string          `json:"site_name,omitempty"`
	LandAreaSource string          `json:"land_area_source,omitempty"`
	Input          capacity.Input  `json:"input"`
	Result         capacity.Result `json:"result"`
	StoreyHeightM  float64         `json:"storey_height_m"`
	Assumptions    []string        `json:"assumptions,omitempty"`
	CalculatedAt   time.Time       `json:"calculated_at"`
}

// Estimator runs both calculator variants
type Estimator struct {
	calc   *capacity.Calculator
	logger *zap.Logger
	now    func() time.Time
}

// NewEstimator creates an estimator assuming storeyHeightM per level
func NewEstimator(storeyHeightM float64, logger *zap.Logger) *Estimator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if storeyHeightM == 0 {
		storeyHeightM = capacity.DefaultStoreyHeightM
	}
	return &Estimator{
		calc:   &capacity.Calculator{StoreyHeightM: storeyHeightM},
		logger: logger,
		now:    time.Now,
	}
}

// Manual estimates capacity from a manual form
func (e *Estimator) Manual(form ManualForm) (*Estimate, error) {
	in, err := form.Input()
	if err != nil {
		return nil, e.fail(VariantManual, err)
	}

	result, err := e.calc.Calculate(in)
	if err != nil {
		return nil, e.fail(VariantManual, err)
	}

	return e.complete(&Estimate{
		Variant: VariantManual,
		Input:   in,
		Result:  result,
	}), nil
}

// Site estimates capacity for a dataset site. A nil dataset means the
// dataset failed to load and no calculation is attempted.
func (e *Estimator) Site(ds *site.Dataset, form SiteForm) (*Estimate, error) {
	if ds == nil {
		return nil, e.fail(VariantSite, errors.DataSource("no site dataset is loaded", nil))
	}
	if err := form.Validate(); err != nil {
		return nil, e.fail(VariantSite, err)
	}

	rec, err := ds.Resolve(form.SiteName)
	if err != nil {
		return nil, e.fail(VariantSite, err)
	}

	landArea, err := site.ResolveLandArea(rec, form.LandAreaOverrideSqm)
	if err != nil {
		return nil, e.fail(VariantSite, err)
	}
	source := LandAreaFromDataset
	if site.NeedsLandArea(rec) {
		source = LandAreaFromOverride
	}

	if rec.PlotRatio == nil {
		return nil, e.fail(VariantSite, errors.MissingInput(capacity.FieldPlotRatio,
			"site "+rec.Name+" has no plot ratio in the dataset").WithContext("site", rec.Name))
	}

	in := capacity.Input{
		LandAreaSqm:      landArea,
		PlotRatio:        *rec.PlotRatio,
		EfficiencyFactor: form.EfficiencyFactor,
		AvgRoomSizeSqm:   form.AvgRoomSizeSqm,
		HeightLimitM:     rec.MaxBuildingHeightM,
	}

	result, err := e.calc.Calculate(in)
	if err != nil {
		return nil, e.fail(VariantSite, fmt.Errorf("site %s: %w", rec.Name, err))
	}

	return e.complete(&Estimate{
		Variant:        VariantSite,
		SiteName:       rec.Name,
		LandAreaSource: source,
		Input:          in,
		Result:         result,
	}), nil
}

// Calculate runs the calculator on an already-built input
func (e *Estimator) Calculate(in capacity.Input) (*Estimate, error) {
	result, err := e.calc.Calculate(in)
	if err != nil {
		return nil, e.fail(VariantManual, err)
	}
	return e.complete(&Estimate{
		Variant: VariantManual,
		Input:   in,
		Result:  result,
	}), nil
}

func (e *Estimator) complete(est *Estimate) *Estimate {
	est.StoreyHeightM = e.calc.StoreyHeightM
	est.CalculatedAt = e.now().UTC()
	if est.Result.HasLevels() {
		est.Assumptions = append(est.Assumptions,
			fmt.Sprintf("max levels = min(floor(height / %.2f m storey), floor(plot ratio x 2)); rough heuristic", est.StoreyHeightM))
	} else {
		est.Assumptions = append(est.Assumptions, "no height limit known; max levels not estimated")
	}

	metrics.CalculationsCompleted.WithLabelValues(string(est.Variant)).Inc()
	metrics.EstimatedRooms.WithLabelValues(string(est.Variant)).Observe(float64(est.Result.EstimatedMaxRooms))

	e.logger.Info("capacity calculated",
		zap.String("variant", string(est.Variant)),
		zap.String("site", est.SiteName),
		zap.String("gfa_sqm", est.Result.GrossFloorAreaSqm.StringFixed(2)),
		zap.String("nfa_sqm", est.Result.NetFloorAreaSqm.StringFixed(2)),
		zap.Int("max_rooms", est.Result.EstimatedMaxRooms),
	)
	return est
}

func (e *Estimator) fail(variant Variant, err error) error {
	errType := errors.TypeInternal
	if de, ok := errors.As(err); ok {
		errType = de.Type
	}
	metrics.CalculationsFailed.WithLabelValues(string(variant), string(errType)).Inc()
	e.logger.Warn("capacity calculation rejected",
		zap.String("variant", string(variant)),
		zap.String("error_type", string(errType)),
		zap.Error(err),
	)
	return err
}
