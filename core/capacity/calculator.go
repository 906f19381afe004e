package capacity

import (
	"math"

	"github.com/shopspring/decimal"

	"hotel-capacity/internal/errors"
)

var (
	two      = decimal.NewFromInt(2)
	maxCount = decimal.NewFromInt(math.MaxInt)
)

// Calculator chains the capacity formulas under a fixed storey height.
type Calculator struct {
	StoreyHeightM float64
}

// NewCalculator creates a calculator with the default storey height
func NewCalculator() *Calculator {
	return &Calculator{StoreyHeightM: DefaultStoreyHeightM}
}

// Calculate derives the full Result for in.
func (c *Calculator) Calculate(in Input) (Result, error) {
	gross, err := ComputeAreas(in.LandAreaSqm, in.PlotRatio)
	if err != nil {
		return Result{}, err
	}

	net, err := ComputeUsableArea(gross, in.EfficiencyFactor)
	if err != nil {
		return Result{}, err
	}

	rooms, err := ComputeMaxRooms(net, in.AvgRoomSizeSqm)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		GrossFloorAreaSqm: gross,
		NetFloorAreaSqm:   net,
		EstimatedMaxRooms: rooms,
	}

	storey := c.StoreyHeightM
	if storey == 0 {
		storey = DefaultStoreyHeightM
	}
	levels, known, err := ComputeMaxLevels(in.HeightLimitM, in.PlotRatio, storey)
	if err != nil {
		return Result{}, err
	}
	if known {
		result.MaxLevels = &levels
	}

	return result, nil
}

// ComputeAreas returns the gross floor area: land area × plot ratio.
func ComputeAreas(landAreaSqm, plotRatio float64) (decimal.Decimal, error) {
	if err := requirePositive(FieldLandArea, landAreaSqm); err != nil {
		return decimal.Zero, err
	}
	if err := requirePositive(FieldPlotRatio, plotRatio); err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromFloat(landAreaSqm).Mul(decimal.NewFromFloat(plotRatio)), nil
}

// ComputeUsableArea returns the net floor area: gross × efficiency factor,
// where the factor lies in (0,1].
func ComputeUsableArea(grossFloorAreaSqm decimal.Decimal, efficiencyFactor float64) (decimal.Decimal, error) {
	if grossFloorAreaSqm.IsNegative() {
		return decimal.Zero, errors.Validation(FieldGrossFloorArea, "must not be negative")
	}
	if err := requireFraction(FieldEfficiencyFactor, efficiencyFactor); err != nil {
		return decimal.Zero, err
	}
	return grossFloorAreaSqm.Mul(decimal.NewFromFloat(efficiencyFactor)), nil
}

// ComputeMaxRooms returns floor(net / average room size).
func ComputeMaxRooms(netFloorAreaSqm decimal.Decimal, avgRoomSizeSqm float64) (int, error) {
	if netFloorAreaSqm.IsNegative() {
		return 0, errors.Validation(FieldNetFloorArea, "must not be negative")
	}
	if err := requirePositive(FieldAvgRoomSize, avgRoomSizeSqm); err != nil {
		return 0, err
	}
	return floorDiv(FieldNetFloorArea, netFloorAreaSqm, decimal.NewFromFloat(avgRoomSizeSqm))
}

// ComputeMaxLevels estimates the number of levels as
// min(floor(height / storey), floor(plotRatio × 2)).
//
// The plot-ratio term is a rough proxy cap, not a regulatory rule. A nil or
// zero height limit means the level count is unknown and known is false.
func ComputeMaxLevels(heightLimitM *float64, plotRatio, storeyHeightM float64) (levels int, known bool, err error) {
	if heightLimitM == nil || *heightLimitM == 0 {
		return 0, false, nil
	}
	if err := requirePositive(FieldHeightLimit, *heightLimitM); err != nil {
		return 0, false, err
	}
	if err := requirePositive(FieldPlotRatio, plotRatio); err != nil {
		return 0, false, err
	}
	if err := requirePositive(FieldStoreyHeight, storeyHeightM); err != nil {
		return 0, false, err
	}

	byHeight, err := floorDiv(FieldHeightLimit, decimal.NewFromFloat(*heightLimitM), decimal.NewFromFloat(storeyHeightM))
	if err != nil {
		return 0, false, err
	}
	byRatio, err := toCount(FieldPlotRatio, decimal.NewFromFloat(plotRatio).Mul(two).Floor())
	if err != nil {
		return 0, false, err
	}

	return min(byHeight, byRatio), true, nil
}

// EfficiencyFromPercent converts a percentage such as 80 into the fraction 0.8.
func EfficiencyFromPercent(percent float64) (float64, error) {
	if math.IsNaN(percent) || math.IsInf(percent, 0) || percent <= 0 || percent > 100 {
		return 0, errors.Validationf(FieldEfficiencyFactor, "percentage must be in (0, 100], got %v", percent)
	}
	return decimal.NewFromFloat(percent).Div(decimal.NewFromInt(100)).InexactFloat64(), nil
}

// floorDiv divides non-negative n by positive d, truncating to an integer
// without intermediate rounding. A quotient beyond the int range is reported
// against field.
func floorDiv(field string, n, d decimal.Decimal) (int, error) {
	q, _ := n.QuoRem(d, 0)
	return toCount(field, q)
}

func toCount(field string, q decimal.Decimal) (int, error) {
	if q.GreaterThan(maxCount) {
		return 0, errors.Validationf(field, "result %s is too large to count", q.String())
	}
	return int(q.IntPart()), nil
}

func requirePositive(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.Validation(field, "must be a finite number")
	}
	if v <= 0 {
		return errors.Validationf(field, "must be greater than zero, got %v", v)
	}
	return nil
}

func requireFraction(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.Validation(field, "must be a finite number")
	}
	if v <= 0 || v > 1 {
		return errors.Validationf(field, "must be in (0, 1], got %v", v)
	}
	return nil
}
