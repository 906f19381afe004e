// Package output provides output formatting for capacity estimates.
// This package produces human and machine-readable outputs.
package output

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"hotel-capacity/core/estimate"
	"hotel-capacity/internal/errors"
)

// Format represents output format type
type Format string

const (
	// FormatCLI is a human-readable terminal summary
	FormatCLI Format = "cli"

	// FormatText is the plain-text downloadable report
	FormatText Format = "text"

	// FormatJSON is machine-readable JSON
	FormatJSON Format = "json"

	// FormatMarkdown is a markdown report
	FormatMarkdown Format = "markdown"
)

// NotAvailable is printed for values that are unknown
const NotAvailable = "N/A"

// Formatter produces output in a specific format
type Formatter interface {
	// Format returns the format type
	Format() Format

	// Render produces output for the given estimate
	Render(w io.Writer, est *estimate.Estimate) error
}

// Registry manages formatter registration
type Registry struct {
	formatters map[Format]Formatter
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{formatters: make(map[Format]Formatter)}
}

// DefaultRegistry returns a registry holding every built-in formatter
func DefaultRegistry(noColor bool) *Registry {
	r := NewRegistry()
	r.Register(TextFormatter{})
	r.Register(JSONFormatter{Indent: true})
	r.Register(MarkdownFormatter{})
	r.Register(CLIFormatter{NoColor: noColor})
	return r
}

// Register adds a formatter, replacing any formatter of the same format
func (r *Registry) Register(f Formatter) {
	r.formatters[f.Format()] = f
}

// Get returns the formatter for a format
func (r *Registry) Get(format Format) (Formatter, error) {
	f, ok := r.formatters[format]
	if !ok {
		return nil, errors.Validationf("format", "unknown output format %q (available: %s)",
			format, strings.Join(r.names(), ", "))
	}
	return f, nil
}

func (r *Registry) names() []string {
	names := make([]string, 0, len(r.formatters))
	for f := range r.formatters {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// Line is one labeled value of a report
type Line struct {
	Label string
	Value string
	Unit  string
}

// String renders "Label: value [unit]"
func (l Line) String() string {
	if l.Unit == "" || l.Value == NotAvailable {
		return l.Label + ": " + l.Value
	}
	return l.Label + ": " + l.Value + " " + l.Unit
}

// Lines returns the report lines of an estimate in their fixed order
func Lines(est *estimate.Estimate) []Line {
	in, res := est.Input, est.Result

	var lines []Line
	if est.Variant == estimate.VariantSite {
		lines = append(lines, Line{Label: "Site Name", Value: est.SiteName})
	}

	height := NotAvailable
	if in.HeightLimitM != nil && *in.HeightLimitM != 0 {
		height = fixed(*in.HeightLimitM)
	}
	levels := NotAvailable
	if res.MaxLevels != nil {
		levels = fmt.Sprintf("%d", *res.MaxLevels)
	}

	return append(lines,
		Line{Label: "Land Area", Value: fixed(in.LandAreaSqm), Unit: "sqm"},
		Line{Label: "Plot Ratio", Value: fixed(in.PlotRatio)},
		Line{Label: "Height Limit", Value: height, Unit: "m"},
		Line{Label: "Efficiency Factor", Value: fixed(in.EfficiencyFactor)},
		Line{Label: "Average Room Size", Value: fixed(in.AvgRoomSizeSqm), Unit: "sqm"},
		Line{Label: "GFA", Value: res.GrossFloorAreaSqm.StringFixed(2), Unit: "sqm"},
		Line{Label: "NFA", Value: res.NetFloorAreaSqm.StringFixed(2), Unit: "sqm"},
		Line{Label: "Max Levels", Value: levels},
		Line{Label: "Max Rooms", Value: fmt.Sprintf("%d", res.EstimatedMaxRooms)},
	)
}

var unsafeFilename = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// ReportFilename returns the download name of an estimate's text report
func ReportFilename(est *estimate.Estimate) string {
	if est.Variant != estimate.VariantSite {
		return "capacity_report.txt"
	}
	name := strings.Trim(unsafeFilename.ReplaceAllString(est.SiteName, "_"), "_")
	if name == "" {
		name = "site"
	}
	return name + "_capacity_report.txt"
}

func fixed(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
