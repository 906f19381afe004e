package output

import (
	"encoding/json"
	"fmt"
	"io"

	"hotel-capacity/core/estimate"
	"hotel-capacity/core/ui"
)

// TextFormatter writes the plain-text report, one "Label: value [unit]" line each
type TextFormatter struct{}

// Format implements Formatter
func (TextFormatter) Format() Format { return FormatText }

// Render implements Formatter
func (TextFormatter) Render(w io.Writer, est *estimate.Estimate) error {
	for _, l := range Lines(est) {
		if _, err := fmt.Fprintln(w, l.String()); err != nil {
			return err
		}
	}
	return nil
}

// JSONFormatter writes the estimate as JSON
type JSONFormatter struct {
	Indent bool
}

// Format implements Formatter
func (JSONFormatter) Format() Format { return FormatJSON }

// Render implements Formatter
func (f JSONFormatter) Render(w io.Writer, est *estimate.Estimate) error {
	enc := json.NewEncoder(w)
	if f.Indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(est)
}

// MarkdownFormatter writes a markdown table
type MarkdownFormatter struct{}

// Format implements Formatter
func (MarkdownFormatter) Format() Format { return FormatMarkdown }

// Render implements Formatter
func (MarkdownFormatter) Render(w io.Writer, est *estimate.Estimate) error {
	title := "Hotel Capacity Estimate"
	if est.SiteName != "" {
		title += ": " + est.SiteName
	}
	if _, err := fmt.Fprintf(w, "## %s\n\n| Metric | Value |\n|---|---|\n", title); err != nil {
		return err
	}
	for _, l := range Lines(est) {
		value := l.Value
		if l.Unit != "" && l.Value != NotAvailable {
			value += " " + l.Unit
		}
		if _, err := fmt.Fprintf(w, "| %s | %s |\n", l.Label, value); err != nil {
			return err
		}
	}
	for _, a := range est.Assumptions {
		if _, err := fmt.Fprintf(w, "\n> %s\n", a); err != nil {
			return err
		}
	}
	return nil
}

// CLIFormatter renders a colored terminal summary
type CLIFormatter struct {
	NoColor bool
}

// Format implements Formatter
func (CLIFormatter) Format() Format { return FormatCLI }

// Render implements Formatter
func (f CLIFormatter) Render(w io.Writer, est *estimate.Estimate) error {
	uw := ui.NewWriter(w, f.NoColor)

	title := "Manual Capacity Estimate"
	if est.Variant == estimate.VariantSite {
		title = "Site Capacity Estimate: " + est.SiteName
	}

	summary := uw.NewCapacitySummary(title)
	summary.MaxRooms = est.Result.EstimatedMaxRooms
	summary.MaxLevels = NotAvailable
	if est.Result.MaxLevels != nil {
		summary.MaxLevels = fmt.Sprintf("%d", *est.Result.MaxLevels)
	}
	summary.Notes = est.Assumptions
	summary.Render()

	uw.Println("")
	table := uw.NewTable("Metric", "Value")
	for _, l := range Lines(est) {
		value := l.Value
		if l.Unit != "" && l.Value != NotAvailable {
			value += " " + l.Unit
		}
		table.AddRow(l.Label, value)
	}
	table.Render()

	if est.LandAreaSource == estimate.LandAreaFromOverride {
		uw.Println("")
		uw.Warning("land area taken from manual override; the dataset has none for this site")
	}
	return nil
}
