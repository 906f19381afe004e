// Package cmd - site commands
package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"

	"hotel-capacity/core/estimate"
	"hotel-capacity/core/output"
	"hotel-capacity/core/site"
)

var (
	datasetPath string

	siteOverride   float64
	siteEfficiency float64
	siteRoomSize   float64
	siteFormat     string
	siteReportOut  string
)

// siteCmd groups the dataset-backed commands
var siteCmd = &cobra.Command{
	Use:   "site",
	Short: "Work with sites from a planning dataset",
	Long: `Browse a GeoJSON planning dataset and estimate capacity for its sites.

Each feature of the dataset is one site. Land area, plot ratio and height
limit are read from its properties; names of those properties are set in
the dataset section of the config.`,
}

var siteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the sites of the dataset",
	Args:  cobra.NoArgs,
	RunE:  runSiteList,
}

var siteEstimateCmd = &cobra.Command{
	Use:   "estimate NAME",
	Short: "Estimate capacity for a dataset site",
	Long: `Estimate capacity for the named site. The dataset supplies land area,
plot ratio and height limit. Sites with no recorded land area need
--land-area-override.

Examples:
  hotelcap site estimate "Harbour Point" --dataset sites.geojson
  hotelcap site estimate "Lot 7" --dataset sites.geojson --land-area-override 1200
  hotelcap site estimate "Lot 7" --land-area-override 1200 --report-out reports/`,
	Args: cobra.ExactArgs(1),
	RunE: runSiteEstimate,
}

var sitePreviewCmd = &cobra.Command{
	Use:   "preview NAME",
	Short: "Print the site footprint as a GeoJSON FeatureCollection",
	Args:  cobra.ExactArgs(1),
	RunE:  runSitePreview,
}

func init() {
	siteCmd.PersistentFlags().StringVar(&datasetPath, "dataset", "", "GeoJSON planning dataset (default from config dataset.path)")

	d := estimate.DefaultSiteForm("")
	siteEstimateCmd.Flags().Float64Var(&siteOverride, "land-area-override", 0, "land area in square meters for sites the dataset has none for")
	siteEstimateCmd.Flags().Float64Var(&siteEfficiency, "efficiency", d.EfficiencyFactor, "usable share of gross floor area (0.6-0.95)")
	siteEstimateCmd.Flags().Float64Var(&siteRoomSize, "room-size", d.AvgRoomSizeSqm, "average room size in square meters (20-50)")
	siteEstimateCmd.Flags().StringVarP(&siteFormat, "format", "f", "", "output format (cli, text, json, markdown)")
	siteEstimateCmd.Flags().StringVar(&siteReportOut, "report-out", "", "also write the text report to this file or directory")

	siteCmd.AddCommand(siteListCmd)
	siteCmd.AddCommand(siteEstimateCmd)
	siteCmd.AddCommand(sitePreviewCmd)
}

func runSiteList(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(datasetPath)
	if err != nil {
		return err
	}

	w := newWriter(cmd.OutOrStdout())
	w.Header(fmt.Sprintf("Sites in %s", ds.Source()))
	for _, name := range ds.Names() {
		w.Println("  %s", name)
		if rec, err := ds.Resolve(name); err == nil && site.NeedsLandArea(rec) {
			w.Debug("%s has no land area; estimates need --land-area-override", name)
		}
	}
	w.Println("")
	w.Info("%d sites (%d rows)", len(ds.Names()), ds.Len())
	for _, dup := range ds.Duplicates() {
		w.Warning("%q appears more than once; the first row is used", dup)
	}
	return nil
}

func runSiteEstimate(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(datasetPath)
	if err != nil {
		return err
	}

	form := estimate.DefaultSiteForm(args[0])
	form.EfficiencyFactor = siteEfficiency
	form.AvgRoomSizeSqm = siteRoomSize
	if cmd.Flags().Changed("land-area-override") {
		v := siteOverride
		form.LandAreaOverrideSqm = &v
	}

	est, err := newEstimator().Site(ds, form)
	if err != nil {
		return err
	}
	if err := render(cmd.OutOrStdout(), siteFormat, est); err != nil {
		return err
	}

	if siteReportOut != "" {
		path, err := writeReport(siteReportOut, est)
		if err != nil {
			return err
		}
		newWriter(cmd.ErrOrStderr()).Success("Report written to %s", path)
	}
	return nil
}

// writeReport writes the text report to dest. A directory dest receives the
// report under its default file name.
func writeReport(dest string, est *estimate.Estimate) (string, error) {
	if info, err := os.Stat(dest); err == nil && info.IsDir() {
		dest = filepath.Join(dest, output.ReportFilename(est))
	}

	var buf bytes.Buffer
	if err := (output.TextFormatter{}).Render(&buf, est); err != nil {
		return "", err
	}
	if err := os.WriteFile(dest, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return dest, nil
}

func runSitePreview(cmd *cobra.Command, args []string) error {
	ds, err := loadDataset(datasetPath)
	if err != nil {
		return err
	}

	preview, err := ds.Preview(args[0])
	if err != nil {
		return err
	}

	fc := preview.FeatureCollection()
	fc.ExtraMembers = geojson.Properties{
		"center":            preview.Center,
		"geodesic_area_sqm": preview.GeodesicAreaSqm,
	}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
