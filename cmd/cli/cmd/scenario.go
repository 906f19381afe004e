// Package cmd - scenario command
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hotel-capacity/core/estimate"
	"hotel-capacity/core/output"
	"hotel-capacity/core/scenario"
	"hotel-capacity/core/site"
	"hotel-capacity/internal/config"
	"hotel-capacity/internal/logging"
)

var (
	scenarioDataset string
	scenarioFormat  string
)

// scenarioCmd evaluates a batch of scenarios from an HCL file
var scenarioCmd = &cobra.Command{
	Use:   "scenario FILE",
	Short: "Evaluate a batch of scenarios from an HCL file",
	Long: `Evaluate every scenario block of an HCL file. Scenarios naming a site are
estimated against the dataset; the rest are manual estimates. A failing
scenario is reported and the batch carries on.

Example file:
  scenario "tower-a" {
    land_area    = 1000
    plot_ratio   = 3
    efficiency   = 0.8
    room_size    = 25
    height_limit = 35
  }

  scenario "lot-7" {
    site               = "Lot 7"
    land_area_override = 1200
    efficiency         = 0.8
    room_size          = 23
  }`,
	Args: cobra.ExactArgs(1),
	RunE: runScenario,
}

func init() {
	scenarioCmd.Flags().StringVar(&scenarioDataset, "dataset", "", "GeoJSON planning dataset for site scenarios (default from config dataset.path)")
	scenarioCmd.Flags().StringVarP(&scenarioFormat, "format", "f", "cli", "output format (cli, json)")
}

type scenarioResult struct {
	Name     string             `json:"name"`
	Estimate *estimate.Estimate `json:"estimate,omitempty"`
	Error    string             `json:"error,omitempty"`
}

func runScenario(cmd *cobra.Command, args []string) error {
	file, err := scenario.LoadFile(args[0])
	if err != nil {
		return err
	}

	// Site scenarios without a dataset fail individually
	var ds *site.Dataset
	if scenarioDataset != "" || config.Get().Dataset.Path != "" {
		ds, err = loadDataset(scenarioDataset)
		if err != nil {
			logging.Warn("dataset unavailable; site scenarios will fail", zap.Error(err))
			ds = nil
		}
	}

	report := scenario.Run(file, newEstimator(), ds)
	logging.Debug("scenarios evaluated", zap.String("file", args[0]), zap.Int("count", len(report.Outcomes)), zap.Int("failed", report.Failed()))

	switch scenarioFormat {
	case "json":
		results := make([]scenarioResult, 0, len(report.Outcomes))
		for _, o := range report.Outcomes {
			r := scenarioResult{Name: o.Name, Estimate: o.Estimate}
			if o.Err != nil {
				r.Error = o.Err.Error()
			}
			results = append(results, r)
		}
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
	case "cli":
		printScenarioTable(cmd, report)
	default:
		return fmt.Errorf("unknown scenario output format %q (available: cli, json)", scenarioFormat)
	}

	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%d of %d scenarios failed", n, len(report.Outcomes))
	}
	return nil
}

func printScenarioTable(cmd *cobra.Command, report *scenario.Report) {
	w := newWriter(cmd.OutOrStdout())
	w.Header("Scenario Results")

	table := w.NewTable("Scenario", "Variant", "GFA (sqm)", "NFA (sqm)", "Max Levels", "Max Rooms")
	for _, o := range report.Outcomes {
		if o.Err != nil {
			table.AddRow(o.Name, "-", "-", "-", "-", "error")
			continue
		}
		res := o.Estimate.Result
		levels := output.NotAvailable
		if res.MaxLevels != nil {
			levels = fmt.Sprintf("%d", *res.MaxLevels)
		}
		table.AddRow(
			o.Name,
			string(o.Estimate.Variant),
			res.GrossFloorAreaSqm.StringFixed(2),
			res.NetFloorAreaSqm.StringFixed(2),
			levels,
			fmt.Sprintf("%d", res.EstimatedMaxRooms),
		)
	}
	table.Render()
	w.Println("")

	if report.Failed() == 0 {
		w.Success("%d scenarios evaluated", len(report.Outcomes))
		return
	}
	w.SubHeader("Failures")
	for _, o := range report.Outcomes {
		if o.Err != nil {
			w.Error("%v", o.Err)
		}
	}
}
