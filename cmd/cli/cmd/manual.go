// Package cmd - manual command
package cmd

import (
	"github.com/spf13/cobra"

	"hotel-capacity/core/capacity"
	"hotel-capacity/core/estimate"
)

var (
	manualForm   = estimate.DefaultManualForm()
	manualHeight float64
	manualFormat string
)

// manualCmd estimates capacity from manually entered inputs
var manualCmd = &cobra.Command{
	Use:   "manual",
	Short: "Estimate capacity from manual inputs",
	Long: `Estimate the maximum number of hotel rooms from a land area, plot ratio,
efficiency and average room size. Max levels are estimated only when a
height limit is given.

Examples:
  hotelcap manual
  hotelcap manual --land-area 1500 --plot-ratio 3 --height-limit 35
  hotelcap manual --efficiency 75 --room-size 30 --format json`,
	Args: cobra.NoArgs,
	RunE: runManual,
}

func init() {
	d := estimate.DefaultManualForm()
	manualCmd.Flags().Float64Var(&manualForm.LandAreaSqm, "land-area", d.LandAreaSqm, "land area in square meters")
	manualCmd.Flags().Float64Var(&manualForm.PlotRatio, "plot-ratio", d.PlotRatio, "plot ratio (gross floor area / land area)")
	manualCmd.Flags().Float64Var(&manualForm.EfficiencyPercent, "efficiency", d.EfficiencyPercent, "usable share of gross floor area in percent (50-100)")
	manualCmd.Flags().Float64Var(&manualForm.AvgRoomSizeSqm, "room-size", d.AvgRoomSizeSqm, "average room size in square meters (20-50)")
	manualCmd.Flags().Float64Var(&manualHeight, "height-limit", 0, "building height limit in meters (0 = unknown)")
	manualCmd.Flags().StringVarP(&manualFormat, "format", "f", "", "output format (cli, text, json, markdown)")
}

func runManual(cmd *cobra.Command, args []string) error {
	form := manualForm
	form.HeightLimitM = nil
	if cmd.Flags().Changed("height-limit") {
		form.HeightLimitM = capacity.Float(manualHeight)
	}

	est, err := newEstimator().Manual(form)
	if err != nil {
		return err
	}
	return render(cmd.OutOrStdout(), manualFormat, est)
}
