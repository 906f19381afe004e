package cmd

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"hotel-capacity/core/estimate"
	"hotel-capacity/core/output"
	"hotel-capacity/core/site"
	"hotel-capacity/core/ui"
	"hotel-capacity/internal/config"
	"hotel-capacity/internal/logging"
	"hotel-capacity/internal/metrics"
)

func newEstimator() *estimate.Estimator {
	return estimate.NewEstimator(config.Get().Calculator.StoreyHeightM, logging.Logger)
}

// newWriter returns a UI writer on out; --verbose turns on debug lines
func newWriter(out io.Writer) *ui.Writer {
	w := ui.NewWriter(out, config.Get().Output.NoColor)
	if verbose {
		w.SetVerbosity(2)
	}
	return w
}

// datasetFields maps the configured attribute names onto the site package
func datasetFields(c config.DatasetConfig) site.Fields {
	return site.Fields{
		Name:      c.NameField,
		Area:      c.AreaField,
		PlotRatio: c.PlotRatioField,
		MaxHeight: c.HeightField,
	}
}

// loadDataset loads the dataset at path, falling back to the configured path
func loadDataset(path string) (*site.Dataset, error) {
	cfg := config.Get()
	if path == "" {
		path = cfg.Dataset.Path
	}
	if path == "" {
		return nil, fmt.Errorf("no dataset given; pass --dataset or set dataset.path")
	}

	ds, err := site.Load(path, datasetFields(cfg.Dataset))
	if err != nil {
		return nil, err
	}
	metrics.DatasetSites.Set(float64(len(ds.Names())))
	logging.Debug("dataset loaded",
		zap.String("path", path),
		zap.Int("sites", ds.Len()),
		zap.Int("duplicates", len(ds.Duplicates())),
	)
	return ds, nil
}

// render writes est in format, or in the configured default when format is empty
func render(w io.Writer, format string, est *estimate.Estimate) error {
	cfg := config.Get()
	if format == "" {
		format = cfg.Output.DefaultFormat
	}
	f, err := output.DefaultRegistry(cfg.Output.NoColor).Get(output.Format(format))
	if err != nil {
		return err
	}
	return f.Render(w, est)
}
