// Package viz renders diagnostic plots for two-sample test results.
package viz

import (
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/stattest/pkg/errors"
)

// HistogramOption configures SaveNullDistribution.
type HistogramOption func(*histogramConfig)

type histogramConfig struct {
	title  string
	bins   int
	width  vg.Length
	height vg.Length
}

// WithTitle sets the plot title.
func WithTitle(title string) HistogramOption {
	return func(c *histogramConfig) {
		c.title = title
	}
}

// WithBins sets the number of histogram bins. Zero or negative picks a count
// based on the sample size.
func WithBins(n int) HistogramOption {
	return func(c *histogramConfig) {
		c.bins = n
	}
}

// WithSize sets the output dimensions.
func WithSize(width, height vg.Length) HistogramOption {
	return func(c *histogramConfig) {
		c.width = width
		c.height = height
	}
}

// SaveNullDistribution writes a histogram of the sampled null distribution
// with a vertical marker at the observed statistic. The output format follows
// the file extension of path (.png, .svg, .pdf, ...).
func SaveNullDistribution(path string, nullSamples []float64, observed float64, options ...HistogramOption) error {
	const op = "SaveNullDistribution"

	if len(nullSamples) == 0 {
		return errors.Wrap(errors.ErrEmptyData, op+": no null samples to plot")
	}
	if err := errors.CheckNumericalStability(op, nullSamples, 0); err != nil {
		return err
	}
	if err := errors.CheckScalar(op, observed, 0); err != nil {
		return err
	}

	cfg := histogramConfig{
		title:  "Null distribution",
		width:  6 * vg.Inch,
		height: 4 * vg.Inch,
	}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.bins <= 0 {
		cfg.bins = defaultBins(len(nullSamples))
	}

	p := plot.New()
	p.Title.Text = cfg.title
	p.X.Label.Text = "statistic"
	p.Y.Label.Text = "count"

	hist, err := plotter.NewHist(plotter.Values(nullSamples), cfg.bins)
	if err != nil {
		return errors.Wrap(err, "stattest: "+op+": histogram")
	}
	hist.FillColor = color.RGBA{R: 120, G: 160, B: 220, A: 255}
	p.Add(hist)

	var peak float64
	for _, bin := range hist.Bins {
		if bin.Weight > peak {
			peak = bin.Weight
		}
	}
	marker, err := plotter.NewLine(plotter.XYs{
		{X: observed, Y: 0},
		{X: observed, Y: peak},
	})
	if err != nil {
		return errors.Wrap(err, "stattest: "+op+": marker")
	}
	marker.Color = color.RGBA{R: 220, G: 60, B: 60, A: 255}
	marker.Width = vg.Points(1.5)
	p.Add(marker)
	p.Legend.Add("observed", marker)

	if err := p.Save(cfg.width, cfg.height, path); err != nil {
		return errors.Wrap(err, "stattest: "+op+": save")
	}
	return nil
}

func defaultBins(n int) int {
	bins := int(math.Sqrt(float64(n)))
	if bins < 10 {
		bins = 10
	}
	if bins > 50 {
		bins = 50
	}
	return bins
}
