package report

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/peekknuf/metastats/internal/bucket"
)

// PlotOptions labels the bar chart.
type PlotOptions struct {
	Title  string
	XLabel string
	YLabel string
	Width  vg.Length
	Height vg.Length
}

// DefaultPlotOptions matches the tag-count chart of the catalog report.
func DefaultPlotOptions() PlotOptions {
	return PlotOptions{
		XLabel: "Number of tags and categories",
		YLabel: "Number of datasets",
		Width:  6 * vg.Inch,
		Height: 4 * vg.Inch,
	}
}

// BarChart builds a bar chart with one bar per bucket.
func BarChart(counts *bucket.Counts, opts PlotOptions) (*plot.Plot, error) {
	if counts.Len() == 0 {
		return nil, errors.New("no buckets to plot")
	}
	values := make(plotter.Values, counts.Len())
	for i, v := range counts.Values() {
		values[i] = float64(v)
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = opts.YLabel
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(values, vg.Points(16))
	if err != nil {
		return nil, fmt.Errorf("bar chart: %w", err)
	}
	bars.LineStyle.Width = vg.Length(0)
	p.Add(bars)
	p.NominalX(counts.Names()...)
	return p, nil
}

// PlotPNG renders the counts as a bar chart and saves it to path. The image
// format follows the file extension.
func PlotPNG(path string, counts *bucket.Counts, opts PlotOptions) error {
	p, err := BarChart(counts, opts)
	if err != nil {
		return err
	}
	if opts.Width == 0 {
		opts.Width = DefaultPlotOptions().Width
	}
	if opts.Height == 0 {
		opts.Height = DefaultPlotOptions().Height
	}
	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("save plot %s: %w", path, err)
	}
	return nil
}
