package report

import (
	"fmt"
	"image/color"
	"io"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/claims.report/internal/claims"
)

var (
	barFill  = color.RGBA{R: 64, G: 120, B: 192, A: 255}
	histFill = color.RGBA{R: 90, G: 160, B: 120, A: 255}
)

// barChartPNG renders the display subset of an aggregation result as a bar
// chart and returns the PNG content. Horizontal orientation suits long
// category names (brands, regions); vertical suits short ordered buckets.
func barChartPNG(res *claims.Result, op claims.Op, title, valueLabel string, horizontal bool) (io.WriterTo, error) {
	var labels []string
	var values plotter.Values
	for _, row := range res.Top() {
		v, ok := row.Metrics[op]
		if !ok || !v.Valid {
			continue
		}
		labels = append(labels, strings.Join(row.Key, " / "))
		values = append(values, v.Float)
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("chart %q: no plottable values", title)
	}

	// Horizontal bar charts read top-down; reverse so the first row lands on
	// top of the axis rather than the bottom.
	if horizontal {
		for i, j := 0, len(values)-1; i < j; i, j = i+1, j-1 {
			labels[i], labels[j] = labels[j], labels[i]
			values[i], values[j] = values[j], values[i]
		}
	}

	p := plot.New()
	p.Title.Text = title

	bars, err := plotter.NewBarChart(values, vg.Points(18))
	if err != nil {
		return nil, fmt.Errorf("bar chart %q: %w", title, err)
	}
	bars.LineStyle.Width = 0
	bars.Color = barFill
	bars.Horizontal = horizontal
	p.Add(bars)

	if horizontal {
		p.NominalY(labels...)
		p.X.Label.Text = valueLabel
		return p.WriterTo(12*vg.Inch, 8*vg.Inch, "png")
	}
	p.NominalX(labels...)
	p.Y.Label.Text = valueLabel
	return p.WriterTo(10*vg.Inch, 6*vg.Inch, "png")
}

// histogramPNG renders the distribution of a single numeric field.
func histogramPNG(values []float64, bins int, title, xLabel string) (io.WriterTo, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("histogram %q: no values", title)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = "Frequency"

	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return nil, fmt.Errorf("histogram %q: %w", title, err)
	}
	h.FillColor = histFill
	p.Add(h)

	return p.WriterTo(10*vg.Inch, 6*vg.Inch, "png")
}
