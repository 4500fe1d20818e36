package report

import (
	"bytes"
	"fmt"

	"github.com/banshee-data/claims.report/internal/claims"
)

// Emitter persists aggregation results as artifacts through a scoped Writer.
// Tables always persist the full untruncated result; charts render only the
// display subset (top-N when requested).
type Emitter struct {
	w *Writer
}

// NewEmitter creates an emitter over the given writer.
func NewEmitter(w *Writer) *Emitter {
	return &Emitter{w: w}
}

// Writer returns the underlying artifact writer.
func (e *Emitter) Writer() *Writer { return e.w }

// Table persists the full aggregation result as a titled text table at the
// path elements relative to the output root.
func (e *Emitter) Table(res *claims.Result, title string, elem ...string) error {
	return e.w.WriteArtifact(RenderGrid(title, ResultGrid(res)), elem...)
}

// Grid persists a pre-built grid as a titled text table.
func (e *Emitter) Grid(g Grid, title string, elem ...string) error {
	return e.w.WriteArtifact(RenderGrid(title, g), elem...)
}

// Summary persists descriptive statistics as a titled text table.
func (e *Emitter) Summary(sums []claims.MetricSummary, title string, elem ...string) error {
	return e.w.WriteArtifact(RenderGrid(title, SummaryGrid(sums)), elem...)
}

// BarChart renders the result's display subset as a PNG bar chart over the
// named operation.
func (e *Emitter) BarChart(res *claims.Result, op claims.Op, title, valueLabel string, horizontal bool, elem ...string) error {
	wt, err := barChartPNG(res, op, title, valueLabel, horizontal)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return fmt.Errorf("render chart %q: %w", title, err)
	}
	return e.w.WriteArtifact(buf.Bytes(), elem...)
}

// Histogram renders a single-field distribution as a PNG histogram.
func (e *Emitter) Histogram(values []float64, bins int, title, xLabel string, elem ...string) error {
	wt, err := histogramPNG(values, bins, title, xLabel)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return fmt.Errorf("render histogram %q: %w", title, err)
	}
	return e.w.WriteArtifact(buf.Bytes(), elem...)
}
