package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/claims.report/internal/claims"
)

// Dashboard renders a single HTML overview page for a run: claims by
// warranty and claims by month, both interactive echarts bar charts.
func (e *Emitter) Dashboard(byWarranty, byMonth *claims.Result, elem ...string) error {
	page := components.NewPage()
	page.PageTitle = "Claims Analysis Overview"

	warrantyBar, err := resultBar(byWarranty, claims.OpCount, "Claims by Warranty Type")
	if err != nil {
		return err
	}
	monthBar, err := resultBar(byMonth, claims.OpCount, "Claims by Month")
	if err != nil {
		return err
	}
	page.AddCharts(warrantyBar, monthBar)

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render dashboard: %w", err)
	}
	return e.w.WriteArtifact(buf.Bytes(), elem...)
}

func resultBar(res *claims.Result, op claims.Op, title string) (*charts.Bar, error) {
	var names []string
	var data []opts.BarData
	for _, row := range res.Top() {
		v, ok := row.Metrics[op]
		if !ok || !v.Valid {
			continue
		}
		names = append(names, strings.Join(row.Key, " / "))
		data = append(data, opts.BarData{Value: v.Float})
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("dashboard chart %q: no plottable values", title)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "500px"}),
	)
	bar.SetXAxis(names).AddSeries("Claims", data)
	return bar, nil
}
