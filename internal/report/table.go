package report

import (
	"bytes"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/banshee-data/claims.report/internal/claims"
)

// noData is how a no-data metric cell renders in tables.
const noData = "n/a"

// Grid is a generic table: column names plus pre-formatted cell rows.
type Grid struct {
	Columns []string
	Rows    [][]string
}

// RenderGrid renders a titled, column-aligned text table. Output depends only
// on the title and grid contents, so re-emitting the same data is
// byte-identical.
func RenderGrid(title string, g Grid) []byte {
	var buf bytes.Buffer
	if title != "" {
		buf.WriteString(title)
		buf.WriteString("\n\n")
	}

	tw := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	for i, col := range g.Columns {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, col)
	}
	fmt.Fprintln(tw)

	for _, row := range g.Rows {
		for i, cell := range row {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, cell)
		}
		fmt.Fprintln(tw)
	}
	tw.Flush()
	return buf.Bytes()
}

// ResultGrid converts an aggregation result into a renderable grid. The full
// untruncated result is used; top-N applies only to charts.
func ResultGrid(res *claims.Result) Grid {
	g := Grid{}
	for _, f := range res.Request.GroupBy {
		g.Columns = append(g.Columns, string(f))
	}
	for _, op := range res.Request.Ops {
		g.Columns = append(g.Columns, opColumn(op, res.Request.Metric))
	}

	for _, row := range res.Rows {
		cells := append([]string(nil), row.Key...)
		for _, op := range res.Request.Ops {
			cells = append(cells, formatValue(op, row.Metrics[op]))
		}
		g.Rows = append(g.Rows, cells)
	}
	return g
}

// SummaryGrid converts descriptive statistics into a renderable grid.
func SummaryGrid(summaries []claims.MetricSummary) Grid {
	g := Grid{Columns: []string{"FIELD", "count", "mean", "std", "min", "median", "max"}}
	for _, s := range summaries {
		g.Rows = append(g.Rows, []string{
			string(s.Metric),
			strconv.Itoa(s.Count),
			formatFloat(s.Mean),
			formatFloat(s.Std),
			formatFloat(s.Min),
			formatFloat(s.Median),
			formatFloat(s.Max),
		})
	}
	return g
}

func opColumn(op claims.Op, metric claims.Metric) string {
	if op == claims.OpCount {
		return "count"
	}
	return fmt.Sprintf("%s(%s)", op, metric)
}

func formatValue(op claims.Op, v claims.Value) string {
	if !v.Valid {
		return noData
	}
	if op == claims.OpCount {
		return strconv.Itoa(int(v.Float))
	}
	return strconv.FormatFloat(v.Float, 'f', 2, 64)
}

func formatFloat(v claims.Value) string {
	if !v.Valid {
		return noData
	}
	return strconv.FormatFloat(v.Float, 'f', 2, 64)
}
