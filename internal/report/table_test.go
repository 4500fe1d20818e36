package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/claims.report/internal/claims"
)

func TestRenderGrid(t *testing.T) {
	t.Parallel()

	g := Grid{
		Columns: []string{"WARRANTY", "count"},
		Rows: [][]string{
			{"GLASSES", "12"},
			{"CIVIL LIABILITY INSURANCE", "7"},
		},
	}

	first := RenderGrid("Claims by Warranty", g)
	second := RenderGrid("Claims by Warranty", g)
	assert.Equal(t, first, second, "same input renders byte-identical output")

	text := string(first)
	assert.True(t, strings.HasPrefix(text, "Claims by Warranty\n\n"))
	assert.Contains(t, text, "GLASSES")
	assert.Contains(t, text, "CIVIL LIABILITY INSURANCE")

	// Columns align: every line starts its count column at the same offset.
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	require.GreaterOrEqual(t, len(lines), 5)
	header := lines[2]
	assert.Equal(t, strings.Index(header, "count"), strings.Index(lines[4], "7"))
}

func TestResultGrid(t *testing.T) {
	t.Parallel()

	res := &claims.Result{
		Request: claims.Request{
			GroupBy: []claims.Field{claims.FieldWarranty},
			Metric:  claims.MetricClaimAmount,
			Ops:     []claims.Op{claims.OpCount, claims.OpMean},
			TopN:    1,
		},
		Rows: []claims.Row{
			{Key: []string{"A"}, Metrics: map[claims.Op]claims.Value{
				claims.OpCount: {Float: 3, Valid: true},
				claims.OpMean:  {Float: 12.345, Valid: true},
			}},
			{Key: []string{"B"}, Metrics: map[claims.Op]claims.Value{
				claims.OpCount: {Float: 2, Valid: true},
				claims.OpMean:  {},
			}},
		},
	}

	g := ResultGrid(res)
	assert.Equal(t, []string{"WARRANTY", "count", "mean(CLAIM_AMOUNT_PAID)"}, g.Columns)
	require.Len(t, g.Rows, 2, "tables ignore top-n")
	assert.Equal(t, []string{"A", "3", "12.35"}, g.Rows[0])
	assert.Equal(t, []string{"B", "2", "n/a"}, g.Rows[1])
}

func TestSummaryGrid(t *testing.T) {
	t.Parallel()

	g := SummaryGrid([]claims.MetricSummary{{
		Metric: claims.MetricLossRatio,
		Count:  2,
		Mean:   claims.Value{Float: 1.5, Valid: true},
		Std:    claims.Value{},
		Min:    claims.Value{Float: 1, Valid: true},
		Median: claims.Value{Float: 1.5, Valid: true},
		Max:    claims.Value{Float: 2, Valid: true},
	}})

	require.Len(t, g.Rows, 1)
	assert.Equal(t, []string{"LOSS_RATIO", "2", "1.50", "n/a", "1.00", "1.50", "2.00"}, g.Rows[0])
}
