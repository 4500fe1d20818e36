package claims

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Field is a categorical grouping dimension.
type Field string

// Grouping dimensions.
const (
	FieldWarranty  Field = "WARRANTY"
	FieldGender    Field = "POLICYHOLDER_GENDER"
	FieldAgeGroup  Field = "AGE_GROUP"
	FieldBrand     Field = "VEHICLE_BRAND"
	FieldModel     Field = "VEHICLE_MODEL"
	FieldRegion    Field = "CLAIM_REGION"
	FieldProvince  Field = "CLAIM_PROVINCE"
	FieldYear      Field = "CLAIM_YEAR"
	FieldMonthName Field = "CLAIM_MONTH"
	FieldQuarter   Field = "CLAIM_QUARTER"
	FieldWeekday   Field = "CLAIM_WEEKDAY"
)

// Metric is a numeric per-record field that aggregation operations apply to.
type Metric string

// Metric fields.
const (
	MetricClaimAmount   Metric = "CLAIM_AMOUNT_PAID"
	MetricPremiumAmount Metric = "PREMIUM_AMOUNT_PAID"
	MetricLossRatio     Metric = "LOSS_RATIO"
	MetricAge           Metric = "POLICYHOLDER_AGE"
)

// Op is an aggregation operation.
type Op string

// Aggregation operations. OpCount counts record identities; all others apply
// to the request's metric field.
const (
	OpCount  Op = "count"
	OpMean   Op = "mean"
	OpSum    Op = "sum"
	OpMedian Op = "median"
	OpStd    Op = "std"
	OpMin    Op = "min"
	OpMax    Op = "max"
)

// Value is one metric cell. Valid is false when the group had no qualifying
// records for the operation; a missing value is never reported as zero.
type Value struct {
	Float float64
	Valid bool
}

func validValue(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{}
	}
	return Value{Float: f, Valid: true}
}

// Request describes one aggregation: group the dataset by one or more
// categorical fields and compute the requested operations over the metric.
type Request struct {
	GroupBy []Field
	Metric  Metric
	Ops     []Op

	// SortBy orders the result rows by the named operation's value; ties
	// break by lexical group-key order. Zero value keeps natural key order.
	SortBy   Op
	SortDesc bool

	// TopN limits what Top() returns for display. The full result is always
	// retained for table persistence.
	TopN int

	// AgeSchema supplies the fixed age bucket set when grouping by
	// FieldAgeGroup: every label appears in the result, zero-count buckets
	// included, because the bucket set is schema, not data.
	AgeSchema AgeBuckets
}

// Row is one group's metrics. Key holds one value per GroupBy field.
type Row struct {
	Key     []string
	Metrics map[Op]Value
}

// Result is an ordered aggregation result.
type Result struct {
	Request Request
	Rows    []Row
}

// Top returns the display subset of rows: a prefix of the full sorted result,
// at most TopN rows when TopN is set.
func (r *Result) Top() []Row {
	if r.Request.TopN > 0 && len(r.Rows) > r.Request.TopN {
		return r.Rows[:r.Request.TopN]
	}
	return r.Rows
}

// Aggregate groups the dataset and computes the requested metrics with
// deterministic ordering. Group keys that never appear in the data are absent
// from the result, except fixed age buckets (see Request.AgeSchema). Records
// whose metric value is undefined (loss ratio with a zero premium, age group
// outside the schema) are excluded from numeric operations but still counted.
func Aggregate(ds *Dataset, req Request) (*Result, error) {
	if len(req.GroupBy) == 0 {
		return nil, fmt.Errorf("aggregate: at least one group-by field required")
	}
	if len(req.Ops) == 0 {
		return nil, fmt.Errorf("aggregate: at least one operation required")
	}
	for _, op := range req.Ops {
		if op != OpCount && req.Metric == "" {
			return nil, fmt.Errorf("aggregate: operation %s requires a metric field", op)
		}
	}

	type group struct {
		key    []string
		count  int
		values []float64
	}
	groups := make(map[string]*group)

	for i := range ds.Records {
		rec := &ds.Records[i]
		key, ok := groupKey(rec, req.GroupBy)
		if !ok {
			continue
		}
		id := strings.Join(key, "\x1f")
		g := groups[id]
		if g == nil {
			g = &group{key: key}
			groups[id] = g
		}
		g.count++
		if req.Metric != "" {
			if v, ok := metricValue(rec, req.Metric); ok {
				g.values = append(g.values, v)
			}
		}
	}

	// The age bucket set is a fixed schema: zero-count buckets appear
	// explicitly when grouping by age group alone.
	if len(req.GroupBy) == 1 && req.GroupBy[0] == FieldAgeGroup {
		for _, label := range req.AgeSchema.Labels {
			if _, ok := groups[label]; !ok {
				groups[label] = &group{key: []string{label}}
			}
		}
	}

	res := &Result{Request: req}
	for _, g := range groups {
		row := Row{Key: g.key, Metrics: make(map[Op]Value, len(req.Ops))}
		for _, op := range req.Ops {
			row.Metrics[op] = compute(op, g.count, g.values)
		}
		res.Rows = append(res.Rows, row)
	}

	sortRows(res.Rows, req)
	return res, nil
}

// compute evaluates one operation over a group. Numeric operations over an
// empty value set report a no-data value rather than a fabricated zero.
func compute(op Op, count int, values []float64) Value {
	if op == OpCount {
		return Value{Float: float64(count), Valid: true}
	}
	if len(values) == 0 {
		return Value{}
	}

	switch op {
	case OpMean:
		return validValue(stat.Mean(values, nil))
	case OpSum:
		var sum float64
		for _, v := range values {
			sum += v
		}
		return validValue(sum)
	case OpMedian:
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		return validValue(stat.Quantile(0.5, stat.LinInterp, sorted, nil))
	case OpStd:
		if len(values) < 2 {
			return Value{}
		}
		return validValue(stat.StdDev(values, nil))
	case OpMin:
		m := values[0]
		for _, v := range values[1:] {
			if v < m {
				m = v
			}
		}
		return validValue(m)
	case OpMax:
		m := values[0]
		for _, v := range values[1:] {
			if v > m {
				m = v
			}
		}
		return validValue(m)
	}
	return Value{}
}

func groupKey(rec *ClaimRecord, fields []Field) ([]string, bool) {
	key := make([]string, len(fields))
	for i, f := range fields {
		v, ok := fieldValue(rec, f)
		if !ok {
			return nil, false
		}
		key[i] = v
	}
	return key, true
}

func fieldValue(rec *ClaimRecord, f Field) (string, bool) {
	switch f {
	case FieldWarranty:
		return rec.Warranty, true
	case FieldGender:
		return rec.Gender, true
	case FieldAgeGroup:
		return rec.AgeGroup, rec.AgeGroup != ""
	case FieldBrand:
		return rec.VehicleBrand, true
	case FieldModel:
		return rec.VehicleModel, true
	case FieldRegion:
		return rec.Region, true
	case FieldProvince:
		return rec.Province, true
	case FieldYear:
		return fmt.Sprintf("%d", rec.Year), true
	case FieldMonthName:
		return rec.MonthName, true
	case FieldQuarter:
		return fmt.Sprintf("Q%d", rec.Quarter), true
	case FieldWeekday:
		return rec.Weekday, true
	}
	return "", false
}

func metricValue(rec *ClaimRecord, m Metric) (float64, bool) {
	switch m {
	case MetricClaimAmount:
		return rec.ClaimAmount, true
	case MetricPremiumAmount:
		return rec.PremiumAmount, true
	case MetricLossRatio:
		return rec.LossRatio, rec.HasLossRatio
	case MetricAge:
		return float64(rec.Age), true
	}
	return 0, false
}

// sortRows orders rows deterministically: natural key order by default
// (calendar order for temporal fields, bucket order for age groups, lexical
// otherwise), or by the requested metric with lexical key tie-break.
func sortRows(rows []Row, req Request) {
	if req.SortBy == "" {
		sort.SliceStable(rows, func(i, j int) bool {
			return keyLess(rows[i].Key, rows[j].Key, req)
		})
		return
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Metrics[req.SortBy], rows[j].Metrics[req.SortBy]
		// No-data values sort after all valid values regardless of direction.
		if a.Valid != b.Valid {
			return a.Valid
		}
		if a.Valid && a.Float != b.Float {
			if req.SortDesc {
				return a.Float > b.Float
			}
			return a.Float < b.Float
		}
		return lexicalLess(rows[i].Key, rows[j].Key)
	})
}

func lexicalLess(a, b []string) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}

func keyLess(a, b []string, req Request) bool {
	for i := range a {
		if i >= len(b) {
			return false
		}
		if a[i] == b[i] {
			continue
		}
		ra := naturalRank(req.GroupBy[i], a[i], req.AgeSchema)
		rb := naturalRank(req.GroupBy[i], b[i], req.AgeSchema)
		if ra != rb {
			return ra < rb
		}
		return a[i] < b[i]
	}
	return len(a) < len(b)
}

var weekdayOrder = [...]string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

// naturalRank gives temporal fields calendar order and age groups bucket
// order; other fields rank equal and fall back to lexical comparison.
func naturalRank(f Field, v string, schema AgeBuckets) int {
	switch f {
	case FieldMonthName:
		for i, name := range monthNames {
			if name == v {
				return i
			}
		}
	case FieldWeekday:
		for i, name := range weekdayOrder {
			if name == v {
				return i
			}
		}
	case FieldAgeGroup:
		for i, label := range schema.Labels {
			if label == v {
				return i
			}
		}
	}
	return 0
}
