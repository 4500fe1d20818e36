package claims

// MetricSummary holds the basic descriptive statistics for one numeric field
// over a dataset. Count is the number of qualifying records (loss-ratio rows
// with a zero premium do not qualify).
type MetricSummary struct {
	Metric Metric
	Count  int
	Mean   Value
	Std    Value
	Min    Value
	Median Value
	Max    Value
}

// Describe computes descriptive statistics for the given metric fields.
func Describe(ds *Dataset, metrics []Metric) []MetricSummary {
	out := make([]MetricSummary, 0, len(metrics))
	for _, m := range metrics {
		var values []float64
		for i := range ds.Records {
			if v, ok := metricValue(&ds.Records[i], m); ok {
				values = append(values, v)
			}
		}
		out = append(out, MetricSummary{
			Metric: m,
			Count:  len(values),
			Mean:   compute(OpMean, len(values), values),
			Std:    compute(OpStd, len(values), values),
			Min:    compute(OpMin, len(values), values),
			Median: compute(OpMedian, len(values), values),
			Max:    compute(OpMax, len(values), values),
		})
	}
	return out
}

// MetricValues returns the qualifying values of metric m across the dataset,
// in record order. Used for distribution charts.
func MetricValues(ds *Dataset, m Metric) []float64 {
	var values []float64
	for i := range ds.Records {
		if v, ok := metricValue(&ds.Records[i], m); ok {
			values = append(values, v)
		}
	}
	return values
}
