package claims

// AgeBuckets is a fixed bucket schema over policyholder age. Edges are
// half-open: lower bound inclusive, upper bound exclusive. Labels carry
// exactly one entry per bin.
type AgeBuckets struct {
	Edges  []int
	Labels []string
}

// NewAgeBuckets builds a bucket schema, checking the label count matches.
func NewAgeBuckets(edges []int, labels []string) (AgeBuckets, error) {
	if len(edges) < 2 || len(labels) != len(edges)-1 {
		return AgeBuckets{}, errBucketSchema(len(edges), len(labels))
	}
	return AgeBuckets{Edges: edges, Labels: labels}, nil
}

type bucketSchemaError struct{ edges, labels int }

func errBucketSchema(edges, labels int) error { return &bucketSchemaError{edges, labels} }

func (e *bucketSchemaError) Error() string {
	return "age bucket schema needs len(labels) == len(edges)-1"
}

// Bucket returns the label for age, or ok=false when the age is below the
// first edge or at/above the last edge. Out-of-range ages are never
// extrapolated into an outer bucket.
func (b AgeBuckets) Bucket(age int) (string, bool) {
	for i := 0; i < len(b.Edges)-1; i++ {
		if age >= b.Edges[i] && age < b.Edges[i+1] {
			return b.Labels[i], true
		}
	}
	return "", false
}

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// DeriveFeatures computes the derived attributes for every record in the
// dataset: age bucket, loss ratio, and calendar parts. Pure over each record;
// computed once and never mutated after.
func DeriveFeatures(ds *Dataset, buckets AgeBuckets) {
	for i := range ds.Records {
		deriveRecord(&ds.Records[i], buckets)
	}
}

func deriveRecord(r *ClaimRecord, buckets AgeBuckets) {
	r.AgeGroup, _ = buckets.Bucket(r.Age)

	// Loss ratio is undefined when the premium is zero; the record still
	// participates in count-based aggregates.
	if r.PremiumAmount > 0 {
		r.LossRatio = r.ClaimAmount / r.PremiumAmount
		r.HasLossRatio = true
	} else {
		r.LossRatio = 0
		r.HasLossRatio = false
	}

	// Calendar parts come straight from the claim date. Dates are calendar
	// dates, not instants, so there is no timezone to resolve.
	r.Year = r.Date.Year()
	r.Month = int(r.Date.Month())
	r.MonthName = monthNames[r.Month-1]
	r.Quarter = (r.Month-1)/3 + 1
	r.Weekday = r.Date.Weekday().String()
}
