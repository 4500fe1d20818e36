// Package claims holds the typed claim record schema, the loader/cleaner for
// raw tabular sources, per-record feature derivation, and the group-by
// aggregation engine the report pipeline is built on.
package claims

import "time"

// Column names expected in the input source.
const (
	ColClaimID       = "CLAIM_ID"
	ColClaimDate     = "CLAIM_DATE"
	ColAge           = "POLICYHOLDER_AGE"
	ColGender        = "POLICYHOLDER_GENDER"
	ColWarranty      = "WARRANTY"
	ColVehicleBrand  = "VEHICLE_BRAND"
	ColVehicleModel  = "VEHICLE_MODEL"
	ColRegion        = "CLAIM_REGION"
	ColProvince      = "CLAIM_PROVINCE"
	ColClaimAmount   = "CLAIM_AMOUNT_PAID"
	ColPremiumAmount = "PREMIUM_AMOUNT_PAID"
)

// DateLayout is the fixed day/month/year layout of the CLAIM_DATE column.
const DateLayout = "02/01/2006"

// UnknownValue fills missing categorical fields after cleaning.
const UnknownValue = "Unknown"

// ClaimRecord is one insurance claim after cleaning. Derived fields are
// populated by DeriveFeatures and never mutated afterwards.
type ClaimRecord struct {
	ID            string
	Date          time.Time
	Age           int
	Gender        string
	Warranty      string
	VehicleBrand  string
	VehicleModel  string
	Region        string
	Province      string
	ClaimAmount   float64
	PremiumAmount float64

	// Derived features.
	AgeGroup     string // empty when the age falls outside the bucket schema
	LossRatio    float64
	HasLossRatio bool // false when the premium is zero
	Year         int
	Month        int
	MonthName    string
	Quarter      int
	Weekday      string
}

// Dataset is an ordered collection of cleaned claim records plus cleaning
// diagnostics. Records all have a parseable claim date and non-empty
// categorical grouping fields.
type Dataset struct {
	Records []ClaimRecord

	// DroppedRows counts source rows excluded during cleaning (unparseable
	// date or numeric field). Diagnostic only; never fatal.
	DroppedRows int
}

// Len returns the number of cleaned records.
func (d *Dataset) Len() int { return len(d.Records) }

// Filter returns a new dataset containing the records for which keep returns
// true. Diagnostics are not carried over; they belong to the source dataset.
func (d *Dataset) Filter(keep func(*ClaimRecord) bool) *Dataset {
	out := &Dataset{}
	for i := range d.Records {
		if keep(&d.Records[i]) {
			out.Records = append(out.Records, d.Records[i])
		}
	}
	return out
}

// ByWarranty returns the records whose warranty matches name.
func (d *Dataset) ByWarranty(name string) *Dataset {
	return d.Filter(func(r *ClaimRecord) bool { return r.Warranty == name })
}

// Warranties returns the distinct warranty types in first-appearance order.
func (d *Dataset) Warranties() []string {
	seen := make(map[string]bool)
	var out []string
	for i := range d.Records {
		w := d.Records[i].Warranty
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return out
}
