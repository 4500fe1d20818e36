package claims

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/banshee-data/claims.report/internal/monitoring"
)

// RowSource is a tabular data source: one header row naming columns, then
// data rows of untyped string fields.
type RowSource interface {
	// Header returns the column names.
	Header() []string

	// Rows returns all data rows. Row length matches the header.
	Rows() ([][]string, error)
}

// Load reads every row from src, cleans it, and returns the cleaned dataset.
//
// Cleaning rules:
//   - CLAIM_DATE must parse with the fixed day/month/year layout; rows that
//     fail are dropped and counted, never raised as errors.
//   - Missing POLICYHOLDER_GENDER fills with the modal gender observed in the
//     full, unfiltered source (first modal value on ties; "Unknown" when the
//     column is entirely empty). The mode is computed before any rows are
//     excluded, since exclusion is driven by an unrelated field.
//   - Missing region/province/brand/model fill with "Unknown".
//   - Claim and premium amounts must parse as non-negative numbers; rows that
//     fail are dropped and counted.
func Load(src RowSource) (*Dataset, error) {
	idx, err := columnIndex(src.Header())
	if err != nil {
		return nil, err
	}

	rows, err := src.Rows()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	modalGender := modalValue(rows, idx[ColGender])

	ds := &Dataset{}
	for _, row := range rows {
		rec, ok := cleanRow(row, idx, modalGender)
		if !ok {
			ds.DroppedRows++
			continue
		}
		ds.Records = append(ds.Records, rec)
	}

	if ds.DroppedRows > 0 {
		monitoring.Logf("dropped %d rows with unparseable date or numeric fields", ds.DroppedRows)
	}

	return ds, nil
}

// columnIndex maps the required column names to their positions.
func columnIndex(header []string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[strings.TrimSpace(name)] = i
	}

	required := []string{
		ColClaimID, ColClaimDate, ColAge, ColGender, ColWarranty,
		ColVehicleBrand, ColVehicleModel, ColRegion, ColProvince,
		ColClaimAmount, ColPremiumAmount,
	}
	for _, name := range required {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("input is missing required column %q", name)
		}
	}
	return idx, nil
}

// modalValue returns the most frequent non-empty value in the column, using
// first-encounter order to break ties. Returns "Unknown" for an empty column.
func modalValue(rows [][]string, col int) string {
	counts := make(map[string]int)
	var order []string
	for _, row := range rows {
		if col >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		if counts[v] == 0 {
			order = append(order, v)
		}
		counts[v]++
	}

	best := UnknownValue
	bestCount := 0
	for _, v := range order {
		if counts[v] > bestCount {
			best = v
			bestCount = counts[v]
		}
	}
	return best
}

func cleanRow(row []string, idx map[string]int, modalGender string) (ClaimRecord, bool) {
	field := func(name string) string {
		i := idx[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	date, err := time.Parse(DateLayout, field(ColClaimDate))
	if err != nil {
		return ClaimRecord{}, false
	}

	age, err := strconv.Atoi(field(ColAge))
	if err != nil || age < 0 {
		return ClaimRecord{}, false
	}

	claimAmount, err := strconv.ParseFloat(field(ColClaimAmount), 64)
	if err != nil || claimAmount < 0 {
		return ClaimRecord{}, false
	}

	premiumAmount, err := strconv.ParseFloat(field(ColPremiumAmount), 64)
	if err != nil || premiumAmount < 0 {
		return ClaimRecord{}, false
	}

	rec := ClaimRecord{
		ID:            field(ColClaimID),
		Date:          date,
		Age:           age,
		Gender:        fillEmpty(field(ColGender), modalGender),
		Warranty:      fillEmpty(field(ColWarranty), UnknownValue),
		VehicleBrand:  fillEmpty(field(ColVehicleBrand), UnknownValue),
		VehicleModel:  fillEmpty(field(ColVehicleModel), UnknownValue),
		Region:        fillEmpty(field(ColRegion), UnknownValue),
		Province:      fillEmpty(field(ColProvince), UnknownValue),
		ClaimAmount:   claimAmount,
		PremiumAmount: premiumAmount,
	}
	return rec, true
}

func fillEmpty(v, fill string) string {
	if v == "" {
		return fill
	}
	return v
}
