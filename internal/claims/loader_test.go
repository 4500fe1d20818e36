package claims

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	header []string
	rows   [][]string
}

func (s *fakeSource) Header() []string          { return s.header }
func (s *fakeSource) Rows() ([][]string, error) { return s.rows, nil }

var testHeader = []string{
	ColClaimID, ColClaimDate, ColAge, ColGender, ColWarranty,
	ColVehicleBrand, ColVehicleModel, ColRegion, ColProvince,
	ColClaimAmount, ColPremiumAmount,
}

func row(id, date, age, gender, warranty, brand, model, region, province, claim, premium string) []string {
	return []string{id, date, age, gender, warranty, brand, model, region, province, claim, premium}
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("drops rows with unparseable dates and keeps the rest", func(t *testing.T) {
		t.Parallel()
		src := &fakeSource{header: testHeader, rows: [][]string{
			row("C1", "15/03/2023", "40", "M", "GLASSES", "FIAT", "PANDA", "NORTH", "MI", "100.0", "50.0"),
			row("C2", "2023-03-15", "41", "M", "GLASSES", "FIAT", "PANDA", "NORTH", "MI", "100.0", "50.0"),
			row("C3", "32/01/2023", "42", "M", "GLASSES", "FIAT", "PANDA", "NORTH", "MI", "100.0", "50.0"),
			row("C4", "", "43", "M", "GLASSES", "FIAT", "PANDA", "NORTH", "MI", "100.0", "50.0"),
		}}

		ds, err := Load(src)
		require.NoError(t, err)
		assert.Equal(t, 1, ds.Len())
		assert.Equal(t, 3, ds.DroppedRows)
		assert.Equal(t, "C1", ds.Records[0].ID)
	})

	t.Run("drops rows with non-numeric or negative amounts", func(t *testing.T) {
		t.Parallel()
		src := &fakeSource{header: testHeader, rows: [][]string{
			row("C1", "01/01/2023", "40", "F", "GLASSES", "FIAT", "PANDA", "NORTH", "MI", "abc", "50.0"),
			row("C2", "01/01/2023", "40", "F", "GLASSES", "FIAT", "PANDA", "NORTH", "MI", "100.0", "-5"),
			row("C3", "01/01/2023", "-1", "F", "GLASSES", "FIAT", "PANDA", "NORTH", "MI", "100.0", "50.0"),
			row("C4", "01/01/2023", "40", "F", "GLASSES", "FIAT", "PANDA", "NORTH", "MI", "100.0", "50.0"),
		}}

		ds, err := Load(src)
		require.NoError(t, err)
		assert.Equal(t, 1, ds.Len())
		assert.Equal(t, 3, ds.DroppedRows)
	})

	t.Run("fills missing gender with the mode of the full source", func(t *testing.T) {
		t.Parallel()
		// The mode must come from the raw source, before exclusion: the two
		// F rows with bad dates still outvote the single M row.
		src := &fakeSource{header: testHeader, rows: [][]string{
			row("C1", "bad-date", "40", "F", "GLASSES", "FIAT", "PANDA", "NORTH", "MI", "100.0", "50.0"),
			row("C2", "bad-date", "40", "F", "GLASSES", "FIAT", "PANDA", "NORTH", "MI", "100.0", "50.0"),
			row("C3", "01/01/2023", "40", "M", "GLASSES", "FIAT", "PANDA", "NORTH", "MI", "100.0", "50.0"),
			row("C4", "01/01/2023", "40", "", "GLASSES", "FIAT", "PANDA", "NORTH", "MI", "100.0", "50.0"),
		}}

		ds, err := Load(src)
		require.NoError(t, err)
		require.Equal(t, 2, ds.Len())
		assert.Equal(t, "F", ds.Records[1].Gender)
	})

	t.Run("modal gender tie breaks on first encounter", func(t *testing.T) {
		t.Parallel()
		src := &fakeSource{header: testHeader, rows: [][]string{
			row("C1", "01/01/2023", "40", "M", "GLASSES", "FIAT", "PANDA", "NORTH", "MI", "100.0", "50.0"),
			row("C2", "01/01/2023", "40", "F", "GLASSES", "FIAT", "PANDA", "NORTH", "MI", "100.0", "50.0"),
			row("C3", "01/01/2023", "40", "", "GLASSES", "FIAT", "PANDA", "NORTH", "MI", "100.0", "50.0"),
		}}

		ds, err := Load(src)
		require.NoError(t, err)
		require.Equal(t, 3, ds.Len())
		assert.Equal(t, "M", ds.Records[2].Gender)
	})

	t.Run("gender falls back to Unknown when the column is empty", func(t *testing.T) {
		t.Parallel()
		src := &fakeSource{header: testHeader, rows: [][]string{
			row("C1", "01/01/2023", "40", "", "GLASSES", "FIAT", "PANDA", "NORTH", "MI", "100.0", "50.0"),
		}}

		ds, err := Load(src)
		require.NoError(t, err)
		require.Equal(t, 1, ds.Len())
		assert.Equal(t, UnknownValue, ds.Records[0].Gender)
	})

	t.Run("fills missing categoricals with Unknown", func(t *testing.T) {
		t.Parallel()
		src := &fakeSource{header: testHeader, rows: [][]string{
			row("C1", "01/01/2023", "40", "M", "", "", "", "", "", "100.0", "50.0"),
		}}

		ds, err := Load(src)
		require.NoError(t, err)
		require.Equal(t, 1, ds.Len())
		rec := ds.Records[0]
		assert.Equal(t, UnknownValue, rec.Warranty)
		assert.Equal(t, UnknownValue, rec.VehicleBrand)
		assert.Equal(t, UnknownValue, rec.VehicleModel)
		assert.Equal(t, UnknownValue, rec.Region)
		assert.Equal(t, UnknownValue, rec.Province)
	})

	t.Run("errors on a missing required column", func(t *testing.T) {
		t.Parallel()
		header := append([]string(nil), testHeader...)
		header = header[:len(header)-1] // drop PREMIUM_AMOUNT_PAID

		_, err := Load(&fakeSource{header: header})
		require.Error(t, err)
		assert.Contains(t, err.Error(), ColPremiumAmount)
	})

	t.Run("reshuffled columns resolve by name", func(t *testing.T) {
		t.Parallel()
		src := &fakeSource{
			header: []string{ColPremiumAmount, ColClaimAmount, ColClaimDate, ColClaimID,
				ColAge, ColGender, ColWarranty, ColVehicleBrand, ColVehicleModel,
				ColRegion, ColProvince},
			rows: [][]string{
				{"50.0", "100.0", "20/06/2023", "C9", "33", "F", "GLASSES", "FIAT", "PANDA", "NORTH", "MI"},
			},
		}

		ds, err := Load(src)
		require.NoError(t, err)
		require.Equal(t, 1, ds.Len())

		want := ClaimRecord{
			ID:            "C9",
			Date:          time.Date(2023, time.June, 20, 0, 0, 0, 0, time.UTC),
			Age:           33,
			Gender:        "F",
			Warranty:      "GLASSES",
			VehicleBrand:  "FIAT",
			VehicleModel:  "PANDA",
			Region:        "NORTH",
			Province:      "MI",
			ClaimAmount:   100.0,
			PremiumAmount: 50.0,
		}
		if diff := cmp.Diff(want, ds.Records[0]); diff != "" {
			t.Errorf("record mismatch (-want +got):\n%s", diff)
		}
	})
}
