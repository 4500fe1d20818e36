package claims

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultBuckets(t *testing.T) AgeBuckets {
	t.Helper()
	b, err := NewAgeBuckets(
		[]int{18, 25, 35, 45, 55, 65, 130},
		[]string{"18-25", "26-35", "36-45", "46-55", "56-65", "65+"},
	)
	require.NoError(t, err)
	return b
}

func TestAgeBuckets(t *testing.T) {
	t.Parallel()
	buckets := defaultBuckets(t)

	cases := []struct {
		age   int
		label string
		ok    bool
	}{
		{18, "18-25", true},
		{24, "18-25", true},
		{25, "26-35", true}, // lower edge of the next bucket, not the upper of the first
		{26, "26-35", true},
		{64, "56-65", true},
		{65, "65+", true},
		{66, "65+", true},
		{129, "65+", true},
		{130, "", false}, // at the final edge, outside the schema
		{17, "", false},
		{0, "", false},
	}
	for _, tc := range cases {
		label, ok := buckets.Bucket(tc.age)
		assert.Equal(t, tc.ok, ok, "age %d", tc.age)
		assert.Equal(t, tc.label, label, "age %d", tc.age)
	}
}

func TestNewAgeBucketsRejectsMismatchedLabels(t *testing.T) {
	t.Parallel()
	_, err := NewAgeBuckets([]int{18, 25, 35}, []string{"only-one-but-need-two"})
	assert.Error(t, err)

	_, err = NewAgeBuckets([]int{18}, nil)
	assert.Error(t, err)
}

func TestDeriveFeatures(t *testing.T) {
	t.Parallel()
	buckets := defaultBuckets(t)

	t.Run("loss ratio undefined on zero premium", func(t *testing.T) {
		t.Parallel()
		ds := &Dataset{Records: []ClaimRecord{
			{Age: 40, ClaimAmount: 150, PremiumAmount: 50},
			{Age: 40, ClaimAmount: 150, PremiumAmount: 0},
		}}
		DeriveFeatures(ds, buckets)

		assert.True(t, ds.Records[0].HasLossRatio)
		assert.InDelta(t, 3.0, ds.Records[0].LossRatio, 1e-9)
		assert.False(t, ds.Records[1].HasLossRatio)
	})

	t.Run("calendar parts derive from the claim date", func(t *testing.T) {
		t.Parallel()
		ds := &Dataset{Records: []ClaimRecord{
			{Age: 30, Date: time.Date(2023, time.February, 6, 0, 0, 0, 0, time.UTC)},
			{Age: 30, Date: time.Date(2022, time.December, 25, 0, 0, 0, 0, time.UTC)},
		}}
		DeriveFeatures(ds, buckets)

		feb := ds.Records[0]
		assert.Equal(t, 2023, feb.Year)
		assert.Equal(t, 2, feb.Month)
		assert.Equal(t, "February", feb.MonthName)
		assert.Equal(t, 1, feb.Quarter)
		assert.Equal(t, "Monday", feb.Weekday)

		dec := ds.Records[1]
		assert.Equal(t, "December", dec.MonthName)
		assert.Equal(t, 4, dec.Quarter)
		assert.Equal(t, "Sunday", dec.Weekday)
	})

	t.Run("out-of-range age leaves the group empty", func(t *testing.T) {
		t.Parallel()
		ds := &Dataset{Records: []ClaimRecord{{Age: 150, Date: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)}}}
		DeriveFeatures(ds, buckets)
		assert.Empty(t, ds.Records[0].AgeGroup)
	})
}
