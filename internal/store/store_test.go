package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/claims.report/internal/analysis"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenAppliesMigrations(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	runs, err := s.Runs()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "runs.db")

	s1, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s1.Close())

	// Reopening an already-migrated database must not fail.
	s2, err := Open(path)
	require.NoError(t, err)
	defer s2.Close()
}

func TestRecordRun(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	losses := []analysis.WarrantyLoss{
		{Warranty: "THEFT", Claims: 2, AvgPremium: 300, AvgClaim: 2550,
			TotalClaim: 5100, TotalPremium: 600, PayoutPct: 850, PayoutValid: true},
		{Warranty: "UNKNOWN", Claims: 1, AvgClaim: 40, TotalClaim: 40},
	}
	runID, err := s.RecordRun(Run{
		StartedAt:        time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC),
		InputPath:        "data/claims.csv",
		OutputDir:        "analysis",
		Records:          16,
		DroppedRows:      2,
		DimensionsRun:    7,
		ArtifactsWritten: 40,
	}, losses)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	runs, err := s.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, 16, runs[0].Records)
	assert.Equal(t, 2, runs[0].DroppedRows)
	assert.Equal(t, 40, runs[0].ArtifactsWritten)
	assert.True(t, runs[0].StartedAt.Equal(time.Date(2023, 6, 1, 12, 0, 0, 0, time.UTC)))

	got, err := s.WarrantySummaries(runID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "THEFT", got[0].Warranty)
	assert.InDelta(t, 850.0, got[0].PayoutPct, 1e-9)
	assert.True(t, got[0].PayoutValid)

	// Undefined payouts come back last and stay undefined.
	assert.Equal(t, "UNKNOWN", got[1].Warranty)
	assert.False(t, got[1].PayoutValid)
}

func TestRecordRunGeneratesDistinctIDs(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	id1, err := s.RecordRun(Run{InputPath: "a.csv", OutputDir: "out"}, nil)
	require.NoError(t, err)
	id2, err := s.RecordRun(Run{InputPath: "a.csv", OutputDir: "out"}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, id1, id2)
}
