// Package store persists run history: one row per analysis run plus the
// per-warranty loss summary computed during it, in a local sqlite database.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/claims.report/internal/analysis"
)

// Store wraps the run history database.
type Store struct {
	*sql.DB
}

// Open opens (creating if needed) the run history database at path and
// applies any pending schema migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open run history db: %w", err)
	}
	s := &Store{db}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Run is one recorded analysis run.
type Run struct {
	ID                string
	StartedAt         time.Time
	InputPath         string
	OutputDir         string
	Records           int
	DroppedRows       int
	DimensionsRun     int
	DimensionErrors   int
	ArtifactsWritten  int
	SkippedWarranties int
}

// RecordRun inserts a run and its warranty loss summary. The generated run ID
// is returned.
func (s *Store) RecordRun(run Run, losses []analysis.WarrantyLoss) (string, error) {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}

	tx, err := s.Begin()
	if err != nil {
		return "", fmt.Errorf("begin run insert: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO analysis_runs (
			run_id, started_at, input_path, output_dir,
			records, dropped_rows, dimensions_run, dimension_errors,
			artifacts_written, skipped_warranties
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(time.RFC3339), run.InputPath, run.OutputDir,
		run.Records, run.DroppedRows, run.DimensionsRun, run.DimensionErrors,
		run.ArtifactsWritten, run.SkippedWarranties,
	)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	for _, l := range losses {
		var payout sql.NullFloat64
		if l.PayoutValid {
			payout = sql.NullFloat64{Float64: l.PayoutPct, Valid: true}
		}
		_, err = tx.Exec(`
			INSERT INTO warranty_summaries (
				run_id, warranty, claims, avg_premium, avg_claim,
				total_claim, total_premium, payout_pct
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, l.Warranty, l.Claims, l.AvgPremium, l.AvgClaim,
			l.TotalClaim, l.TotalPremium, payout,
		)
		if err != nil {
			return "", fmt.Errorf("insert warranty summary for %s: %w", l.Warranty, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit run insert: %w", err)
	}
	return run.ID, nil
}

// Runs returns recorded runs, most recent first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.Query(`
		SELECT run_id, started_at, input_path, output_dir,
			records, dropped_rows, dimensions_run, dimension_errors,
			artifacts_written, skipped_warranties
		FROM analysis_runs ORDER BY started_at DESC, run_id`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var started string
		err := rows.Scan(&r.ID, &started, &r.InputPath, &r.OutputDir,
			&r.Records, &r.DroppedRows, &r.DimensionsRun, &r.DimensionErrors,
			&r.ArtifactsWritten, &r.SkippedWarranties)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", started, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// WarrantySummaries returns the loss summary recorded for a run, ordered by
// payout percentage descending with undefined payouts last.
func (s *Store) WarrantySummaries(runID string) ([]analysis.WarrantyLoss, error) {
	rows, err := s.Query(`
		SELECT warranty, claims, avg_premium, avg_claim,
			total_claim, total_premium, payout_pct
		FROM warranty_summaries WHERE run_id = ?
		ORDER BY payout_pct IS NULL, payout_pct DESC, warranty`, runID)
	if err != nil {
		return nil, fmt.Errorf("query warranty summaries: %w", err)
	}
	defer rows.Close()

	var out []analysis.WarrantyLoss
	for rows.Next() {
		var l analysis.WarrantyLoss
		var payout sql.NullFloat64
		err := rows.Scan(&l.Warranty, &l.Claims, &l.AvgPremium, &l.AvgClaim,
			&l.TotalClaim, &l.TotalPremium, &payout)
		if err != nil {
			return nil, fmt.Errorf("scan warranty summary: %w", err)
		}
		l.PayoutPct = payout.Float64
		l.PayoutValid = payout.Valid
		out = append(out, l)
	}
	return out, rows.Err()
}
