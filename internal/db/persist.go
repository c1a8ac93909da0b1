package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gyeh/repricer/internal/batch"
	"github.com/gyeh/repricer/internal/claimmodel"
)

// PersistBatch records one batch run and its claim/line results under a
// fresh batch_run_id: a row in repricing.batch_runs, one row per claim in
// repricing.repriced_claims, and the priced lines bulk-loaded via COPY
// into repricing.repriced_lines, exactly as the teacher's ingest pipeline
// registers an mrf_file row before COPYing its staging rows.
func PersistBatch(ctx context.Context, pool *pgxpool.Pool, summary *batch.Summary, workers int, claims []*claimmodel.RepricedClaim) (uuid.UUID, error) {
	batchRunID := uuid.New()

	_, err := pool.Exec(ctx, `
		INSERT INTO repricing.batch_runs
			(batch_run_id, claims_processed, claims_with_errors, lines_priced, total_allowed, worker_count, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())`,
		batchRunID, summary.ClaimsProcessed, summary.ClaimsWithFatalErrors, summary.LinesPriced, summary.TotalAllowed, workers,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert batch_run: %w", err)
	}

	for _, c := range claims {
		if c == nil {
			continue
		}
		hasFatal := false
		for _, l := range c.Lines {
			if l.HasFatalError() {
				hasFatal = true
				break
			}
		}
		_, err := pool.Exec(ctx, `
			INSERT INTO repricing.repriced_claims (batch_run_id, claim_id, patient_id, total_allowed, has_fatal_error)
			VALUES ($1, $2, $3, $4, $5)`,
			batchRunID, c.ClaimID, c.PatientID, c.TotalAllowed, hasFatal,
		)
		if err != nil {
			return uuid.Nil, fmt.Errorf("insert repriced_claim %s: %w", c.ClaimID, err)
		}
	}

	ch := make(chan *LineRow)
	go func() {
		defer close(ch)
		for _, c := range claims {
			if c == nil {
				continue
			}
			for _, l := range c.Lines {
				ch <- &LineRow{BatchRunID: batchRunID, ClaimID: c.ClaimID, Line: l}
			}
		}
	}()

	src := NewChannelSource(ch)
	if _, err := pool.CopyFrom(ctx, pgx.Identifier{"repricing", "repriced_lines"}, LineColumns(), src); err != nil {
		return uuid.Nil, fmt.Errorf("copy repriced_lines: %w", err)
	}

	return batchRunID, nil
}
