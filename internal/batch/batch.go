// Package batch runs many claims through the repricing engine across a
// bounded worker pool. Claims are independently priceable (spec.md §5:
// "multiple claims may be priced in parallel without synchronization"),
// so workers share one read-only *refdata.Store with no locking, in the
// worker-pool shape used throughout this lineage for fan-out over
// independent units of work.
package batch

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gyeh/repricer/internal/claimmodel"
	"github.com/gyeh/repricer/internal/refdata"
	"github.com/gyeh/repricer/internal/repricer"
)

// Summary reports aggregate counts and timing for one batch run, the
// batch-layer analogue of the teacher's model.IngestSummary.
type Summary struct {
	ClaimsProcessed      int64
	ClaimsWithFatalErrors int64
	LinesPriced          int64
	TotalAllowed         float64
	Duration             time.Duration
}

type result struct {
	index int
	claim *claimmodel.RepricedClaim
	err   error
}

// Run fans claims out across workers concurrent goroutines, each pricing
// one claim at a time against the shared, read-only store. Results are
// returned in the same order as the input claims.
func Run(ctx context.Context, store *refdata.Store, log zerolog.Logger, claims []claimmodel.Claim, workers int) (*Summary, []*claimmodel.RepricedClaim, error) {
	if workers < 1 {
		workers = 1
	}
	start := time.Now()

	jobs := make(chan int)
	results := make(chan result, len(claims))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				select {
				case <-ctx.Done():
					results <- result{index: idx, err: ctx.Err()}
					continue
				default:
				}
				rc, err := repricer.RepriceClaim(store, claims[idx])
				results <- result{index: idx, claim: rc, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range claims {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	out := make([]*claimmodel.RepricedClaim, len(claims))
	errs := make([]error, len(claims))
	for r := range results {
		out[r.index] = r.claim
		errs[r.index] = r.err
	}

	summary := &Summary{Duration: time.Since(start)}
	for i, rc := range out {
		if errs[i] != nil {
			log.Warn().Str("claim_id", claims[i].ClaimID).Err(errs[i]).Msg("claim failed validation")
			continue
		}
		summary.ClaimsProcessed++
		summary.LinesPriced += int64(len(rc.Lines))
		summary.TotalAllowed += rc.TotalAllowed
		for _, line := range rc.Lines {
			if line.HasFatalError() {
				summary.ClaimsWithFatalErrors++
				break
			}
		}
	}

	log.Info().
		Int64("claims_processed", summary.ClaimsProcessed).
		Int64("claims_with_fatal_errors", summary.ClaimsWithFatalErrors).
		Int64("lines_priced", summary.LinesPriced).
		Float64("total_allowed", summary.TotalAllowed).
		Str("duration", summary.Duration.String()).
		Msg("batch run complete")

	return summary, out, nil
}
