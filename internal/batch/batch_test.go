package batch_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"

	"github.com/gyeh/repricer/internal/batch"
	"github.com/gyeh/repricer/internal/claimmodel"
	"github.com/gyeh/repricer/internal/refdata"
)

func TestRun_AllClaimsProcessedInOrder(t *testing.T) {
	store := refdata.NewForTesting(
		refdata.DefaultParams(),
		[]refdata.RVU{{ProcedureCode: "99213", WorkRVUNonFacility: 1.3, PERVUNonFacility: 0.73, MPRVUNonFacility: 0.10,
			WorkRVUFacility: 1.3, PERVUFacility: 0.5, MPRVUFacility: 0.10}},
		[]refdata.GPCI{{Locality: "01", WorkGPCI: 1, PEGPCI: 1, MPGPCI: 1}},
		nil, nil, nil,
	)

	claims := make([]claimmodel.Claim, 20)
	for i := range claims {
		claims[i] = claimmodel.Claim{
			ClaimID: fmt.Sprintf("claim-%d", i),
			Lines:   []claimmodel.ClaimLine{{LineNumber: 1, ProcedureCode: "99213", PlaceOfService: "11", Locality: "01", Units: 1}},
		}
	}

	summary, results, err := batch.Run(context.Background(), store, zerolog.Nop(), claims, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.ClaimsProcessed != int64(len(claims)) {
		t.Errorf("expected all %d claims processed, got %d", len(claims), summary.ClaimsProcessed)
	}
	for i, r := range results {
		if r == nil {
			t.Fatalf("result %d is nil", i)
		}
		if r.ClaimID != claims[i].ClaimID {
			t.Errorf("result %d: got claim %q, want %q", i, r.ClaimID, claims[i].ClaimID)
		}
	}
}

func TestRun_TracksFatalLineErrors(t *testing.T) {
	store := refdata.NewForTesting(refdata.DefaultParams(), nil, nil, nil, nil, nil)
	claims := []claimmodel.Claim{
		{ClaimID: "bad", Lines: []claimmodel.ClaimLine{{LineNumber: 1, ProcedureCode: "00000", PlaceOfService: "11", Locality: "01", Units: 1}}},
	}
	summary, _, err := batch.Run(context.Background(), store, zerolog.Nop(), claims, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.ClaimsWithFatalErrors != 1 {
		t.Errorf("expected 1 claim with fatal errors, got %d", summary.ClaimsWithFatalErrors)
	}
}

func TestRun_SingleWorker(t *testing.T) {
	store := refdata.NewForTesting(refdata.DefaultParams(), nil, nil, nil, nil, nil)
	claims := []claimmodel.Claim{{ClaimID: "c1", Lines: []claimmodel.ClaimLine{{LineNumber: 1}}}}
	summary, results, err := batch.Run(context.Background(), store, zerolog.Nop(), claims, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if summary.ClaimsProcessed != 1 {
		t.Errorf("expected 1 claim processed even with workers=0, got %d", summary.ClaimsProcessed)
	}
}
