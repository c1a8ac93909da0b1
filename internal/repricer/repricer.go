// Package repricer orchestrates the full claim-repricing pipeline: claim
// validation, PFS/IPPS dispatch, MPPR rank assignment, and aggregation,
// per spec.md §4.6.
package repricer

import (
	"fmt"
	"sort"

	"github.com/gyeh/repricer/internal/claimmodel"
	"github.com/gyeh/repricer/internal/ipps"
	"github.com/gyeh/repricer/internal/normalize"
	"github.com/gyeh/repricer/internal/pfs"
	"github.com/gyeh/repricer/internal/refdata"
)

// PipelineError wraps a per-claim failure with the phase in which it
// occurred, mirroring the ingest pipeline's phase-tagged error style.
type PipelineError struct {
	Phase   string
	ClaimID string
	Err     error
}

func (e *PipelineError) Error() string {
	return fmt.Sprintf("claim %q: %s: %s", e.ClaimID, e.Phase, e.Err)
}

func (e *PipelineError) Unwrap() error {
	return e.Err
}

// RepriceClaim runs one claim through the full pipeline. A claim-shape
// violation (spec.md §7) fails the whole call with no partial output; a
// per-line failure never aborts the claim, it zeros that line's allowed
// amount and carries its diagnostics.
func RepriceClaim(store *refdata.Store, claim claimmodel.Claim) (*claimmodel.RepricedClaim, error) {
	if err := claim.Validate(); err != nil {
		return nil, &PipelineError{Phase: "validate", ClaimID: claim.ClaimID, Err: err}
	}

	ranks := assignMPPRRanks(store, claim.Lines)

	lines := make([]claimmodel.RepricedLine, 0, len(claim.Lines))
	var total float64
	claimNotes := []string{fmt.Sprintf("repriced using conversion factor $%.2f", store.Params.PFSConversionFactor)}
	var mpprReducedCount int
	for _, rank := range ranks {
		if rank >= 2 {
			mpprReducedCount++
		}
	}
	if mpprReducedCount > 0 {
		claimNotes = append(claimNotes, fmt.Sprintf("MPPR applied to %d procedure(s)", mpprReducedCount))
	}

	for _, line := range claim.Lines {
		var out claimmodel.RepricedLine
		switch {
		case line.IsInpatient():
			out = ipps.Price(store, line)
		case line.ProcedureCode != "" && claimmodel.IsUnsupportedServiceCode(line.ProcedureCode):
			out = claimmodel.RepricedLine{
				LineNumber:    line.LineNumber,
				ServiceType:   "UNKNOWN",
				ProcedureCode: line.ProcedureCode,
				Diagnostics: []claimmodel.Diagnostic{{
					Code:     claimmodel.CodeUnsupportedService,
					Message:  fmt.Sprintf("procedure code %q is an anesthesia or dental code; not priced by this core", line.ProcedureCode),
					Severity: claimmodel.SeverityFatal,
				}},
			}
		case line.ProcedureCode != "":
			rank := ranks[line.LineNumber]
			if rank == 0 {
				rank = 1
			}
			out = pfs.Price(store, line, rank)
		default:
			out = claimmodel.RepricedLine{
				LineNumber:  line.LineNumber,
				ServiceType: "UNKNOWN",
				Diagnostics: []claimmodel.Diagnostic{{
					Code:     claimmodel.CodeUnsupportedService,
					Message:  "line has neither a procedure_code nor (ms_drg_code + provider_number)",
					Severity: claimmodel.SeverityFatal,
				}},
			}
		}

		if out.HasFatalError() {
			out.MedicareAllowed = 0
		} else {
			total += out.MedicareAllowed
		}
		lines = append(lines, out)
	}

	return &claimmodel.RepricedClaim{
		ClaimID:      claim.ClaimID,
		PatientID:    claim.PatientID,
		Lines:        lines,
		TotalAllowed: normalize.RoundCents(total),
		Notes:        claimNotes,
	}, nil
}

// RepriceClaims reprices each claim independently. Reference data is
// read-only after load, so the returned results are safe to compute
// concurrently across goroutines sharing the same Store (spec.md §5);
// this function itself stays sequential and simply fans out the pure
// per-claim computation to whatever caller-level concurrency wraps it.
func RepriceClaims(store *refdata.Store, claims []claimmodel.Claim) ([]*claimmodel.RepricedClaim, []error) {
	results := make([]*claimmodel.RepricedClaim, len(claims))
	errs := make([]error, len(claims))
	for i, c := range claims {
		r, err := RepriceClaim(store, c)
		results[i] = r
		errs[i] = err
	}
	return results, errs
}

// assignMPPRRanks implements spec.md §4.6 pass 1: among a claim's PFS
// lines whose RVU record carries MPPR indicator 2, rank 1..k in
// descending RVU-sum score with a stable tie-break by ascending
// line_number. Lines with indicator 0, or whose RVU record can't be
// found, are left unranked (rank 0, which the pricer treats as rank 1).
func assignMPPRRanks(store *refdata.Store, lines []claimmodel.ClaimLine) map[int]int {
	type candidate struct {
		lineNumber int
		score      float64
	}

	facilityPOS := map[string]bool{
		"21": true, "22": true, "23": true, "24": true, "26": true,
		"31": true, "34": true, "51": true, "52": true, "53": true,
		"56": true, "61": true,
	}

	var candidates []candidate
	for _, line := range lines {
		if line.IsInpatient() || line.ProcedureCode == "" {
			continue
		}
		modifier := ""
		if len(line.Modifiers) > 0 {
			modifier = line.Modifiers[0]
		}
		rvu, ok := store.GetRVU(line.ProcedureCode, modifier)
		if !ok || rvu.MPIndicator != 2 {
			continue
		}
		var score float64
		if facilityPOS[line.PlaceOfService] {
			score = rvu.WorkRVUFacility + rvu.PERVUFacility + rvu.MPRVUFacility
		} else {
			score = rvu.WorkRVUNonFacility + rvu.PERVUNonFacility + rvu.MPRVUNonFacility
		}
		candidates = append(candidates, candidate{lineNumber: line.LineNumber, score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].lineNumber < candidates[j].lineNumber
	})

	ranks := make(map[int]int, len(candidates))
	for i, c := range candidates {
		ranks[c.lineNumber] = i + 1
	}
	return ranks
}
