// Package pfs implements the Physician Fee Schedule calculator: the
// per-line RBRVS pricing algorithm of spec.md §4.3.
package pfs

import (
	"fmt"

	"github.com/gyeh/repricer/internal/claimmodel"
	"github.com/gyeh/repricer/internal/locality"
	"github.com/gyeh/repricer/internal/normalize"
	"github.com/gyeh/repricer/internal/refdata"
)

// facilityPOS is the set of place-of-service codes that select the
// facility RVU triple, per spec.md §4.3 step 1.
var facilityPOS = map[string]bool{
	"21": true, "22": true, "23": true, "24": true, "26": true,
	"31": true, "34": true, "51": true, "52": true, "53": true,
	"56": true, "61": true,
}

// sequentialModifierFactor holds the multiplicative modifiers, applied in
// the order the modifiers appear on the line.
var sequentialModifierFactor = map[string]float64{
	"50": 1.50,
	"52": 0.50,
	"53": 0.50,
}

// noteOnlyModifiers never change the price but are recorded for audit.
var noteOnlyModifiers = map[string]bool{
	"76": true, "77": true,
	"59": true, "XE": true, "XU": true, "XP": true, "XS": true,
}

// Price computes the Medicare-allowed amount for one claim line under the
// Physician Fee Schedule. rank is the MPPR rank assigned by the caller
// (1 = primary, the orchestrator assigns this across the claim's PFS
// lines before calling Price — spec.md §4.6).
func Price(store *refdata.Store, line claimmodel.ClaimLine, rank int) claimmodel.RepricedLine {
	out := claimmodel.RepricedLine{
		LineNumber:    line.LineNumber,
		ServiceType:   "PFS",
		ProcedureCode: line.ProcedureCode,
		Units:         line.Units,
		MPPRRank:      rank,
	}

	// step 1: facility selection
	isFacility := facilityPOS[line.PlaceOfService]
	out.IsFacility = isFacility

	// step 2: RVU fetch, trying (code, first modifier) then (code, none)
	firstModifier := ""
	if len(line.Modifiers) > 0 {
		firstModifier = line.Modifiers[0]
	}
	rvu, ok := store.GetRVU(line.ProcedureCode, firstModifier)
	if !ok {
		out.Diagnostics = append(out.Diagnostics, claimmodel.Diagnostic{
			Code:     claimmodel.CodeProcedureNotFound,
			Message:  fmt.Sprintf("procedure code %q not found in fee schedule", line.ProcedureCode),
			Severity: claimmodel.SeverityFatal,
		})
		return out
	}

	workRVU, peRVU, mpRVU := rvu.WorkRVUNonFacility, rvu.PERVUNonFacility, rvu.MPRVUNonFacility
	if isFacility {
		workRVU, peRVU, mpRVU = rvu.WorkRVUFacility, rvu.PERVUFacility, rvu.MPRVUFacility
	}

	// step 3: GPCI fetch, falling back to national average
	loc, localityOK := locality.Resolve(line.Locality, line.ZIP)
	if !localityOK {
		out.Diagnostics = append(out.Diagnostics, claimmodel.Diagnostic{
			Code:     claimmodel.CodeLocalityOrZIPRequired,
			Message:  "line has neither locality nor zip",
			Severity: claimmodel.SeverityFatal,
		})
		return out
	}
	out.Locality = loc.Locality
	if loc.Defaulted {
		out.Diagnostics = append(out.Diagnostics, claimmodel.Diagnostic{
			Code:     claimmodel.CodeLocalityDefaulted,
			Message:  fmt.Sprintf("locality not resolvable from zip %q, defaulted to national average", line.ZIP),
			Severity: claimmodel.SeverityWarning,
		})
	}
	gpci, gpciOK := store.GetGPCI(out.Locality)
	if !gpciOK {
		gpci, _ = store.GetGPCI(locality.NationalAverage)
		out.Notes = append(out.Notes, fmt.Sprintf("locality %q not found, fell back to national average GPCI", out.Locality))
	}

	var notes []string
	var modifiersApplied []string

	// step 5: modifier pre-computation mutations (26, TC)
	for _, m := range line.Modifiers {
		switch m {
		case "26":
			peRVU = 0
			notes = append(notes, "modifier 26: professional component, PE RVU zeroed")
			modifiersApplied = append(modifiersApplied, m)
		case "TC":
			workRVU = 0
			mpRVU = 0
			notes = append(notes, "modifier TC: technical component, work and MP RVU zeroed")
			modifiersApplied = append(modifiersApplied, m)
		}
	}

	// step 4: base payment, computed from the (possibly zeroed) RVU triple
	cf := store.Params.PFSConversionFactor
	base := (workRVU*gpci.WorkGPCI + peRVU*gpci.PEGPCI + mpRVU*gpci.MPGPCI) * cf

	// step 5 continued: sequential multiplicative and note-only modifiers
	for _, m := range line.Modifiers {
		switch {
		case m == "26" || m == "TC":
			// already applied above
		case sequentialModifierFactor[m] != 0:
			factor := sequentialModifierFactor[m]
			base *= factor
			notes = append(notes, fmt.Sprintf("modifier %s: base multiplied by %.2f", m, factor))
			modifiersApplied = append(modifiersApplied, m)
		case noteOnlyModifiers[m]:
			notes = append(notes, fmt.Sprintf("modifier %s: no price adjustment", m))
			modifiersApplied = append(modifiersApplied, m)
		default:
			out.Diagnostics = append(out.Diagnostics, claimmodel.Diagnostic{
				Code:     claimmodel.CodeUnknownModifier,
				Message:  fmt.Sprintf("unrecognized modifier %q, no adjustment applied", m),
				Severity: claimmodel.SeverityWarning,
			})
			modifiersApplied = append(modifiersApplied, m)
		}
	}

	// step 6: MPPR
	if rvu.MPIndicator == 2 && rank >= 2 {
		base *= 0.50
		notes = append(notes, "MPPR applied (50%)")
	}

	// step 7: units
	units := line.Units
	if units < 1 {
		units = 1
	}
	base *= float64(units)

	out.WorkRVU, out.PERVU, out.MPRVU = workRVU, peRVU, mpRVU
	out.WorkGPCI, out.PEGPCI, out.MPGPCI = gpci.WorkGPCI, gpci.PEGPCI, gpci.MPGPCI
	out.ConversionFactor = cf
	out.ModifiersApplied = modifiersApplied
	out.Notes = append(out.Notes, notes...)

	// step 8: round to cents
	out.MedicareAllowed = normalize.RoundCents(base)

	return out
}
