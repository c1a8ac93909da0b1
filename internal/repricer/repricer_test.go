package repricer_test

import (
	"math"
	"testing"

	"github.com/gyeh/repricer/internal/claimmodel"
	"github.com/gyeh/repricer/internal/refdata"
	"github.com/gyeh/repricer/internal/repricer"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 0.01 }

func mixedStore(t *testing.T) *refdata.Store {
	t.Helper()
	irb, dsh := 0.0, 0.0
	return refdata.NewForTesting(
		refdata.DefaultParams(),
		[]refdata.RVU{
			{ProcedureCode: "99213", WorkRVUNonFacility: 1.3, PERVUNonFacility: 0.73, MPRVUNonFacility: 0.10,
				WorkRVUFacility: 1.3, PERVUFacility: 0.5, MPRVUFacility: 0.10, MPIndicator: 0},
			{ProcedureCode: "27447", WorkRVUNonFacility: 20.5, PERVUNonFacility: 10.0, MPRVUNonFacility: 2.0,
				WorkRVUFacility: 20.5, PERVUFacility: 9.0, MPRVUFacility: 2.0, MPIndicator: 2},
			{ProcedureCode: "29881", WorkRVUNonFacility: 5.0, PERVUNonFacility: 3.0, MPRVUNonFacility: 0.5,
				WorkRVUFacility: 5.0, PERVUFacility: 2.5, MPRVUFacility: 0.5, MPIndicator: 2},
		},
		[]refdata.GPCI{{Locality: "01", WorkGPCI: 1.0, PEGPCI: 1.0, MPGPCI: 1.0}, {Locality: "00", WorkGPCI: 1.0, PEGPCI: 1.0, MPGPCI: 1.0}},
		[]refdata.MSDRG{{MSDRG: "470", RelativeWeight: 1.9}},
		nil,
		[]refdata.Hospital{{ProviderNumber: "123456", CBSACode: "35620", WageIndex: 1.0,
			InternResidentToBedRatio: &irb, DSHPatientPercentage: &dsh}},
	)
}

func TestRepriceClaim_TotalEqualsSumOfLines(t *testing.T) {
	store := mixedStore(t)
	claim := claimmodel.Claim{
		ClaimID: "claim-1",
		Lines: []claimmodel.ClaimLine{
			{LineNumber: 1, ProcedureCode: "99213", PlaceOfService: "11", Locality: "01", Units: 1},
			{LineNumber: 2, MSDRGCode: "470", ProviderNumber: "123456", TotalCharges: 30000, CoveredDays: 3},
		},
	}
	out, err := repricer.RepriceClaim(store, claim)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var sum float64
	for _, l := range out.Lines {
		sum += l.MedicareAllowed
	}
	if !almostEqual(sum, out.TotalAllowed) {
		t.Errorf("total_allowed %v does not equal sum of lines %v", out.TotalAllowed, sum)
	}
}

func TestRepriceClaim_MPPRRanksAcrossClaim(t *testing.T) {
	store := mixedStore(t)
	claim := claimmodel.Claim{
		ClaimID: "claim-2",
		Lines: []claimmodel.ClaimLine{
			{LineNumber: 1, ProcedureCode: "27447", PlaceOfService: "11", Locality: "01", Units: 1}, // higher RVU sum
			{LineNumber: 2, ProcedureCode: "29881", PlaceOfService: "11", Locality: "01", Units: 1}, // lower RVU sum
		},
	}
	out, err := repricer.RepriceClaim(store, claim)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	primary, secondary := out.Lines[0], out.Lines[1]
	if primary.MPPRRank != 1 {
		t.Errorf("expected the higher-RVU line to rank 1, got %d", primary.MPPRRank)
	}
	if secondary.MPPRRank != 2 {
		t.Errorf("expected the lower-RVU line to rank 2, got %d", secondary.MPPRRank)
	}
	if secondary.Notes == nil {
		t.Errorf("expected the reduced line to carry an MPPR note")
	}
}

func TestRepriceClaim_FatalLineErrorDoesNotAbortClaim(t *testing.T) {
	store := mixedStore(t)
	claim := claimmodel.Claim{
		ClaimID: "claim-3",
		Lines: []claimmodel.ClaimLine{
			{LineNumber: 1, ProcedureCode: "99213", PlaceOfService: "11", Locality: "01", Units: 1},
			{LineNumber: 2, ProcedureCode: "00000", PlaceOfService: "11", Locality: "01", Units: 1},
		},
	}
	out, err := repricer.RepriceClaim(store, claim)
	if err != nil {
		t.Fatalf("a per-line error must not abort the claim: %v", err)
	}
	if len(out.Lines) != 2 {
		t.Fatalf("expected both lines in the output, got %d", len(out.Lines))
	}
	if out.Lines[1].MedicareAllowed != 0 {
		t.Errorf("a fatally-errored line must report $0 allowed, got %v", out.Lines[1].MedicareAllowed)
	}
	if !out.Lines[1].HasFatalError() {
		t.Errorf("expected the second line to carry a fatal diagnostic")
	}
}

func TestRepriceClaim_AnesthesiaCodeIsUnsupported(t *testing.T) {
	store := mixedStore(t)
	claim := claimmodel.Claim{
		ClaimID: "claim-anesthesia",
		Lines: []claimmodel.ClaimLine{
			{LineNumber: 1, ProcedureCode: "00142", PlaceOfService: "11", Locality: "01", Units: 1},
		},
	}
	out, err := repricer.RepriceClaim(store, claim)
	if err != nil {
		t.Fatalf("unexpected claim-level error: %v", err)
	}
	if !out.Lines[0].HasFatalError() {
		t.Fatalf("expected a fatal unsupported_service_type diagnostic for an anesthesia code")
	}
	if out.Lines[0].Diagnostics[0].Code != claimmodel.CodeUnsupportedService {
		t.Errorf("got diagnostic code %q, want %q", out.Lines[0].Diagnostics[0].Code, claimmodel.CodeUnsupportedService)
	}
}

func TestRepriceClaim_DentalCodeIsUnsupported(t *testing.T) {
	store := mixedStore(t)
	claim := claimmodel.Claim{
		ClaimID: "claim-dental",
		Lines: []claimmodel.ClaimLine{
			{LineNumber: 1, ProcedureCode: "D0120", PlaceOfService: "11", Locality: "01", Units: 1},
		},
	}
	out, err := repricer.RepriceClaim(store, claim)
	if err != nil {
		t.Fatalf("unexpected claim-level error: %v", err)
	}
	if !out.Lines[0].HasFatalError() {
		t.Fatalf("expected a fatal unsupported_service_type diagnostic for a dental code")
	}
	if out.Lines[0].Diagnostics[0].Code != claimmodel.CodeUnsupportedService {
		t.Errorf("got diagnostic code %q, want %q", out.Lines[0].Diagnostics[0].Code, claimmodel.CodeUnsupportedService)
	}
}

func TestRepriceClaim_ClaimLevelValidationFailsWholeCall(t *testing.T) {
	store := mixedStore(t)
	claim := claimmodel.Claim{ClaimID: "claim-4"} // no lines
	_, err := repricer.RepriceClaim(store, claim)
	if err == nil {
		t.Fatal("expected a claim-level validation error")
	}
}

func TestRepriceClaim_UnsupportedServiceType(t *testing.T) {
	store := mixedStore(t)
	claim := claimmodel.Claim{
		ClaimID: "claim-5",
		Lines:   []claimmodel.ClaimLine{{LineNumber: 1}}, // neither PFS nor IPPS shape
	}
	out, err := repricer.RepriceClaim(store, claim)
	if err != nil {
		t.Fatalf("unexpected claim-level error: %v", err)
	}
	if !out.Lines[0].HasFatalError() {
		t.Fatalf("expected a fatal unsupported_service_type diagnostic")
	}
	if out.Lines[0].Diagnostics[0].Code != claimmodel.CodeUnsupportedService {
		t.Errorf("got diagnostic code %q, want %q", out.Lines[0].Diagnostics[0].Code, claimmodel.CodeUnsupportedService)
	}
}
