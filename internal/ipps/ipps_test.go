package ipps_test

import (
	"math"
	"testing"

	"github.com/gyeh/repricer/internal/claimmodel"
	"github.com/gyeh/repricer/internal/ipps"
	"github.com/gyeh/repricer/internal/refdata"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 0.01 }

func TestPrice_BaseEqualsOperatingPlusCapital(t *testing.T) {
	irb := 0.0
	dsh := 0.0
	store := refdata.NewForTesting(
		refdata.DefaultParams(),
		nil, nil,
		[]refdata.MSDRG{{MSDRG: "470", Description: "Major joint replacement", RelativeWeight: 1.9, GeometricMeanLOS: 2.3, ArithmeticMeanLOS: 2.8}},
		nil,
		[]refdata.Hospital{{ProviderNumber: "123456", HospitalName: "General", CBSACode: "35620", WageIndex: 1.05,
			InternResidentToBedRatio: &irb, DSHPatientPercentage: &dsh}},
	)
	line := claimmodel.ClaimLine{LineNumber: 1, MSDRGCode: "470", ProviderNumber: "123456", TotalCharges: 50000, CoveredDays: 4}
	out := ipps.Price(store, line)
	if out.HasFatalError() {
		t.Fatalf("unexpected fatal diagnostics: %+v", out.Diagnostics)
	}
	if !almostEqual(out.BasePayment, out.OperatingPayment+out.CapitalPayment) {
		t.Errorf("base (%v) != operating (%v) + capital (%v)", out.BasePayment, out.OperatingPayment, out.CapitalPayment)
	}
}

func TestPrice_TeachingHospitalWithOutlier(t *testing.T) {
	irb := 0.85
	dsh := 22.3
	store := refdata.NewForTesting(
		refdata.DefaultParams(),
		nil, nil,
		[]refdata.MSDRG{{MSDRG: "470", Description: "Major joint replacement", RelativeWeight: 1.9, GeometricMeanLOS: 2.3, ArithmeticMeanLOS: 2.8}},
		nil,
		[]refdata.Hospital{{
			ProviderNumber: "654321", HospitalName: "University Medical", CBSACode: "35620", WageIndex: 1.10,
			IsTeachingHospital: true, InternResidentToBedRatio: &irb,
			IsDSHHospital: true, DSHPatientPercentage: &dsh,
		}},
	)
	line := claimmodel.ClaimLine{LineNumber: 1, MSDRGCode: "470", ProviderNumber: "654321", TotalCharges: 2_000_000, CoveredDays: 7}
	out := ipps.Price(store, line)
	if out.HasFatalError() {
		t.Fatalf("unexpected fatal diagnostics: %+v", out.Diagnostics)
	}
	if out.IMEAdjustment <= 0 {
		t.Errorf("expected positive IME adjustment, got %v", out.IMEAdjustment)
	}
	if out.DSHAdjustment <= 0 {
		t.Errorf("expected positive DSH adjustment, got %v", out.DSHAdjustment)
	}
	if out.OutlierPayment <= 300000 {
		t.Errorf("expected outlier payment to dominate (>$300,000), got %v", out.OutlierPayment)
	}
	if out.MedicareAllowed <= out.OutlierPayment {
		t.Errorf("total allowed (%v) should exceed the outlier component alone (%v)", out.MedicareAllowed, out.OutlierPayment)
	}
}

func TestPrice_OutlierZeroBelowThreshold(t *testing.T) {
	irb, dsh := 0.0, 0.0
	store := refdata.NewForTesting(
		refdata.DefaultParams(),
		nil, nil,
		[]refdata.MSDRG{{MSDRG: "470", RelativeWeight: 1.9}},
		nil,
		[]refdata.Hospital{{ProviderNumber: "111111", CBSACode: "00000", WageIndex: 1.0,
			InternResidentToBedRatio: &irb, DSHPatientPercentage: &dsh}},
	)
	line := claimmodel.ClaimLine{LineNumber: 1, MSDRGCode: "470", ProviderNumber: "111111", TotalCharges: 1000, CoveredDays: 2}
	out := ipps.Price(store, line)
	if out.OutlierPayment != 0 {
		t.Errorf("expected zero outlier payment for a low-charge claim, got %v", out.OutlierPayment)
	}
}

func TestPrice_DRGNotFound(t *testing.T) {
	store := refdata.NewForTesting(refdata.DefaultParams(), nil, nil, nil, nil, nil)
	line := claimmodel.ClaimLine{LineNumber: 1, MSDRGCode: "999", ProviderNumber: "123456", TotalCharges: 1000}
	out := ipps.Price(store, line)
	if !out.HasFatalError() {
		t.Fatalf("expected a fatal diagnostic for unknown ms-drg")
	}
	if out.Diagnostics[0].Code != claimmodel.CodeDRGNotFound {
		t.Errorf("got diagnostic code %q, want %q", out.Diagnostics[0].Code, claimmodel.CodeDRGNotFound)
	}
}

func TestPrice_HospitalWageIndexFallsBackToCBSA(t *testing.T) {
	store := refdata.NewForTesting(
		refdata.DefaultParams(),
		nil, nil,
		[]refdata.MSDRG{{MSDRG: "470", RelativeWeight: 1.9}},
		[]refdata.WageIndex{{CBSACode: "35620", AreaName: "Philadelphia", WageIndex: 0.92}},
		[]refdata.Hospital{{ProviderNumber: "222222", CBSACode: "35620", WageIndex: 0}},
	)
	line := claimmodel.ClaimLine{LineNumber: 1, MSDRGCode: "470", ProviderNumber: "222222", TotalCharges: 1000}
	out := ipps.Price(store, line)
	if out.HasFatalError() {
		t.Fatalf("unexpected fatal diagnostics: %+v", out.Diagnostics)
	}
	if out.WageIndex != 0.92 {
		t.Errorf("expected wage index fallback from CBSA table, got %v", out.WageIndex)
	}
}
