// Package ipps implements the Inpatient Prospective Payment System
// calculator: DRG-weighted hospital payment with teaching, disproportionate
// share, and outlier adjustments, per spec.md §4.5.
package ipps

import (
	"fmt"
	"math"

	"github.com/gyeh/repricer/internal/claimmodel"
	"github.com/gyeh/repricer/internal/normalize"
	"github.com/gyeh/repricer/internal/refdata"
)

// Price computes the Medicare-allowed amount for one inpatient claim line.
func Price(store *refdata.Store, line claimmodel.ClaimLine) claimmodel.RepricedLine {
	out := claimmodel.RepricedLine{
		LineNumber:  line.LineNumber,
		ServiceType: "IPPS",
		MSDRGCode:   line.MSDRGCode,
		CoveredDays: line.CoveredDays,
	}

	// step 1: lookups
	drg, ok := store.GetMSDRG(line.MSDRGCode)
	if !ok {
		out.Diagnostics = append(out.Diagnostics, claimmodel.Diagnostic{
			Code:     claimmodel.CodeDRGNotFound,
			Message:  fmt.Sprintf("ms-drg %q not found", line.MSDRGCode),
			Severity: claimmodel.SeverityFatal,
		})
		return out
	}
	out.DRGWeight = drg.RelativeWeight

	hospital, ok := store.GetHospital(line.ProviderNumber)
	if !ok {
		out.Diagnostics = append(out.Diagnostics, claimmodel.Diagnostic{
			Code:     claimmodel.CodeHospitalNotFound,
			Message:  fmt.Sprintf("provider %q not found", line.ProviderNumber),
			Severity: claimmodel.SeverityFatal,
		})
		return out
	}
	out.HospitalName = hospital.HospitalName

	wageIndex := hospital.WageIndex
	capitalGAF := wageIndex
	if hospital.WageIndex == 0 {
		wi, found := store.GetWageIndex(hospital.CBSACode)
		if !found {
			out.Diagnostics = append(out.Diagnostics, claimmodel.Diagnostic{
				Code:     claimmodel.CodeWageIndexNotFound,
				Message:  fmt.Sprintf("wage index not found for hospital %q (cbsa %q)", line.ProviderNumber, hospital.CBSACode),
				Severity: claimmodel.SeverityFatal,
			})
			return out
		}
		wageIndex = wi.WageIndex
		capitalGAF = wi.CapitalGAF()
	}
	out.WageIndex = wageIndex

	p := store.Params

	// step 2: operating payment
	operating := (p.IPPSOperatingStandardizedAmount*p.IPPSLaborShare*wageIndex +
		p.IPPSOperatingStandardizedAmount*(1-p.IPPSLaborShare)) * drg.RelativeWeight
	out.OperatingPayment = operating

	// step 3: capital payment
	capital := p.IPPSCapitalStandardizedAmount * capitalGAF * drg.RelativeWeight
	out.CapitalPayment = capital

	// step 4: base payment
	base := operating + capital
	out.BasePayment = base

	var notes []string

	// step 5: IME adjustment
	var ime float64
	if hospital.IsTeachingHospital {
		irb := 0.0
		if hospital.InternResidentToBedRatio != nil {
			irb = *hospital.InternResidentToBedRatio
		}
		multiplier := p.IMEFactorC * (math.Pow(irb+p.IMEIRBShift, p.IMEExponent) - 1)
		ime = base * multiplier
		notes = append(notes, fmt.Sprintf("IME applied: multiplier %.4f", multiplier))
	}
	out.IMEAdjustment = ime

	// step 6: DSH adjustment
	var dsh float64
	if hospital.IsDSHHospital {
		pct := 0.0
		if hospital.DSHPatientPercentage != nil {
			pct = *hospital.DSHPatientPercentage
		}
		multiplier := math.Sqrt(pct/100) * p.DSHFactor
		dsh = base * multiplier
		notes = append(notes, fmt.Sprintf("DSH applied: multiplier %.4f", multiplier))
	}
	out.DSHAdjustment = dsh

	// step 7: outlier
	estimatedCost := line.TotalCharges * p.OutlierMarginalCostRatio
	adjustedBase := base + ime + dsh
	excess := estimatedCost - adjustedBase
	var outlier float64
	if excess > p.OutlierFixedLossThreshold {
		outlier = (excess - p.OutlierFixedLossThreshold) * p.OutlierPayoutRate
		notes = append(notes, fmt.Sprintf("outlier payment: excess cost %.2f over threshold", excess))
	}
	out.OutlierPayment = outlier

	out.Notes = notes

	// step 8: allowed amount, rounded to cents
	out.MedicareAllowed = normalize.RoundCents(base + ime + dsh + outlier)

	return out
}
