package refdata

// Params holds the year-specific scalar payment parameters from spec.md
// §4.1. All are fixed to the 2025/FY2026 plan year; the engine never
// re-prices a historical year in the same process (spec.md §1 Non-goals).
type Params struct {
	PFSConversionFactor float64

	IPPSOperatingStandardizedAmount float64
	IPPSLaborShare                  float64
	IPPSCapitalStandardizedAmount   float64

	IMEFactorC     float64
	IMEExponent    float64
	IMEIRBShift    float64

	DSHFactor float64

	OutlierFixedLossThreshold float64
	OutlierMarginalCostRatio  float64
	OutlierPayoutRate         float64
}

// DefaultParams returns the plan-year-2025/FY2026 parameters named in
// spec.md §4.1.
func DefaultParams() Params {
	return Params{
		PFSConversionFactor: 32.35,

		IPPSOperatingStandardizedAmount: 6690.00,
		IPPSLaborShare:                  0.676,
		IPPSCapitalStandardizedAmount:   488.59,

		IMEFactorC:  1.34,
		IMEExponent: 0.405,
		IMEIRBShift: 0.4,

		DSHFactor: 0.35,

		OutlierFixedLossThreshold: 46217.00,
		OutlierMarginalCostRatio:  0.25,
		OutlierPayoutRate:         0.80,
	}
}
