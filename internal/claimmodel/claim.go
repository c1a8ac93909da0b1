// Package claimmodel defines the input and output shapes for the repricing
// engine: the claim a caller submits, and the priced claim the engine
// returns. Input types are validated once at construction/entry and are
// never mutated by downstream packages.
package claimmodel

import (
	"fmt"
	"strconv"
	"strings"
)

// ClaimLine is a single billed line item on an input claim.
type ClaimLine struct {
	LineNumber int `json:"line_number"`

	// PFS fields.
	ProcedureCode   string  `json:"procedure_code,omitempty"`
	PlaceOfService  string  `json:"place_of_service,omitempty"`
	Modifiers       []string `json:"modifiers,omitempty"`
	Locality        string  `json:"locality,omitempty"`
	ZIP             string  `json:"zip,omitempty"`
	Units           int     `json:"units"`

	// IPPS fields.
	MSDRGCode      string  `json:"ms_drg_code,omitempty"`
	ProviderNumber string  `json:"provider_number,omitempty"`
	TotalCharges   float64 `json:"total_charges,omitempty"`
	CoveredDays    int     `json:"covered_days,omitempty"`
}

// IsInpatient reports whether this line carries the fields that route it
// to the IPPS path, per spec.md §4.6's dispatch discriminator.
func (l ClaimLine) IsInpatient() bool {
	return l.MSDRGCode != "" && l.ProviderNumber != ""
}

// IsUnsupportedServiceCode reports whether code is a dental D-code or an
// anesthesia CPT code (00100-01999) — methodologies spec.md §1's
// Non-goals exclude from the core. These must surface
// unsupported_service_type rather than being dispatched to PFS, which
// would either mis-price them (if a stray RVU row exists) or misreport
// the failure as procedure_code_not_found.
func IsUnsupportedServiceCode(code string) bool {
	if strings.HasPrefix(code, "D") {
		return true
	}
	if len(code) != 5 {
		return false
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return false
	}
	return n >= 100 && n <= 1999
}

// Claim is a complete input claim: one or more billed lines sharing a
// claim-level identifier.
type Claim struct {
	ClaimID        string      `json:"claim_id"`
	PatientID      string      `json:"patient_id,omitempty"`
	DiagnosisCodes []string    `json:"diagnosis_codes,omitempty"`
	Lines          []ClaimLine `json:"lines"`
}

// ClaimError reports a claim-level (not per-line) validation failure.
// Per spec.md §7, a claim-level error fails the entire reprice call with
// no partial output.
type ClaimError struct {
	ClaimID string
	Reason  string
}

func (e *ClaimError) Error() string {
	return fmt.Sprintf("claim %q: %s", e.ClaimID, e.Reason)
}

// Validate checks claim-shape invariants from spec.md §3.2: non-empty
// claim_id, at least one line, and unique line numbers. Line-level
// conditions are handled per line by the pricers rather than aborting the
// whole claim: a PFS line with neither locality nor zip gets a fatal
// per-line diagnostic, and units below 1 are priced as one unit.
func (c Claim) Validate() error {
	if c.ClaimID == "" {
		return &ClaimError{ClaimID: c.ClaimID, Reason: "claim_id is required"}
	}
	if len(c.Lines) == 0 {
		return &ClaimError{ClaimID: c.ClaimID, Reason: "at least one claim line is required"}
	}
	seen := make(map[int]bool, len(c.Lines))
	for _, l := range c.Lines {
		if l.LineNumber < 1 {
			return &ClaimError{ClaimID: c.ClaimID, Reason: fmt.Sprintf("line_number %d must be >= 1", l.LineNumber)}
		}
		if seen[l.LineNumber] {
			return &ClaimError{ClaimID: c.ClaimID, Reason: fmt.Sprintf("duplicate line_number %d", l.LineNumber)}
		}
		seen[l.LineNumber] = true
	}
	return nil
}

// Severity classifies a per-line Diagnostic.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityFatal   Severity = "fatal"
)

// Diagnostic codes, per spec.md §7.
const (
	CodeProcedureNotFound     = "procedure_code_not_found"
	CodeLocalityOrZIPRequired = "locality_or_zip_required"
	CodeUnsupportedService    = "unsupported_service_type"
	CodeDRGNotFound           = "drg_not_found"
	CodeHospitalNotFound      = "hospital_not_found"
	CodeWageIndexNotFound     = "wage_index_not_found"
	CodeGrouperUngroupable    = "grouper_ungroupable"
	CodeLocalityDefaulted     = "locality_defaulted"
	CodeUnknownModifier       = "unknown_modifier"
	CodeSeveritySlotFallback  = "severity_slot_fallback"
)

// Diagnostic is a structured per-line error or warning.
type Diagnostic struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// IsFatal reports whether d should zero out the line's allowed amount.
func (d Diagnostic) IsFatal() bool {
	return d.Severity == SeverityFatal
}

// RepricedLine is the engine's per-line pricing output. PFS- and
// IPPS-specific derivation fields are both present on the same struct
// (rather than split into a sum type) so the JSON shape stays flat and
// easy for downstream tooling to scan; only the fields relevant to the
// line's service type are populated.
type RepricedLine struct {
	LineNumber     int    `json:"line_number"`
	ServiceType    string `json:"service_type"` // "PFS", "IPPS", or "UNKNOWN" (no pricing path)
	ProcedureCode  string `json:"procedure_code,omitempty"`
	MSDRGCode      string `json:"ms_drg_code,omitempty"`

	// PFS derivation.
	WorkRVU          float64  `json:"work_rvu,omitempty"`
	PERVU            float64  `json:"pe_rvu,omitempty"`
	MPRVU            float64  `json:"mp_rvu,omitempty"`
	WorkGPCI         float64  `json:"work_gpci,omitempty"`
	PEGPCI           float64  `json:"pe_gpci,omitempty"`
	MPGPCI           float64  `json:"mp_gpci,omitempty"`
	ConversionFactor float64  `json:"conversion_factor,omitempty"`
	IsFacility       bool     `json:"is_facility,omitempty"`
	Locality         string   `json:"locality,omitempty"`
	ModifiersApplied []string `json:"modifiers_applied,omitempty"`
	MPPRRank         int      `json:"mppr_rank,omitempty"`
	Units            int      `json:"units,omitempty"`

	// IPPS derivation.
	DRGWeight        float64 `json:"drg_weight,omitempty"`
	WageIndex        float64 `json:"wage_index,omitempty"`
	OperatingPayment float64 `json:"operating_payment,omitempty"`
	CapitalPayment   float64 `json:"capital_payment,omitempty"`
	BasePayment      float64 `json:"base_payment,omitempty"`
	IMEAdjustment    float64 `json:"ime_adjustment,omitempty"`
	DSHAdjustment    float64 `json:"dsh_adjustment,omitempty"`
	OutlierPayment   float64 `json:"outlier_payment,omitempty"`
	HospitalName     string  `json:"hospital_name,omitempty"`
	CoveredDays      int     `json:"covered_days,omitempty"`

	MedicareAllowed float64      `json:"medicare_allowed"`
	Notes           []string     `json:"notes,omitempty"`
	Diagnostics     []Diagnostic `json:"diagnostics,omitempty"`
}

// HasFatalError reports whether any diagnostic on the line is fatal.
func (l RepricedLine) HasFatalError() bool {
	for _, d := range l.Diagnostics {
		if d.IsFatal() {
			return true
		}
	}
	return false
}

// RepricedClaim is the engine's output for one input claim.
type RepricedClaim struct {
	ClaimID      string         `json:"claim_id"`
	PatientID    string         `json:"patient_id,omitempty"`
	Lines        []RepricedLine `json:"lines"`
	TotalAllowed float64        `json:"total_allowed"`
	Notes        []string       `json:"notes,omitempty"`
}
