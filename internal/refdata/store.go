// Package refdata loads and indexes the fee-schedule, DRG, and clinical
// reference tables the pricing engine consults. A Store is built once at
// engine initialization from a directory of normalized JSON files and is
// read-only for the rest of the process lifetime: every lookup method has
// a pointer receiver but never mutates the Store, so one Store may be
// shared across goroutines pricing claims concurrently (spec.md §5).
package refdata

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/gyeh/repricer/internal/normalize"
)

// Store is the read-only, indexed handle to all loaded reference data.
type Store struct {
	Params Params

	rvu       map[string]RVU // key: code, or code+":"+modifier
	gpci      map[string]GPCI
	msdrg     map[string]MSDRG
	wageIndex map[string]WageIndex
	hospital  map[string]Hospital
	diagnosis map[string]ICD10CM
	procedure map[string]ICD10PCS
	mdc       map[string]MDCDefinition
	rules     map[string]MDCRules
}

// The nine required data files, per spec.md §4.1/§6.
const (
	fileRVU       = "rvu_data.json"
	fileGPCI      = "gpci_data.json"
	fileMSDRG     = "ms_drg_data.json"
	fileWageIndex = "wage_index_data.json"
	fileHospital  = "hospital_data.json"
	fileICD10CM   = "icd10_cm_data.json"
	fileICD10PCS  = "icd10_pcs_data.json"
	fileMDC       = "mdc_definitions.json"
	fileRules     = "drg_grouping_rules.json"
)

// on-disk shapes for the two nested (non-array) files.
type icd10CMFile struct {
	Version string                         `json:"version"`
	Codes   map[string]map[string]ICD10CM `json:"codes"`
}

type icd10PCSFile struct {
	Version    string                          `json:"version"`
	Procedures map[string]map[string]ICD10PCS `json:"procedures"`
}

type mdcFile struct {
	MDCs map[string]MDCDefinition `json:"mdcs"`
}

type rulesFile struct {
	Rules map[string]MDCRules `json:"rules"`
}

// Load reads every reference data file from dir and builds the indexed
// Store. conversionFactorOverride, when positive, replaces the default PFS
// conversion factor (spec.md §6 Configuration).
func Load(dir string, conversionFactorOverride float64, log zerolog.Logger) (*Store, error) {
	s := &Store{
		Params:    DefaultParams(),
		rvu:       make(map[string]RVU),
		gpci:      make(map[string]GPCI),
		msdrg:     make(map[string]MSDRG),
		wageIndex: make(map[string]WageIndex),
		hospital:  make(map[string]Hospital),
		diagnosis: make(map[string]ICD10CM),
		procedure: make(map[string]ICD10PCS),
		mdc:       make(map[string]MDCDefinition),
		rules:     make(map[string]MDCRules),
	}
	if conversionFactorOverride > 0 {
		s.Params.PFSConversionFactor = conversionFactorOverride
	}

	rvus, err := loadArray[RVU](dir, fileRVU)
	if err != nil {
		return nil, err
	}
	for _, r := range rvus {
		s.rvu[rvuKey(r.ProcedureCode, r.Modifier)] = r
	}

	gpcis, err := loadArray[GPCI](dir, fileGPCI)
	if err != nil {
		return nil, err
	}
	for _, g := range gpcis {
		s.gpci[g.Locality] = g
	}

	drgs, err := loadArray[MSDRG](dir, fileMSDRG)
	if err != nil {
		return nil, err
	}
	for _, d := range drgs {
		s.msdrg[d.MSDRG] = d
	}

	wis, err := loadArray[WageIndex](dir, fileWageIndex)
	if err != nil {
		return nil, err
	}
	for _, w := range wis {
		s.wageIndex[w.CBSACode] = w
	}

	hosps, err := loadArray[Hospital](dir, fileHospital)
	if err != nil {
		return nil, err
	}
	for _, h := range hosps {
		s.hospital[h.ProviderNumber] = h
	}

	var cm icd10CMFile
	if err := loadObject(dir, fileICD10CM, &cm); err != nil {
		return nil, err
	}
	for _, section := range cm.Codes {
		for code, entry := range section {
			entry.Code = normalize.StripDecimal(code)
			s.diagnosis[entry.Code] = entry
		}
	}

	var pcs icd10PCSFile
	if err := loadObject(dir, fileICD10PCS, &pcs); err != nil {
		return nil, err
	}
	for _, group := range pcs.Procedures {
		for code, entry := range group {
			entry.Code = normalize.StripDecimal(code)
			s.procedure[entry.Code] = entry
		}
	}

	var mdcs mdcFile
	if err := loadObject(dir, fileMDC, &mdcs); err != nil {
		return nil, err
	}
	for code, def := range mdcs.MDCs {
		def.Code = code
		s.mdc[code] = def
	}

	var rules rulesFile
	if err := loadObject(dir, fileRules, &rules); err != nil {
		return nil, err
	}
	s.rules = rules.Rules

	log.Info().
		Int("rvu_rows", len(s.rvu)).
		Int("gpci_rows", len(s.gpci)).
		Int("ms_drg_rows", len(s.msdrg)).
		Int("wage_index_rows", len(s.wageIndex)).
		Int("hospital_rows", len(s.hospital)).
		Int("diagnosis_codes", len(s.diagnosis)).
		Int("procedure_codes", len(s.procedure)).
		Int("mdc_count", len(s.mdc)).
		Int("mdc_rule_sets", len(s.rules)).
		Msg("reference data loaded")

	return s, nil
}

// loadArray reads filename from dir as a JSON array of T. A missing file
// is a load-time error: unlike a missing key at lookup time (which
// returns a not-found sentinel, per spec.md §4.1), a missing reference
// file means the engine cannot initialize at all.
func loadArray[T any](dir, filename string) ([]T, error) {
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return nil, fmt.Errorf("refdata: read %s: %w", filename, err)
	}
	var rows []T
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("refdata: parse %s: %w", filename, err)
	}
	return rows, nil
}

func loadObject(dir, filename string, v any) error {
	data, err := os.ReadFile(filepath.Join(dir, filename))
	if err != nil {
		return fmt.Errorf("refdata: read %s: %w", filename, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("refdata: parse %s: %w", filename, err)
	}
	return nil
}

func rvuKey(code string, modifier *string) string {
	if modifier != nil && *modifier != "" {
		return code + ":" + *modifier
	}
	return code
}
