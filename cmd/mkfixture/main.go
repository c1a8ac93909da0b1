// mkfixture writes a small, representative set of the nine reference-data
// JSON files the repricing engine loads at startup, for use as package
// test fixtures and local manual testing.
// Usage: go run ./cmd/mkfixture --out testdata/refdata
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gyeh/repricer/internal/refdata"
)

func main() {
	out := flag.String("out", "testdata/refdata", "output directory for the reference-data JSON files")
	flag.Parse()

	if err := os.MkdirAll(*out, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "create output dir: %v\n", err)
		os.Exit(1)
	}

	modifier26 := "26"
	modifierTC := "TC"
	capitalWI := 1.08

	files := map[string]any{
		"rvu_data.json": []refdata.RVU{
			{ProcedureCode: "99213", Description: "Office visit, established patient",
				WorkRVUNonFacility: 1.30, PERVUNonFacility: 0.73, MPRVUNonFacility: 0.10,
				WorkRVUFacility: 1.30, PERVUFacility: 0.50, MPRVUFacility: 0.10, MPIndicator: 0},
			{ProcedureCode: "71046", Description: "Chest X-ray, 2 views",
				WorkRVUNonFacility: 0.22, PERVUNonFacility: 0.58, MPRVUNonFacility: 0.02,
				WorkRVUFacility: 0.22, PERVUFacility: 0.22, MPRVUFacility: 0.02, MPIndicator: 0},
			{ProcedureCode: "71046", Modifier: &modifier26, Description: "Chest X-ray, 2 views, professional component",
				WorkRVUNonFacility: 0.22, PERVUNonFacility: 0.58, MPRVUNonFacility: 0.02,
				WorkRVUFacility: 0.22, PERVUFacility: 0.22, MPRVUFacility: 0.02, MPIndicator: 0},
			{ProcedureCode: "71046", Modifier: &modifierTC, Description: "Chest X-ray, 2 views, technical component",
				WorkRVUNonFacility: 0.22, PERVUNonFacility: 0.58, MPRVUNonFacility: 0.02,
				WorkRVUFacility: 0.22, PERVUFacility: 0.22, MPRVUFacility: 0.02, MPIndicator: 0},
			{ProcedureCode: "20610", Description: "Arthrocentesis, major joint",
				WorkRVUNonFacility: 0.73, PERVUNonFacility: 0.52, MPRVUNonFacility: 0.06,
				WorkRVUFacility: 0.73, PERVUFacility: 0.30, MPRVUFacility: 0.06, MPIndicator: 0},
			{ProcedureCode: "27447", Description: "Total knee arthroplasty",
				WorkRVUNonFacility: 20.5, PERVUNonFacility: 10.0, MPRVUNonFacility: 2.0,
				WorkRVUFacility: 20.5, PERVUFacility: 9.0, MPRVUFacility: 2.0, MPIndicator: 2},
			{ProcedureCode: "29881", Description: "Knee arthroscopy with meniscectomy",
				WorkRVUNonFacility: 5.0, PERVUNonFacility: 3.0, MPRVUNonFacility: 0.5,
				WorkRVUFacility: 5.0, PERVUFacility: 2.5, MPRVUFacility: 0.5, MPIndicator: 2},
		},
		"gpci_data.json": []refdata.GPCI{
			{Locality: "00", LocalityName: "National average", WorkGPCI: 1.000, PEGPCI: 1.000, MPGPCI: 1.000},
			{Locality: "01", LocalityName: "Manhattan, NY", WorkGPCI: 1.059, PEGPCI: 1.147, MPGPCI: 1.574},
			{Locality: "02", LocalityName: "NYC suburbs/Long Island, NY", WorkGPCI: 1.042, PEGPCI: 1.098, MPGPCI: 1.489},
			{Locality: "18", LocalityName: "Los Angeles, CA", WorkGPCI: 1.049, PEGPCI: 1.141, MPGPCI: 0.715},
		},
		"ms_drg_data.json": []refdata.MSDRG{
			{MSDRG: "469", Description: "Major joint replacement or reattachment of lower extremity w MCC",
				RelativeWeight: 3.0868, GeometricMeanLOS: 4.3, ArithmeticMeanLOS: 5.6},
			{MSDRG: "470", Description: "Major joint replacement or reattachment of lower extremity w/o MCC",
				RelativeWeight: 1.9438, GeometricMeanLOS: 2.2, ArithmeticMeanLOS: 2.6},
			{MSDRG: "871", Description: "Septicemia or severe sepsis w/o MV 96+ hours w MCC",
				RelativeWeight: 1.7916, GeometricMeanLOS: 4.9, ArithmeticMeanLOS: 6.2},
			{MSDRG: "872", Description: "Septicemia or severe sepsis w/o MV 96+ hours w/o MCC",
				RelativeWeight: 1.0405, GeometricMeanLOS: 3.6, ArithmeticMeanLOS: 4.3},
		},
		"wage_index_data.json": []refdata.WageIndex{
			{CBSACode: "35620", AreaName: "New York-Newark-Jersey City, NY-NJ-PA", WageIndex: 1.2891, CapitalWageIndex: &capitalWI},
			{CBSACode: "31080", AreaName: "Los Angeles-Long Beach-Anaheim, CA", WageIndex: 1.1562},
			{CBSACode: "19100", AreaName: "Dallas-Fort Worth-Arlington, TX", WageIndex: 0.9725},
		},
		"hospital_data.json": []refdata.Hospital{
			mkHospital("330123", "NYU Langone Medical Center", "35620", 1.2891, true, 0.35, true, 0.18, false, 800),
			mkHospital("050456", "Cedars-Sinai Medical Center", "31080", 1.1562, true, 0.45, true, 0.223, false, 886),
			mkHospital("450789", "Parkland Health and Hospital System", "19100", 0.9725, true, 0.20, true, 0.40, false, 673),
		},
	}

	for name, v := range files {
		if err := writeJSON(filepath.Join(*out, name), v); err != nil {
			fmt.Fprintf(os.Stderr, "write %s: %v\n", name, err)
			os.Exit(1)
		}
	}

	if err := writeICD10CM(filepath.Join(*out, "icd10_cm_data.json")); err != nil {
		fmt.Fprintf(os.Stderr, "write icd10_cm_data.json: %v\n", err)
		os.Exit(1)
	}
	if err := writeICD10PCS(filepath.Join(*out, "icd10_pcs_data.json")); err != nil {
		fmt.Fprintf(os.Stderr, "write icd10_pcs_data.json: %v\n", err)
		os.Exit(1)
	}
	if err := writeMDC(filepath.Join(*out, "mdc_definitions.json")); err != nil {
		fmt.Fprintf(os.Stderr, "write mdc_definitions.json: %v\n", err)
		os.Exit(1)
	}
	if err := writeRules(filepath.Join(*out, "drg_grouping_rules.json")); err != nil {
		fmt.Fprintf(os.Stderr, "write drg_grouping_rules.json: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("wrote 9 reference-data fixtures to %s\n", *out)
}

func mkHospital(provider, name, cbsa string, wi float64, teaching bool, irb float64, dsh bool, dshPct float64, rural bool, beds int) refdata.Hospital {
	irbCopy, dshCopy, bedsCopy := irb, dshPct, beds
	return refdata.Hospital{
		ProviderNumber: provider, HospitalName: name, CBSACode: cbsa, WageIndex: wi,
		IsTeachingHospital: teaching, InternResidentToBedRatio: &irbCopy,
		IsDSHHospital: dsh, DSHPatientPercentage: &dshCopy,
		IsRural: rural, BedCount: &bedsCopy,
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func writeICD10CM(path string) error {
	type fileShape struct {
		Version string                         `json:"version"`
		Codes   map[string]map[string]refdata.ICD10CM `json:"codes"`
	}
	shape := fileShape{
		Version: "2025.1",
		Codes: map[string]map[string]refdata.ICD10CM{
			"musculoskeletal": {
				"M1611": {Description: "Unilateral primary osteoarthritis, right hip", MDC: "08"},
			},
			"infectious": {
				"A419":  {Description: "Sepsis, unspecified organism", MDC: "18"},
				"R6520": {Description: "Severe sepsis without septic shock", MDC: "18", IsMCC: true},
				"N179":  {Description: "Acute kidney failure, unspecified", MDC: "18", IsMCC: true},
			},
		},
	}
	return writeJSON(path, shape)
}

func writeICD10PCS(path string) error {
	type fileShape struct {
		Version    string                          `json:"version"`
		Procedures map[string]map[string]refdata.ICD10PCS `json:"procedures"`
	}
	shape := fileShape{
		Version: "2025.1",
		Procedures: map[string]map[string]refdata.ICD10PCS{
			"musculoskeletal": {
				"0SR9019": {Description: "Replacement of right hip joint with synthetic substitute, open approach", IsORProcedure: true},
			},
		},
	}
	return writeJSON(path, shape)
}

func writeMDC(path string) error {
	type fileShape struct {
		MDCs map[string]refdata.MDCDefinition `json:"mdcs"`
	}
	shape := fileShape{MDCs: map[string]refdata.MDCDefinition{
		"08": {Name: "Diseases and Disorders of the Musculoskeletal System and Connective Tissue", BodySystem: "musculoskeletal"},
		"18": {Name: "Infectious and Parasitic Diseases", BodySystem: "infectious"},
	}}
	return writeJSON(path, shape)
}

func writeRules(path string) error {
	type fileShape struct {
		Rules map[string]refdata.MDCRules `json:"rules"`
	}
	shape := fileShape{Rules: map[string]refdata.MDCRules{
		"08": {
			Surgical: []refdata.DRGFamily{
				{Name: "Major joint replacement", Pattern: "0SR*", Description: "Joint replacement procedures",
					DRGs: refdata.SeverityDRGs{WithMCC: "469", WithCC: "470", WithoutCCMCC: "470"}},
			},
		},
		"18": {
			Medical: []refdata.DRGFamily{
				{Name: "Septicemia", Pattern: "A41*", Description: "Sepsis and severe sepsis",
					DRGs: refdata.SeverityDRGs{WithMCC: "871", WithCC: "872", WithoutCCMCC: "872"}},
			},
		},
	}}
	return writeJSON(path, shape)
}
