package refdata_test

import (
	"testing"

	"github.com/gyeh/repricer/internal/logging"
	"github.com/gyeh/repricer/internal/refdata"
)

func TestLoad_ReadsAllNineFiles(t *testing.T) {
	log := logging.Setup("text")
	store, err := refdata.Load("testdata", 0, log)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if _, ok := store.GetRVU("99213", ""); !ok {
		t.Error("expected rvu 99213 to load")
	}
	if _, ok := store.GetGPCI("00"); !ok {
		t.Error("expected national average gpci row to load")
	}
	if _, ok := store.GetMSDRG("470"); !ok {
		t.Error("expected ms-drg 470 to load")
	}
	if _, ok := store.GetWageIndex("35620"); !ok {
		t.Error("expected wage index 35620 to load")
	}
	if _, ok := store.GetHospital("330123"); !ok {
		t.Error("expected hospital 330123 to load")
	}
	if _, ok := store.LookupDiagnosis("M1611"); !ok {
		t.Error("expected diagnosis M1611 to load")
	}
	if _, ok := store.LookupProcedure("0SR9019"); !ok {
		t.Error("expected procedure 0SR9019 to load")
	}
	if _, ok := store.LookupMDC("08"); !ok {
		t.Error("expected MDC 08 to load")
	}
	if _, ok := store.RulesForMDC("08"); !ok {
		t.Error("expected grouping rules for MDC 08 to load")
	}
}

func TestLoad_ConversionFactorOverrideAppliesOnlyWhenPositive(t *testing.T) {
	log := logging.Setup("text")

	store, err := refdata.Load("testdata", 0, log)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if store.Params.PFSConversionFactor != refdata.DefaultParams().PFSConversionFactor {
		t.Errorf("expected default conversion factor when override is 0, got %v", store.Params.PFSConversionFactor)
	}

	overridden, err := refdata.Load("testdata", 40.00, log)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if overridden.Params.PFSConversionFactor != 40.00 {
		t.Errorf("expected overridden conversion factor 40.00, got %v", overridden.Params.PFSConversionFactor)
	}
}

func TestLoad_MissingFileIsAnError(t *testing.T) {
	log := logging.Setup("text")
	if _, err := refdata.Load("testdata/does-not-exist", 0, log); err == nil {
		t.Fatal("expected an error for a missing reference data directory")
	}
}

func TestLookup_MissingKeyReturnsNotFoundSentinelNotPanic(t *testing.T) {
	log := logging.Setup("text")
	store, err := refdata.Load("testdata", 0, log)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, ok := store.GetRVU("00000", ""); ok {
		t.Error("expected unknown procedure code to report not-found")
	}
}

func TestGetRVU_FallsBackToModifierlessRowWhenModifierSpecificRowAbsent(t *testing.T) {
	log := logging.Setup("text")
	store, err := refdata.Load("testdata", 0, log)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rvu, ok := store.GetRVU("99213", "25")
	if !ok {
		t.Fatal("expected fallback to the modifier-less 99213 row")
	}
	if rvu.ProcedureCode != "99213" {
		t.Errorf("got procedure code %q, want 99213", rvu.ProcedureCode)
	}
}
