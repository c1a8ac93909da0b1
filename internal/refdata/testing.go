package refdata

// NewForTesting builds a Store directly from in-memory rows, bypassing
// Load's file I/O, for package tests elsewhere in the module that need a
// small fixture Store without writing JSON fixture files to disk.
func NewForTesting(params Params, rvus []RVU, gpcis []GPCI, drgs []MSDRG, wageIndexes []WageIndex, hospitals []Hospital) *Store {
	s := &Store{
		Params:    params,
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
	for _, r := range rvus {
		s.rvu[rvuKey(r.ProcedureCode, r.Modifier)] = r
	}
	for _, g := range gpcis {
		s.gpci[g.Locality] = g
	}
	for _, d := range drgs {
		s.msdrg[d.MSDRG] = d
	}
	for _, w := range wageIndexes {
		s.wageIndex[w.CBSACode] = w
	}
	for _, h := range hospitals {
		s.hospital[h.ProviderNumber] = h
	}
	return s
}

// WithDiagnoses adds ICD-10-CM rows to a testing Store, keyed by the
// code with its decimal point already stripped by the caller.
func (s *Store) WithDiagnoses(entries map[string]ICD10CM) *Store {
	for code, e := range entries {
		e.Code = code
		s.diagnosis[code] = e
	}
	return s
}

// WithProcedures adds ICD-10-PCS rows to a testing Store.
func (s *Store) WithProcedures(entries map[string]ICD10PCS) *Store {
	for code, e := range entries {
		e.Code = code
		s.procedure[code] = e
	}
	return s
}

// WithMDCs adds MDC definitions to a testing Store.
func (s *Store) WithMDCs(entries map[string]MDCDefinition) *Store {
	for code, e := range entries {
		e.Code = code
		s.mdc[code] = e
	}
	return s
}

// WithRules adds MDC grouping rule sets to a testing Store.
func (s *Store) WithRules(rules map[string]MDCRules) *Store {
	for mdc, r := range rules {
		s.rules[mdc] = r
	}
	return s
}
