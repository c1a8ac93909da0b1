// Package grouper implements the MS-DRG grouper: assignment of a claim's
// diagnoses and procedures to a Medicare Severity Diagnosis-Related Group,
// per spec.md §4.4.
package grouper

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/gyeh/repricer/internal/normalize"
	"github.com/gyeh/repricer/internal/refdata"
)

// Ungroupable is the sentinel MS-DRG code returned when no rule matches a
// case — spec.md §4.4 step 9 forbids guessing a plausible DRG instead.
const Ungroupable = "UNGROUPABLE"

// UnassignedMDC is the pre-MDC tag used when the principal diagnosis has
// no known MDC (spec.md §4.4 step 3).
const UnassignedMDC = "00"

// DRGType classifies how a case's DRG family was selected.
type DRGType string

const (
	Surgical DRGType = "SURGICAL"
	Medical  DRGType = "MEDICAL"
	PreMDC   DRGType = "PRE-MDC"
)

// Input is one case to group.
type Input struct {
	PrincipalDiagnosis string   `json:"principal_diagnosis"`
	SecondaryDiagnoses []string `json:"secondary_diagnoses,omitempty"`
	Procedures         []string `json:"procedures,omitempty"`
	Age                int      `json:"age"`
	Sex                string   `json:"sex"` // "M", "F", or "U"
	DischargeStatus    string   `json:"discharge_status,omitempty"`
	LengthOfStay       int      `json:"length_of_stay,omitempty"`
}

// Result is the grouper's output for one case.
type Result struct {
	MSDRG             string   `json:"ms_drg"`
	Description       string   `json:"description,omitempty"`
	MDC               string   `json:"mdc"`
	MDCDescription    string   `json:"mdc_description,omitempty"`
	DRGType           DRGType  `json:"drg_type"`
	HasMCC            bool     `json:"has_mcc"`
	HasCC             bool     `json:"has_cc"`
	MCCList           []string `json:"mcc_list,omitempty"`
	CCList            []string `json:"cc_list,omitempty"`
	RelativeWeight    float64  `json:"relative_weight,omitempty"`
	GeometricMeanLOS  float64  `json:"geometric_mean_los,omitempty"`
	ArithmeticMeanLOS float64  `json:"arithmetic_mean_los,omitempty"`
	GroupingVersion   string   `json:"grouping_version"`
	Warnings          []string `json:"warnings,omitempty"`
	Errors            []string `json:"errors,omitempty"`
}

// GroupingVersion is the fixed version tag stamped on every Result, per
// spec.md §4.4's grouping_version output field.
const GroupingVersion = "2025.1"

func ungroupable(reason string, warnings []string) Result {
	return Result{
		MSDRG:           Ungroupable,
		DRGType:         PreMDC,
		GroupingVersion: GroupingVersion,
		Warnings:        warnings,
		Errors:          []string{reason},
	}
}

// Group assigns a case to an MS-DRG. It never panics; every failure mode
// is reported through Result.Errors with MSDRG = Ungroupable.
func Group(store *refdata.Store, in Input) Result {
	var warnings []string

	// step 2: validate
	if strings.TrimSpace(in.PrincipalDiagnosis) == "" {
		return ungroupable("principal_diagnosis is required", warnings)
	}
	if in.Age < 0 || in.Age > 120 {
		return ungroupable(fmt.Sprintf("age %d out of range [0,120]", in.Age), warnings)
	}
	switch in.Sex {
	case "M", "F", "U":
	default:
		return ungroupable(fmt.Sprintf("sex %q must be one of M, F, U", in.Sex), warnings)
	}

	// step 1: normalize
	principal := normalize.StripDecimal(in.PrincipalDiagnosis)
	secondary := make([]string, len(in.SecondaryDiagnoses))
	for i, d := range in.SecondaryDiagnoses {
		secondary[i] = normalize.StripDecimal(d)
	}
	procedures := make([]string, len(in.Procedures))
	for i, p := range in.Procedures {
		procedures[i] = normalize.StripDecimal(p)
	}

	// step 3: MDC assignment
	mdcTag := UnassignedMDC
	principalEntry, ok := store.LookupDiagnosis(principal)
	if !ok {
		warnings = append(warnings, fmt.Sprintf("principal diagnosis %q not found, assigned to pre-MDC", principal))
	} else {
		mdcTag = principalEntry.MDC
	}
	mdcDef, _ := store.LookupMDC(mdcTag)

	// step 4: CC/MCC detection, MCC takes precedence over CC
	var mccList, ccList []string
	for _, code := range secondary {
		entry, found := store.LookupDiagnosis(code)
		if !found {
			warnings = append(warnings, fmt.Sprintf("secondary diagnosis %q not found", code))
			continue
		}
		switch {
		case entry.IsMCC:
			mccList = append(mccList, code)
		case entry.IsCC:
			ccList = append(ccList, code)
		}
	}
	hasMCC := len(mccList) > 0
	hasCC := len(ccList) > 0

	// step 5: surgical/medical branching
	drgType := Medical
	for _, code := range procedures {
		entry, found := store.LookupProcedure(code)
		if !found {
			warnings = append(warnings, fmt.Sprintf("procedure %q not found, treated as non-OR", code))
			continue
		}
		if entry.IsORProcedure {
			drgType = Surgical
			break
		}
	}

	if mdcTag == UnassignedMDC {
		return Result{
			MSDRG:           Ungroupable,
			MDC:             UnassignedMDC,
			DRGType:         PreMDC,
			HasMCC:          hasMCC,
			HasCC:           hasCC,
			MCCList:         mccList,
			CCList:          ccList,
			GroupingVersion: GroupingVersion,
			Warnings:        warnings,
			Errors:          []string{fmt.Sprintf("no MDC rule set available for diagnosis %q", principal)},
		}
	}

	rules, ok := store.RulesForMDC(mdcTag)
	if !ok {
		return Result{
			MSDRG:           Ungroupable,
			MDC:             mdcTag,
			MDCDescription:  mdcDef.Name,
			DRGType:         drgType,
			HasMCC:          hasMCC,
			HasCC:           hasCC,
			MCCList:         mccList,
			CCList:          ccList,
			GroupingVersion: GroupingVersion,
			Warnings:        warnings,
			Errors:          []string{fmt.Sprintf("no grouping rules defined for MDC %q", mdcTag)},
		}
	}

	// step 6: rule selection, first match in declared order wins. The
	// surgical branch matches against procedure codes; medical matches
	// only the principal diagnosis — secondary diagnoses feed has_mcc/
	// has_cc above but never the family pattern itself.
	families := rules.Medical
	if drgType == Surgical {
		families = rules.Surgical
	}

	var family *refdata.DRGFamily
	for i := range families {
		if familyMatches(families[i], drgType, principal, procedures) {
			family = &families[i]
			break
		}
	}
	if family == nil {
		return Result{
			MSDRG:           Ungroupable,
			MDC:             mdcTag,
			MDCDescription:  mdcDef.Name,
			DRGType:         drgType,
			HasMCC:          hasMCC,
			HasCC:           hasCC,
			MCCList:         mccList,
			CCList:          ccList,
			GroupingVersion: GroupingVersion,
			Warnings:        warnings,
			Errors:          []string{fmt.Sprintf("no matching DRG family in MDC %q for this case", mdcTag)},
		}
	}

	// step 7: severity selection, with fallback to next-lower severity
	drgCode, sevWarn := selectSeverity(*family, hasMCC, hasCC)
	if sevWarn != "" {
		warnings = append(warnings, sevWarn)
	}
	if drgCode == "" {
		return Result{
			MSDRG:           Ungroupable,
			MDC:             mdcTag,
			MDCDescription:  mdcDef.Name,
			DRGType:         drgType,
			HasMCC:          hasMCC,
			HasCC:           hasCC,
			MCCList:         mccList,
			CCList:          ccList,
			GroupingVersion: GroupingVersion,
			Warnings:        warnings,
			Errors:          []string{fmt.Sprintf("DRG family %q has no usable severity slot", family.Name)},
		}
	}

	// step 8: resolve to full MS-DRG record
	drg, found := store.GetMSDRG(drgCode)
	if !found {
		return Result{
			MSDRG:           Ungroupable,
			MDC:             mdcTag,
			MDCDescription:  mdcDef.Name,
			DRGType:         drgType,
			HasMCC:          hasMCC,
			HasCC:           hasCC,
			MCCList:         mccList,
			CCList:          ccList,
			GroupingVersion: GroupingVersion,
			Warnings:        warnings,
			Errors:          []string{fmt.Sprintf("ms-drg %q not found in weight table", drgCode)},
		}
	}

	return Result{
		MSDRG:             drg.MSDRG,
		Description:       drg.Description,
		MDC:               mdcTag,
		MDCDescription:    mdcDef.Name,
		DRGType:           drgType,
		HasMCC:            hasMCC,
		HasCC:             hasCC,
		MCCList:           mccList,
		CCList:            ccList,
		RelativeWeight:    drg.RelativeWeight,
		GeometricMeanLOS:  drg.GeometricMeanLOS,
		ArithmeticMeanLOS: drg.ArithmeticMeanLOS,
		GroupingVersion:   GroupingVersion,
		Warnings:          warnings,
	}
}

// selectSeverity implements spec.md §4.4 step 7: with_mcc if has_mcc, else
// with_cc if has_cc, else without_cc_mcc, falling back to the next-lower
// slot when the preferred one is blank.
func selectSeverity(family refdata.DRGFamily, hasMCC, hasCC bool) (string, string) {
	switch {
	case hasMCC:
		if family.DRGs.WithMCC != "" {
			return family.DRGs.WithMCC, ""
		}
		if family.DRGs.WithCC != "" {
			return family.DRGs.WithCC, "with_mcc slot absent, fell back to with_cc"
		}
		if family.DRGs.WithoutCCMCC != "" {
			return family.DRGs.WithoutCCMCC, "with_mcc and with_cc slots absent, fell back to without_cc_mcc"
		}
	case hasCC:
		if family.DRGs.WithCC != "" {
			return family.DRGs.WithCC, ""
		}
		if family.DRGs.WithoutCCMCC != "" {
			return family.DRGs.WithoutCCMCC, "with_cc slot absent, fell back to without_cc_mcc"
		}
	default:
		if family.DRGs.WithoutCCMCC != "" {
			return family.DRGs.WithoutCCMCC, ""
		}
	}
	return "", ""
}

func familyMatches(family refdata.DRGFamily, drgType DRGType, principal string, procedures []string) bool {
	re := compilePattern(family.Pattern)
	if re == nil {
		return false
	}
	if drgType == Surgical {
		for _, code := range procedures {
			if re.MatchString(code) {
				return true
			}
		}
		return false
	}
	return re.MatchString(principal)
}

// compilePattern translates a data-file glob pattern ("J*", "I21.*") into
// a start-anchored regular expression: decimal points are dropped, as they
// are from the codes being matched, and "*" becomes ".*". Compiled patterns
// are cached since the same family is matched against every grouped case.
var (
	patternCacheMu sync.Mutex
	patternCache   = make(map[string]*regexp.Regexp)
)

func compilePattern(pattern string) *regexp.Regexp {
	patternCacheMu.Lock()
	defer patternCacheMu.Unlock()
	if re, ok := patternCache[pattern]; ok {
		return re
	}
	escaped := strings.ReplaceAll(pattern, ".", "")
	escaped = strings.ReplaceAll(escaped, "*", ".*")
	re, err := regexp.Compile("^(?:" + escaped + ")")
	if err != nil {
		patternCache[pattern] = nil
		return nil
	}
	patternCache[pattern] = re
	return re
}
