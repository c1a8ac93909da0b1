// Package locality resolves a claim line's ZIP code to a Medicare
// locality code, per spec.md §4.2. The ZIP-prefix table is a fixed,
// in-memory map built from the same sample CMS locality assignments
// carried in the original Python source's zip_to_locality module.
package locality

// NationalAverage is the reserved locality code CMS uses for GPCI rows
// that don't vary by region, and the documented fallback locality.
const NationalAverage = "00"

// zipPrefixToLocality maps a 3-digit ZIP prefix to a Medicare locality
// code.
var zipPrefixToLocality = map[string]string{
	// New York
	"100": "01", "101": "01", "102": "01", // Manhattan
	"103": "02", "104": "02", "105": "02", // NYC suburbs / rest of NY
	"110": "02", "111": "02", "112": "02", "113": "02",
	"114": "02", "115": "02", "116": "02",

	// California - Los Angeles area
	"900": "18", "901": "18", "902": "18", "903": "18",
	"904": "18", "905": "18", "906": "18", "907": "18",

	// California - rest of state
	"910": "13", "911": "13", "912": "13", "913": "13", "914": "13",
	"915": "13", "916": "13", "917": "13", "918": "13", "919": "13",
	"920": "13", "921": "13",

	// Texas - Dallas sample
	"750": "26", "751": "26", "752": "26", "753": "26", "754": "26", "755": "26",

	// Florida - Miami sample
	"320": "03", "321": "03", "322": "03", "323": "03", "324": "03", "325": "03", "326": "03",

	// Illinois - Chicago sample
	"606": "16", "607": "16", "608": "16",
}

// Result is the outcome of resolving a line's geography to a locality.
type Result struct {
	Locality string
	// Defaulted is true when no locality or ZIP mapping was available and
	// the national average was substituted, per spec.md §4.2.
	Defaulted bool
}

// Resolve implements spec.md §4.2: use locality verbatim if given; else
// map the ZIP's 3-digit prefix; else fall back to the national average
// with Defaulted=true. Resolve returns ok=false only when neither
// locality nor zip was supplied, which is a fatal line error for PFS
// lines (spec.md §4.2 "Failure mode").
func Resolve(explicitLocality, zip string) (Result, bool) {
	if explicitLocality != "" {
		return Result{Locality: explicitLocality}, true
	}
	if zip == "" {
		return Result{}, false
	}
	prefix := zip
	if len(zip) >= 3 {
		prefix = zip[:3]
	}
	if loc, ok := zipPrefixToLocality[prefix]; ok {
		return Result{Locality: loc}, true
	}
	return Result{Locality: NationalAverage, Defaulted: true}, true
}
