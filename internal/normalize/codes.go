package normalize

import (
	"regexp"
	"strings"
)

var nonAlphanumeric = regexp.MustCompile(`[^A-Za-z0-9]`)

// NormalizeCode trims whitespace, uppercases, and strips non-alphanumeric characters.
// Returns nil if the input is nil or the result is empty.
func NormalizeCode(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	s = strings.ToUpper(s)
	s = nonAlphanumeric.ReplaceAllString(s, "")
	if s == "" {
		return nil
	}
	return &s
}

// StripDecimal upper-cases an ICD-10 code and removes its decimal point,
// e.g. "m16.11" -> "M1611". This is the grouper's and the reference-data
// loader's shared code key, per spec.md §4.4 step 1 and §3.1.
func StripDecimal(code string) string {
	s := strings.ToUpper(strings.TrimSpace(code))
	return strings.ReplaceAll(s, ".", "")
}
