package csvio

import "strings"

// ColumnNotFound is the sentinel ResolveColumn returns when no header
// matches.
const ColumnNotFound = -1

// ResolveColumn maps a keyword set to a column index in an arbitrary header
// row. Headers and keywords are compared through Normalize, and a header
// matches when its normalized form contains any normalized keyword. The
// first matching header wins, in header order. Uploaded spreadsheets do not
// have contractually fixed headers; this substring, case/accent-insensitive
// match is the defense against varying upstream conventions.
func ResolveColumn(headers []string, keywords []string) int {
	normalized := make([]string, len(keywords))
	for i, k := range keywords {
		normalized[i] = Normalize(k)
	}
	for i, h := range headers {
		nh := Normalize(h)
		if nh == "" {
			continue
		}
		for _, nk := range normalized {
			if nk != "" && strings.Contains(nh, nk) {
				return i
			}
		}
	}
	return ColumnNotFound
}
