package csvio

import (
	"errors"
	"strings"
)

// ErrNothingToExport signals an export over an empty record set. It is
// distinct from success so callers can say so instead of producing an empty
// file.
var ErrNothingToExport = errors.New("nothing to export")

// Serialize flattens rows of key/value pairs into ;-delimited text. The
// header line is the given key order; every value is wrapped in double
// quotes unconditionally with inner quotes doubled, and the output carries a
// UTF-8 BOM so spreadsheet tools decode accents correctly. The unconditional
// quoting pairs with the one-quote strip in Parse for round-trips.
func Serialize(headers []string, rows []map[string]string) (string, error) {
	if len(rows) == 0 {
		return "", ErrNothingToExport
	}

	var b strings.Builder
	b.WriteString(BOM)
	b.WriteString(strings.Join(headers, ";"))
	b.WriteString("\n")

	for _, row := range rows {
		cells := make([]string, len(headers))
		for i, h := range headers {
			cells[i] = quote(row[h])
		}
		b.WriteString(strings.Join(cells, ";"))
		b.WriteString("\n")
	}
	return b.String(), nil
}

func quote(v string) string {
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}
