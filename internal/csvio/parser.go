package csvio

import (
	"strings"
)

// BOM is the UTF-8 byte-order mark spreadsheet tools expect on CSV files.
// The second form is what the BOM becomes when a file is read as Latin-1.
const (
	BOM         = "\uFEFF"
	mojibakeBOM = "ï»¿"
)

// Parse tokenizes raw CSV text into rows of fields. The delimiter is
// auto-detected on the first line; quoting follows the dialect produced by
// Serialize. Blank lines are dropped and ragged rows are passed through
// unchanged; callers must treat missing indices as absent.
func Parse(raw string) [][]string {
	raw = strings.TrimPrefix(raw, BOM)
	raw = strings.TrimPrefix(raw, mojibakeBOM)
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return nil
	}

	delim := DetectDelimiter(lines[0])
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		rows = append(rows, splitLine(line, delim))
	}
	return rows
}

// DetectDelimiter counts candidate separators on the header line and picks
// the most frequent. Ties resolve ; > , > tab, reflecting French-locale
// Excel defaults.
func DetectDelimiter(header string) rune {
	semis := strings.Count(header, ";")
	commas := strings.Count(header, ",")
	tabs := strings.Count(header, "\t")

	delim := ';'
	best := semis
	if commas > best {
		delim, best = ',', commas
	}
	if tabs > best {
		delim = '\t'
	}
	return delim
}

// splitLine walks one line with an inQuotes flag: a quote toggles the state
// unless doubled inside quotes, which emits a literal quote; the delimiter
// only separates outside quotes. Quote characters are kept in the field and
// one outer pair is stripped afterwards in cleanField.
func splitLine(line string, delim rune) []string {
	var fields []string
	var cur strings.Builder

	inQuotes := false
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '"':
			if inQuotes && i+1 < len(runes) && runes[i+1] == '"' {
				cur.WriteRune('"')
				i++
			} else {
				inQuotes = !inQuotes
				cur.WriteRune('"')
			}
		case r == delim && !inQuotes:
			fields = append(fields, cleanField(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, cleanField(cur.String()))
	return fields
}

// cleanField trims the field and strips one leading and one trailing literal
// quote. Serialize wraps every value in quotes unconditionally, so this runs
// on every field regardless of content.
func cleanField(f string) string {
	f = strings.TrimSpace(f)
	f = strings.TrimPrefix(f, `"`)
	f = strings.TrimSuffix(f, `"`)
	return f
}
