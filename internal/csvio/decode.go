package csvio

import (
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ErrUnreadableFile means neither encoding attempt yielded a parseable
// header. There is no third attempt; the caller surfaces this as terminal.
var ErrUnreadableFile = errors.New("file is not readable as UTF-8 or ISO-8859-1")

// DecodeUpload turns uploaded bytes into text, first as UTF-8 and, when the
// parsed header row looks malformed, again as ISO-8859-1. Spreadsheets from
// legacy tools are frequently Latin-1 encoded, so the retry is part of the
// import contract.
func DecodeUpload(data []byte) (string, error) {
	text := string(data)
	if headerLooksValid(text) {
		return text, nil
	}

	latin, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err == nil {
		if text := string(latin); headerLooksValid(text) {
			return text, nil
		}
	}
	return "", ErrUnreadableFile
}

// headerLooksValid applies the malformed-decode heuristic: invalid UTF-8,
// fewer than 2 rows or fewer than 2 columns means the decode went wrong.
func headerLooksValid(text string) bool {
	if !utf8.ValidString(text) {
		return false
	}
	rows := Parse(text)
	return len(rows) >= 2 && len(rows[0]) >= 2
}
