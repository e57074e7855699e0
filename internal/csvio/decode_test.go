package csvio_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/fieldservice-timesheet-api/internal/csvio"
)

func TestDecodeUploadUTF8(t *testing.T) {
	data := []byte("date;technicien\n01/03/2024;jdupont\n")
	text, err := csvio.DecodeUpload(data)
	if err != nil {
		t.Fatalf("DecodeUpload failed: %v", err)
	}
	if !strings.Contains(text, "jdupont") {
		t.Errorf("unexpected decoded text: %q", text)
	}
}

func TestDecodeUploadLatin1Retry(t *testing.T) {
	// "heures supplémentaires" encoded as ISO-8859-1: é is byte 0xE9, which
	// is invalid UTF-8, so the first decode is rejected and retried.
	data := []byte("date;heures suppl\xE9mentaires\n01/03/2024;2\n")
	text, err := csvio.DecodeUpload(data)
	if err != nil {
		t.Fatalf("DecodeUpload failed: %v", err)
	}
	if !strings.Contains(text, "supplémentaires") {
		t.Errorf("Latin-1 retry did not restore accents: %q", text)
	}
}

func TestDecodeUploadUnreadable(t *testing.T) {
	_, err := csvio.DecodeUpload([]byte("just one cell no rows"))
	if !errors.Is(err, csvio.ErrUnreadableFile) {
		t.Errorf("expected ErrUnreadableFile, got %v", err)
	}

	_, err = csvio.DecodeUpload(nil)
	if !errors.Is(err, csvio.ErrUnreadableFile) {
		t.Errorf("expected ErrUnreadableFile on empty input, got %v", err)
	}
}
