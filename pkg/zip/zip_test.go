package zip

import (
	stdzip "archive/zip"
	"bytes"
	"testing"
)

func TestArchiveRoundTrip(t *testing.T) {
	data, err := Archive([]Entry{
		{Name: "payload.json", Data: []byte(`{"items":[]}`)},
		{Name: "designs/a.png", Data: []byte{0x89, 0x50}},
	})
	if err != nil {
		t.Fatalf("Archive() unexpected error: %v", err)
	}

	zr, err := stdzip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	if len(zr.File) != 2 {
		t.Fatalf("entries = %d, want 2", len(zr.File))
	}
	if zr.File[0].Name != "payload.json" || zr.File[1].Name != "designs/a.png" {
		t.Fatalf("entry order = %q, %q", zr.File[0].Name, zr.File[1].Name)
	}
}

func TestArchiveRejectsDuplicatesAndEmptyNames(t *testing.T) {
	if _, err := Archive([]Entry{{Name: "a"}, {Name: "a"}}); err == nil {
		t.Fatal("Archive() should reject duplicate names")
	}
	if _, err := Archive([]Entry{{Name: ""}}); err == nil {
		t.Fatal("Archive() should reject empty names")
	}
}
