// Package zip bundles order-export artifacts (the submission payload plus
// the referenced design files) into a single downloadable archive.
package zip

import (
	"archive/zip"
	"bytes"
	"fmt"
)

// Entry is one file in the bundle.
type Entry struct {
	Name string
	Data []byte
}

// Archive writes the entries into a zip archive and returns its bytes.
// Entry order is preserved. Duplicate names are rejected so a bundle can
// never silently shadow one of its files.
func Archive(entries []Entry) ([]byte, error) {
	seen := make(map[string]struct{}, len(entries))
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for _, entry := range entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("zip: entry with empty name")
		}
		if _, dup := seen[entry.Name]; dup {
			return nil, fmt.Errorf("zip: duplicate entry %q", entry.Name)
		}
		seen[entry.Name] = struct{}{}
		w, err := zw.Create(entry.Name)
		if err != nil {
			return nil, fmt.Errorf("zip: create %q: %w", entry.Name, err)
		}
		if _, err := w.Write(entry.Data); err != nil {
			return nil, fmt.Errorf("zip: write %q: %w", entry.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zip: finalize: %w", err)
	}
	return buf.Bytes(), nil
}
