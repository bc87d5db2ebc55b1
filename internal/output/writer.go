// Package output serializes documents and writes them to disk atomically.
package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"plimport/internal/models"
)

// Encode renders doc as 2-space indented JSON with a trailing newline.
// Characters such as & < > are written as is.
func Encode(doc *models.Document) ([]byte, error) {
	var buf bytes.Buffer

	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")

	if err := enc.Encode(doc); err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	return buf.Bytes(), nil
}

// WriteFile replaces the file at path with data through a temporary file in
// the same directory, creating parent directories as needed. It reports
// false without touching the file when the content is already identical.
func WriteFile(path string, data []byte) (bool, error) {
	if existing, err := os.ReadFile(path); err == nil && bytes.Equal(existing, data) {
		return false, nil
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return false, err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return false, err
	}

	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return false, err
	}

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return false, err
	}

	if err := tmp.Close(); err != nil {
		return false, err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return false, err
	}

	return true, nil
}

// Write encodes doc and writes it to path.
func Write(path string, doc *models.Document) (bool, error) {
	data, err := Encode(doc)
	if err != nil {
		return false, err
	}

	return WriteFile(path, data)
}
