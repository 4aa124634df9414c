package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Record is one training sample as stored on disk.
type Record struct {
	Text string `json:"text"`
}

// WriteRecords writes texts to path as an indented JSON array of records.
// Non-ASCII and HTML characters are written as-is.
func WriteRecords(path string, texts []string) error {
	records := make([]Record, len(texts))
	for i, t := range texts {
		records[i] = Record{Text: t}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("encode %q: %w", path, err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}
