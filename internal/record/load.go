package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrEmptyVector is returned when a record carries no embedding
	ErrEmptyVector = errors.New("record has an empty vector")

	// ErrRaggedVectors is returned when records in one batch have different vector lengths
	ErrRaggedVectors = errors.New("records have different vector lengths")
)

// Load decodes a JSON array of records.
func Load(r io.Reader) ([]Record, error) {
	var records []Record
	dec := json.NewDecoder(r)
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	return records, nil
}

// LoadFile reads records from a JSON file.
func LoadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records file: %w", err)
	}
	defer f.Close()

	records, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// Validate checks that every record has a non-empty vector of the same length.
func Validate(records []Record) error {
	if len(records) == 0 {
		return nil
	}
	dim := len(records[0].Vector)
	for i, r := range records {
		if len(r.Vector) == 0 {
			return fmt.Errorf("record %d (id=%s): %w", i, r.ID, ErrEmptyVector)
		}
		if len(r.Vector) != dim {
			return fmt.Errorf("record %d (id=%s) has %d components, want %d: %w",
				i, r.ID, len(r.Vector), dim, ErrRaggedVectors)
		}
	}
	return nil
}
