// Package record defines the feedback records that flow through the clustering
// pipeline and loads them from JSON.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// ErrInvalidID is returned when an id is neither a JSON number nor a JSON string
var ErrInvalidID = errors.New("record id must be a number or a string")

// ID identifies a record. On the wire it may be a JSON number or a JSON
// string; the textual form is kept along with which of the two it was, so it
// is written back the way it was read.
type ID struct {
	value   string
	numeric bool
}

// StringID builds an ID that encodes as a JSON string.
func StringID(s string) ID {
	return ID{value: s}
}

// IntID builds an ID that encodes as a JSON number.
func IntID(v int) ID {
	return ID{value: strconv.Itoa(v), numeric: true}
}

// String returns the textual form of the id.
func (id ID) String() string { return id.value }

// IsNumeric reports whether the id was a JSON number.
func (id ID) IsNumeric() bool { return id.numeric }

// MarshalJSON writes numeric ids as numbers and the rest as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.value), nil
	}
	return json.Marshal(id.value)
}

// UnmarshalJSON accepts both `17` and `"17"`.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return ErrInvalidID
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidID, err)
		}
		*id = StringID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidID, err)
	}
	*id = ID{value: n.String(), numeric: true}
	return nil
}

// Record is a single piece of feedback and its embedding.
type Record struct {
	ID     ID        `json:"id"`
	Text   string    `json:"text"`
	Vector []float64 `json:"vector"`
}

// WithVector returns a copy of r carrying v instead of its own vector.
func (r Record) WithVector(v []float64) Record {
	return Record{ID: r.ID, Text: r.Text, Vector: v}
}

// Vectors returns the vectors of records in order. The slices are shared, not copied.
func Vectors(records []Record) [][]float64 {
	out := make([][]float64, len(records))
	for i, r := range records {
		out[i] = r.Vector
	}
	return out
}

// Texts returns the texts of records in order.
func Texts(records []Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Text
	}
	return out
}
