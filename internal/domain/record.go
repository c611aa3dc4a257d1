package domain

import (
	"bytes"
	"encoding/json"
)

// Field is a single column of a serialized row.
type Field struct {
	Column string
	Value  any
}

// Record is the JSON-ready form of a row. Fields keep the column order of the
// underlying table, and the JSON object is written in that same order.
type Record []Field

// Serializer is implemented by every persisted entity.
type Serializer interface {
	Record() Record
}

// Get returns the value stored for column.
func (r Record) Get(column string) (any, bool) {
	for _, f := range r {
		if f.Column == column {
			return f.Value, true
		}
	}
	return nil, false
}

// Columns returns the column names in order.
func (r Record) Columns() []string {
	cols := make([]string, 0, len(r))
	for _, f := range r {
		cols = append(cols, f.Column)
	}
	return cols
}

// MarshalJSON implements json.Marshaler
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(f.Column)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(f.Value)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// Records serializes a slice of entities, keeping their order.
func Records[T Serializer](items []T) []Record {
	out := make([]Record, 0, len(items))
	for _, item := range items {
		out = append(out, item.Record())
	}
	return out
}
