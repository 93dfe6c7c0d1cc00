package models

import (
	"bytes"
	"encoding/json"
)

// Record is one row of a dynamic table. It keeps column order so the JSON
// object lists keys the way the table declares them.
type Record struct {
	keys   []string
	values map[string]any
}

func NewRecord() Record {
	return Record{values: map[string]any{}}
}

// Set adds or replaces a column value.
func (r *Record) Set(key string, v any) {
	if r.values == nil {
		r.values = map[string]any{}
	}
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

func (r Record) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

func (r Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

// ID returns the id column, zero when absent.
func (r Record) ID() int64 {
	id, _ := r.values[ColumnID].(int64)
	return id
}

// Without returns a copy with the given columns removed.
func (r Record) Without(excluded []string) Record {
	drop := make(map[string]bool, len(excluded))
	for _, k := range excluded {
		drop[k] = true
	}
	out := NewRecord()
	for _, k := range r.keys {
		if !drop[k] {
			out.Set(k, r.values[k])
		}
	}
	return out
}

func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
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
