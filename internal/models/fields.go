package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// RawField is one entry of a table-definition request before normalization.
type RawField struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FieldList is the "fields" member of a table-definition request. The admin
// UI sends an object of name -> type; its key order is the column order, so
// it is decoded token by token instead of into a map. The array form
// [{"name": .., "type": ..}] is accepted too.
type FieldList []RawField

func (l *FieldList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*l = nil
		return nil
	}
	switch data[0] {
	case '[':
		var fields []RawField
		if err := json.Unmarshal(data, &fields); err != nil {
			return err
		}
		*l = fields
		return nil
	case '{':
		return l.decodeObject(data)
	default:
		return fmt.Errorf("fields must be an object of name to type")
	}
}

func (l *FieldList) decodeObject(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return err
	}
	var out FieldList
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var typ string
		if err := dec.Decode(&typ); err != nil {
			return fmt.Errorf("field %q: type must be a string", name)
		}
		out = append(out, RawField{Name: name, Type: typ})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*l = out
	return nil
}
