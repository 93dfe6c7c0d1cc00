package models

import "github.com/dollaghosh1/wbpower-project/internal/fieldtype"

// System columns every dynamic table carries.
const (
	ColumnID        = "id"
	ColumnIsActive  = "is_active"
	ColumnCreatedAt = "created_at"
	ColumnUpdatedAt = "updated_at"
)

// SystemColumns are excluded from generated forms and may not be used as
// field names.
var SystemColumns = []string{ColumnID, ColumnCreatedAt, ColumnUpdatedAt, ColumnIsActive}

// IsSystemColumn reports whether name is one of SystemColumns.
func IsSystemColumn(name string) bool {
	for _, c := range SystemColumns {
		if c == name {
			return true
		}
	}
	return false
}

// FieldDefinition is one user-defined column of a dynamic table.
type FieldDefinition struct {
	Name string              `json:"name"`
	Type fieldtype.FieldType `json:"type"`
}

// TableDescriptor is a dynamic table as requested by an admin, after
// normalization.
type TableDescriptor struct {
	TableName string            `json:"tableName"`
	Fields    []FieldDefinition `json:"fields"`
}

// Column is a physical column read back from the schema.
type Column struct {
	Name string               `json:"name"`
	Type fieldtype.ColumnType `json:"type"`
}

// FormField describes one input of the form generated for a table.
type FormField struct {
	Name        string              `json:"name"`
	Label       string              `json:"label"`
	Type        fieldtype.InputType `json:"type"`
	Required    bool                `json:"required"`
	Placeholder string              `json:"placeholder"`
}
