// Package fieldtype maps the logical field types offered by the custom post
// builder onto physical column types, and physical columns back onto form
// inputs.
package fieldtype

import "strings"

// FieldType is the logical type an admin picks when defining a custom post.
type FieldType string

const (
	String   FieldType = "string"
	Integer  FieldType = "integer"
	Text     FieldType = "text"
	Textarea FieldType = "textarea"
	RichText FieldType = "richtext"
	Boolean  FieldType = "boolean"
	Date     FieldType = "date"
	File     FieldType = "file"
)

// Parse reads a type tag. "ckeditor" is an alias of richtext; anything
// unknown falls back to String.
func Parse(tag string) FieldType {
	switch t := FieldType(strings.ToLower(strings.TrimSpace(tag))); t {
	case String, Integer, Text, Textarea, RichText, Boolean, Date, File:
		return t
	case "ckeditor":
		return RichText
	default:
		return String
	}
}

// Column describes how a field is provisioned.
type Column struct {
	Type     ColumnType
	Nullable bool
	// Default is a SQL literal, empty for none.
	Default string
}

// ToColumn maps a logical type to its column. File columns hold a storage
// path, never the binary itself.
func ToColumn(ft FieldType) Column {
	switch ft {
	case Integer:
		return Column{Type: ColumnInteger, Nullable: true}
	case Text, Textarea:
		return Column{Type: ColumnText, Nullable: true}
	case RichText:
		return Column{Type: ColumnLongText, Nullable: true}
	case Boolean:
		return Column{Type: ColumnBoolean, Default: "0"}
	case Date:
		return Column{Type: ColumnDate, Nullable: true}
	case File:
		return Column{Type: ColumnString, Nullable: true}
	default:
		return Column{Type: ColumnString, Nullable: true}
	}
}

// Definition renders the column definition that follows the column name in
// CREATE TABLE.
func (c Column) Definition() string {
	def := c.Type.SQLType()
	if !c.Nullable {
		def += " NOT NULL"
	}
	if c.Default != "" {
		def += " DEFAULT " + c.Default
	}
	return def
}
