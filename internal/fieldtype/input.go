package fieldtype

import "strings"

// InputType is the form control the admin UI renders for a column.
type InputType string

const (
	InputText     InputType = "text"
	InputTextarea InputType = "textarea"
	InputNumber   InputType = "number"
	InputCheckbox InputType = "checkbox"
	InputRichText InputType = "richtext"
	InputFile     InputType = "file"
)

var (
	richTextHints = []string{"content", "description", "body"}
	fileHints     = []string{"image", "photo", "avatar", "thumbnail", "document", "file"}
)

// InferInputType guesses the form control for an existing column. The schema
// does not remember which FieldType produced a column, so after the base
// mapping two name heuristics are tried in order and the first hit wins:
// rich-text names, then file-like names. "cover_image_description" is
// therefore richtext.
func InferInputType(ct ColumnType, column string) InputType {
	name := strings.ToLower(column)
	if containsAny(name, richTextHints) {
		return InputRichText
	}
	if containsAny(name, fileHints) {
		return InputFile
	}

	switch {
	case ct == ColumnText || ct == ColumnLongText:
		return InputTextarea
	case ct.IsInteger():
		return InputNumber
	case ct == ColumnBoolean:
		return InputCheckbox
	default:
		return InputText
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
