package model

import "strings"

// FieldType is the semantic type used to render and validate a field.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeNumber   FieldType = "number"
	FieldTypeCurrency FieldType = "currency"
	FieldTypePercent  FieldType = "percent"
	FieldTypeDate     FieldType = "date"
	FieldTypeDateTime FieldType = "datetime"
	FieldTypeBoolean  FieldType = "boolean"
)

// FieldDescriptor describes a displayable and possibly editable line attribute.
//
// @Description Field-set column metadata
type FieldDescriptor struct {
	Path       string    `yaml:"path" json:"path" example:"Quantity"`
	Label      string    `yaml:"label" json:"label" example:"Quantity"`
	Type       FieldType `yaml:"type" json:"type" example:"number"`
	ReadOnly   bool      `yaml:"read_only" json:"read_only"`
	Updateable bool      `yaml:"updateable" json:"updateable"`
	Required   bool      `yaml:"required" json:"required"`
}

// Editable reports whether the field is rendered as an input. Related-record
// paths and ListPrice are always display-only.
func (d FieldDescriptor) Editable() bool {
	return !d.ReadOnly && !d.Nested() && d.Path != FieldListPrice
}

// Nested reports whether the path addresses a related record (e.g. Product2.Name).
func (d FieldDescriptor) Nested() bool {
	return strings.Contains(d.Path, ".")
}

// SemanticType maps a platform field type onto a FieldType.
func SemanticType(raw string) FieldType {
	switch strings.ToLower(raw) {
	case "string", "reference", "id", "text", "textarea", "picklist":
		return FieldTypeText
	case "integer", "decimal", "double", "number", "int":
		return FieldTypeNumber
	case "currency":
		return FieldTypeCurrency
	case "percent":
		return FieldTypePercent
	case "date":
		return FieldTypeDate
	case "datetime":
		return FieldTypeDateTime
	case "boolean", "checkbox":
		return FieldTypeBoolean
	default:
		return FieldTypeText
	}
}

// FieldsInfo indexes object field metadata by path.
type FieldsInfo map[string]FieldDescriptor

// IsUpdateable reports whether the path is known and writable.
func (fi FieldsInfo) IsUpdateable(path string) bool {
	d, ok := fi[path]
	return ok && d.Updateable
}
