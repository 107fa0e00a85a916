package model

import (
	"fmt"
	"strings"
)

type FieldType string

const (
	FieldTypeString  FieldType = "STRING"
	FieldTypeNumber  FieldType = "NUMBER"
	FieldTypeDate    FieldType = "DATE"
	FieldTypeBoolean FieldType = "BOOLEAN"
	FieldTypeFileURL FieldType = "FILE_URL"
)

// RequiredMarker is appended to the display name of required columns in templates.
const RequiredMarker = " *"

func ParseFieldType(s string) (FieldType, error) {
	switch t := FieldType(strings.ToUpper(strings.TrimSpace(s))); t {
	case FieldTypeString, FieldTypeNumber, FieldTypeDate, FieldTypeBoolean, FieldTypeFileURL:
		return t, nil
	}
	return "", fmt.Errorf("unknown field type %q", s)
}

// SampleValue is the example written under each header of a generated template.
func (t FieldType) SampleValue() string {
	switch t {
	case FieldTypeString:
		return "Sample text"
	case FieldTypeNumber:
		return "123"
	case FieldTypeDate:
		return "15-01-2024"
	case FieldTypeBoolean:
		return "Yes"
	case FieldTypeFileURL:
		return "https://example.com/file.pdf"
	}
	return "Sample"
}

type FieldDefinition struct {
	ID          int64     `json:"id"`
	FieldName   string    `json:"field_name"`
	DisplayName string    `json:"display_name"`
	FieldType   FieldType `json:"field_type"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required"`
	Active      bool      `json:"active"`
	SortOrder   int       `json:"sort_order"`
}

func (f FieldDefinition) HeaderLabel() string {
	if f.Required {
		return f.DisplayName + RequiredMarker
	}
	return f.DisplayName
}
