package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ExtensionValue holds the value of a configured field that is not part of the
// fixed schema. Type selects which of the payload fields is meaningful.
type ExtensionValue struct {
	Type   FieldType  `json:"type"`
	Text   string     `json:"text,omitempty"`
	Number float64    `json:"number,omitempty"`
	Bool   bool       `json:"bool,omitempty"`
	Date   *time.Time `json:"date,omitempty"`
}

func TextValue(t FieldType, s string) ExtensionValue {
	return ExtensionValue{Type: t, Text: s}
}

func NumberValue(n float64) ExtensionValue {
	return ExtensionValue{Type: FieldTypeNumber, Number: n}
}

func BoolValue(b bool) ExtensionValue {
	return ExtensionValue{Type: FieldTypeBoolean, Bool: b}
}

func DateValue(t time.Time) ExtensionValue {
	return ExtensionValue{Type: FieldTypeDate, Date: &t}
}

func (v ExtensionValue) String() string {
	switch v.Type {
	case FieldTypeString, FieldTypeFileURL:
		return v.Text
	case FieldTypeNumber:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case FieldTypeBoolean:
		return strconv.FormatBool(v.Bool)
	case FieldTypeDate:
		if v.Date == nil {
			return ""
		}
		return v.Date.Format(DateLayout)
	}
	return ""
}

// Extensions maps field names to values and is stored as a JSON column.
type Extensions map[string]ExtensionValue

func (e Extensions) Value() (driver.Value, error) {
	if e == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(e)
}

func (e *Extensions) Scan(src any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		*e = Extensions{}
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported extensions column type %T", src)
	}
	if len(data) == 0 {
		*e = Extensions{}
		return nil
	}
	out := Extensions{}
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("decode extensions: %w", err)
	}
	*e = out
	return nil
}
