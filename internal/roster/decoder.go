package roster

import (
	"strconv"
	"strings"
	"time"

	"gradepulse/internal/model"

	"github.com/rs/zerolog"
	"github.com/volatiletech/null/v8"
)

// Text date layouts, tried in order.
var dateLayouts = []string{
	"02-Jan-2006",
	"02-01-2006",
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
}

var contactFields = []string{model.FieldFatherContact, model.FieldMotherContact, model.FieldGuardianContact}

// Decoder extracts typed field values from sheet rows using a header map.
type Decoder struct {
	columns    ColumnMap
	extensions []model.FieldDefinition
	log        zerolog.Logger
}

// NewDecoder keeps the active non-core definitions that have a column, so they
// can be decoded into the extension map.
func NewDecoder(columns ColumnMap, active []model.FieldDefinition, log zerolog.Logger) *Decoder {
	d := &Decoder{columns: columns, log: log}
	for _, def := range active {
		if !model.IsCoreField(def.FieldName) && columns.Has(def.FieldName) {
			d.extensions = append(d.extensions, def)
		}
	}
	return d
}

// Decode converts one data row. It returns false for blank rows, which have
// neither a student ID nor a full name.
func (d *Decoder) Decode(row Row, rowNumber int) (*model.ImportRow, bool) {
	studentID := d.String(row, model.FieldStudentID)
	fullName := d.String(row, model.FieldFullName)
	if isBlank(studentID) && isBlank(fullName) {
		return nil, false
	}

	r := model.NewImportRow(rowNumber)
	for _, name := range model.StudentFieldNames {
		switch p := r.Ref(name).(type) {
		case *null.String:
			*p = d.String(row, name)
		case *null.Time:
			*p = d.Date(row, name)
		case *null.Bool:
			*p = d.Bool(row, name)
		case *null.Int:
			*p = d.Int(row, name)
		case *null.Float64:
			*p = d.Float(row, name)
		}
	}
	NormalizeContacts(&r.StudentFields)

	for _, def := range d.extensions {
		if v, ok := d.Extension(row, def); ok {
			r.Extensions[def.FieldName] = v
		}
	}
	return r, true
}

func (d *Decoder) cell(row Row, field string) (Cell, bool) {
	idx, ok := d.columns[field]
	if !ok {
		return Cell{}, false
	}
	c := row.Cell(idx)
	return c, c.Kind != CellBlank
}

func (d *Decoder) String(row Row, field string) null.String {
	c, ok := d.cell(row, field)
	if !ok {
		return null.String{}
	}
	s, ok := c.StringValue()
	return null.NewString(s, ok)
}

// Date reads native date cells directly and otherwise tries the text layouts.
func (d *Decoder) Date(row Row, field string) null.Time {
	c, ok := d.cell(row, field)
	if !ok {
		return null.Time{}
	}
	if c.Kind == CellDate {
		return null.TimeFrom(civilDate(c.Date))
	}
	s, _ := c.StringValue()
	if s == "" {
		return null.Time{}
	}
	if t, ok := ParseDate(s); ok {
		return null.TimeFrom(t)
	}
	d.log.Warn().Str("field", field).Str("value", s).Msg("Unrecognised date")
	return null.Time{}
}

// Bool treats yes/true/1 as true and any other value as false.
func (d *Decoder) Bool(row Row, field string) null.Bool {
	s := d.String(row, field)
	if isBlank(s) {
		return null.Bool{}
	}
	switch strings.ToLower(s.String) {
	case "yes", "true", "1":
		return null.BoolFrom(true)
	case "no", "false", "0":
	default:
		d.log.Warn().Str("field", field).Str("value", s.String).Msg("Unrecognised boolean, reading as false")
	}
	return null.BoolFrom(false)
}

func (d *Decoder) Int(row Row, field string) null.Int {
	s := d.String(row, field)
	if isBlank(s) {
		return null.Int{}
	}
	n, err := strconv.Atoi(s.String)
	if err != nil {
		d.log.Warn().Str("field", field).Str("value", s.String).Msg("Invalid integer")
		return null.Int{}
	}
	return null.IntFrom(n)
}

func (d *Decoder) Float(row Row, field string) null.Float64 {
	c, ok := d.cell(row, field)
	if !ok {
		return null.Float64{}
	}
	if c.Kind == CellNumber {
		return null.Float64From(c.Number)
	}
	s, _ := c.StringValue()
	if s == "" {
		return null.Float64{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		d.log.Warn().Str("field", field).Str("value", s).Msg("Invalid number")
		return null.Float64{}
	}
	return null.Float64From(f)
}

// Extension decodes a configured custom field according to its type.
func (d *Decoder) Extension(row Row, def model.FieldDefinition) (model.ExtensionValue, bool) {
	name := def.FieldName
	switch def.FieldType {
	case model.FieldTypeString, model.FieldTypeFileURL:
		if s := d.String(row, name); !isBlank(s) {
			return model.TextValue(def.FieldType, s.String), true
		}
	case model.FieldTypeNumber:
		if f := d.Float(row, name); f.Valid {
			return model.NumberValue(f.Float64), true
		}
	case model.FieldTypeDate:
		if t := d.Date(row, name); t.Valid {
			return model.DateValue(t.Time), true
		}
	case model.FieldTypeBoolean:
		if b := d.Bool(row, name); b.Valid {
			return model.BoolValue(b.Bool), true
		}
	}
	return model.ExtensionValue{}, false
}

// ParseDate tries each text layout in order. A day of 29-31 past the end of
// its month resolves to the month's last day, so 31-02-2024 is 2024-02-29.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
		if t, ok := clampDay(layout, s); ok {
			return t, true
		}
	}
	return time.Time{}, false
}

// clampDay retries s with its two-digit day lowered towards 28.
func clampDay(layout, s string) (time.Time, bool) {
	i := strings.Index(layout, "02")
	if i < 0 || len(s) != len(layout) {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(s[i : i+2])
	if err != nil || day < 29 || day > 31 {
		return time.Time{}, false
	}
	for d := day - 1; d >= 28; d-- {
		if t, err := time.Parse(layout, s[:i]+strconv.Itoa(d)+s[i+2:]); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func civilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func NormalizeContacts(f *model.StudentFields) {
	for _, name := range contactFields {
		if p, ok := f.Ref(name).(*null.String); ok && p.Valid {
			p.String = NormalizeContact(p.String)
		}
	}
}

func isBlank(s null.String) bool {
	return !s.Valid || strings.TrimSpace(s.String) == ""
}
