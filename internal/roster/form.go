package roster

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"gradepulse/internal/model"

	"github.com/volatiletech/null/v8"
)

var formKey = regexp.MustCompile(`^rows\[(\d+)\]\.([a-z0-9_]+)$`)

const (
	formValidKey      = "valid"
	formRowNumberKey  = "row_number"
	msgRejectedByUser = "Row was rejected during preview"
)

// DecodeSubmission rebuilds rows from rows[<i>].<field>=<value> pairs, in index order.
// Blank values are ignored. Every row is normalized and validated again, and a row
// the client flagged invalid stays invalid.
func (im *Importer) DecodeSubmission(ctx context.Context, form url.Values) ([]*model.ImportRow, error) {
	active, err := im.fields.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active fields: %w", err)
	}
	extensions := map[string]model.FieldDefinition{}
	for _, def := range active {
		if !model.IsCoreField(def.FieldName) {
			extensions[def.FieldName] = def
		}
	}

	rows := map[int]*model.ImportRow{}
	rejected := map[int]bool{}
	for key, values := range form {
		m := formKey.FindStringSubmatch(key)
		if m == nil || len(values) == 0 {
			continue
		}
		idx, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		field, value := m[2], strings.TrimSpace(values[0])
		if value == "" {
			continue
		}

		row, ok := rows[idx]
		if !ok {
			row = model.NewImportRow(idx + 1)
			rows[idx] = row
		}

		switch field {
		case formValidKey:
			if b, ok := parseFormBool(value); ok && !b {
				rejected[idx] = true
			}
			continue
		case formRowNumberKey:
			if n, err := strconv.Atoi(value); err == nil {
				row.RowNumber = n
			}
			continue
		}
		if ref := row.Ref(field); ref != nil {
			if err := AssignValue(ref, value); err != nil {
				im.log.Warn().Err(err).Int("row", idx).Str("field", field).Str("value", value).Msg("Ignoring unparseable value")
			}
			continue
		}
		if def, ok := extensions[field]; ok {
			if v, ok := ParseExtension(def, value); ok {
				row.Extensions[field] = v
			}
			continue
		}
		im.log.Debug().Str("field", field).Msg("Ignoring unknown form field")
	}

	indices := make([]int, 0, len(rows))
	for idx := range rows {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	validator := NewValidator(active)
	out := make([]*model.ImportRow, 0, len(indices))
	for _, idx := range indices {
		row := rows[idx]
		NormalizeContacts(&row.StudentFields)
		validator.Validate(row)
		if rejected[idx] && row.Valid {
			row.AddError(msgRejectedByUser)
		}
		out = append(out, row)
	}
	return out, nil
}

// AssignValue parses value into the field behind ref.
func AssignValue(ref any, value string) error {
	switch p := ref.(type) {
	case *null.String:
		*p = null.StringFrom(value)
	case *null.Time:
		t, err := time.Parse(model.DateLayout, value)
		if err != nil {
			var ok bool
			if t, ok = ParseDate(value); !ok {
				return fmt.Errorf("invalid date %q", value)
			}
		}
		*p = null.TimeFrom(t)
	case *null.Bool:
		b, ok := parseFormBool(value)
		if !ok {
			return fmt.Errorf("invalid boolean %q", value)
		}
		*p = null.BoolFrom(b)
	case *null.Int:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid integer %q", value)
		}
		*p = null.IntFrom(int(math.Round(f)))
	case *null.Float64:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid number %q", value)
		}
		*p = null.Float64From(f)
	default:
		return fmt.Errorf("unsupported field type %T", ref)
	}
	return nil
}

func ParseExtension(def model.FieldDefinition, value string) (model.ExtensionValue, bool) {
	switch def.FieldType {
	case model.FieldTypeString, model.FieldTypeFileURL:
		return model.TextValue(def.FieldType, value), true
	case model.FieldTypeNumber:
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return model.NumberValue(f), true
		}
	case model.FieldTypeDate:
		if t, err := time.Parse(model.DateLayout, value); err == nil {
			return model.DateValue(t), true
		}
		if t, ok := ParseDate(value); ok {
			return model.DateValue(t), true
		}
	case model.FieldTypeBoolean:
		if b, ok := parseFormBool(value); ok {
			return model.BoolValue(b), true
		}
	}
	return model.ExtensionValue{}, false
}

func parseFormBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "1":
		return true, true
	case "no", "false", "0":
		return false, true
	}
	return false, false
}

// EncodeSubmission renders rows as the pairs DecodeSubmission accepts.
func EncodeSubmission(rows []*model.ImportRow) url.Values {
	form := url.Values{}
	for i, row := range rows {
		prefix := fmt.Sprintf("rows[%d].", i)
		form.Set(prefix+formRowNumberKey, strconv.Itoa(row.RowNumber))
		form.Set(prefix+formValidKey, strconv.FormatBool(row.Valid))
		for _, name := range model.StudentFieldNames {
			if v := row.Value(name); v != "" {
				form.Set(prefix+name, v)
			}
		}
		for name, v := range row.Extensions {
			if s := v.String(); s != "" {
				form.Set(prefix+name, s)
			}
		}
	}
	return form
}
