package roster

import (
	"fmt"
	"strings"

	"gradepulse/internal/model"
)

const (
	msgStudentIDRequired = "Student ID is required"
	msgFullNameRequired  = "Full Name is required"
	msgContactRequired   = "At least one contact (Father/Mother/Guardian) is required"
)

var contactLabels = []struct {
	field string
	label string
}{
	{model.FieldFatherContact, "Father Contact"},
	{model.FieldMotherContact, "Mother Contact"},
	{model.FieldGuardianContact, "Guardian Contact"},
}

// Validator applies the row rules plus any required flags from field configuration.
type Validator struct {
	required []model.FieldDefinition
}

func NewValidator(active []model.FieldDefinition) *Validator {
	v := &Validator{}
	for _, def := range active {
		if !def.Required || !def.Active {
			continue
		}
		if def.FieldName == model.FieldStudentID || def.FieldName == model.FieldFullName {
			continue
		}
		v.required = append(v.required, def)
	}
	return v
}

// Validate records every problem on the row in a fixed order. It never stops at the first one.
func (v *Validator) Validate(row *model.ImportRow) {
	if strings.TrimSpace(row.StudentID.String) == "" {
		row.AddError(msgStudentIDRequired)
	}
	if strings.TrimSpace(row.FullName.String) == "" {
		row.AddError(msgFullNameRequired)
	}

	present := 0
	for _, c := range contactLabels {
		if strings.TrimSpace(row.Value(c.field)) != "" {
			present++
		}
	}
	if present == 0 {
		row.AddError(msgContactRequired)
	}

	for _, c := range contactLabels {
		phone := strings.TrimSpace(row.Value(c.field))
		if phone == "" {
			continue
		}
		if msg := contactProblem(c.label, phone); msg != "" {
			row.AddError(msg)
		}
	}

	for _, def := range v.required {
		if !hasValue(row, def.FieldName) {
			row.AddError(fmt.Sprintf("%s is required", def.DisplayName))
		}
	}
}

// contactProblem explains why phone is not in +<country><number> form, or returns "".
func contactProblem(label, phone string) string {
	if IsInternational(phone) {
		return ""
	}
	switch {
	case strings.ContainsAny(phone, "- "):
		return label + " should not contain dashes or spaces. Use format: +971508714823"
	case strings.HasPrefix(phone, "00"):
		return label + " should start with + not 00. Example: +971508714823 (not 00971...)"
	case !strings.HasPrefix(phone, "+"):
		return label + " must start with country code. Example: +971508714823 or +919876543210"
	case len(phone) < 11 || len(phone) > 16:
		return label + " has invalid length. Format: +[country code][number] (e.g., +971508714823)"
	}
	return label + " has invalid format. Use: +971508714823 (no spaces/dashes)"
}

func hasValue(row *model.ImportRow, field string) bool {
	if model.IsCoreField(field) {
		return strings.TrimSpace(row.Value(field)) != ""
	}
	v, ok := row.Extensions[field]
	return ok && strings.TrimSpace(v.String()) != ""
}
