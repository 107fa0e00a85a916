package fields

import (
	"context"

	"gradepulse/internal/model"
)

type seed struct {
	name, display string
	typ           model.FieldType
	required      bool
}

var defaults = []seed{
	{model.FieldStudentID, "Student ID", model.FieldTypeString, true},
	{model.FieldFullName, "Full Name", model.FieldTypeString, true},
	{model.FieldDateOfBirth, "Date of Birth", model.FieldTypeDate, false},
	{model.FieldGender, "Gender", model.FieldTypeString, false},
	{model.FieldApaarID, "APAAR ID", model.FieldTypeString, false},
	{model.FieldAadhaarNumber, "Aadhaar Number", model.FieldTypeString, false},
	{model.FieldCategory, "Category", model.FieldTypeString, false},
	{model.FieldAddress, "Address", model.FieldTypeString, false},
	{model.FieldPhotoURL, "Photo URL", model.FieldTypeFileURL, false},
	{model.FieldPreviousSchoolTCURL, "Previous School TC URL", model.FieldTypeFileURL, false},
	{model.FieldAdmissionClass, "Admission Class", model.FieldTypeString, false},
	{model.FieldCurrentClass, "Current Class", model.FieldTypeString, false},
	{model.FieldStudentClass, "Student Class", model.FieldTypeString, false},
	{model.FieldDivision, "Division", model.FieldTypeString, false},
	{model.FieldSubDivision, "Sub Division", model.FieldTypeString, false},
	{model.FieldAdmissionDate, "Admission Date", model.FieldTypeDate, false},
	{model.FieldEnrollmentNo, "Enrollment No", model.FieldTypeString, false},
	{model.FieldPreviousMarksheetURL, "Previous Marksheet URL", model.FieldTypeFileURL, false},
	{model.FieldBloodGroup, "Blood Group", model.FieldTypeString, false},
	{model.FieldAllergiesConditions, "Allergies / Conditions", model.FieldTypeString, false},
	{model.FieldImmunization, "Immunization", model.FieldTypeBoolean, false},
	{model.FieldHeightCM, "Height (cm)", model.FieldTypeNumber, false},
	{model.FieldWeightKG, "Weight (kg)", model.FieldTypeNumber, false},
	{model.FieldVisionCheck, "Vision Check", model.FieldTypeString, false},
	{model.FieldCharacterCertURL, "Character Certificate URL", model.FieldTypeFileURL, false},
	{model.FieldAadhaarCardURL, "Aadhaar Card URL", model.FieldTypeFileURL, false},
	{model.FieldFeeStatus, "Fee Status", model.FieldTypeString, false},
	{model.FieldAttendancePercent, "Attendance %", model.FieldTypeNumber, false},
	{model.FieldUDISEUploaded, "UDISE Uploaded", model.FieldTypeBoolean, false},
	{model.FieldFatherName, "Father Name", model.FieldTypeString, false},
	{model.FieldFatherContact, "Father Contact", model.FieldTypeString, false},
	{model.FieldFatherAadhaar, "Father Aadhaar", model.FieldTypeString, false},
	{model.FieldMotherName, "Mother Name", model.FieldTypeString, false},
	{model.FieldMotherContact, "Mother Contact", model.FieldTypeString, false},
	{model.FieldMotherAadhaar, "Mother Aadhaar", model.FieldTypeString, false},
	{model.FieldGuardianName, "Guardian Name", model.FieldTypeString, false},
	{model.FieldGuardianContact, "Guardian Contact", model.FieldTypeString, false},
	{model.FieldGuardianRelation, "Guardian Relation", model.FieldTypeString, false},
	{model.FieldGuardianAadhaar, "Guardian Aadhaar", model.FieldTypeString, false},
	{model.FieldFamilyStatus, "Family Status", model.FieldTypeString, false},
	{model.FieldLanguagePreference, "Language Preference", model.FieldTypeString, false},
}

// DefaultDefinitions is the seed vocabulary: every fixed-schema field, active,
// in column order. IDs are left zero.
func DefaultDefinitions() []model.FieldDefinition {
	out := make([]model.FieldDefinition, len(defaults))
	for i, s := range defaults {
		out[i] = model.FieldDefinition{
			FieldName:   s.name,
			DisplayName: s.display,
			FieldType:   s.typ,
			Required:    s.required,
			Active:      true,
			SortOrder:   i,
		}
	}
	return out
}

// StaticSource serves a fixed list of definitions, for offline use.
type StaticSource []model.FieldDefinition

func (s StaticSource) ListAll(ctx context.Context) ([]model.FieldDefinition, error) {
	out := make([]model.FieldDefinition, len(s))
	copy(out, s)
	sortDefinitions(out)
	return out, nil
}

func (s StaticSource) ListActive(ctx context.Context) ([]model.FieldDefinition, error) {
	all, _ := s.ListAll(ctx)
	out := all[:0]
	for _, d := range all {
		if d.Active {
			out = append(out, d)
		}
	}
	return out, nil
}
