package model

import (
	"strconv"
	"time"

	"github.com/volatiletech/null/v8"
)

// Canonical names of the fixed student schema. They double as column names.
const (
	FieldStudentID            = "student_id"
	FieldFullName             = "full_name"
	FieldDateOfBirth          = "date_of_birth"
	FieldGender               = "gender"
	FieldApaarID              = "apaar_id"
	FieldAadhaarNumber        = "aadhaar_number"
	FieldCategory             = "category"
	FieldAddress              = "address"
	FieldPhotoURL             = "photo_url"
	FieldPreviousSchoolTCURL  = "previous_school_tc_url"
	FieldAdmissionClass       = "admission_class"
	FieldCurrentClass         = "current_class"
	FieldStudentClass         = "student_class"
	FieldDivision             = "division"
	FieldSubDivision          = "sub_division"
	FieldAdmissionDate        = "admission_date"
	FieldEnrollmentNo         = "enrollment_no"
	FieldPreviousMarksheetURL = "previous_marksheet_url"
	FieldBloodGroup           = "blood_group"
	FieldAllergiesConditions  = "allergies_conditions"
	FieldImmunization         = "immunization"
	FieldHeightCM             = "height_cm"
	FieldWeightKG             = "weight_kg"
	FieldVisionCheck          = "vision_check"
	FieldCharacterCertURL     = "character_cert_url"
	FieldAadhaarCardURL       = "aadhaar_card_url"
	FieldFeeStatus            = "fee_status"
	FieldAttendancePercent    = "attendance_percent"
	FieldUDISEUploaded        = "udise_uploaded"
	FieldFatherName           = "father_name"
	FieldFatherContact        = "father_contact"
	FieldFatherAadhaar        = "father_aadhaar"
	FieldMotherName           = "mother_name"
	FieldMotherContact        = "mother_contact"
	FieldMotherAadhaar        = "mother_aadhaar"
	FieldGuardianName         = "guardian_name"
	FieldGuardianContact      = "guardian_contact"
	FieldGuardianRelation     = "guardian_relation"
	FieldGuardianAadhaar      = "guardian_aadhaar"
	FieldFamilyStatus         = "family_status"
	FieldLanguagePreference   = "language_preference"
)

// StudentFieldNames lists the fixed schema in column order.
var StudentFieldNames = []string{
	FieldStudentID, FieldFullName, FieldDateOfBirth, FieldGender, FieldApaarID,
	FieldAadhaarNumber, FieldCategory, FieldAddress, FieldPhotoURL, FieldPreviousSchoolTCURL,
	FieldAdmissionClass, FieldCurrentClass, FieldStudentClass, FieldDivision, FieldSubDivision,
	FieldAdmissionDate, FieldEnrollmentNo, FieldPreviousMarksheetURL, FieldBloodGroup,
	FieldAllergiesConditions, FieldImmunization, FieldHeightCM, FieldWeightKG, FieldVisionCheck,
	FieldCharacterCertURL, FieldAadhaarCardURL, FieldFeeStatus, FieldAttendancePercent,
	FieldUDISEUploaded, FieldFatherName, FieldFatherContact, FieldFatherAadhaar,
	FieldMotherName, FieldMotherContact, FieldMotherAadhaar, FieldGuardianName,
	FieldGuardianContact, FieldGuardianRelation, FieldGuardianAadhaar, FieldFamilyStatus,
	FieldLanguagePreference,
}

var coreFields = func() map[string]bool {
	m := make(map[string]bool, len(StudentFieldNames))
	for _, name := range StudentFieldNames {
		m[name] = true
	}
	return m
}()

// IsCoreField reports whether name belongs to the fixed schema rather than the extension map.
func IsCoreField(name string) bool {
	return coreFields[name]
}

// DateLayout is how date fields are rendered and compared.
const DateLayout = "2006-01-02"

type StudentFields struct {
	StudentID            null.String  `json:"student_id"`
	FullName             null.String  `json:"full_name"`
	DateOfBirth          null.Time    `json:"date_of_birth"`
	Gender               null.String  `json:"gender"`
	ApaarID              null.String  `json:"apaar_id"`
	AadhaarNumber        null.String  `json:"aadhaar_number"`
	Category             null.String  `json:"category"`
	Address              null.String  `json:"address"`
	PhotoURL             null.String  `json:"photo_url"`
	PreviousSchoolTCURL  null.String  `json:"previous_school_tc_url"`
	AdmissionClass       null.String  `json:"admission_class"`
	CurrentClass         null.String  `json:"current_class"`
	StudentClass         null.String  `json:"student_class"`
	Division             null.String  `json:"division"`
	SubDivision          null.String  `json:"sub_division"`
	AdmissionDate        null.Time    `json:"admission_date"`
	EnrollmentNo         null.String  `json:"enrollment_no"`
	PreviousMarksheetURL null.String  `json:"previous_marksheet_url"`
	BloodGroup           null.String  `json:"blood_group"`
	AllergiesConditions  null.String  `json:"allergies_conditions"`
	Immunization         null.Bool    `json:"immunization"`
	HeightCM             null.Int     `json:"height_cm"`
	WeightKG             null.Int     `json:"weight_kg"`
	VisionCheck          null.String  `json:"vision_check"`
	CharacterCertURL     null.String  `json:"character_cert_url"`
	AadhaarCardURL       null.String  `json:"aadhaar_card_url"`
	FeeStatus            null.String  `json:"fee_status"`
	AttendancePercent    null.Float64 `json:"attendance_percent"`
	UDISEUploaded        null.Bool    `json:"udise_uploaded"`
	FatherName           null.String  `json:"father_name"`
	FatherContact        null.String  `json:"father_contact"`
	FatherAadhaar        null.String  `json:"father_aadhaar"`
	MotherName           null.String  `json:"mother_name"`
	MotherContact        null.String  `json:"mother_contact"`
	MotherAadhaar        null.String  `json:"mother_aadhaar"`
	GuardianName         null.String  `json:"guardian_name"`
	GuardianContact      null.String  `json:"guardian_contact"`
	GuardianRelation     null.String  `json:"guardian_relation"`
	GuardianAadhaar      null.String  `json:"guardian_aadhaar"`
	FamilyStatus         null.String  `json:"family_status"`
	LanguagePreference   null.String  `json:"language_preference"`
}

// Ref returns a pointer to the named field (*null.String, *null.Time, *null.Bool,
// *null.Int or *null.Float64), or nil when name is not part of the fixed schema.
func (f *StudentFields) Ref(name string) any {
	switch name {
	case FieldStudentID:
		return &f.StudentID
	case FieldFullName:
		return &f.FullName
	case FieldDateOfBirth:
		return &f.DateOfBirth
	case FieldGender:
		return &f.Gender
	case FieldApaarID:
		return &f.ApaarID
	case FieldAadhaarNumber:
		return &f.AadhaarNumber
	case FieldCategory:
		return &f.Category
	case FieldAddress:
		return &f.Address
	case FieldPhotoURL:
		return &f.PhotoURL
	case FieldPreviousSchoolTCURL:
		return &f.PreviousSchoolTCURL
	case FieldAdmissionClass:
		return &f.AdmissionClass
	case FieldCurrentClass:
		return &f.CurrentClass
	case FieldStudentClass:
		return &f.StudentClass
	case FieldDivision:
		return &f.Division
	case FieldSubDivision:
		return &f.SubDivision
	case FieldAdmissionDate:
		return &f.AdmissionDate
	case FieldEnrollmentNo:
		return &f.EnrollmentNo
	case FieldPreviousMarksheetURL:
		return &f.PreviousMarksheetURL
	case FieldBloodGroup:
		return &f.BloodGroup
	case FieldAllergiesConditions:
		return &f.AllergiesConditions
	case FieldImmunization:
		return &f.Immunization
	case FieldHeightCM:
		return &f.HeightCM
	case FieldWeightKG:
		return &f.WeightKG
	case FieldVisionCheck:
		return &f.VisionCheck
	case FieldCharacterCertURL:
		return &f.CharacterCertURL
	case FieldAadhaarCardURL:
		return &f.AadhaarCardURL
	case FieldFeeStatus:
		return &f.FeeStatus
	case FieldAttendancePercent:
		return &f.AttendancePercent
	case FieldUDISEUploaded:
		return &f.UDISEUploaded
	case FieldFatherName:
		return &f.FatherName
	case FieldFatherContact:
		return &f.FatherContact
	case FieldFatherAadhaar:
		return &f.FatherAadhaar
	case FieldMotherName:
		return &f.MotherName
	case FieldMotherContact:
		return &f.MotherContact
	case FieldMotherAadhaar:
		return &f.MotherAadhaar
	case FieldGuardianName:
		return &f.GuardianName
	case FieldGuardianContact:
		return &f.GuardianContact
	case FieldGuardianRelation:
		return &f.GuardianRelation
	case FieldGuardianAadhaar:
		return &f.GuardianAadhaar
	case FieldFamilyStatus:
		return &f.FamilyStatus
	case FieldLanguagePreference:
		return &f.LanguagePreference
	}
	return nil
}

// Value renders the named field as a string. Absent values render as "".
func (f *StudentFields) Value(name string) string {
	return Render(f.Ref(name))
}

func Render(ref any) string {
	switch v := ref.(type) {
	case *null.String:
		if v.Valid {
			return v.String
		}
	case *null.Time:
		if v.Valid {
			return v.Time.Format(DateLayout)
		}
	case *null.Bool:
		if v.Valid {
			return strconv.FormatBool(v.Bool)
		}
	case *null.Int:
		if v.Valid {
			return strconv.Itoa(v.Int)
		}
	case *null.Float64:
		if v.Valid {
			return strconv.FormatFloat(v.Float64, 'f', -1, 64)
		}
	}
	return ""
}

type Student struct {
	ID int64 `json:"id"`
	StudentFields
	ClassSectionID null.Int64 `json:"class_section_id"`
	Extensions     Extensions `json:"extensions"`
	UploadedAt     time.Time  `json:"uploaded_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Contacts returns the father and mother numbers that are present, in that order.
func (s *Student) Contacts() []string {
	var out []string
	for _, c := range []null.String{s.FatherContact, s.MotherContact} {
		if c.Valid && c.String != "" {
			out = append(out, c.String)
		}
	}
	return out
}

// AllContacts adds the guardian number to Contacts.
func (s *Student) AllContacts() []string {
	out := s.Contacts()
	if c := s.GuardianContact; c.Valid && c.String != "" {
		out = append(out, c.String)
	}
	return out
}
