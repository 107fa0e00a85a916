package roster

import (
	"context"
	"fmt"
	"sync"

	"gradepulse/internal/model"
)

func testDefinitions() []model.FieldDefinition {
	defs := []model.FieldDefinition{
		{FieldName: model.FieldStudentID, DisplayName: "Student ID", FieldType: model.FieldTypeString, Required: true},
		{FieldName: model.FieldFullName, DisplayName: "Full Name", FieldType: model.FieldTypeString, Required: true},
		{FieldName: model.FieldDateOfBirth, DisplayName: "Date of Birth", FieldType: model.FieldTypeDate},
		{FieldName: model.FieldGender, DisplayName: "Gender", FieldType: model.FieldTypeString},
		{FieldName: model.FieldCurrentClass, DisplayName: "Current Class", FieldType: model.FieldTypeString},
		{FieldName: model.FieldImmunization, DisplayName: "Immunization", FieldType: model.FieldTypeBoolean},
		{FieldName: model.FieldHeightCM, DisplayName: "Height (cm)", FieldType: model.FieldTypeNumber},
		{FieldName: model.FieldAttendancePercent, DisplayName: "Attendance %", FieldType: model.FieldTypeNumber},
		{FieldName: model.FieldFatherName, DisplayName: "Father Name", FieldType: model.FieldTypeString},
		{FieldName: model.FieldFatherContact, DisplayName: "Father Contact", FieldType: model.FieldTypeString},
		{FieldName: model.FieldMotherContact, DisplayName: "Mother Contact", FieldType: model.FieldTypeString},
		{FieldName: model.FieldGuardianContact, DisplayName: "Guardian Contact", FieldType: model.FieldTypeString},
		{FieldName: "house", DisplayName: "House", FieldType: model.FieldTypeString},
	}
	for i := range defs {
		defs[i].ID = int64(i + 1)
		defs[i].Active = true
		defs[i].SortOrder = i
	}
	return defs
}

type staticFields struct {
	defs []model.FieldDefinition
}

func (s staticFields) ListAll(ctx context.Context) ([]model.FieldDefinition, error) {
	return s.defs, nil
}

func (s staticFields) ListActive(ctx context.Context) ([]model.FieldDefinition, error) {
	var out []model.FieldDefinition
	for _, d := range s.defs {
		if d.Active {
			out = append(out, d)
		}
	}
	return out, nil
}

// memoryStudents is a StudentStore backed by a map. failOn makes SaveStudents
// reject the listed student IDs.
type memoryStudents struct {
	mu       sync.Mutex
	byID     map[string]*model.Student
	nextID   int64
	failOn   map[string]bool
	batchErr error
	saves    int
}

func newMemoryStudents(seed ...*model.Student) *memoryStudents {
	m := &memoryStudents{byID: map[string]*model.Student{}, failOn: map[string]bool{}}
	for _, s := range seed {
		m.nextID++
		s.ID = m.nextID
		m.byID[s.StudentID.String] = s
	}
	return m
}

func (m *memoryStudents) FindByStudentIDs(ctx context.Context, ids []string) (map[string]*model.Student, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]*model.Student{}
	for _, id := range ids {
		if s, ok := m.byID[id]; ok {
			cp := *s
			cp.Extensions = model.Extensions{}
			for k, v := range s.Extensions {
				cp.Extensions[k] = v
			}
			out[id] = &cp
		}
	}
	return out, nil
}

func (m *memoryStudents) SaveStudents(ctx context.Context, students []*model.Student) (map[int]error, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	failures := map[int]error{}
	for i, s := range students {
		if m.failOn[s.StudentID.String] {
			failures[i] = fmt.Errorf("duplicate enrollment number")
			continue
		}
		if s.ID == 0 {
			m.nextID++
			s.ID = m.nextID
		}
		m.byID[s.StudentID.String] = s
	}
	return failures, nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []string
	fail map[string]bool
}

func (n *recordingNotifier) Send(ctx context.Context, to, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, to)
	if n.fail[to] {
		return fmt.Errorf("provider rejected %s", to)
	}
	return nil
}

type fixedSections struct {
	section *model.ClassSection
	err     error
	calls   int
}

func (f *fixedSections) Resolve(ctx context.Context, fields *model.StudentFields, academicYear, board string) (*model.ClassSection, error) {
	f.calls++
	return f.section, f.err
}
