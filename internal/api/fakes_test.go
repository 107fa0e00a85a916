package api

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"gradepulse/internal/fields"
	"gradepulse/internal/model"
	"gradepulse/pkg/errors"

	"github.com/volatiletech/null/v8"
)

type fieldRepo struct {
	defs []model.FieldDefinition
}

func newFieldRepo() *fieldRepo {
	defs := fields.DefaultDefinitions()
	for i := range defs {
		defs[i].ID = int64(i + 1)
	}
	return &fieldRepo{defs: defs}
}

func (r *fieldRepo) ListAll(ctx context.Context) ([]model.FieldDefinition, error) {
	return fields.StaticSource(r.defs).ListAll(ctx)
}

func (r *fieldRepo) ListActive(ctx context.Context) ([]model.FieldDefinition, error) {
	return fields.StaticSource(r.defs).ListActive(ctx)
}

func (r *fieldRepo) FindByID(ctx context.Context, id int64) (*model.FieldDefinition, error) {
	for _, d := range r.defs {
		if d.ID == id {
			return &d, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (r *fieldRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	for _, d := range r.defs {
		if d.FieldName == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *fieldRepo) NextSortOrder(ctx context.Context) (int, error) {
	return len(r.defs), nil
}

func (r *fieldRepo) Create(ctx context.Context, def *model.FieldDefinition) error {
	def.ID = int64(len(r.defs) + 1)
	r.defs = append(r.defs, *def)
	return nil
}

func (r *fieldRepo) Update(ctx context.Context, def *model.FieldDefinition) error {
	for i := range r.defs {
		if r.defs[i].ID == def.ID {
			r.defs[i] = *def
			return nil
		}
	}
	return errors.ErrNotFound
}

func (r *fieldRepo) Delete(ctx context.Context, id int64) error {
	for i := range r.defs {
		if r.defs[i].ID == id {
			r.defs = append(r.defs[:i], r.defs[i+1:]...)
			return nil
		}
	}
	return errors.ErrNotFound
}

func (r *fieldRepo) UpdateSortOrders(ctx context.Context, ids []int64) error {
	for pos, id := range ids {
		for i := range r.defs {
			if r.defs[i].ID == id {
				r.defs[i].SortOrder = pos
			}
		}
	}
	return nil
}

// studentStore serves the roster, api and attendance interfaces from one map.
type studentStore struct {
	mu     sync.Mutex
	byID   map[string]*model.Student
	nextID int64
}

func newStudentStore() *studentStore {
	return &studentStore{byID: map[string]*model.Student{}}
}

func (s *studentStore) FindByStudentIDs(ctx context.Context, ids []string) (map[string]*model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]*model.Student{}
	for _, id := range ids {
		if st, ok := s.byID[id]; ok {
			cp := *st
			out[id] = &cp
		}
	}
	return out, nil
}

func (s *studentStore) SaveStudents(ctx context.Context, students []*model.Student) (map[int]error, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range students {
		if st.ID == 0 {
			s.nextID++
			st.ID = s.nextID
		}
		cp := *st
		s.byID[st.StudentID.String] = &cp
	}
	return map[int]error{}, nil
}

// ordered returns students by surrogate id. Callers hold mu.
func (s *studentStore) ordered() []*model.Student {
	var out []*model.Student
	for id := int64(1); id <= s.nextID; id++ {
		for _, st := range s.byID {
			if st.ID == id {
				out = append(out, st)
			}
		}
	}
	return out
}

func (s *studentStore) Search(ctx context.Context, filter model.StudentFilter) ([]*model.Student, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var matched []*model.Student
	for _, st := range s.ordered() {
		if filter.Search != "" && !strings.Contains(strings.ToLower(st.FullName.String), strings.ToLower(filter.Search)) &&
			!strings.Contains(st.StudentID.String, filter.Search) {
			continue
		}
		if filter.Gender != "" && !strings.EqualFold(st.Gender.String, filter.Gender) {
			continue
		}
		matched = append(matched, st)
	}
	total := len(matched)
	if filter.Offset >= total {
		return nil, total, nil
	}
	matched = matched[filter.Offset:]
	if len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (s *studentStore) FilterOptions(ctx context.Context) (*model.StudentFilterOptions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	opts := &model.StudentFilterOptions{Boards: []string{}, AcademicYears: []string{}, Classes: []string{}, Divisions: []string{}}
	for _, st := range s.ordered() {
		if c := st.StudentClass.String; c != "" {
			opts.Classes = append(opts.Classes, c)
		}
	}
	return opts, nil
}

func (s *studentStore) Create(ctx context.Context, st *model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[st.StudentID.String]; ok {
		return errors.ErrStudentExists
	}
	s.nextID++
	st.ID = s.nextID
	cp := *st
	s.byID[st.StudentID.String] = &cp
	return nil
}

func (s *studentStore) Update(ctx context.Context, st *model.Student) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *st
	s.byID[st.StudentID.String] = &cp
	return nil
}

func (s *studentStore) Delete(ctx context.Context, studentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[studentID]; !ok {
		return errors.ErrNotFound
	}
	delete(s.byID, studentID)
	return nil
}

func (s *studentStore) FindByContact(ctx context.Context, contact string) (*model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.ordered() {
		for _, c := range st.AllContacts() {
			if c == contact {
				return st, nil
			}
		}
	}
	return nil, errors.ErrNotFound
}

func (s *studentStore) SetLanguagePreference(ctx context.Context, id int64, language string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.byID {
		if st.ID == id {
			st.LanguagePreference = null.StringFrom(language)
			return nil
		}
	}
	return errors.ErrNotFound
}

func (s *studentStore) ListByCurrentClass(ctx context.Context, currentClass string) ([]*model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Student
	for _, st := range s.ordered() {
		if !st.ClassSectionID.Valid && st.CurrentClass.String == currentClass {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *studentStore) ListBelowAttendance(ctx context.Context, below float64) ([]*model.Student, error) {
	return s.attendanceWhere(func(p float64) bool { return p < below }), nil
}

func (s *studentStore) ListAttendanceBetween(ctx context.Context, from, to float64) ([]*model.Student, error) {
	return s.attendanceWhere(func(p float64) bool { return p >= from && p <= to }), nil
}

func (s *studentStore) attendanceWhere(match func(float64) bool) []*model.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*model.Student
	for _, st := range s.ordered() {
		if st.AttendancePercent.Valid && match(st.AttendancePercent.Float64) {
			out = append(out, st)
		}
	}
	return out
}

func (s *studentStore) FindByStudentID(ctx context.Context, studentID string) (*model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.byID[studentID]; ok {
		return st, nil
	}
	return nil, errors.ErrNotFound
}

func (s *studentStore) FindByID(ctx context.Context, id int64) (*model.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range s.byID {
		if st.ID == id {
			return st, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (s *studentStore) ListByClassSection(ctx context.Context, classSectionID int64) ([]*model.Student, error) {
	return nil, nil
}

type sectionStore []*model.ClassSection

func (s sectionStore) FindSectionByID(ctx context.Context, id int64) (*model.ClassSection, error) {
	for _, c := range s {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, errors.ErrNotFound
}

func (s sectionStore) ListByYear(ctx context.Context, academicYear string) ([]*model.ClassSection, error) {
	out := []*model.ClassSection{}
	for _, c := range s {
		if c.AcademicYear == academicYear {
			out = append(out, c)
		}
	}
	return out, nil
}

type noRecords struct{}

func (noRecords) Exists(ctx context.Context, studentID int64, date time.Time) (bool, error) {
	return false, nil
}

func (noRecords) Insert(ctx context.Context, record *model.AttendanceRecord) error { return nil }

func (noRecords) Recent(ctx context.Context, studentID int64, since time.Time) ([]model.AttendanceRecord, error) {
	return nil, nil
}

type sessionStore struct {
	sessions map[string]model.UploadSession
}

func (s *sessionStore) Save(ctx context.Context, session model.UploadSession) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *sessionStore) Get(ctx context.Context, id string) (*model.UploadSession, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, errors.ErrSessionExpired
	}
	return &session, nil
}

func (s *sessionStore) Delete(ctx context.Context, id string) error {
	delete(s.sessions, id)
	return nil
}

type memoryArchive struct {
	objects map[string][]byte
}

func (m *memoryArchive) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, errors.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memoryArchive) Upload(ctx context.Context, key string, data io.ReadSeeker, contentType string) error {
	b, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	m.objects[key] = b
	return nil
}

func (m *memoryArchive) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

type countingNotifier struct {
	mu   sync.Mutex
	sent []string
}

func (n *countingNotifier) Send(ctx context.Context, to, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, to)
	return nil
}
