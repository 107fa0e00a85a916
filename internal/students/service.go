package students

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"gradepulse/internal/logger"
	"gradepulse/internal/model"
	"gradepulse/internal/roster"
	"gradepulse/pkg/errors"

	"github.com/rs/zerolog"
	"github.com/volatiletech/null/v8"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 500
)

type Repository interface {
	Search(ctx context.Context, filter model.StudentFilter) ([]*model.Student, int, error)
	FilterOptions(ctx context.Context) (*model.StudentFilterOptions, error)
	FindByStudentID(ctx context.Context, studentID string) (*model.Student, error)
	// Create fails with ErrStudentExists when student_id is taken.
	Create(ctx context.Context, s *model.Student) error
	Update(ctx context.Context, s *model.Student) error
	Delete(ctx context.Context, studentID string) error
}

type FieldSource interface {
	ListActive(ctx context.Context) ([]model.FieldDefinition, error)
}

// Defaults apply when a student is linked to a class section.
type Defaults struct {
	AcademicYear string
	Board        string
}

// Service manages single students outside the import flow. Input passes the
// same contact normalisation and validation as an imported row.
type Service struct {
	repo     Repository
	fields   FieldSource
	sections roster.SectionResolver
	defaults Defaults
	log      zerolog.Logger
}

// NewService builds the service. sections may be nil, which leaves class
// sections unlinked.
func NewService(repo Repository, fields FieldSource, sections roster.SectionResolver, defaults Defaults) *Service {
	return &Service{
		repo:     repo,
		fields:   fields,
		sections: sections,
		defaults: defaults,
		log:      logger.Component("students"),
	}
}

func (s *Service) Search(ctx context.Context, filter model.StudentFilter) (*model.StudentPage, error) {
	switch {
	case filter.Limit <= 0:
		filter.Limit = DefaultPageSize
	case filter.Limit > MaxPageSize:
		filter.Limit = MaxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	students, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	if students == nil {
		students = []*model.Student{}
	}
	return &model.StudentPage{Students: students, Total: total, Limit: filter.Limit, Offset: filter.Offset}, nil
}

func (s *Service) FilterOptions(ctx context.Context) (*model.StudentFilterOptions, error) {
	return s.repo.FilterOptions(ctx)
}

func (s *Service) Get(ctx context.Context, studentID string) (*model.Student, error) {
	return s.repo.FindByStudentID(ctx, studentID)
}

func (s *Service) Create(ctx context.Context, input model.StudentInput) (*model.Student, error) {
	row, err := s.decode(ctx, model.StudentFields{}, input)
	if err != nil {
		return nil, err
	}

	student := &model.Student{Extensions: model.Extensions{}}
	roster.ApplyRow(student, row)
	if err := s.link(ctx, student); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, student); err != nil {
		return nil, err
	}

	s.log.Info().Str("student_id", student.StudentID.String).Msg("Student created")
	return student, nil
}

// Update merges input over the stored student. A null or empty value clears
// the field. student_id cannot change.
func (s *Service) Update(ctx context.Context, studentID string, input model.StudentInput) (*model.Student, error) {
	student, err := s.repo.FindByStudentID(ctx, studentID)
	if err != nil {
		return nil, err
	}
	if v, ok := input[model.FieldStudentID]; ok {
		if given := inputString(v); given != "" && given != studentID {
			return nil, errors.ValidationError{Field: model.FieldStudentID, Value: given, Message: "student_id cannot be changed"}
		}
	}

	merged := make(model.StudentInput, len(input))
	for k, v := range input {
		merged[k] = v
	}
	merged[model.FieldStudentID] = studentID

	row, err := s.decode(ctx, student.StudentFields, merged)
	if err != nil {
		return nil, err
	}
	roster.ApplyRow(student, row)
	if err := s.link(ctx, student); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, student); err != nil {
		return nil, err
	}

	s.log.Info().Str("student_id", studentID).Int("fields", len(input)).Msg("Student updated")
	return student, nil
}

func (s *Service) Delete(ctx context.Context, studentID string) error {
	if err := s.repo.Delete(ctx, studentID); err != nil {
		return err
	}
	s.log.Info().Str("student_id", studentID).Msg("Student deleted")
	return nil
}

func (s *Service) link(ctx context.Context, student *model.Student) error {
	if s.sections == nil {
		return nil
	}
	section, err := s.sections.Resolve(ctx, &student.StudentFields, s.defaults.AcademicYear, s.defaults.Board)
	if err != nil {
		return fmt.Errorf("resolve class section: %w", err)
	}
	if section != nil {
		student.ClassSectionID = null.Int64From(section.ID)
	}
	return nil
}

// decode overlays input on base and validates the result like an imported row.
// Every problem is reported in one ValidationError.
func (s *Service) decode(ctx context.Context, base model.StudentFields, input model.StudentInput) (*model.ImportRow, error) {
	active, err := s.fields.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load active fields: %w", err)
	}
	custom := make(map[string]model.FieldDefinition)
	for _, def := range active {
		if !model.IsCoreField(def.FieldName) {
			custom[def.FieldName] = def
		}
	}

	row := model.NewImportRow(0)
	row.StudentFields = base

	names := make([]string, 0, len(input))
	for name := range input {
		names = append(names, name)
	}
	sort.Strings(names)

	var problems []string
	for _, name := range names {
		value := inputString(input[name])
		if ref := row.Ref(name); ref != nil {
			if value == "" {
				clearField(ref)
				continue
			}
			if err := roster.AssignValue(ref, value); err != nil {
				problems = append(problems, fmt.Sprintf("%s: %v", name, err))
			}
			continue
		}

		def, ok := custom[name]
		if !ok {
			problems = append(problems, fmt.Sprintf("unknown field %q", name))
			continue
		}
		if value == "" {
			continue
		}
		v, ok := roster.ParseExtension(def, value)
		if !ok {
			problems = append(problems, fmt.Sprintf("%s: invalid %s value %q", name, strings.ToLower(string(def.FieldType)), value))
			continue
		}
		row.Extensions[name] = v
	}

	roster.NormalizeContacts(&row.StudentFields)
	roster.NewValidator(active).Validate(row)
	problems = append(problems, row.Errors...)
	if len(problems) > 0 {
		return nil, errors.ValidationError{Field: "student", Value: row.StudentID.String, Message: strings.Join(problems, "; ")}
	}
	return row, nil
}

func clearField(ref any) {
	switch p := ref.(type) {
	case *null.String:
		*p = null.String{}
	case *null.Time:
		*p = null.Time{}
	case *null.Bool:
		*p = null.Bool{}
	case *null.Int:
		*p = null.Int{}
	case *null.Float64:
		*p = null.Float64{}
	}
}

func inputString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		return x.String()
	default:
		return strings.TrimSpace(fmt.Sprint(x))
	}
}
