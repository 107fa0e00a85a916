package attendance

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"gradepulse/internal/logger"
	"gradepulse/internal/model"
	"gradepulse/pkg/errors"

	"github.com/rs/zerolog"
	"github.com/volatiletech/null/v8"
)

const (
	lookback     = 30 * 24 * time.Hour
	clockLayout  = "15:04"
	displayDate  = "02 Jan 2006"
	displayClock = "03:04 PM"
)

type Store interface {
	Exists(ctx context.Context, studentID int64, date time.Time) (bool, error)
	Insert(ctx context.Context, record *model.AttendanceRecord) error
	// Recent returns records on or after since, newest first.
	Recent(ctx context.Context, studentID int64, since time.Time) ([]model.AttendanceRecord, error)
}

type StudentFinder interface {
	FindByID(ctx context.Context, id int64) (*model.Student, error)
	ListByClassSection(ctx context.Context, classSectionID int64) ([]*model.Student, error)
	ListByCurrentClass(ctx context.Context, currentClass string) ([]*model.Student, error)
}

type SectionFinder interface {
	FindSectionByID(ctx context.Context, id int64) (*model.ClassSection, error)
}

type Notifier interface {
	Send(ctx context.Context, to, body string) error
}

type Service struct {
	records   Store
	students  StudentFinder
	sections  SectionFinder
	notifier  Notifier
	signature string
	now       func() time.Time
	log       zerolog.Logger
}

func NewService(records Store, students StudentFinder, sections SectionFinder, notifier Notifier, signature string) *Service {
	return &Service{
		records:   records,
		students:  students,
		sections:  sections,
		notifier:  notifier,
		signature: signature,
		now:       time.Now,
		log:       logger.Component("attendance"),
	}
}

// Submit records each entry on its own; a failing entry is reported in the result
// and does not stop the rest.
func (s *Service) Submit(ctx context.Context, sub model.AttendanceSubmission) (*model.AttendanceResult, error) {
	section, err := s.sections.FindSectionByID(ctx, sub.ClassSectionID)
	if err != nil {
		return nil, fmt.Errorf("class section %d: %w", sub.ClassSectionID, err)
	}

	now := s.now()
	date := civil(now)
	if sub.AttendanceDate != "" {
		if date, err = time.Parse(model.DateLayout, sub.AttendanceDate); err != nil {
			return nil, errors.ValidationError{Field: "attendance_date", Value: sub.AttendanceDate, Message: "must be YYYY-MM-DD"}
		}
	}

	result := &model.AttendanceResult{Errors: []string{}}
	for _, entry := range sub.Entries {
		record, student, err := s.mark(ctx, section, date, now, sub.MarkedBy, entry)
		if err != nil {
			s.log.Warn().Err(err).Int64("student_id", entry.StudentID).Msg("Attendance entry failed")
			result.FailedCount++
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.SuccessCount++

		body := BuildMessage(student, record, section, s.signature)
		for _, to := range student.Contacts() {
			if err := s.notifier.Send(ctx, to, body); err != nil {
				s.log.Warn().Err(err).Str("to", to).Msg("Attendance notification failed")
				result.NotificationsFailed++
				continue
			}
			result.NotificationsSent++
		}
	}

	s.log.Info().
		Int64("class_section_id", section.ID).
		Str("date", date.Format(model.DateLayout)).
		Int("success", result.SuccessCount).
		Int("failed", result.FailedCount).
		Msg("Attendance submitted")
	return result, nil
}

func (s *Service) mark(ctx context.Context, section *model.ClassSection, date, now time.Time, markedBy string, entry model.AttendanceEntry) (*model.AttendanceRecord, *model.Student, error) {
	status, err := model.ParseAttendanceStatus(string(entry.Status))
	if err != nil {
		return nil, nil, fmt.Errorf("student %d: %w", entry.StudentID, err)
	}

	student, err := s.students.FindByID(ctx, entry.StudentID)
	if err != nil {
		if stderrors.Is(err, errors.ErrNotFound) {
			return nil, nil, fmt.Errorf("student %d not found", entry.StudentID)
		}
		return nil, nil, fmt.Errorf("student %d: %w", entry.StudentID, err)
	}

	marked, err := s.records.Exists(ctx, student.ID, date)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", student.FullName.String, err)
	}
	if marked {
		return nil, nil, fmt.Errorf("%s: %w", student.FullName.String, errors.ErrAlreadyMarked)
	}

	record := &model.AttendanceRecord{
		StudentID:      student.ID,
		ClassSectionID: section.ID,
		AttendanceDate: date,
		Status:         status,
		MarkedAt:       now,
		MarkedBy:       markedBy,
		AcademicYear:   section.AcademicYear,
	}
	if status == model.AttendanceLate {
		arrival := strings.TrimSpace(entry.ArrivalTime)
		if _, err := time.Parse(clockLayout, arrival); err != nil {
			arrival = now.Format(clockLayout)
		}
		record.ArrivalTime = null.StringFrom(arrival)
	}
	if notes := strings.TrimSpace(entry.Notes); notes != "" {
		record.Notes = null.StringFrom(notes)
	}

	if err := s.records.Insert(ctx, record); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", student.FullName.String, err)
	}
	return record, student, nil
}

// ListForClass returns every student of a section with their latest status and
// current absence streak.
func (s *Service) ListForClass(ctx context.Context, classSectionID int64) ([]model.StudentAttendance, error) {
	section, err := s.sections.FindSectionByID(ctx, classSectionID)
	if err != nil {
		return nil, fmt.Errorf("class section %d: %w", classSectionID, err)
	}
	students, err := s.studentsOf(ctx, section)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}

	today := civil(s.now())
	out := make([]model.StudentAttendance, 0, len(students))
	for _, st := range students {
		row := model.StudentAttendance{ID: st.ID, StudentID: st.StudentID.String, FullName: st.FullName.String}
		recent, err := s.records.Recent(ctx, st.ID, today.Add(-lookback))
		if err != nil {
			return nil, fmt.Errorf("failed to load attendance for %s: %w", st.StudentID.String, err)
		}
		if len(recent) > 0 {
			row.LastStatus = recent[0].Status.DisplayName()
			row.LastDate = recent[0].AttendanceDate.Format(displayDate)
		}
		row.ConsecutiveAbsences = ConsecutiveAbsences(recent, today)
		out = append(out, row)
	}
	return out, nil
}

// studentsOf lists the students linked to section. Students imported before
// they were linked are matched on their current_class text instead.
func (s *Service) studentsOf(ctx context.Context, section *model.ClassSection) ([]*model.Student, error) {
	students, err := s.students.ListByClassSection(ctx, section.ID)
	if err != nil || len(students) > 0 {
		return students, err
	}
	for _, name := range []string{section.FullName(), section.ShortName(), section.ClassName} {
		s.log.Warn().Int64("class_section_id", section.ID).Str("current_class", name).Msg("No linked students, matching current class")
		if students, err = s.students.ListByCurrentClass(ctx, name); err != nil || len(students) > 0 {
			return students, err
		}
	}
	return nil, nil
}

// ConsecutiveAbsences counts the absence streak ending yesterday. Gaps of up to
// two days between absences (weekends) do not break the streak; any other status does.
func ConsecutiveAbsences(recent []model.AttendanceRecord, today time.Time) int {
	expected := civil(today).AddDate(0, 0, -1)
	count := 0
	for _, r := range recent {
		day := civil(r.AttendanceDate)
		if !day.Before(civil(today)) {
			continue
		}
		if r.Status != model.AttendanceAbsent {
			break
		}
		gap := int(expected.Sub(day).Hours() / 24)
		if gap < 0 || gap > 2 {
			break
		}
		count++
		expected = day.AddDate(0, 0, -1)
	}
	return count
}

func BuildMessage(student *model.Student, record *model.AttendanceRecord, section *model.ClassSection, signature string) string {
	name := student.FullName.String
	class := section.ShortName()
	date := record.AttendanceDate.Format(displayDate)

	switch record.Status {
	case model.AttendancePresent:
		return fmt.Sprintf("✓ ATTENDANCE UPDATE\n\n%s (%s) is PRESENT today.\n\nDate: %s\n- %s", name, class, date, signature)
	case model.AttendanceAbsent:
		return fmt.Sprintf("✗ ATTENDANCE ALERT\n\n%s (%s) is ABSENT today.\n\nDate: %s\nPlease contact the school if this is an error.\n\n- %s",
			name, class, date, signature)
	case model.AttendanceLate:
		arrival := "N/A"
		if t, err := time.Parse(clockLayout, record.ArrivalTime.String); err == nil {
			arrival = t.Format(displayClock)
		}
		return fmt.Sprintf("⏰ ATTENDANCE UPDATE\n\n%s (%s) arrived LATE today at %s.\n\nDate: %s\n- %s", name, class, arrival, date, signature)
	case model.AttendanceHalfDay:
		return fmt.Sprintf("½ ATTENDANCE UPDATE\n\n%s (%s) is marked HALF DAY today.\n\nDate: %s\n- %s", name, class, date, signature)
	}
	return fmt.Sprintf("ATTENDANCE UPDATE\n\n%s (%s): %s\n\nDate: %s\n- %s", name, class, record.Status, date, signature)
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
