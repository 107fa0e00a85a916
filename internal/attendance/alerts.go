package attendance

import (
	"context"
	stderrors "errors"
	"fmt"

	"gradepulse/internal/logger"
	"gradepulse/internal/model"
	"gradepulse/internal/roster"
	"gradepulse/pkg/errors"

	"github.com/rs/zerolog"
)

const (
	LowAttendanceBelow = 75.0
	MediumAttendanceTo = 85.0
)

type AlertStudents interface {
	FindByID(ctx context.Context, id int64) (*model.Student, error)
	ListBelowAttendance(ctx context.Context, below float64) ([]*model.Student, error)
	// ListAttendanceBetween is inclusive at both ends.
	ListAttendanceBetween(ctx context.Context, from, to float64) ([]*model.Student, error)
}

// AlertService sends attendance percentage alerts to every contact of the
// selected students, stopping once the per-request cap is reached.
type AlertService struct {
	students  AlertStudents
	notifier  Notifier
	signature string
	limit     int
	log       zerolog.Logger
}

func NewAlertService(students AlertStudents, notifier Notifier, signature string, limit int) *AlertService {
	return &AlertService{
		students:  students,
		notifier:  notifier,
		signature: signature,
		limit:     limit,
		log:       logger.Component("alerts"),
	}
}

// Candidates groups students below LowAttendanceBelow and those from there up to MediumAttendanceTo.
func (a *AlertService) Candidates(ctx context.Context) (*model.AlertCandidates, error) {
	low, err := a.students.ListBelowAttendance(ctx, LowAttendanceBelow)
	if err != nil {
		return nil, fmt.Errorf("failed to list low attendance: %w", err)
	}
	medium, err := a.students.ListAttendanceBetween(ctx, LowAttendanceBelow, MediumAttendanceTo)
	if err != nil {
		return nil, fmt.Errorf("failed to list medium attendance: %w", err)
	}
	if low == nil {
		low = []*model.Student{}
	}
	if medium == nil {
		medium = []*model.Student{}
	}
	return &model.AlertCandidates{Low: low, Medium: medium, LowCount: len(low), MediumCount: len(medium)}, nil
}

// Send delivers one alert per contact. Unknown students are ignored and
// contacts past the cap count as skipped.
func (a *AlertService) Send(ctx context.Context, req model.AlertRequest) (*model.AlertResult, error) {
	if len(req.StudentIDs) == 0 {
		return nil, errors.ValidationError{Field: "student_ids", Value: req.StudentIDs, Message: "Please select at least one student"}
	}

	result := &model.AlertResult{Errors: []string{}}
	for _, id := range req.StudentIDs {
		student, err := a.students.FindByID(ctx, id)
		if err != nil {
			if stderrors.Is(err, errors.ErrNotFound) {
				continue
			}
			return nil, fmt.Errorf("student %d: %w", id, err)
		}

		body := BuildAlertMessage(student, req.AlertType, a.signature)
		for _, to := range student.AllContacts() {
			if !roster.IsInternational(to) {
				continue
			}
			if a.limit > 0 && result.Sent+result.Failed >= a.limit {
				result.Skipped++
				continue
			}
			if err := a.notifier.Send(ctx, to, body); err != nil {
				a.log.Warn().Err(err).Str("to", to).Msg("Attendance alert failed")
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", student.FullName.String, err))
				continue
			}
			result.Sent++
		}
	}

	if result.Skipped > 0 {
		a.log.Warn().Int("cap", a.limit).Int("skipped", result.Skipped).Msg("Alert cap reached")
	}
	a.log.Info().
		Str("alert_type", string(req.AlertType)).
		Int("sent", result.Sent).
		Int("failed", result.Failed).
		Msg("Attendance alerts sent")
	return result, nil
}

func BuildAlertMessage(student *model.Student, alertType model.AlertType, signature string) string {
	name := student.FullName.String
	class := student.AdmissionClass.String
	percent := student.AttendancePercent.Float64

	switch alertType {
	case model.AlertCritical:
		return fmt.Sprintf("🚨 URGENT ATTENDANCE ALERT\n\nStudent: %s\nClass: %s\nCurrent Attendance: %.1f%%\n\n"+
			"⚠️ This is critically low and requires immediate attention. "+
			"Please ensure regular attendance to avoid academic issues.\n\n- %s", name, class, percent, signature)
	case model.AlertWarning:
		return fmt.Sprintf("⚠️ ATTENDANCE ALERT\n\nStudent: %s\nClass: %s\nCurrent Attendance: %.1f%%\n\n"+
			"Your child's attendance is below the recommended level. "+
			"Please help maintain regular attendance for better academic performance.\n\n- %s", name, class, percent, signature)
	case model.AlertReminder:
		return fmt.Sprintf("📋 ATTENDANCE REMINDER\n\nStudent: %s\nClass: %s\nCurrent Attendance: %.1f%%\n\n"+
			"This is a friendly reminder about attendance. "+
			"Regular attendance is important for academic success.\n\n- %s", name, class, percent, signature)
	}
	return fmt.Sprintf("📊 ATTENDANCE UPDATE\n\nStudent: %s\nCurrent Attendance: %.1f%%\n\n- %s", name, percent, signature)
}
