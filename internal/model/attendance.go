package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "PRESENT"
	AttendanceAbsent  AttendanceStatus = "ABSENT"
	AttendanceLate    AttendanceStatus = "LATE"
	AttendanceHalfDay AttendanceStatus = "HALF_DAY"
)

func ParseAttendanceStatus(s string) (AttendanceStatus, error) {
	switch st := AttendanceStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceHalfDay:
		return st, nil
	}
	return "", fmt.Errorf("unknown attendance status %q", s)
}

func (s AttendanceStatus) DisplayName() string {
	switch s {
	case AttendancePresent:
		return "Present"
	case AttendanceAbsent:
		return "Absent"
	case AttendanceLate:
		return "Late"
	case AttendanceHalfDay:
		return "Half Day"
	}
	return string(s)
}

type AttendanceRecord struct {
	ID             int64            `json:"id"`
	StudentID      int64            `json:"student_id"`
	ClassSectionID int64            `json:"class_section_id"`
	AttendanceDate time.Time        `json:"attendance_date"`
	Status         AttendanceStatus `json:"status"`
	ArrivalTime    null.String      `json:"arrival_time"` // HH:MM, LATE only
	MarkedAt       time.Time        `json:"marked_at"`
	MarkedBy       string           `json:"marked_by"`
	AcademicYear   string           `json:"academic_year"`
	Notes          null.String      `json:"notes"`
}

type AttendanceEntry struct {
	StudentID   int64            `json:"student_id" binding:"required"`
	Status      AttendanceStatus `json:"status" binding:"required,oneof=PRESENT ABSENT LATE HALF_DAY"`
	ArrivalTime string           `json:"arrival_time,omitempty"`
	Notes       string           `json:"notes,omitempty"`
}

type AttendanceSubmission struct {
	ClassSectionID int64             `json:"class_section_id" binding:"required"`
	AttendanceDate string            `json:"attendance_date,omitempty"` // YYYY-MM-DD, today when empty
	MarkedBy       string            `json:"marked_by"`
	Entries        []AttendanceEntry `json:"entries" binding:"required,dive"`
}

type AttendanceResult struct {
	SuccessCount        int      `json:"success_count"`
	FailedCount         int      `json:"failed_count"`
	NotificationsSent   int      `json:"notifications_sent"`
	NotificationsFailed int      `json:"notifications_failed"`
	Errors              []string `json:"errors"`
}

type StudentAttendance struct {
	ID                  int64  `json:"id"`
	StudentID           string `json:"student_id"`
	FullName            string `json:"full_name"`
	LastStatus          string `json:"last_status,omitempty"`
	LastDate            string `json:"last_date,omitempty"`
	ConsecutiveAbsences int    `json:"consecutive_absences"`
}

type AlertType string

const (
	AlertCritical AlertType = "critical"
	AlertWarning  AlertType = "warning"
	AlertReminder AlertType = "reminder"
)

type AlertCandidates struct {
	Low         []*Student `json:"low_attendance"`
	Medium      []*Student `json:"medium_attendance"`
	LowCount    int        `json:"low_count"`
	MediumCount int        `json:"medium_count"`
}

type AlertRequest struct {
	StudentIDs []int64   `json:"student_ids" binding:"required,min=1"`
	AlertType  AlertType `json:"alert_type"`
}

type AlertResult struct {
	Sent    int      `json:"sent"`
	Failed  int      `json:"failed"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}
