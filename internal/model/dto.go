package model

import "time"

// NotificationJob is queued for the notify worker.
type NotificationJob struct {
	To         string    `json:"to"`
	Body       string    `json:"body"`
	Attempts   int       `json:"attempts"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

type FieldRequest struct {
	FieldName   string `json:"field_name" form:"field_name" binding:"required,snake_case,max=64"`
	DisplayName string `json:"display_name" form:"display_name" binding:"required,max=128"`
	FieldType   string `json:"field_type" form:"field_type" binding:"required,oneof=STRING NUMBER DATE BOOLEAN FILE_URL"`
	Description string `json:"description" form:"description" binding:"max=512"`
	Required    bool   `json:"required" form:"required"`
}

type ReorderRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1"`
}

type StudentPage struct {
	Students []*Student `json:"students"`
	Total    int        `json:"total"`
	Limit    int        `json:"limit"`
	Offset   int        `json:"offset"`
}

// StudentFilter narrows a student listing. Empty fields match everything.
type StudentFilter struct {
	Search       string `form:"search"`
	Board        string `form:"board"`
	AcademicYear string `form:"academic_year"`
	StudentClass string `form:"student_class"`
	Division     string `form:"division"`
	Gender       string `form:"gender"`
	Limit        int    `form:"limit"`
	Offset       int    `form:"offset"`
}

// StudentFilterOptions are the distinct values a listing can be filtered by.
type StudentFilterOptions struct {
	Boards        []string `json:"boards"`
	AcademicYears []string `json:"academic_years"`
	Classes       []string `json:"classes"`
	Divisions     []string `json:"divisions"`
}

// StudentInput holds student values keyed by field name, as sent by a client.
// Values may be strings, numbers, booleans or null.
type StudentInput map[string]any
