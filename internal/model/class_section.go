package model

import (
	"fmt"
	"time"
)

type ClassSection struct {
	ID           int64     `json:"id"`
	AcademicYear string    `json:"academic_year"`
	Board        string    `json:"board"`
	Stream       string    `json:"stream"`
	ClassName    string    `json:"class_name"`
	SectionName  string    `json:"section_name"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

func (c ClassSection) FullName() string {
	return fmt.Sprintf("%s - %s %s (Section %s)", c.Board, c.Stream, c.ClassName, c.SectionName)
}

// ShortName is the class and section, e.g. "10th A".
func (c ClassSection) ShortName() string {
	return c.ClassName + " " + c.SectionName
}
