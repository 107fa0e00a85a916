package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"gradepulse/internal/model"
	"gradepulse/pkg/errors"
)

type AttendanceRepository struct {
	db *sql.DB
}

func NewAttendanceRepository(db *sql.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

func (r *AttendanceRepository) Exists(ctx context.Context, studentID int64, date time.Time) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM attendance_records WHERE student_id = ? AND attendance_date = ?)",
		studentID, date.Format(model.DateLayout)).Scan(&exists)
	return exists, err
}

// Insert relies on the (student_id, attendance_date) unique key to catch a
// record written between Exists and Insert.
func (r *AttendanceRepository) Insert(ctx context.Context, record *model.AttendanceRecord) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO attendance_records
		 (student_id, class_section_id, attendance_date, status, arrival_time, marked_at, marked_by, academic_year, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.StudentID, record.ClassSectionID, record.AttendanceDate.Format(model.DateLayout), record.Status,
		record.ArrivalTime, record.MarkedAt, record.MarkedBy, record.AcademicYear, record.Notes)
	if err != nil {
		if isDuplicate(err) {
			return errors.ErrAlreadyMarked
		}
		return err
	}
	record.ID, err = res.LastInsertId()
	return err
}

func (r *AttendanceRepository) Recent(ctx context.Context, studentID int64, since time.Time) ([]model.AttendanceRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, student_id, class_section_id, attendance_date, status, arrival_time, marked_at, marked_by, academic_year, notes
		 FROM attendance_records WHERE student_id = ? AND attendance_date >= ?
		 ORDER BY attendance_date DESC`,
		studentID, since.Format(model.DateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.AttendanceRecord
	for rows.Next() {
		var a model.AttendanceRecord
		if err := rows.Scan(&a.ID, &a.StudentID, &a.ClassSectionID, &a.AttendanceDate, &a.Status,
			&a.ArrivalTime, &a.MarkedAt, &a.MarkedBy, &a.AcademicYear, &a.Notes); err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		records = append(records, a)
	}
	return records, rows.Err()
}
