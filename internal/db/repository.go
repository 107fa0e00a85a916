package db

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"gradepulse/pkg/errors"

	"github.com/go-sql-driver/mysql"
)

const errDuplicateEntry = 1062

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repositories groups the table repositories over one connection pool.
type Repositories struct {
	Students   *StudentRepository
	Fields     *FieldRepository
	Sections   *SectionRepository
	Attendance *AttendanceRepository
}

func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Students:   NewStudentRepository(db),
		Fields:     NewFieldRepository(db),
		Sections:   NewSectionRepository(db),
		Attendance: NewAttendanceRepository(db),
	}
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func notFound(err error) error {
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.ErrNotFound
	}
	return err
}

func isDuplicate(err error) bool {
	var merr *mysql.MySQLError
	return stderrors.As(err, &merr) && merr.Number == errDuplicateEntry
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrNotFound
	}
	return nil
}
