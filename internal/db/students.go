package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gradepulse/internal/logger"
	"gradepulse/internal/model"
	"gradepulse/pkg/errors"

	"github.com/rs/zerolog"
)

// studentsFrom joins the section so listings can filter on board and year.
const studentsFrom = " FROM students s LEFT JOIN class_sections c ON c.id = s.class_section_id"

var (
	readColumns  = append(append([]string{"id"}, model.StudentFieldNames...), "class_section_id", "dynamic_data", "uploaded_at", "updated_at")
	writeColumns = append(append([]string{}, model.StudentFieldNames...), "class_section_id", "dynamic_data")

	studentColumns          = strings.Join(readColumns, ", ")
	qualifiedStudentColumns = "s." + strings.Join(readColumns, ", s.")

	upsertStudent = buildUpsert()
	insertStudent = fmt.Sprintf("INSERT INTO students (%s, uploaded_at, updated_at) VALUES (%s, NOW(), NOW())",
		strings.Join(writeColumns, ", "), placeholders(len(writeColumns)))
	updateStudent = buildUpdate()
)

// buildUpsert keys on the unique student_id. LAST_INSERT_ID(id) makes the
// surrogate id available for updates as well as inserts.
func buildUpsert() string {
	updates := make([]string, 0, len(writeColumns)+2)
	for _, c := range writeColumns {
		if c == model.FieldStudentID {
			continue
		}
		updates = append(updates, fmt.Sprintf("%s = VALUES(%s)", c, c))
	}
	updates = append(updates, "updated_at = NOW()", "id = LAST_INSERT_ID(id)")

	return fmt.Sprintf("%s ON DUPLICATE KEY UPDATE %s", insertStudent, strings.Join(updates, ", "))
}

// buildUpdate sets every writable column except student_id, by surrogate id.
func buildUpdate() string {
	sets := make([]string, 0, len(writeColumns))
	for _, c := range writeColumns {
		if c != model.FieldStudentID {
			sets = append(sets, c+" = ?")
		}
	}
	return fmt.Sprintf("UPDATE students SET %s, updated_at = NOW() WHERE id = ?", strings.Join(sets, ", "))
}

type StudentRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewStudentRepository(db *sql.DB) *StudentRepository {
	return &StudentRepository{db: db, log: logger.Component("db")}
}

// scanTargets lines up with studentColumns.
func scanTargets(s *model.Student) []any {
	targets := make([]any, 0, len(model.StudentFieldNames)+5)
	targets = append(targets, &s.ID)
	for _, name := range model.StudentFieldNames {
		targets = append(targets, s.Ref(name))
	}
	return append(targets, &s.ClassSectionID, &s.Extensions, &s.UploadedAt, &s.UpdatedAt)
}

func upsertArgs(s *model.Student) []any {
	args := make([]any, 0, len(model.StudentFieldNames)+2)
	for _, name := range model.StudentFieldNames {
		args = append(args, s.Ref(name))
	}
	if s.Extensions == nil {
		s.Extensions = model.Extensions{}
	}
	return append(args, s.ClassSectionID, s.Extensions)
}

func updateArgs(s *model.Student) []any {
	args := upsertArgs(s)[1:]
	return append(args, s.ID)
}

func (r *StudentRepository) queryStudents(ctx context.Context, q execer, query string, args ...any) ([]*model.Student, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var students []*model.Student
	for rows.Next() {
		s := &model.Student{}
		if err := rows.Scan(scanTargets(s)...); err != nil {
			return nil, err
		}
		students = append(students, s)
	}
	return students, rows.Err()
}

func (r *StudentRepository) queryOne(ctx context.Context, query string, args ...any) (*model.Student, error) {
	s := &model.Student{}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(scanTargets(s)...); err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// FindByStudentIDs loads every stored student whose student_id is in ids, keyed by student_id.
func (r *StudentRepository) FindByStudentIDs(ctx context.Context, ids []string) (map[string]*model.Student, error) {
	out := make(map[string]*model.Student, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := fmt.Sprintf("SELECT %s FROM students WHERE student_id IN (%s)", studentColumns, placeholders(len(ids)))
	students, err := r.queryStudents(ctx, r.db, query, args...)
	if err != nil {
		return nil, err
	}
	for _, s := range students {
		out[s.StudentID.String] = s
	}
	return out, nil
}

func (r *StudentRepository) FindByStudentID(ctx context.Context, studentID string) (*model.Student, error) {
	return r.queryOne(ctx, fmt.Sprintf("SELECT %s FROM students WHERE student_id = ?", studentColumns), studentID)
}

func (r *StudentRepository) FindByID(ctx context.Context, id int64) (*model.Student, error) {
	return r.queryOne(ctx, fmt.Sprintf("SELECT %s FROM students WHERE id = ?", studentColumns), id)
}

// Search returns one page of students matching filter and the total number of matches.
func (r *StudentRepository) Search(ctx context.Context, filter model.StudentFilter) ([]*model.Student, int, error) {
	where, args := filterClause(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+studentsFrom+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s%s%s ORDER BY s.id LIMIT ? OFFSET ?", qualifiedStudentColumns, studentsFrom, where)
	students, err := r.queryStudents(ctx, r.db, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return students, total, nil
}

// filterClause builds the WHERE clause over students s joined to class_sections c.
func filterClause(f model.StudentFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if q := strings.TrimSpace(f.Search); q != "" {
		like := "%" + escapeLike(q) + "%"
		conds = append(conds, "(s.student_id LIKE ? OR s.full_name LIKE ? OR s.father_contact LIKE ? OR s.mother_contact LIKE ?)")
		args = append(args, like, like, like, like)
	}
	equals := []struct{ column, value string }{
		{"c.board", f.Board},
		{"c.academic_year", f.AcademicYear},
		{"s.student_class", f.StudentClass},
		{"s.division", f.Division},
	}
	for _, e := range equals {
		if v := strings.TrimSpace(e.value); v != "" {
			conds = append(conds, e.column+" = ?")
			args = append(args, v)
		}
	}
	if g := strings.TrimSpace(f.Gender); g != "" {
		conds = append(conds, "LOWER(s.gender) = LOWER(?)")
		args = append(args, g)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

func (r *StudentRepository) FilterOptions(ctx context.Context) (*model.StudentFilterOptions, error) {
	opts := &model.StudentFilterOptions{}
	lists := []struct {
		dst   *[]string
		query string
	}{
		{&opts.Boards, "SELECT DISTINCT board FROM class_sections WHERE board <> '' ORDER BY board"},
		{&opts.AcademicYears, "SELECT DISTINCT academic_year FROM class_sections WHERE academic_year <> '' ORDER BY academic_year"},
		{&opts.Classes, "SELECT DISTINCT student_class FROM students WHERE student_class <> '' ORDER BY student_class"},
		{&opts.Divisions, "SELECT DISTINCT division FROM students WHERE division <> '' ORDER BY division"},
	}
	for _, l := range lists {
		values, err := r.distinct(ctx, l.query)
		if err != nil {
			return nil, err
		}
		*l.dst = values
	}
	return opts, nil
}

func (r *StudentRepository) distinct(ctx context.Context, query string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Create inserts a new student. An existing student_id is ErrStudentExists.
func (r *StudentRepository) Create(ctx context.Context, s *model.Student) error {
	res, err := r.db.ExecContext(ctx, insertStudent, upsertArgs(s)...)
	if err != nil {
		if isDuplicate(err) {
			return fmt.Errorf("%w: %s", errors.ErrStudentExists, s.StudentID.String)
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}

// Update rewrites a stored student by surrogate id. student_id never changes.
func (r *StudentRepository) Update(ctx context.Context, s *model.Student) error {
	_, err := r.db.ExecContext(ctx, updateStudent, updateArgs(s)...)
	return err
}

func (r *StudentRepository) Delete(ctx context.Context, studentID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM students WHERE student_id = ?", studentID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// FindByContact returns the first student with contact as a father, mother or guardian number.
func (r *StudentRepository) FindByContact(ctx context.Context, contact string) (*model.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE father_contact = ? OR mother_contact = ? OR guardian_contact = ? ORDER BY id LIMIT 1", studentColumns)
	return r.queryOne(ctx, query, contact, contact, contact)
}

func (r *StudentRepository) SetLanguagePreference(ctx context.Context, id int64, language string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE students SET language_preference = ?, updated_at = NOW() WHERE id = ?", language, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *StudentRepository) ListByCurrentClass(ctx context.Context, currentClass string) ([]*model.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE current_class = ? ORDER BY full_name, id", studentColumns)
	return r.queryStudents(ctx, r.db, query, currentClass)
}

func (r *StudentRepository) ListBelowAttendance(ctx context.Context, below float64) ([]*model.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE attendance_percent < ? ORDER BY attendance_percent, full_name", studentColumns)
	return r.queryStudents(ctx, r.db, query, below)
}

// ListAttendanceBetween returns students with from <= attendance_percent <= to.
func (r *StudentRepository) ListAttendanceBetween(ctx context.Context, from, to float64) ([]*model.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE attendance_percent BETWEEN ? AND ? ORDER BY attendance_percent, full_name", studentColumns)
	return r.queryStudents(ctx, r.db, query, from, to)
}

func (r *StudentRepository) ListByClassSection(ctx context.Context, classSectionID int64) ([]*model.Student, error) {
	query := fmt.Sprintf("SELECT %s FROM students WHERE class_section_id = ? ORDER BY full_name, id", studentColumns)
	return r.queryStudents(ctx, r.db, query, classSectionID)
}

// SaveStudents upserts the batch in one transaction with a savepoint per
// student. A student that fails is rolled back alone and reported by index.
func (r *StudentRepository) SaveStudents(ctx context.Context, students []*model.Student) (map[int]error, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	failures := make(map[int]error)
	for i, s := range students {
		savepoint := fmt.Sprintf("student_%d", i)
		if _, err := tx.ExecContext(ctx, "SAVEPOINT "+savepoint); err != nil {
			return nil, fmt.Errorf("failed to create savepoint: %w", err)
		}

		if err := r.save(ctx, tx, s); err != nil {
			if _, rbErr := tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+savepoint); rbErr != nil {
				return nil, fmt.Errorf("failed to roll back savepoint: %w", rbErr)
			}
			r.log.Warn().Err(err).Str("student_id", s.StudentID.String).Msg("Student rolled back")
			failures[i] = err
			continue
		}

		if _, err := tx.ExecContext(ctx, "RELEASE SAVEPOINT "+savepoint); err != nil {
			return nil, fmt.Errorf("failed to release savepoint: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit students: %w", err)
	}
	return failures, nil
}

func (r *StudentRepository) save(ctx context.Context, tx *sql.Tx, s *model.Student) error {
	res, err := tx.ExecContext(ctx, upsertStudent, upsertArgs(s)...)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = id
	return nil
}
