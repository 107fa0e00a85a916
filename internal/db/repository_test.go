package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"gradepulse/internal/model"
	"gradepulse/pkg/errors"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
)

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", placeholders(0))
	assert.Equal(t, "?", placeholders(1))
	assert.Equal(t, "?, ?, ?", placeholders(3))
}

func TestUpsertShape(t *testing.T) {
	assert.Equal(t, len(model.StudentFieldNames)+2, strings.Count(upsertStudent, "?"))
	assert.Contains(t, upsertStudent, "id = LAST_INSERT_ID(id)")
	assert.Contains(t, upsertStudent, "dynamic_data = VALUES(dynamic_data)")
	assert.NotContains(t, upsertStudent, "student_id = VALUES(student_id)")
}

func TestUpdateShape(t *testing.T) {
	assert.Equal(t, len(model.StudentFieldNames)+2, strings.Count(updateStudent, "?"))
	assert.NotContains(t, updateStudent, "student_id = ?")
	assert.True(t, strings.HasSuffix(updateStudent, "WHERE id = ?"))
	assert.Len(t, updateArgs(&model.Student{ID: 9}), len(model.StudentFieldNames)+2)
	assert.Equal(t, int64(9), updateArgs(&model.Student{ID: 9})[len(model.StudentFieldNames)+1])
}

func TestFilterClause(t *testing.T) {
	where, args := filterClause(model.StudentFilter{})
	assert.Empty(t, where)
	assert.Empty(t, args)

	where, args = filterClause(model.StudentFilter{Search: " 50%_off ", Board: "CBSE", Division: "Science", Gender: "female"})
	assert.Equal(t, " WHERE (s.student_id LIKE ? OR s.full_name LIKE ? OR s.father_contact LIKE ? OR s.mother_contact LIKE ?)"+
		" AND c.board = ? AND s.division = ? AND LOWER(s.gender) = LOWER(?)", where)
	assert.Equal(t, []any{`%50\%\_off%`, `%50\%\_off%`, `%50\%\_off%`, `%50\%\_off%`, "CBSE", "Science", "female"}, args)
}

func TestScanTargetsMatchColumns(t *testing.T) {
	s := &model.Student{}
	targets := scanTargets(s)
	assert.Len(t, targets, len(strings.Split(studentColumns, ", ")))
	for i, target := range targets {
		assert.NotNil(t, target, "column %d", i)
	}
	assert.Len(t, upsertArgs(s), len(model.StudentFieldNames)+2)
}

func TestIsDuplicate(t *testing.T) {
	assert.True(t, isDuplicate(fmt.Errorf("wrapped: %w", &mysql.MySQLError{Number: 1062})))
	assert.False(t, isDuplicate(&mysql.MySQLError{Number: 1452}))
	assert.False(t, isDuplicate(sql.ErrNoRows))
	assert.ErrorIs(t, notFound(sql.ErrNoRows), errors.ErrNotFound)
}

// testDB opens TEST_MYSQL_DSN and migrates it, skipping when it is not set.
// The DSN needs parseTime=true and multiStatements=true.
func testDB(t *testing.T) *Repositories {
	t.Helper()
	dsn := os.Getenv("TEST_MYSQL_DSN")
	if dsn == "" {
		t.Skip("TEST_MYSQL_DSN not set")
	}
	conn, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, Migrate(context.Background(), conn, "up"))
	return NewRepositories(conn)
}

func TestSaveStudentsIsolatesRows(t *testing.T) {
	repos := testDB(t)
	ctx := context.Background()

	prefix := uuid.NewString()[:8]
	good := &model.Student{Extensions: model.Extensions{"house": model.TextValue(model.FieldTypeString, "Blue")}}
	good.StudentID = null.StringFrom(prefix + "-1")
	good.FullName = null.StringFrom("Aisha Khan")
	good.DateOfBirth = null.TimeFrom(time.Date(2012, 5, 3, 0, 0, 0, 0, time.UTC))

	bad := &model.Student{ClassSectionID: null.Int64From(-1)} // violates the class section foreign key
	bad.StudentID = null.StringFrom(prefix + "-2")

	failures, err := repos.Students.SaveStudents(ctx, []*model.Student{good, bad})
	require.NoError(t, err)
	assert.Len(t, failures, 1)
	assert.Error(t, failures[1])
	assert.NotZero(t, good.ID)

	stored, err := repos.Students.FindByStudentIDs(ctx, []string{prefix + "-1", prefix + "-2"})
	require.NoError(t, err)
	require.Len(t, stored, 1)
	got := stored[prefix+"-1"]
	assert.Equal(t, good.ID, got.ID)
	assert.Equal(t, "2012-05-03", got.Value(model.FieldDateOfBirth))
	assert.Equal(t, "Blue", got.Extensions["house"].String())

	// Saving again updates in place and keeps the surrogate id.
	id := good.ID
	good.FullName = null.StringFrom("Aisha K.")
	failures, err = repos.Students.SaveStudents(ctx, []*model.Student{good})
	require.NoError(t, err)
	assert.Empty(t, failures)
	assert.Equal(t, id, good.ID)

	_, err = repos.Students.FindByStudentID(ctx, prefix+"-2")
	assert.ErrorIs(t, err, errors.ErrNotFound)
}

func TestStudentCRUD(t *testing.T) {
	repos := testDB(t)
	ctx := context.Background()

	prefix := uuid.NewString()[:8]
	s := &model.Student{}
	s.StudentID = null.StringFrom(prefix + "-1")
	s.FullName = null.StringFrom("Ravi Menon")
	s.MotherContact = null.StringFrom("+9715" + prefix[:4])
	s.AttendancePercent = null.Float64From(74.5)
	require.NoError(t, repos.Students.Create(ctx, s))
	assert.NotZero(t, s.ID)
	assert.ErrorIs(t, repos.Students.Create(ctx, s), errors.ErrStudentExists)

	s.FullName = null.StringFrom("Ravi M.")
	require.NoError(t, repos.Students.Update(ctx, s))
	require.NoError(t, repos.Students.SetLanguagePreference(ctx, s.ID, "TAMIL"))

	got, err := repos.Students.FindByContact(ctx, s.MotherContact.String)
	require.NoError(t, err)
	assert.Equal(t, "Ravi M.", got.FullName.String)
	assert.Equal(t, "TAMIL", got.LanguagePreference.String)

	found, total, err := repos.Students.Search(ctx, model.StudentFilter{Search: prefix, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, found, 1)

	below, err := repos.Students.ListBelowAttendance(ctx, 75)
	require.NoError(t, err)
	assert.NotEmpty(t, below)

	require.NoError(t, repos.Students.Delete(ctx, prefix+"-1"))
	assert.ErrorIs(t, repos.Students.Delete(ctx, prefix+"-1"), errors.ErrNotFound)
}
