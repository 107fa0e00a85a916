package roster

import (
	"context"
	"fmt"

	"gradepulse/internal/logger"
	"gradepulse/internal/model"

	"github.com/rs/zerolog"
	"github.com/volatiletech/null/v8"
)

type StudentLookup interface {
	FindByStudentIDs(ctx context.Context, ids []string) (map[string]*model.Student, error)
}

// StudentStore persists a batch in one unit of work. The returned map holds the
// error for each index that could not be saved; err is set when the unit itself failed.
type StudentStore interface {
	StudentLookup
	SaveStudents(ctx context.Context, students []*model.Student) (map[int]error, error)
}

// SectionResolver links a student to a class section, returning nil when the
// row carries no class information.
type SectionResolver interface {
	Resolve(ctx context.Context, f *model.StudentFields, academicYear, board string) (*model.ClassSection, error)
}

type Notifier interface {
	Send(ctx context.Context, to, body string) error
}

type CommitConfig struct {
	NotificationCap int
	WelcomeMessage  string
}

type CommitOptions struct {
	AcademicYear string
	Board        string
}

type Committer struct {
	students StudentStore
	sections SectionResolver
	notifier Notifier
	cfg      CommitConfig
	log      zerolog.Logger
}

// NewCommitter accepts nil sections or notifier to skip class linking or welcome messages.
func NewCommitter(students StudentStore, sections SectionResolver, notifier Notifier, cfg CommitConfig) *Committer {
	return &Committer{
		students: students,
		sections: sections,
		notifier: notifier,
		cfg:      cfg,
		log:      logger.Component("commit"),
	}
}

func (c *Committer) Commit(ctx context.Context, rows []*model.ImportRow, opts CommitOptions) (*model.CommitResult, error) {
	result := &model.CommitResult{Failures: []string{}}

	var pending []*model.ImportRow
	var ids []string
	for _, row := range rows {
		if !row.Valid {
			c.log.Warn().Int("row", row.RowNumber).Strs("errors", row.Errors).Msg("Skipping invalid row")
			result.Skipped++
			continue
		}
		pending = append(pending, row)
		ids = append(ids, row.StudentID.String)
	}
	if len(pending) == 0 {
		return result, nil
	}

	existing, err := c.students.FindByStudentIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing students: %w", err)
	}

	batch := make([]*model.Student, 0, len(pending))
	batchRows := make([]*model.ImportRow, 0, len(pending))
	for _, row := range pending {
		student, found := existing[row.StudentID.String]
		if !found {
			student = &model.Student{Extensions: model.Extensions{}}
		}
		ApplyRow(student, row)

		if c.sections != nil {
			section, err := c.sections.Resolve(ctx, &row.StudentFields, opts.AcademicYear, opts.Board)
			if err != nil {
				c.fail(result, row, err)
				continue
			}
			if section != nil {
				student.ClassSectionID = null.Int64From(section.ID)
			}
		}

		c.log.Debug().Str("student_id", row.StudentID.String).Bool("update", found).Msg("Queued student")
		batch = append(batch, student)
		batchRows = append(batchRows, row)
	}

	var failures map[int]error
	if len(batch) > 0 {
		failures, err = c.students.SaveStudents(ctx, batch)
		if err != nil {
			c.log.Error().Err(err).Int("batch_size", len(batch)).Msg("Batch save failed")
			failures = make(map[int]error, len(batch))
			for i := range batch {
				failures[i] = err
			}
		}
	}

	committed := make([]*model.Student, 0, len(batch))
	for i, student := range batch {
		if ferr := failures[i]; ferr != nil {
			c.fail(result, batchRows[i], ferr)
			continue
		}
		result.Succeeded++
		committed = append(committed, student)
	}

	c.welcome(ctx, committed, result)

	c.log.Info().
		Int("succeeded", result.Succeeded).
		Int("failed", result.Failed).
		Int("skipped", result.Skipped).
		Int("notifications_sent", result.NotificationsSent).
		Msg("Import committed")
	return result, nil
}

func (c *Committer) fail(result *model.CommitResult, row *model.ImportRow, err error) {
	c.log.Error().Err(err).Int("row", row.RowNumber).Str("student_id", row.StudentID.String).Msg("Failed to save student")
	result.Failed++
	result.Failures = append(result.Failures, fmt.Sprintf("%s: %v", row.Label(), err))
}

// welcome sends at most cfg.NotificationCap messages per batch. The cap counts
// attempts and is checked before each one.
func (c *Committer) welcome(ctx context.Context, students []*model.Student, result *model.CommitResult) {
	if c.notifier == nil {
		return
	}
	attempts := 0
	for _, s := range students {
		for _, contact := range s.Contacts() {
			if !IsInternational(contact) {
				continue
			}
			if attempts >= c.cfg.NotificationCap {
				result.NotificationsSkipped++
				continue
			}
			attempts++
			if err := c.notifier.Send(ctx, contact, c.cfg.WelcomeMessage); err != nil {
				c.log.Warn().Err(err).Str("to", contact).Str("student_id", s.StudentID.String).Msg("Welcome message failed")
				result.NotificationsFailed++
				continue
			}
			result.NotificationsSent++
		}
	}
	if result.NotificationsSkipped > 0 {
		c.log.Info().Int("cap", c.cfg.NotificationCap).Int("skipped", result.NotificationsSkipped).Msg("Notification cap reached")
	}
}

// ApplyRow overwrites every fixed field of s with the row. Extension keys present
// in the row replace stored ones; other stored keys are kept.
func ApplyRow(s *model.Student, row *model.ImportRow) {
	s.StudentFields = row.StudentFields
	if s.Extensions == nil {
		s.Extensions = model.Extensions{}
	}
	for k, v := range row.Extensions {
		s.Extensions[k] = v
	}
}
