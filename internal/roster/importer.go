package roster

import (
	"context"
	"fmt"
	"strings"

	"gradepulse/internal/logger"
	"gradepulse/internal/model"
	"gradepulse/pkg/errors"

	"github.com/rs/zerolog"
)

type FieldSource interface {
	ListAll(ctx context.Context) ([]model.FieldDefinition, error)
	ListActive(ctx context.Context) ([]model.FieldDefinition, error)
}

// Importer runs the preview pipeline: read, map headers, decode, validate, diff.
type Importer struct {
	fields   FieldSource
	students StudentLookup
	log      zerolog.Logger
}

// NewImporter accepts a nil lookup, in which case every row is reported as new.
func NewImporter(fields FieldSource, students StudentLookup) *Importer {
	return &Importer{
		fields:   fields,
		students: students,
		log:      logger.Component("import"),
	}
}

func (im *Importer) Preview(ctx context.Context, filename string, data []byte) (*model.Preview, error) {
	if len(data) == 0 {
		return nil, errors.ErrEmptyFile
	}
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	log := im.log.With().Str("filename", filename).Str("format", string(format)).Logger()

	sheet, err := ReaderFor(format).Read(ctx, data)
	if err != nil {
		return nil, err
	}
	if len(sheet.Rows) == 0 {
		return nil, errors.ErrMissingHeader
	}

	all, err := im.fields.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load field definitions: %w", err)
	}
	active, err := im.fields.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load active fields: %w", err)
	}

	columns, unmapped := NewHeaderMapper(all, log).Map(sheet.Rows[0].Strings())
	decoder := NewDecoder(columns, active, log)
	validator := NewValidator(active)

	preview := &model.Preview{
		Filename:        filename,
		Rows:            []*model.ImportRow{},
		ActiveFields:    active,
		UnmappedHeaders: unmapped,
	}

	var ids []string
	for i, raw := range sheet.Rows[1:] {
		row, ok := decoder.Decode(raw, i+2)
		if !ok {
			continue
		}
		validator.Validate(row)
		preview.Rows = append(preview.Rows, row)
		if id := strings.TrimSpace(row.StudentID.String); id != "" {
			ids = append(ids, id)
		}
	}

	if err := im.compare(ctx, preview.Rows, ids); err != nil {
		return nil, err
	}

	preview.TotalRows = len(preview.Rows)
	for _, row := range preview.Rows {
		if row.Valid {
			preview.ValidCount++
		}
	}

	log.Info().
		Int("rows", preview.TotalRows).
		Int("valid", preview.ValidCount).
		Int("mapped_columns", len(columns)).
		Int("unmapped_headers", len(unmapped)).
		Msg("Preview built")
	return preview, nil
}

func (im *Importer) compare(ctx context.Context, rows []*model.ImportRow, ids []string) error {
	if im.students == nil || len(ids) == 0 {
		return nil
	}
	existing, err := im.students.FindByStudentIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load existing students: %w", err)
	}
	for _, row := range rows {
		Compare(row, existing[strings.TrimSpace(row.StudentID.String)])
	}
	return nil
}
