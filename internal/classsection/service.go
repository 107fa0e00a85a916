package classsection

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"gradepulse/internal/logger"
	"gradepulse/internal/model"
	"gradepulse/pkg/errors"

	"github.com/rs/zerolog"
)

type Repository interface {
	// FindSection returns errors.ErrNotFound when no section has this key.
	FindSection(ctx context.Context, key model.ClassSection) (*model.ClassSection, error)
	CreateSection(ctx context.Context, section *model.ClassSection) error
}

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, log: logger.Component("class_section")}
}

// Resolve picks the section for a student. Structured class and sub-division
// values win; otherwise the current class text, then the admission class text,
// is parsed. It returns nil when the student has no class information.
func (s *Service) Resolve(ctx context.Context, f *model.StudentFields, academicYear, board string) (*model.ClassSection, error) {
	class := strings.TrimSpace(f.StudentClass.String)
	sub := strings.TrimSpace(f.SubDivision.String)
	if class != "" && sub != "" {
		c := Components{
			Board:       orDefault(board, DefaultBoard),
			Stream:      orDefault(f.Division.String, DefaultStream),
			ClassName:   class,
			SectionName: sub,
		}
		return s.FindOrCreate(ctx, c, academicYear)
	}

	text := strings.TrimSpace(f.CurrentClass.String)
	if text == "" {
		text = strings.TrimSpace(f.AdmissionClass.String)
	}
	if text == "" {
		return nil, nil
	}
	return s.FindOrCreate(ctx, Parse(text), academicYear)
}

func (s *Service) FindOrCreate(ctx context.Context, c Components, academicYear string) (*model.ClassSection, error) {
	key := model.ClassSection{
		AcademicYear: academicYear,
		Board:        c.Board,
		Stream:       c.Stream,
		ClassName:    c.ClassName,
		SectionName:  c.SectionName,
	}

	existing, err := s.repo.FindSection(ctx, key)
	if err == nil {
		return existing, nil
	}
	if !stderrors.Is(err, errors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up class section: %w", err)
	}

	key.Active = true
	if err := s.repo.CreateSection(ctx, &key); err != nil {
		return nil, fmt.Errorf("failed to create class section %s: %w", key.FullName(), err)
	}
	s.log.Info().Int64("id", key.ID).Str("section", key.FullName()).Msg("Created class section")
	return &key, nil
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v != "" {
		return v
	}
	return def
}
