package fields

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gradepulse/internal/logger"
	"gradepulse/internal/model"
	"gradepulse/pkg/errors"

	"github.com/rs/zerolog"
)

var snakeCase = regexp.MustCompile(`^[a-z][a-z0-9]*(_[a-z0-9]+)*$`)

// IsSnakeCase reports whether name is lower snake_case, e.g. "house_colour".
func IsSnakeCase(name string) bool {
	return snakeCase.MatchString(name)
}

type Repository interface {
	ListAll(ctx context.Context) ([]model.FieldDefinition, error)
	ListActive(ctx context.Context) ([]model.FieldDefinition, error)
	// FindByID returns errors.ErrNotFound for unknown ids.
	FindByID(ctx context.Context, id int64) (*model.FieldDefinition, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	NextSortOrder(ctx context.Context) (int, error)
	Create(ctx context.Context, def *model.FieldDefinition) error
	Update(ctx context.Context, def *model.FieldDefinition) error
	Delete(ctx context.Context, id int64) error
	UpdateSortOrders(ctx context.Context, ids []int64) error
}

type Service struct {
	repo Repository
	log  zerolog.Logger
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, log: logger.Component("fields")}
}

func (s *Service) ListAll(ctx context.Context) ([]model.FieldDefinition, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) ListActive(ctx context.Context) ([]model.FieldDefinition, error) {
	return s.repo.ListActive(ctx)
}

// Add appends a new active field after the current last one.
func (s *Service) Add(ctx context.Context, req model.FieldRequest) (*model.FieldDefinition, error) {
	def, err := fromRequest(req)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.ExistsByName(ctx, def.FieldName)
	if err != nil {
		return nil, fmt.Errorf("failed to check field name: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%s: %w", def.FieldName, errors.ErrFieldExists)
	}

	if def.SortOrder, err = s.repo.NextSortOrder(ctx); err != nil {
		return nil, fmt.Errorf("failed to read sort order: %w", err)
	}
	def.Active = true
	if err := s.repo.Create(ctx, def); err != nil {
		return nil, fmt.Errorf("failed to create field: %w", err)
	}

	s.log.Info().Str("field", def.FieldName).Int("sort_order", def.SortOrder).Msg("Field added")
	return def, nil
}

// Update replaces the descriptive attributes of a field. Renaming to a name
// already in use fails with ErrFieldExists.
func (s *Service) Update(ctx context.Context, id int64, req model.FieldRequest) (*model.FieldDefinition, error) {
	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := fromRequest(req)
	if err != nil {
		return nil, err
	}

	if next.FieldName != current.FieldName {
		exists, err := s.repo.ExistsByName(ctx, next.FieldName)
		if err != nil {
			return nil, fmt.Errorf("failed to check field name: %w", err)
		}
		if exists {
			return nil, fmt.Errorf("%s: %w", next.FieldName, errors.ErrFieldExists)
		}
	}

	current.FieldName = next.FieldName
	current.DisplayName = next.DisplayName
	current.FieldType = next.FieldType
	current.Description = next.Description
	current.Required = next.Required
	if err := s.repo.Update(ctx, current); err != nil {
		return nil, fmt.Errorf("failed to update field: %w", err)
	}
	return current, nil
}

func (s *Service) Toggle(ctx context.Context, id int64) (*model.FieldDefinition, error) {
	def, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	def.Active = !def.Active
	if err := s.repo.Update(ctx, def); err != nil {
		return nil, fmt.Errorf("failed to toggle field: %w", err)
	}
	s.log.Info().Str("field", def.FieldName).Bool("active", def.Active).Msg("Field toggled")
	return def, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	def, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete field: %w", err)
	}
	s.log.Info().Str("field", def.FieldName).Msg("Field deleted")
	return nil
}

// Reorder sets sort_order to each id's position in ids.
func (s *Service) Reorder(ctx context.Context, ids []int64) error {
	seen := make(map[int64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return errors.ValidationError{Field: "ids", Value: id, Message: "duplicate id"}
		}
		seen[id] = true
	}
	return s.repo.UpdateSortOrders(ctx, ids)
}

func fromRequest(req model.FieldRequest) (*model.FieldDefinition, error) {
	name := strings.TrimSpace(req.FieldName)
	if !IsSnakeCase(name) {
		return nil, errors.ValidationError{Field: "field_name", Value: req.FieldName, Message: "must be snake_case"}
	}
	typ, err := model.ParseFieldType(req.FieldType)
	if err != nil {
		return nil, errors.ValidationError{Field: "field_type", Value: req.FieldType, Message: err.Error()}
	}
	display := strings.TrimSpace(req.DisplayName)
	if display == "" {
		return nil, errors.ValidationError{Field: "display_name", Value: req.DisplayName, Message: "is required"}
	}
	return &model.FieldDefinition{
		FieldName:   name,
		DisplayName: display,
		FieldType:   typ,
		Description: strings.TrimSpace(req.Description),
		Required:    req.Required,
	}, nil
}

func sortDefinitions(defs []model.FieldDefinition) {
	sort.SliceStable(defs, func(i, j int) bool {
		if defs[i].SortOrder != defs[j].SortOrder {
			return defs[i].SortOrder < defs[j].SortOrder
		}
		return defs[i].ID < defs[j].ID
	})
}
