package db

import (
	"context"
	"database/sql"
	"fmt"

	"gradepulse/internal/model"
)

const sectionColumns = "id, academic_year, board, stream, class_name, section_name, active, created_at"

type SectionRepository struct {
	db *sql.DB
}

func NewSectionRepository(db *sql.DB) *SectionRepository {
	return &SectionRepository{db: db}
}

func scanSection(scan func(dest ...any) error) (*model.ClassSection, error) {
	var c model.ClassSection
	if err := scan(&c.ID, &c.AcademicYear, &c.Board, &c.Stream, &c.ClassName, &c.SectionName, &c.Active, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *SectionRepository) FindSection(ctx context.Context, key model.ClassSection) (*model.ClassSection, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_sections
		WHERE academic_year = ? AND board = ? AND stream = ? AND class_name = ? AND section_name = ?`, sectionColumns)
	c, err := scanSection(r.db.QueryRowContext(ctx, query,
		key.AcademicYear, key.Board, key.Stream, key.ClassName, key.SectionName).Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

// CreateSection inserts the section. When a concurrent import created the same
// key first, the existing row is loaded into section instead.
func (r *SectionRepository) CreateSection(ctx context.Context, section *model.ClassSection) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO class_sections (academic_year, board, stream, class_name, section_name, active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, NOW())`,
		section.AcademicYear, section.Board, section.Stream, section.ClassName, section.SectionName, section.Active)
	if err != nil {
		if isDuplicate(err) {
			existing, ferr := r.FindSection(ctx, *section)
			if ferr != nil {
				return ferr
			}
			*section = *existing
			return nil
		}
		return err
	}
	section.ID, err = res.LastInsertId()
	return err
}

func (r *SectionRepository) FindSectionByID(ctx context.Context, id int64) (*model.ClassSection, error) {
	query := fmt.Sprintf("SELECT %s FROM class_sections WHERE id = ?", sectionColumns)
	c, err := scanSection(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return c, nil
}

func (r *SectionRepository) ListByYear(ctx context.Context, academicYear string) ([]*model.ClassSection, error) {
	query := fmt.Sprintf(`SELECT %s FROM class_sections WHERE academic_year = ? AND active = TRUE
		ORDER BY board, stream, class_name, section_name`, sectionColumns)
	rows, err := r.db.QueryContext(ctx, query, academicYear)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sections := []*model.ClassSection{}
	for rows.Next() {
		c, err := scanSection(rows.Scan)
		if err != nil {
			return nil, err
		}
		sections = append(sections, c)
	}
	return sections, rows.Err()
}
