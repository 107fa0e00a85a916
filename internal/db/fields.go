package db

import (
	"context"
	"database/sql"
	"fmt"

	"gradepulse/internal/model"
)

const fieldColumns = "id, field_name, display_name, field_type, description, required, active, sort_order"

type FieldRepository struct {
	db *sql.DB
}

func NewFieldRepository(db *sql.DB) *FieldRepository {
	return &FieldRepository{db: db}
}

func scanField(scan func(dest ...any) error) (model.FieldDefinition, error) {
	var f model.FieldDefinition
	err := scan(&f.ID, &f.FieldName, &f.DisplayName, &f.FieldType, &f.Description, &f.Required, &f.Active, &f.SortOrder)
	return f, err
}

func (r *FieldRepository) list(ctx context.Context, where string) ([]model.FieldDefinition, error) {
	query := fmt.Sprintf("SELECT %s FROM field_definitions %s ORDER BY sort_order, id", fieldColumns, where)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	defs := []model.FieldDefinition{}
	for rows.Next() {
		f, err := scanField(rows.Scan)
		if err != nil {
			return nil, err
		}
		defs = append(defs, f)
	}
	return defs, rows.Err()
}

func (r *FieldRepository) ListAll(ctx context.Context) ([]model.FieldDefinition, error) {
	return r.list(ctx, "")
}

func (r *FieldRepository) ListActive(ctx context.Context) ([]model.FieldDefinition, error) {
	return r.list(ctx, "WHERE active = TRUE")
}

func (r *FieldRepository) FindByID(ctx context.Context, id int64) (*model.FieldDefinition, error) {
	query := fmt.Sprintf("SELECT %s FROM field_definitions WHERE id = ?", fieldColumns)
	f, err := scanField(r.db.QueryRowContext(ctx, query, id).Scan)
	if err != nil {
		return nil, notFound(err)
	}
	return &f, nil
}

func (r *FieldRepository) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, "SELECT EXISTS(SELECT 1 FROM field_definitions WHERE field_name = ?)", name).Scan(&exists)
	return exists, err
}

func (r *FieldRepository) NextSortOrder(ctx context.Context) (int, error) {
	var next int
	err := r.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(sort_order) + 1, 0) FROM field_definitions").Scan(&next)
	return next, err
}

func (r *FieldRepository) Create(ctx context.Context, def *model.FieldDefinition) error {
	return insertField(ctx, r.db, def)
}

func insertField(ctx context.Context, q execer, def *model.FieldDefinition) error {
	res, err := q.ExecContext(ctx,
		`INSERT INTO field_definitions (field_name, display_name, field_type, description, required, active, sort_order)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		def.FieldName, def.DisplayName, def.FieldType, def.Description, def.Required, def.Active, def.SortOrder)
	if err != nil {
		return err
	}
	def.ID, err = res.LastInsertId()
	return err
}

func (r *FieldRepository) Update(ctx context.Context, def *model.FieldDefinition) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE field_definitions SET field_name = ?, display_name = ?, field_type = ?, description = ?,
		 required = ?, active = ?, sort_order = ? WHERE id = ?`,
		def.FieldName, def.DisplayName, def.FieldType, def.Description, def.Required, def.Active, def.SortOrder, def.ID)
	return err
}

func (r *FieldRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM field_definitions WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// UpdateSortOrders gives each id its position in ids, atomically.
func (r *FieldRepository) UpdateSortOrders(ctx context.Context, ids []int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for pos, id := range ids {
		if _, err := tx.ExecContext(ctx, "UPDATE field_definitions SET sort_order = ? WHERE id = ?", pos, id); err != nil {
			return fmt.Errorf("failed to reorder field %d: %w", id, err)
		}
	}
	return tx.Commit()
}
