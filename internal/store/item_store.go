package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"stockroom/internal/domain"
)

const itemColumns = "id, name, description, attachment_ref, created_at, updated_at"

// ItemStore is the relational repository for inventory records. It never
// touches the filesystem; attachment files belong to the filestore.
type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

func (s *ItemStore) Create(ctx context.Context, name, description string) (*domain.InventoryItem, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("name is required: %w", domain.ErrValidation)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO items (name, description) VALUES (?, ?)
	`, name, description)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "create item", Err: err}
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, &domain.PersistenceError{Op: "create item", Err: err}
	}

	return s.GetByID(ctx, id)
}

func (s *ItemStore) GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM items WHERE id = ?
	`, id)

	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "get item", Err: err}
	}

	return item, nil
}

func (s *ItemStore) List(ctx context.Context) ([]*domain.InventoryItem, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+itemColumns+` FROM items ORDER BY id ASC
	`)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "list items", Err: err}
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var items []*domain.InventoryItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, &domain.PersistenceError{Op: "scan item", Err: err}
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, &domain.PersistenceError{Op: "list items", Err: err}
	}

	return items, nil
}

// UpdateFields applies a merge patch: a nil pointer leaves the field
// unchanged, an explicit empty description clears it, an explicit empty
// name is rejected because name is required.
func (s *ItemStore) UpdateFields(ctx context.Context, id int64, name, description *string) (*domain.InventoryItem, error) {
	if name == nil && description == nil {
		return s.GetByID(ctx, id)
	}
	if name != nil && strings.TrimSpace(*name) == "" {
		return nil, fmt.Errorf("name must not be empty: %w", domain.ErrValidation)
	}

	set := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []any{}
	if name != nil {
		set = append(set, "name = ?")
		args = append(args, *name)
	}
	if description != nil {
		set = append(set, "description = ?")
		args = append(args, *description)
	}
	args = append(args, id)

	result, err := s.db.ExecContext(ctx, `
		UPDATE items SET `+strings.Join(set, ", ")+` WHERE id = ?
	`, args...)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "update item", Err: err}
	}

	if err := requireOneRow(result, id); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// SetAttachmentRef points the record at a stored object, or clears the
// reference when ref is nil. Only the attachment lifecycle in
// internal/service calls this; handlers must go through the service so the
// row and the file always move together.
func (s *ItemStore) SetAttachmentRef(ctx context.Context, id int64, ref *string) (*domain.InventoryItem, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE items SET attachment_ref = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, ref, id)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "set attachment ref", Err: err}
	}

	if err := requireOneRow(result, id); err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// Delete removes the row and returns it as it was, so the caller can clean
// up the attachment file the record pointed at.
func (s *ItemStore) Delete(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "delete item", Err: err}
	}
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			slog.Error("failed to roll back delete", "item_id", id, "error", err)
		}
	}()

	row := tx.QueryRowContext(ctx, `
		SELECT `+itemColumns+` FROM items WHERE id = ?
	`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	if err != nil {
		return nil, &domain.PersistenceError{Op: "delete item", Err: err}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, id); err != nil {
		return nil, &domain.PersistenceError{Op: "delete item", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, &domain.PersistenceError{Op: "delete item", Err: err}
	}

	return item, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*domain.InventoryItem, error) {
	item := &domain.InventoryItem{}
	var ref sql.NullString
	if err := row.Scan(&item.ID, &item.Name, &item.Description, &ref, &item.CreatedAt, &item.UpdatedAt); err != nil {
		return nil, err
	}
	if ref.Valid {
		item.AttachmentRef = &ref.String
	}
	return item, nil
}

func requireOneRow(result sql.Result, id int64) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return &domain.PersistenceError{Op: "rows affected", Err: err}
	}
	if affected == 0 {
		return fmt.Errorf("item %d: %w", id, domain.ErrNotFound)
	}
	return nil
}
