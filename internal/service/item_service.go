package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"stockroom/internal/domain"
	"stockroom/internal/filestore"
)

// itemRepository is the subset of store.ItemStore that ItemService requires.
type itemRepository interface {
	Create(ctx context.Context, name, description string) (*domain.InventoryItem, error)
	GetByID(ctx context.Context, id int64) (*domain.InventoryItem, error)
	List(ctx context.Context) ([]*domain.InventoryItem, error)
	UpdateFields(ctx context.Context, id int64, name, description *string) (*domain.InventoryItem, error)
	SetAttachmentRef(ctx context.Context, id int64, ref *string) (*domain.InventoryItem, error)
	Delete(ctx context.Context, id int64) (*domain.InventoryItem, error)
}

// ItemService owns the attachment lifecycle: every operation that creates,
// replaces, or removes the pairing between a record and a stored file goes
// through here. The row store and the file store fail independently and
// share no transaction, so ordering carries the invariants:
//
//   - files are stored before the row points at them, and compensated away
//     if the row write fails (no orphan on create);
//   - no file is ever deleted before the row update that unlinks it has
//     committed (a leaked file is acceptable, a dangling reference is not).
//
// The service is stateless between calls; current state is re-derived from
// the repository on every invocation.
type ItemService struct {
	items  itemRepository
	files  filestore.Store
	logger *slog.Logger
}

func NewItemService(items itemRepository, files filestore.Store, logger *slog.Logger) *ItemService {
	return &ItemService{items: items, files: files, logger: logger}
}

// CreateItem registers a record, optionally with an initial attachment.
// The file is stored first: a failed store never touches the database, and
// a failed row write after a successful store removes the stored file again
// before the original error is surfaced.
func (s *ItemService) CreateItem(ctx context.Context, name, description string, attachment []byte, mimeType string) (*domain.InventoryItem, error) {
	if attachment == nil {
		return s.items.Create(ctx, name, description)
	}

	ref, err := s.files.Save(ctx, mimeType, bytes.NewReader(attachment))
	if err != nil {
		return nil, fmt.Errorf("failed to save attachment: %w", err)
	}

	item, err := s.items.Create(ctx, name, description)
	if err != nil {
		s.discardFile(ctx, ref, "create")
		return nil, err
	}

	linked, err := s.items.SetAttachmentRef(ctx, item.ID, &ref)
	if err != nil {
		s.discardFile(ctx, ref, "create")
		if _, derr := s.items.Delete(ctx, item.ID); derr != nil {
			s.logger.Error("failed to remove half-created item", "item_id", item.ID, "error", derr)
		}
		return nil, err
	}

	s.logger.Info("item created with attachment", "item_id", linked.ID, "ref", ref)
	return linked, nil
}

func (s *ItemService) GetItem(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	return s.items.GetByID(ctx, id)
}

func (s *ItemService) ListItems(ctx context.Context) ([]*domain.InventoryItem, error) {
	return s.items.List(ctx)
}

func (s *ItemService) UpdateItem(ctx context.Context, id int64, name, description *string) (*domain.InventoryItem, error) {
	return s.items.UpdateFields(ctx, id, name, description)
}

// ReplaceAttachment swaps the record's photo for a new one. The old file is
// removed only after the row points at the new one: a crash in between
// leaves a harmless orphaned old file, never a record referencing a missing
// object. If the row update fails, the new file stays in storage as a
// recoverable orphan and the record keeps its old, still-existing file.
func (s *ItemService) ReplaceAttachment(ctx context.Context, id int64, attachment []byte, mimeType string) (*domain.InventoryItem, error) {
	current, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	newRef, err := s.files.Save(ctx, mimeType, bytes.NewReader(attachment))
	if err != nil {
		return nil, fmt.Errorf("failed to save attachment: %w", err)
	}

	updated, err := s.items.SetAttachmentRef(ctx, id, &newRef)
	if err != nil {
		return nil, err
	}

	if current.AttachmentRef != nil {
		if err := s.files.Delete(ctx, *current.AttachmentRef); err != nil {
			// Row update committed; the old file is an orphan now, not a
			// correctness problem.
			s.logger.Error("failed to delete replaced attachment", "item_id", id, "ref", *current.AttachmentRef, "error", err)
		}
	}

	s.logger.Info("attachment replaced", "item_id", id, "ref", newRef)
	return updated, nil
}

// RemoveAttachment clears the record's photo. Same unlink-then-delete order
// as replace: the reference is cleared first, the file removed second.
func (s *ItemService) RemoveAttachment(ctx context.Context, id int64) (*domain.InventoryItem, error) {
	current, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.AttachmentRef == nil {
		return current, nil
	}
	oldRef := *current.AttachmentRef

	updated, err := s.items.SetAttachmentRef(ctx, id, nil)
	if err != nil {
		return nil, err
	}

	if err := s.files.Delete(ctx, oldRef); err != nil {
		s.logger.Error("failed to delete removed attachment", "item_id", id, "ref", oldRef, "error", err)
	}

	return updated, nil
}

// DeleteItem removes the record and cascades to its attachment file. A
// repository NotFound performs no storage mutation at all.
func (s *ItemService) DeleteItem(ctx context.Context, id int64) error {
	deleted, err := s.items.Delete(ctx, id)
	if err != nil {
		return err
	}

	if deleted.AttachmentRef != nil {
		if err := s.files.Delete(ctx, *deleted.AttachmentRef); err != nil {
			s.logger.Error("failed to delete attachment of removed item", "item_id", id, "ref", *deleted.AttachmentRef, "error", err)
		}
	}

	s.logger.Info("item deleted", "item_id", id)
	return nil
}

// GetAttachment resolves the record's photo. A missing record surfaces
// domain.ErrNotFound; a record without a resolvable photo surfaces
// domain.ErrAttachmentNotFound, so the transport can report the two cases
// distinctly.
func (s *ItemService) GetAttachment(ctx context.Context, id int64) (io.ReadCloser, string, error) {
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if item.AttachmentRef == nil {
		return nil, "", fmt.Errorf("item %d has no attachment: %w", id, domain.ErrAttachmentNotFound)
	}

	reader, mimeType, err := s.files.Get(ctx, *item.AttachmentRef)
	if err != nil {
		if errors.Is(err, domain.ErrAttachmentNotFound) {
			// Storage was mutated out-of-band; report the gap instead of
			// failing internally.
			s.logger.Warn("attachment reference does not resolve", "item_id", id, "ref", *item.AttachmentRef)
			return nil, "", err
		}
		return nil, "", err
	}

	return reader, mimeType, nil
}

func (s *ItemService) discardFile(ctx context.Context, ref, op string) {
	if err := s.files.Delete(ctx, ref); err != nil {
		s.logger.Error("failed to discard stored file during compensation", "op", op, "ref", ref, "error", err)
	}
}
