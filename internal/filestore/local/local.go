package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"stockroom/internal/domain"
)

// Store keeps attachment objects as flat files under basePath. References
// are uuid-based filenames; callers treat them as opaque keys.
type Store struct {
	basePath string
}

func New(basePath string) (*Store, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, &domain.StorageError{Op: "init", Err: err}
	}
	if err := os.MkdirAll(filepath.Join(basePath, "tmp"), 0755); err != nil {
		return nil, &domain.StorageError{Op: "init", Err: err}
	}
	return &Store{basePath: basePath}, nil
}

// Save writes to a temp file first and renames into place, so a partial
// write never becomes a resolvable reference.
func (s *Store) Save(ctx context.Context, mimeType string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ref := uuid.NewString() + mimeTypeToExt(mimeType)

	tmp, err := os.CreateTemp(filepath.Join(s.basePath, "tmp"), "upload-*")
	if err != nil {
		return "", &domain.StorageError{Op: "save", Err: err}
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, r); err != nil {
		discardTemp(tmp, tmpPath)
		return "", &domain.StorageError{Op: "save", Err: err}
	}
	if err := tmp.Close(); err != nil {
		discardTemp(nil, tmpPath)
		return "", &domain.StorageError{Op: "save", Err: err}
	}

	if err := os.Rename(tmpPath, filepath.Join(s.basePath, ref)); err != nil {
		discardTemp(nil, tmpPath)
		return "", &domain.StorageError{Op: "save", Err: err}
	}

	return ref, nil
}

func (s *Store) Get(ctx context.Context, ref string) (io.ReadCloser, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	filePath, err := s.safeJoin(ref)
	if err != nil {
		return nil, "", err
	}

	f, err := os.Open(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, "", fmt.Errorf("ref %q: %w", ref, domain.ErrAttachmentNotFound)
		}
		return nil, "", &domain.StorageError{Op: "get", Err: err}
	}
	return f, extToMimeType(filePath), nil
}

func (s *Store) Exists(ctx context.Context, ref string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	filePath, err := s.safeJoin(ref)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(filePath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, &domain.StorageError{Op: "stat", Err: err}
	}
	return true, nil
}

// Delete is idempotent: removing a reference that no longer resolves
// succeeds, so replace/delete races never fail on the second removal.
func (s *Store) Delete(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	filePath, err := s.safeJoin(ref)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &domain.StorageError{Op: "delete", Err: err}
	}
	return nil
}

// safeJoin resolves ref relative to basePath and rejects directory traversal.
func (s *Store) safeJoin(ref string) (string, error) {
	if strings.TrimSpace(ref) == "" {
		return "", &domain.StorageError{Op: "resolve", Err: errors.New("empty reference")}
	}

	absBase, err := filepath.Abs(s.basePath)
	if err != nil {
		return "", &domain.StorageError{Op: "resolve", Err: err}
	}

	absPath, err := filepath.Abs(filepath.Join(s.basePath, ref))
	if err != nil {
		return "", &domain.StorageError{Op: "resolve", Err: err}
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) {
		return "", &domain.StorageError{Op: "resolve", Err: fmt.Errorf("reference %q escapes storage root", ref)}
	}
	return absPath, nil
}

func discardTemp(f *os.File, path string) {
	if f != nil {
		if err := f.Close(); err != nil {
			slog.Error("failed to close temp file", "error", err)
		}
	}
	if err := os.Remove(path); err != nil {
		slog.Error("failed to remove temp file", "path", path, "error", err)
	}
}

func mimeTypeToExt(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func extToMimeType(filePath string) string {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".webp":
		return "image/webp"
	default:
		return "image/jpeg"
	}
}
