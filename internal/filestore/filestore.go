package filestore

import (
	"context"
	"io"
)

// Store persists attachment bytes under opaque references. Implementations
// know nothing about the records the attachments belong to; the lifecycle
// service in internal/service owns the pairing.
type Store interface {
	// Save persists the content under a fresh, collision-free reference
	// and returns it.
	Save(ctx context.Context, mimeType string, r io.Reader) (ref string, err error)

	// Get opens the object for reading and reports its mime type. A
	// reference that no longer resolves yields domain.ErrAttachmentNotFound.
	Get(ctx context.Context, ref string) (io.ReadCloser, string, error)

	// Exists reports whether the reference currently resolves to an object.
	Exists(ctx context.Context, ref string) (bool, error)

	// Delete removes the object. A missing object counts as already
	// removed, not an error.
	Delete(ctx context.Context, ref string) error
}
