package object

import (
	"context"
	"io"
	"time"
)

// ObjectStore defines the contract for saving binary objects and minting
// time-limited read URLs for them.
type ObjectStore interface {
	// Save writes the reader contents under a key namespaced by userId and
	// the upload timestamp. Returns the storage key, bytes written and the
	// sniffed MIME type.
	Save(ctx context.Context, userId string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)

	// SignedURL mints a read URL for a stored object, valid for ttl.
	SignedURL(ctx context.Context, storageKey string, ttl time.Duration) (string, error)

	// Open retrieves a stored object for reading.
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
