package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound is returned by Open and Delete for a missing key.
var ErrNotFound = errors.New("object not found")

// Store saves and retrieves binary objects such as resumes.
type Store interface {
	// Save writes r under namespace and returns the generated storage key,
	// the number of bytes written and the sniffed content type.
	Save(ctx context.Context, namespace string, fileName string, r io.Reader) (storageKey string, sizeBytes int64, mimeType string, err error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
