package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrNotFound is returned when a blob does not exist.
	//
	// Implementations should return an error that satisfies `errors.Is(err, ErrNotFound)`.
	// The default maps to `os.ErrNotExist`.
	ErrNotFound = os.ErrNotExist

	// ErrExists is returned by PutIfNotExists when the blob already exists.
	ErrExists = errors.New("blob already exists")
)

// BlobStore is an abstraction over immutable named blobs (payloads, archives).
// Implementations must be safe for concurrent use.
type BlobStore interface {
	// Open opens a blob for reading.
	Open(ctx context.Context, name string) (Blob, error)
	// Put writes a blob atomically, replacing any existing blob of the same name.
	Put(ctx context.Context, name string, data []byte) error
	// Delete removes a blob. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
	// List returns the sorted names of all blobs with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)
}

// ConditionalPutter is implemented by stores that can create a blob only if it
// does not exist yet.
type ConditionalPutter interface {
	PutIfNotExists(ctx context.Context, name string, data []byte) error
}

// Blob is a read-only handle to a data blob.
type Blob interface {
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)
	Close() error
	// Size returns the size of the blob in bytes.
	Size() int64
}

// ReadAll opens name and reads the whole blob.
func ReadAll(ctx context.Context, s BlobStore, name string) ([]byte, error) {
	b, err := s.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	defer func() { _ = b.Close() }()

	buf := make([]byte, b.Size())
	if len(buf) == 0 {
		return buf, nil
	}
	n, err := b.ReadAt(ctx, buf, 0)
	if err != nil && !(errors.Is(err, io.EOF) && n == len(buf)) {
		return nil, fmt.Errorf("read blob %q: %w", name, err)
	}
	if n != len(buf) {
		return nil, fmt.Errorf("read blob %q: short read %d of %d bytes", name, n, len(buf))
	}
	return buf, nil
}

// PutIfNotExists uses s's conditional write when available. Otherwise it checks for
// the blob first, which is not atomic.
func PutIfNotExists(ctx context.Context, s BlobStore, name string, data []byte) error {
	if cp, ok := s.(ConditionalPutter); ok {
		return cp.PutIfNotExists(ctx, name, data)
	}
	b, err := s.Open(ctx, name)
	if err == nil {
		_ = b.Close()
		return ErrExists
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	return s.Put(ctx, name, data)
}
