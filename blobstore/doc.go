// Package blobstore provides storage abstraction for vecid payloads and archives.
//
// BlobStore is the interface for reading and writing immutable named blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - MemoryStore: in-process map, for tests and ephemeral use
//   - LocalStore: local filesystem with atomic rename writes and mmap reads
//   - s3.Store: Amazon S3 (package blobstore/s3)
//   - minio.Store: MinIO and other S3-compatible services (package blobstore/minio)
//
// # Custom Implementations
//
// Implement the BlobStore interface to support custom storage backends:
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
//
// Stores that support atomic create-if-absent should also implement
// ConditionalPutter; the payload store relies on it for idempotent writes.
package blobstore
