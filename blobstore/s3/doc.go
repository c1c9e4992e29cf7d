// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("vecid/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	payloads := store.NewPayloadStore(store)
//
// # Features
//
//   - Range reads for partial fetches
//   - CRC32C-checked single-request puts for small blobs
//   - Multipart uploads (feature/s3/manager) for large archives
//   - Conditional create (If-None-Match) for idempotent content-addressed writes
//   - Automatic pagination for listing
package s3
