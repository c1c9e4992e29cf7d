// Package minio provides a BlobStore implementation using the MinIO client.
//
// MinIO is an S3-compatible object storage system. This package uses the official
// MinIO Go client, so it also works with other S3-compatible services such as Ceph,
// SeaweedFS and Garage.
//
// # Basic Usage
//
//	client, err := minio.New("localhost:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4("minioadmin", "minioadmin", ""),
//	    Secure: false,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	blobs := minioblob.NewStore(client, "my-bucket", "vecid/")
//	payloads := store.NewPayloadStore(blobs)
//
// Conditional puts use If-None-Match: * and report blobstore.ErrExists when the
// object is already present.
package minio
