// Package store persists identity payloads on a blobstore.BlobStore.
//
// Single payloads are content addressed: each is written in compact form under
// "payloads/<cid>", where the CID is a CIDv1 (raw codec) over the SHA2-256
// multihash of the compact bytes. Writes are idempotent and reads verify the
// content against the name.
//
// Batches can also be bundled into archives under "archives/<uuid>.via". An
// archive is a small header followed by one LZ4 or ZSTD compressed block of
// concatenated compact payloads, protected by a CRC32C checksum.
package store
