package store

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/hupe1980/vecid/blobstore"
	"github.com/hupe1980/vecid/internal/cache"
	"github.com/hupe1980/vecid/payload"
	"github.com/hupe1980/vecid/resource"
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
	"golang.org/x/sync/errgroup"
)

const (
	payloadPrefix = "payloads/"
	archivePrefix = "archives/"
	archiveExt    = ".via"
)

var (
	// ErrNotFound is returned when a payload or archive does not exist.
	ErrNotFound = blobstore.ErrNotFound

	// ErrContentMismatch is returned when stored bytes do not hash to their CID.
	ErrContentMismatch = errors.New("payload content does not match cid")
)

type options struct {
	rc          *resource.Controller
	compression Compression
	cacheBytes  int64
}

// Option configures a PayloadStore.
type Option func(*options)

// WithResourceController bounds the concurrency and throughput of batch writes.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithCompression sets the archive compression. Default is ZSTD.
func WithCompression(c Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithCache keeps up to capacity bytes of verified compact payloads in memory.
func WithCache(capacity int64) Option {
	return func(o *options) {
		o.cacheBytes = capacity
	}
}

// PayloadStore reads and writes payloads on a blob store.
type PayloadStore struct {
	blobs blobstore.BlobStore
	opts  options
	cache *cache.LRU // nil if disabled
}

// New returns a PayloadStore backed by blobs.
func New(blobs blobstore.BlobStore, optFns ...Option) *PayloadStore {
	opts := options{compression: CompressionZSTD}
	for _, fn := range optFns {
		fn(&opts)
	}
	s := &PayloadStore{blobs: blobs, opts: opts}
	if opts.cacheBytes > 0 {
		s.cache = cache.NewLRU(opts.cacheBytes)
	}
	return s
}

// CID returns the content identifier of p's compact form.
func CID(p *payload.Payload) (cid.Cid, error) {
	b, err := payload.Compact{}.Encode(p)
	if err != nil {
		return cid.Undef, err
	}
	return cidFor(b)
}

func cidFor(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

func payloadName(c cid.Cid) string { return payloadPrefix + c.String() }

// Put stores p and returns its CID. Storing an existing payload is a no-op.
func (s *PayloadStore) Put(ctx context.Context, p *payload.Payload) (cid.Cid, error) {
	b, err := payload.Compact{}.Encode(p)
	if err != nil {
		return cid.Undef, err
	}
	c, err := cidFor(b)
	if err != nil {
		return cid.Undef, err
	}

	err = s.opts.rc.Do(ctx, len(b), func(ctx context.Context) error {
		return blobstore.PutIfNotExists(ctx, s.blobs, payloadName(c), b)
	})
	if err != nil && !errors.Is(err, blobstore.ErrExists) {
		return cid.Undef, fmt.Errorf("put payload %s: %w", c, err)
	}
	return c, nil
}

// PutBatch stores all payloads concurrently and returns their CIDs in input order.
func (s *PayloadStore) PutBatch(ctx context.Context, payloads []*payload.Payload) ([]cid.Cid, error) {
	out := make([]cid.Cid, len(payloads))

	g, ctx := errgroup.WithContext(ctx)
	limit := s.opts.rc.Workers()
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	g.SetLimit(limit)
	for i, p := range payloads {
		g.Go(func() error {
			c, err := s.Put(ctx, p)
			if err != nil {
				return fmt.Errorf("payload %d: %w", i, err)
			}
			out[i] = c
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Get loads the payload stored under c and verifies its content.
func (s *PayloadStore) Get(ctx context.Context, c cid.Cid) (*payload.Payload, error) {
	name := payloadName(c)
	if s.cache != nil {
		if b, ok := s.cache.Get(name); ok {
			return payload.Compact{}.Decode(b)
		}
	}

	b, err := blobstore.ReadAll(ctx, s.blobs, name)
	if err != nil {
		return nil, err
	}

	got, err := c.Prefix().Sum(b)
	if err != nil {
		return nil, err
	}
	if !got.Equals(c) {
		return nil, fmt.Errorf("%w: %s", ErrContentMismatch, c)
	}

	p, err := payload.Compact{}.Decode(b)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.Set(name, b)
	}
	return p, nil
}

// Has reports whether a payload with CID c is stored.
func (s *PayloadStore) Has(ctx context.Context, c cid.Cid) (bool, error) {
	b, err := s.blobs.Open(ctx, payloadName(c))
	if errors.Is(err, blobstore.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_ = b.Close()
	return true, nil
}

// Delete removes the payload stored under c.
func (s *PayloadStore) Delete(ctx context.Context, c cid.Cid) error {
	name := payloadName(c)
	if s.cache != nil {
		s.cache.Delete(name)
	}
	return s.blobs.Delete(ctx, name)
}

// List returns the CIDs of all stored payloads, sorted by their string form.
// Blobs under the payload prefix that are not valid CIDs are skipped.
func (s *PayloadStore) List(ctx context.Context) ([]cid.Cid, error) {
	names, err := s.blobs.List(ctx, payloadPrefix)
	if err != nil {
		return nil, err
	}
	sort.Strings(names)

	out := make([]cid.Cid, 0, len(names))
	for _, name := range names {
		c, err := cid.Decode(strings.TrimPrefix(name, payloadPrefix))
		if err != nil {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// WriteArchive bundles payloads into a new archive and returns its name.
func (s *PayloadStore) WriteArchive(ctx context.Context, payloads []*payload.Payload) (string, error) {
	data, err := EncodeArchive(payloads, s.opts.compression)
	if err != nil {
		return "", err
	}

	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	name := archivePrefix + id.String() + archiveExt

	err = s.opts.rc.Do(ctx, len(data), func(ctx context.Context) error {
		return s.blobs.Put(ctx, name, data)
	})
	if err != nil {
		return "", fmt.Errorf("write archive %s: %w", name, err)
	}
	return name, nil
}

// ReadArchive loads and decodes the archive with the given name.
func (s *PayloadStore) ReadArchive(ctx context.Context, name string) ([]*payload.Payload, error) {
	data, err := blobstore.ReadAll(ctx, s.blobs, name)
	if err != nil {
		return nil, err
	}
	return DecodeArchive(data)
}

// ListArchives returns archive names in creation order.
func (s *PayloadStore) ListArchives(ctx context.Context) ([]string, error) {
	names, err := s.blobs.List(ctx, archivePrefix)
	if err != nil {
		return nil, err
	}
	out := names[:0]
	for _, n := range names {
		if strings.HasSuffix(n, archiveExt) {
			out = append(out, n)
		}
	}
	sort.Strings(out)
	return out, nil
}

// CacheStats returns read cache hits and misses. Both are 0 without WithCache.
func (s *PayloadStore) CacheStats() (hits, misses int64) {
	if s.cache == nil {
		return 0, 0
	}
	return s.cache.Stats()
}
