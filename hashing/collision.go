package hashing

import (
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// ErrShortDigest is returned for digests shorter than 4 bytes.
var ErrShortDigest = errors.New("hashing: digest shorter than 8 hex characters")

// CollisionSampler tracks the 32-bit prefixes of observed digests and counts how
// often a prefix repeats. It is safe for concurrent use.
type CollisionSampler struct {
	mu         sync.Mutex
	seen       *roaring.Bitmap
	total      uint64
	collisions uint64
}

// NewCollisionSampler returns an empty sampler.
func NewCollisionSampler() *CollisionSampler {
	return &CollisionSampler{seen: roaring.New()}
}

// Observe records a hex digest and reports whether its prefix was already seen.
func (s *CollisionSampler) Observe(digest string) (bool, error) {
	if len(digest) < 8 {
		return false, ErrShortDigest
	}
	var b [4]byte
	if _, err := hex.Decode(b[:], []byte(digest[:8])); err != nil {
		return false, fmt.Errorf("hashing: %w", err)
	}
	prefix := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total++
	if !s.seen.CheckedAdd(prefix) {
		s.collisions++
		return true, nil
	}
	return false, nil
}

// Total returns the number of observed digests.
func (s *CollisionSampler) Total() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// Distinct returns the number of distinct prefixes.
func (s *CollisionSampler) Distinct() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen.GetCardinality()
}

// Collisions returns how many observations repeated an earlier prefix.
func (s *CollisionSampler) Collisions() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.collisions
}

// Rate returns Collisions/Total, or 0 before the first observation.
func (s *CollisionSampler) Rate() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.total == 0 {
		return 0
	}
	return float64(s.collisions) / float64(s.total)
}

// MarshalBinary serializes the seen prefixes in the portable roaring format.
// Counters are not included.
func (s *CollisionSampler) MarshalBinary() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seen.ToBytes()
}

// UnmarshalBinary replaces the seen prefixes and resets counters so that Total
// equals Distinct.
func (s *CollisionSampler) UnmarshalBinary(data []byte) error {
	rb := roaring.New()
	if err := rb.UnmarshalBinary(data); err != nil {
		return fmt.Errorf("hashing: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = rb
	s.total = rb.GetCardinality()
	s.collisions = 0
	return nil
}
