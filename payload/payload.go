// Package payload defines the identity payload and its two interchangeable
// representations: the 65-byte compact binary form and the textual (legacy)
// document form.
package payload

import (
	"crypto/sha256"
	"encoding/hex"
	"maps"

	"github.com/hupe1980/vecid/entropy"
	"github.com/hupe1980/vecid/preprocess"
	"github.com/hupe1980/vecid/reconstruct"
	"github.com/hupe1980/vecid/symbolic"
)

// Version is the current format version.
const Version uint8 = 1

// fingerprintLen is the number of hex characters kept from the compact SHA-256.
const fingerprintLen = 16

// Payload is the canonical in-memory identity record.
type Payload struct {
	Version uint8
	Tier    Tier
	Digest  symbolic.Digest
	Entropy entropy.Signature

	// Fingerprint is an optional short hash of the compact form.
	Fingerprint string

	// Metadata is optional and only carried by the textual form.
	Metadata map[string]string
}

// New returns a current-version payload.
func New(tier Tier, digest symbolic.Digest, sig entropy.Signature) *Payload {
	return &Payload{
		Version: Version,
		Tier:    tier,
		Digest:  digest,
		Entropy: sig,
	}
}

// Validate checks the invariants shared by both representations.
func (p *Payload) Validate() error {
	if p == nil {
		return invalid("", "nil payload", nil)
	}
	if p.Version != Version {
		return invalid("version", "", ErrUnsupportedVersion)
	}
	if !p.Tier.Valid() {
		return invalid("tier", p.Tier.String(), ErrInvalidTier)
	}
	if !p.Entropy.Finite() {
		return invalid("entropy", "contains NaN or Infinity", nil)
	}
	return nil
}

// Reconstruct returns the merged lossy approximation of the original vector.
func (p *Payload) Reconstruct() preprocess.Vector {
	return reconstruct.Channels(p.Digest, p.Entropy)
}

// ComputeFingerprint returns the first 16 hex characters of SHA-256 over the
// compact form.
func (p *Payload) ComputeFingerprint() (string, error) {
	b, err := Compact{}.Encode(p)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])[:fingerprintLen], nil
}

// WithFingerprint returns a copy of p with Fingerprint set.
func (p *Payload) WithFingerprint() (*Payload, error) {
	fp, err := p.ComputeFingerprint()
	if err != nil {
		return nil, err
	}
	c := p.Clone()
	c.Fingerprint = fp
	return c, nil
}

// Clone returns a deep copy of p.
func (p *Payload) Clone() *Payload {
	c := *p
	c.Metadata = maps.Clone(p.Metadata)
	return &c
}

// Equivalent reports whether a and b carry the same version, tier and digest, and
// entropy components within tol of each other.
func Equivalent(a, b *Payload, tol float64) bool {
	if a.Version != b.Version || a.Tier != b.Tier || a.Digest != b.Digest {
		return false
	}
	for i := range a.Entropy {
		d := a.Entropy[i] - b.Entropy[i]
		if d > tol || d < -tol {
			return false
		}
	}
	return true
}
