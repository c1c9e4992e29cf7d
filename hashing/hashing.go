// Package hashing computes deterministic hex digests of inputs.
//
// The digest covers salt followed by the input's canonical text (see
// preprocess.Input.CanonicalText). It is independent of the symbolic channel and is
// intended for integrity checks and collision sampling, not for identity payloads.
package hashing

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"

	"golang.org/x/crypto/sha3"

	"github.com/hupe1980/vecid/preprocess"
)

// Algorithm selects the digest function.
type Algorithm int

const (
	// SHA256 is the default.
	SHA256 Algorithm = iota
	// SHA3_256 selects SHA3-256.
	SHA3_256
)

// String returns the algorithm name.
func (a Algorithm) String() string {
	switch a {
	case SHA256:
		return "sha256"
	case SHA3_256:
		return "sha3-256"
	default:
		return fmt.Sprintf("Algorithm(%d)", int(a))
	}
}

// ParseAlgorithm parses "sha256" or "sha3-256".
func ParseAlgorithm(name string) (Algorithm, error) {
	switch name {
	case "", "sha256":
		return SHA256, nil
	case "sha3-256":
		return SHA3_256, nil
	default:
		return 0, fmt.Errorf("unsupported hash algorithm: %q", name)
	}
}

func (a Algorithm) new() (hash.Hash, error) {
	switch a {
	case SHA256:
		return sha256.New(), nil
	case SHA3_256:
		return sha3.New256(), nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %s", a)
	}
}

type options struct {
	alg Algorithm
}

// Option configures Hash.
type Option func(*options)

// WithAlgorithm selects the digest function.
func WithAlgorithm(a Algorithm) Option {
	return func(o *options) {
		o.alg = a
	}
}

// Hash returns the 64-character lowercase hex digest of salt ‖ canonical text of in.
func Hash(in preprocess.Input, salt string, opts ...Option) (string, error) {
	text, err := in.CanonicalText()
	if err != nil {
		return "", fmt.Errorf("hash input: %w", err)
	}
	return HashText(text, salt, opts...)
}

// HashText hashes an already canonical string.
func HashText(text, salt string, opts ...Option) (string, error) {
	o := options{alg: SHA256}
	for _, opt := range opts {
		opt(&o)
	}

	h, err := o.alg.new()
	if err != nil {
		return "", err
	}
	h.Write([]byte(salt))
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil)), nil
}
