// Package envelope wraps textual payload documents in an HMAC-SHA256 envelope.
//
// The signature covers the canonical (sorted-key) JSON form of the document, so
// envelopes verify regardless of the key order a producer used. Verification
// failures are always returned as errors matching ErrAuthentication.
package envelope

import (
	"bytes"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"

	"github.com/hupe1980/vecid/codec"
	"github.com/hupe1980/vecid/payload"
)

const (
	keyIDLen = 8

	// DefaultSaltSize is the salt length used by WithRandomSalt.
	DefaultSaltSize = 16

	saltInfo = "vecid/envelope/v1"
)

// Metadata carries the signing key id and optional HKDF salt.
type Metadata struct {
	KeyID string `json:"key_id"`
	Salt  string `json:"salt,omitempty"`
}

// Envelope is a signed textual payload.
type Envelope struct {
	Data      payload.Document `json:"data"`
	Signature string           `json:"signature"`
	Metadata  Metadata         `json:"metadata"`
}

type options struct {
	salt []byte
	rand io.Reader
}

// Option configures Sign.
type Option func(*options)

// WithSalt derives the signing key from the caller key and salt using HKDF-SHA256.
// The hex salt is recorded in the envelope metadata.
func WithSalt(salt []byte) Option {
	return func(o *options) {
		o.salt = append([]byte(nil), salt...)
	}
}

// WithRandomSalt is WithSalt with DefaultSaltSize bytes read from crypto/rand.
func WithRandomSalt() Option {
	return func(o *options) {
		o.rand = rand.Reader
	}
}

// KeyID returns the first 8 hex characters of SHA-256(key).
func KeyID(key []byte) string {
	sum := sha256.Sum256(key)
	return hex.EncodeToString(sum[:])[:keyIDLen]
}

// Sign validates p and signs its textual document.
func Sign(p *payload.Payload, key []byte, opts ...Option) (*Envelope, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return SignDocument(p.Document(), key, opts...)
}

// SignDocument signs a textual document as is.
func SignDocument(doc payload.Document, key []byte, opts ...Option) (*Envelope, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.salt == nil && o.rand != nil {
		o.salt = make([]byte, DefaultSaltSize)
		if _, err := io.ReadFull(o.rand, o.salt); err != nil {
			return nil, fmt.Errorf("envelope: read salt: %w", err)
		}
	}

	env := &Envelope{
		Data:     doc,
		Metadata: Metadata{KeyID: KeyID(key)},
	}

	signingKey := key
	if len(o.salt) > 0 {
		env.Metadata.Salt = hex.EncodeToString(o.salt)
		var err error
		if signingKey, err = deriveKey(key, o.salt); err != nil {
			return nil, err
		}
	}

	mac, err := compute(doc, signingKey)
	if err != nil {
		return nil, err
	}
	env.Signature = hex.EncodeToString(mac)
	return env, nil
}

// Verify checks the key id and signature of env against key. Comparisons are
// constant-time. It never returns a boolean verdict: nil means authentic.
func Verify(env *Envelope, key []byte) error {
	if env == nil {
		return authFailed("nil envelope", nil)
	}
	if len(key) == 0 {
		return authFailed("empty key", nil)
	}
	if env.Signature == "" {
		return authFailed("missing signature", nil)
	}
	if env.Metadata.KeyID == "" {
		return authFailed("missing key id", nil)
	}

	if subtle.ConstantTimeCompare([]byte(env.Metadata.KeyID), []byte(KeyID(key))) != 1 {
		return authFailed("key id mismatch", nil)
	}

	got, err := hex.DecodeString(env.Signature)
	if err != nil {
		return authFailed("malformed signature", err)
	}

	signingKey := key
	if env.Metadata.Salt != "" {
		salt, err := hex.DecodeString(env.Metadata.Salt)
		if err != nil {
			return authFailed("malformed salt", err)
		}
		if signingKey, err = deriveKey(key, salt); err != nil {
			return authFailed("derive key", err)
		}
	}

	want, err := compute(env.Data, signingKey)
	if err != nil {
		return authFailed("canonicalize data", err)
	}
	if !hmac.Equal(got, want) {
		return authFailed("signature mismatch", nil)
	}
	return nil
}

// Parse strictly decodes an envelope. Unknown fields at any level, trailing data,
// and missing signature or key id are authentication failures.
func Parse(b []byte) (*Envelope, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()

	var env Envelope
	if err := dec.Decode(&env); err != nil {
		return nil, authFailed("malformed envelope", err)
	}
	if dec.More() {
		return nil, authFailed("trailing data after envelope", nil)
	}
	if env.Signature == "" {
		return nil, authFailed("missing signature", nil)
	}
	if env.Metadata.KeyID == "" {
		return nil, authFailed("missing key id", nil)
	}
	return &env, nil
}

// Open parses and verifies an envelope and returns its validated payload.
func Open(b []byte, key []byte) (*payload.Payload, error) {
	env, err := Parse(b)
	if err != nil {
		return nil, err
	}
	if err := Verify(env, key); err != nil {
		return nil, err
	}
	return payload.FromDocument(env.Data)
}

// Marshal returns the JSON form of env using c (codec.Default when nil).
func (env *Envelope) Marshal(c codec.Codec) ([]byte, error) {
	if c == nil {
		c = codec.Default
	}
	return c.Marshal(env)
}

func compute(doc payload.Document, key []byte) ([]byte, error) {
	canonical, err := codec.Canonical(doc)
	if err != nil {
		return nil, err
	}
	h := hmac.New(sha256.New, key)
	h.Write(canonical)
	return h.Sum(nil), nil
}

func deriveKey(key, salt []byte) ([]byte, error) {
	out := make([]byte, sha256.Size)
	if _, err := io.ReadFull(hkdf.New(sha256.New, key, salt, []byte(saltInfo)), out); err != nil {
		return nil, fmt.Errorf("envelope: derive key: %w", err)
	}
	return out, nil
}
