// Package symbolic implements the recursive XOR/rotate/fold fingerprint channel.
//
// Encode turns a normalized vector into a 32-byte Digest through a configurable
// number of mixing passes. Decode produces a lossy 768-length approximation by
// tiling the digest bytes; it is not an inverse of Encode.
package symbolic

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/vecid/preprocess"
	"github.com/hupe1980/vecid/quantization"
)

const (
	// DigestSize is the digest length in bytes.
	DigestSize = 32

	// DefaultPasses is the pass count used when none is configured.
	DefaultPasses = 4

	rotateStep = 17
	chunkSize  = preprocess.Dimension / DigestSize
)

// ErrInvalidDigest is returned when a digest cannot be decoded.
var ErrInvalidDigest = errors.New("invalid symbolic digest")

// Digest is the fixed-size symbolic fingerprint.
type Digest [DigestSize]byte

// String returns the lowercase hex form of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// ParseDigest parses exactly 64 lowercase hex characters into a Digest.
func ParseDigest(s string) (Digest, error) {
	var d Digest
	if i := strings.IndexFunc(s, isUpperHex); i >= 0 {
		return d, fmt.Errorf("%w: uppercase hex %q at %d", ErrInvalidDigest, s[i], i)
	}
	b, err := decodeHex(s)
	if err != nil {
		return d, err
	}
	if len(b) != DigestSize {
		return d, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidDigest, DigestSize, len(b))
	}
	copy(d[:], b)
	return d, nil
}

// positionMask holds mask[i] = (i² + 3i + 1) mod 256.
var positionMask = func() [preprocess.Dimension]byte {
	var m [preprocess.Dimension]byte
	for i := range m {
		m[i] = byte((i*i + 3*i + 1) % 256)
	}
	return m
}()

// Encode computes the symbolic digest of v using the given number of passes.
//
// Values are quantized with round(x*255). Vectors that are not Dimension long are
// resized first (empty vectors are treated as zero). With passes <= 0 the digest is
// the XOR fold of the unmixed quantized values.
func Encode(v []float64, passes int) Digest {
	values := quantize(v)

	var digest Digest
	if passes <= 0 {
		return fold(&values)
	}

	var mixed [preprocess.Dimension]byte
	for p := 0; p < passes; p++ {
		shift := (p * rotateStep) % preprocess.Dimension
		mul := (p + 1) * (p + 1)
		for i := range mixed {
			// Rotate left: output i reads position i+shift.
			j := (i + shift) % preprocess.Dimension
			x := int(values[j] ^ positionMask[j])
			mixed[i] = byte((x * mul) % 256)
		}

		digest = fold(&mixed)

		carry := int(digest[p%DigestSize])
		for i := range values {
			values[i] = byte((int(mixed[i]) + carry) % 256)
		}
	}
	return digest
}

// Decode returns the lossy 768-length approximation of a digest: each byte divided
// by 255, tiled cyclically.
func Decode(d Digest) preprocess.Vector {
	out, _ := DecodeBytes(d[:])
	return out
}

// DecodeBytes decodes a digest of any non-zero length.
func DecodeBytes(b []byte) (preprocess.Vector, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty digest", ErrInvalidDigest)
	}
	scaled := make([]float64, len(b))
	for i, c := range b {
		scaled[i] = float64(c) / 255.0
	}
	return preprocess.Vector(preprocess.Resize(scaled, preprocess.Dimension)), nil
}

// DecodeHex decodes a textual digest of any even length. Unlike ParseDigest it
// accepts uppercase hex.
func DecodeHex(s string) (preprocess.Vector, error) {
	b, err := decodeHex(s)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(b)
}

func decodeHex(s string) ([]byte, error) {
	switch {
	case len(s) == 0:
		return nil, fmt.Errorf("%w: empty digest", ErrInvalidDigest)
	case len(s)%2 != 0:
		return nil, fmt.Errorf("%w: odd hex length %d", ErrInvalidDigest, len(s))
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDigest, err)
	}
	return b, nil
}

func isUpperHex(r rune) bool {
	return r >= 'A' && r <= 'F'
}

func quantize(v []float64) [preprocess.Dimension]byte {
	var values [preprocess.Dimension]byte
	if len(v) == 0 {
		return values
	}
	if len(v) != preprocess.Dimension {
		v = preprocess.Resize(v, preprocess.Dimension)
	}
	q := quantization.NewScalarQuantizer()
	copy(values[:], q.Encode(v))
	return values
}

func fold(values *[preprocess.Dimension]byte) Digest {
	var d Digest
	for c := range d {
		var acc byte
		for _, x := range values[c*chunkSize : (c+1)*chunkSize] {
			acc ^= x
		}
		d[c] = acc
	}
	return d
}
