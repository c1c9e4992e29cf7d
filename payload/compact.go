package payload

import (
	"fmt"

	"github.com/hupe1980/vecid/entropy"
	"github.com/hupe1980/vecid/quantization"
	"github.com/hupe1980/vecid/symbolic"
)

const (
	headerSize  = 1
	entropySize = entropy.Components * 2

	// CompactSize is the size of a v1 compact payload.
	//
	// Layout (little-endian):
	//
	//	[0]      header: version<<3 | tier flag
	//	[1:33]   symbolic digest
	//	[33:65]  16 × uint16 entropy components, value*1000
	CompactSize = headerSize + symbolic.DigestSize + entropySize

	tierMask     = 0b111
	versionShift = 3
)

// Codec converts payloads to and from one representation.
type Codec interface {
	Encode(p *Payload) ([]byte, error)
	Decode(data []byte) (*Payload, error)
	Name() string
}

var fixedPoint = quantization.NewFixedPointQuantizer(quantization.DefaultFixedPointScale)

// Compact is the 65-byte binary codec.
//
// Fingerprint and Metadata are not part of the compact form. Entropy components are
// quantized, so decoding yields values within 0.0005 of the encoded ones.
type Compact struct{}

// Name returns "compact".
func (Compact) Name() string { return "compact" }

// Encode serializes p to exactly CompactSize bytes.
func (Compact) Encode(p *Payload) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	b := make([]byte, CompactSize)
	b[0] = p.Version<<versionShift | uint8(p.Tier)
	copy(b[headerSize:], p.Digest[:])
	fixedPoint.EncodeTo(b[headerSize+symbolic.DigestSize:], p.Entropy[:])
	return b, nil
}

// Decode parses a compact payload. Bytes beyond CompactSize are ignored.
func (Compact) Decode(data []byte) (*Payload, error) {
	if len(data) < CompactSize {
		return nil, invalid("length", fmt.Sprintf("got %d bytes, need %d", len(data), CompactSize), ErrTooShort)
	}

	version := data[0] >> versionShift
	if version != Version {
		return nil, invalid("version", fmt.Sprintf("got %d", version), ErrUnsupportedVersion)
	}

	tier := Tier(data[0] & tierMask)
	if !tier.Valid() {
		return nil, invalid("tier", fmt.Sprintf("flag %#03b", uint8(tier)), ErrInvalidTier)
	}

	p := &Payload{Version: version, Tier: tier}
	copy(p.Digest[:], data[headerSize:headerSize+symbolic.DigestSize])

	values, err := fixedPoint.Decode(data[headerSize+symbolic.DigestSize : CompactSize])
	if err != nil {
		return nil, invalid("entropy", "malformed", err)
	}
	copy(p.Entropy[:], values)
	return p, nil
}
