// Package codec centralizes textual encoding of payload documents and envelopes.
//
// Codec selection only affects the byte layout of the textual form. Signatures are
// always computed over Canonical output, so switching codecs never invalidates an
// envelope.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "go-json":
		return GoJSON{}, true
	default:
		return nil, false
	}
}

// Canonical returns the canonical JSON form of v.
//
// The value is first marshaled and decoded into generic maps, then re-encoded, so
// object keys come out sorted at every nesting level regardless of struct field
// order. Numbers keep their shortest round-trip representation.
func Canonical(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("canonical marshal: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var generic any
	if err := dec.Decode(&generic); err != nil {
		return nil, fmt.Errorf("canonical decode: %w", err)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(generic); err != nil {
		return nil, fmt.Errorf("canonical encode: %w", err)
	}

	// Encoder appends a trailing newline.
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
