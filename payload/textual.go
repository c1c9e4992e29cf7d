package payload

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/hupe1980/vecid/codec"
	"github.com/hupe1980/vecid/entropy"
	"github.com/hupe1980/vecid/symbolic"
)

// Document is the textual (legacy) payload representation.
type Document struct {
	Symbolic    string            `json:"symbolic"`
	Entropy     []float64         `json:"entropy"`
	TierName    string            `json:"tier_name,omitempty"`
	Version     int               `json:"version,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	Fingerprint string            `json:"fingerprint,omitempty"`
}

// Document returns the textual representation of p.
func (p *Payload) Document() Document {
	ent := make([]float64, len(p.Entropy))
	copy(ent, p.Entropy[:])
	return Document{
		Symbolic:    p.Digest.String(),
		Entropy:     ent,
		TierName:    p.Tier.String(),
		Version:     int(p.Version),
		Metadata:    p.Metadata,
		Fingerprint: p.Fingerprint,
	}
}

// FromDocument validates a textual document and converts it to a Payload.
//
// A missing tier name selects Default and a missing version selects Version.
func FromDocument(d Document) (*Payload, error) {
	digest, err := symbolic.ParseDigest(d.Symbolic)
	if err != nil {
		return nil, invalid("symbolic", "must be 64 lowercase hex characters", err)
	}

	if len(d.Entropy) != entropy.Components {
		return nil, invalid("entropy", fmt.Sprintf("expected %d values, got %d", entropy.Components, len(d.Entropy)), nil)
	}
	var sig entropy.Signature
	copy(sig[:], d.Entropy)
	if !sig.Finite() {
		return nil, invalid("entropy", "contains NaN or Infinity", nil)
	}

	tier := Default
	if d.TierName != "" {
		if tier, err = ParseTier(d.TierName); err != nil {
			return nil, invalid("tier_name", d.TierName, ErrInvalidTier)
		}
	}

	version := Version
	if d.Version != 0 {
		if d.Version != int(Version) {
			return nil, invalid("version", fmt.Sprintf("got %d", d.Version), ErrUnsupportedVersion)
		}
	}

	p := &Payload{
		Version:     version,
		Tier:        tier,
		Digest:      digest,
		Entropy:     sig,
		Fingerprint: d.Fingerprint,
	}
	if len(d.Metadata) > 0 {
		p.Metadata = d.Metadata
	}
	return p, nil
}

// FromMap validates a generic mapping (for example a decoded JSON object) and
// converts it to a Payload. Field types are checked strictly.
func FromMap(m map[string]any) (*Payload, error) {
	var d Document

	sym, ok := m["symbolic"].(string)
	if !ok {
		return nil, invalid("symbolic", fmt.Sprintf("expected string, got %T", m["symbolic"]), nil)
	}
	d.Symbolic = sym

	raw, ok := m["entropy"].([]any)
	if !ok {
		if f, isFloats := m["entropy"].([]float64); isFloats {
			raw = make([]any, len(f))
			for i := range f {
				raw[i] = f[i]
			}
		} else {
			return nil, invalid("entropy", fmt.Sprintf("expected list, got %T", m["entropy"]), nil)
		}
	}
	d.Entropy = make([]float64, len(raw))
	for i, e := range raw {
		f, err := toFloat(e)
		if err != nil {
			return nil, invalid(fmt.Sprintf("entropy[%d]", i), err.Error(), nil)
		}
		d.Entropy[i] = f
	}

	if v, present := m["tier_name"]; present && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, invalid("tier_name", fmt.Sprintf("expected string, got %T", v), nil)
		}
		d.TierName = s
	}

	if v, present := m["version"]; present && v != nil {
		f, err := toFloat(v)
		if err != nil || f != math.Trunc(f) {
			return nil, invalid("version", "expected integer", nil)
		}
		if f < 1 || f > math.MaxUint8 {
			return nil, invalid("version", fmt.Sprintf("got %v", f), ErrUnsupportedVersion)
		}
		d.Version = int(f)
	}

	if v, present := m["fingerprint"]; present && v != nil {
		s, ok := v.(string)
		if !ok {
			return nil, invalid("fingerprint", fmt.Sprintf("expected string, got %T", v), nil)
		}
		d.Fingerprint = s
	}

	if v, present := m["metadata"]; present && v != nil {
		md, err := toStringMap(v)
		if err != nil {
			return nil, invalid("metadata", err.Error(), nil)
		}
		d.Metadata = md
	}

	return FromDocument(d)
}

// Textual is the document codec. The zero value uses codec.Default.
type Textual struct {
	Codec codec.Codec
}

// Name returns "textual/<codec name>".
func (t Textual) Name() string { return "textual/" + t.codec().Name() }

// Encode serializes p as a JSON document.
func (t Textual) Encode(p *Payload) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return t.codec().Marshal(p.Document())
}

// Decode parses and validates a JSON document.
func (t Textual) Decode(data []byte) (*Payload, error) {
	var m map[string]any
	if err := t.codec().Unmarshal(data, &m); err != nil {
		return nil, invalid("", "malformed document", err)
	}
	if m == nil {
		return nil, invalid("", "document is not an object", nil)
	}
	return FromMap(m)
}

func (t Textual) codec() codec.Codec {
	if t.Codec == nil {
		return codec.Default
	}
	return t.Codec
}

// CompactToTextual converts a compact payload to a textual document.
func CompactToTextual(data []byte, c codec.Codec) ([]byte, error) {
	p, err := Compact{}.Decode(data)
	if err != nil {
		return nil, err
	}
	return Textual{Codec: c}.Encode(p)
}

// TextualToCompact converts a textual document to a compact payload. Metadata and
// fingerprint are dropped.
func TextualToCompact(data []byte, c codec.Codec) ([]byte, error) {
	p, err := Textual{Codec: c}.Decode(data)
	if err != nil {
		return nil, err
	}
	return Compact{}.Encode(p)
}

func toFloat(v any) (float64, error) {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		var err error
		if f, err = x.Float64(); err != nil {
			return 0, err
		}
	default:
		return 0, fmt.Errorf("expected number, got %T", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("non-finite value %v", f)
	}
	return f, nil
}

func toStringMap(v any) (map[string]string, error) {
	switch x := v.(type) {
	case map[string]string:
		return x, nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for k := range x {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		out := make(map[string]string, len(x))
		for _, k := range keys {
			s, ok := x[k].(string)
			if !ok {
				return nil, fmt.Errorf("value of %q: expected string, got %T", k, x[k])
			}
			out[k] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected object, got %T", v)
	}
}
