package preprocess

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"github.com/hupe1980/vecid/codec"
)

// Kind identifies the concrete shape stored in an Input.
type Kind uint8

const (
	// KindInvalid represents the zero Input.
	KindInvalid Kind = iota
	// KindText represents UTF-8 text.
	KindText
	// KindBytes represents a raw byte sequence.
	KindBytes
	// KindMapping represents a key-value mapping.
	KindMapping
	// KindSequence represents an ordered, possibly nested, heterogeneous sequence.
	KindSequence
	// KindNumeric represents an already-numeric vector.
	KindNumeric
	// KindOther represents any other value, converted via its textual form.
	KindOther
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindBytes:
		return "bytes"
	case KindMapping:
		return "mapping"
	case KindSequence:
		return "sequence"
	case KindNumeric:
		return "numeric"
	case KindOther:
		return "other"
	default:
		return "invalid"
	}
}

var (
	errInvalidInput    = errors.New("invalid input")
	errEmptyInput      = errors.New("empty input")
	errNonFinite       = errors.New("non-finite value")
	errUnsupportedElem = errors.New("unsupported sequence element")
)

// Input is a tagged variant over every input shape the preprocessor accepts.
//
// Construct values with Text, Bytes, Mapping, Sequence, Numeric, Other or From.
// The zero Input has KindInvalid and preprocesses to the zero vector.
type Input struct {
	kind    Kind
	text    string
	bytes   []byte
	mapping any
	seq     []any
	num     []float64
	other   any
}

// Text returns a text Input.
func Text(s string) Input { return Input{kind: KindText, text: s} }

// Bytes returns a byte-sequence Input.
func Bytes(b []byte) Input { return Input{kind: KindBytes, bytes: b} }

// Mapping returns a mapping Input. Keys are sorted when the mapping is rendered.
func Mapping(m map[string]any) Input { return Input{kind: KindMapping, mapping: m} }

// Sequence returns a sequence Input. Nested slices are flattened.
func Sequence(s []any) Input { return Input{kind: KindSequence, seq: s} }

// Numeric returns a numeric-vector Input.
func Numeric(v []float64) Input { return Input{kind: KindNumeric, num: v} }

// Other returns an Input converted through the textual form of v.
func Other(v any) Input { return Input{kind: KindOther, other: v} }

// From classifies an arbitrary Go value into an Input.
func From(v any) Input {
	switch x := v.(type) {
	case Input:
		return x
	case string:
		return Text(x)
	case []byte:
		return Bytes(x)
	case map[string]any:
		return Mapping(x)
	case []any:
		return Sequence(x)
	case []float64:
		return Numeric(x)
	case []float32:
		out := make([]float64, len(x))
		for i, f := range x {
			out[i] = float64(f)
		}
		return Numeric(out)
	case nil:
		return Other(nil)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			return Input{kind: KindMapping, mapping: v}
		}
	case reflect.Slice, reflect.Array:
		return Sequence(toAnySlice(rv))
	}
	return Other(v)
}

// Kind returns the variant tag.
func (in Input) Kind() Kind { return in.kind }

// values maps the input to its raw numeric sequence.
func (in Input) values() ([]float64, error) {
	switch in.kind {
	case KindText:
		return byteValues([]byte(in.text)), nil
	case KindBytes:
		return byteValues(in.bytes), nil
	case KindMapping:
		text, err := in.mappingText()
		if err != nil {
			return nil, err
		}
		return byteValues(text), nil
	case KindSequence:
		out := make([]float64, 0, len(in.seq))
		return flatten(out, in.seq)
	case KindNumeric:
		out := make([]float64, len(in.num))
		copy(out, in.num)
		return out, nil
	case KindOther:
		return byteValues([]byte(fmt.Sprint(in.other))), nil
	default:
		return nil, errInvalidInput
	}
}

// CanonicalText returns a stable textual form of the input.
//
// Text is returned as is, bytes as lowercase hex, mappings, sequences and numeric
// vectors as canonical JSON, and other values via fmt.Sprint.
func (in Input) CanonicalText() (string, error) {
	switch in.kind {
	case KindText:
		return in.text, nil
	case KindBytes:
		return hex.EncodeToString(in.bytes), nil
	case KindMapping:
		b, err := in.mappingText()
		return string(b), err
	case KindSequence:
		b, err := codec.Canonical(in.seq)
		return string(b), err
	case KindNumeric:
		b, err := codec.Canonical(in.num)
		return string(b), err
	case KindOther:
		return fmt.Sprint(in.other), nil
	default:
		return "", errInvalidInput
	}
}

func (in Input) mappingText() ([]byte, error) {
	if in.mapping == nil || reflect.ValueOf(in.mapping).IsNil() {
		return nil, errEmptyInput
	}
	return codec.Canonical(in.mapping)
}

func byteValues(b []byte) []float64 {
	out := make([]float64, len(b))
	for i, c := range b {
		out[i] = float64(c)
	}
	return out
}

func flatten(dst []float64, seq []any) ([]float64, error) {
	var err error
	for _, e := range seq {
		switch x := e.(type) {
		case float64:
			dst = append(dst, x)
		case float32:
			dst = append(dst, float64(x))
		case int:
			dst = append(dst, float64(x))
		case int8:
			dst = append(dst, float64(x))
		case int16:
			dst = append(dst, float64(x))
		case int32:
			dst = append(dst, float64(x))
		case int64:
			dst = append(dst, float64(x))
		case uint:
			dst = append(dst, float64(x))
		case uint8:
			dst = append(dst, float64(x))
		case uint16:
			dst = append(dst, float64(x))
		case uint32:
			dst = append(dst, float64(x))
		case uint64:
			dst = append(dst, float64(x))
		case bool:
			if x {
				dst = append(dst, 1)
			} else {
				dst = append(dst, 0)
			}
		case json.Number:
			f, perr := x.Float64()
			if perr != nil {
				return nil, perr
			}
			dst = append(dst, f)
		case string:
			f, perr := strconv.ParseFloat(x, 64)
			if perr != nil {
				return nil, fmt.Errorf("%w: %q", errUnsupportedElem, x)
			}
			dst = append(dst, f)
		case []any:
			if dst, err = flatten(dst, x); err != nil {
				return nil, err
			}
		case []float64:
			dst = append(dst, x...)
		default:
			rv := reflect.ValueOf(e)
			if e == nil || (rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array) {
				return nil, fmt.Errorf("%w: %T", errUnsupportedElem, e)
			}
			if dst, err = flatten(dst, toAnySlice(rv)); err != nil {
				return nil, err
			}
		}
	}
	return dst, nil
}

func toAnySlice(rv reflect.Value) []any {
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}
