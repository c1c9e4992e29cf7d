package quantization

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// Quantizer defines the interface for lossy scalar quantization.
type Quantizer interface {
	// Encode quantizes a float64 vector to its compressed representation.
	Encode(v []float64) []byte

	// Decode reconstructs a float64 vector from its quantized representation.
	Decode(b []byte) ([]float64, error)

	// BytesPerDimension returns the storage size per dimension.
	BytesPerDimension() int

	// MaxError returns the worst-case absolute error of Decode(Encode(x)) for
	// x inside the representable range.
	MaxError() float64
}

// ScalarQuantizer implements 8-bit scalar quantization over a fixed [min, max] range.
// Each value is linearly mapped to [0, 255] and rounded to the nearest integer.
type ScalarQuantizer struct {
	min float64
	max float64
}

// NewScalarQuantizer creates an 8-bit quantizer over the unit interval.
func NewScalarQuantizer() *ScalarQuantizer {
	return &ScalarQuantizer{
		min: 0,
		max: 1,
	}
}

// NewScalarQuantizerRange creates an 8-bit quantizer over [minVal, maxVal].
func NewScalarQuantizerRange(minVal, maxVal float64) (*ScalarQuantizer, error) {
	if math.IsNaN(minVal) || math.IsNaN(maxVal) || minVal >= maxVal {
		return nil, fmt.Errorf("invalid quantizer range [%v, %v]", minVal, maxVal)
	}
	return &ScalarQuantizer{min: minVal, max: maxVal}, nil
}

// Encode quantizes v to one byte per dimension. Out-of-range values are clamped.
func (sq *ScalarQuantizer) Encode(v []float64) []byte {
	quantized := make([]byte, len(v))
	for i, val := range v {
		quantized[i] = sq.Quantize(val)
	}
	return quantized
}

// Quantize maps a single value to its 8-bit code.
func (sq *ScalarQuantizer) Quantize(val float64) uint8 {
	if math.IsNaN(val) || val < sq.min {
		val = sq.min
	} else if val > sq.max {
		val = sq.max
	}
	return uint8(math.Round((val - sq.min) * 255.0 / (sq.max - sq.min)))
}

// Decode reconstructs a float64 vector from 8-bit codes.
func (sq *ScalarQuantizer) Decode(b []byte) ([]float64, error) {
	decoded := make([]float64, len(b))
	scale := (sq.max - sq.min) / 255.0
	for i, val := range b {
		decoded[i] = float64(val)*scale + sq.min
	}
	return decoded, nil
}

// BytesPerDimension returns 1 (uint8 storage).
func (sq *ScalarQuantizer) BytesPerDimension() int {
	return 1
}

// MaxError returns half a quantization step.
func (sq *ScalarQuantizer) MaxError() float64 {
	return (sq.max - sq.min) / 510.0
}

// Min returns the lower bound of the quantized range.
func (sq *ScalarQuantizer) Min() float64 {
	return sq.min
}

// Max returns the upper bound of the quantized range.
func (sq *ScalarQuantizer) Max() float64 {
	return sq.max
}

// MarshalBinary implements encoding.BinaryMarshaler.
// Format (little-endian): [min:float64][max:float64]
func (sq *ScalarQuantizer) MarshalBinary() ([]byte, error) {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b[0:8], math.Float64bits(sq.min))
	binary.LittleEndian.PutUint64(b[8:16], math.Float64bits(sq.max))
	return b, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (sq *ScalarQuantizer) UnmarshalBinary(data []byte) error {
	if len(data) != 16 {
		return errors.New("invalid scalar quantizer binary length")
	}
	sq.min = math.Float64frombits(binary.LittleEndian.Uint64(data[0:8]))
	sq.max = math.Float64frombits(binary.LittleEndian.Uint64(data[8:16]))
	return nil
}

// DefaultFixedPointScale is the scale used by the v1 compact payload.
const DefaultFixedPointScale = 1000

// FixedPointQuantizer stores values as unsigned 16-bit fixed point numbers.
// A value x is stored as clamp(round(x*scale), 0, 65535), little-endian.
type FixedPointQuantizer struct {
	scale float64
}

// NewFixedPointQuantizer creates a fixed point quantizer with the given scale.
// A non-positive scale selects DefaultFixedPointScale.
func NewFixedPointQuantizer(scale float64) *FixedPointQuantizer {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = DefaultFixedPointScale
	}
	return &FixedPointQuantizer{scale: scale}
}

// Quantize maps a single value to its 16-bit code.
func (fq *FixedPointQuantizer) Quantize(val float64) uint16 {
	if math.IsNaN(val) {
		return 0
	}
	scaled := math.Round(val * fq.scale)
	switch {
	case scaled < 0:
		return 0
	case scaled > math.MaxUint16:
		return math.MaxUint16
	default:
		return uint16(scaled)
	}
}

// Dequantize maps a 16-bit code back to a float64.
func (fq *FixedPointQuantizer) Dequantize(code uint16) float64 {
	return float64(code) / fq.scale
}

// Encode quantizes v to two little-endian bytes per dimension.
func (fq *FixedPointQuantizer) Encode(v []float64) []byte {
	b := make([]byte, len(v)*2)
	fq.EncodeTo(b, v)
	return b
}

// EncodeTo writes the quantized form of v into dst, which must hold 2*len(v) bytes.
func (fq *FixedPointQuantizer) EncodeTo(dst []byte, v []float64) {
	for i, val := range v {
		binary.LittleEndian.PutUint16(dst[i*2:], fq.Quantize(val))
	}
}

// Decode reconstructs values from little-endian 16-bit codes.
func (fq *FixedPointQuantizer) Decode(b []byte) ([]float64, error) {
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("invalid fixed point data: length %d not divisible by 2", len(b))
	}
	out := make([]float64, len(b)/2)
	for i := range out {
		out[i] = fq.Dequantize(binary.LittleEndian.Uint16(b[i*2:]))
	}
	return out, nil
}

// BytesPerDimension returns 2 (uint16 storage).
func (fq *FixedPointQuantizer) BytesPerDimension() int {
	return 2
}

// MaxError returns half a quantization step.
func (fq *FixedPointQuantizer) MaxError() float64 {
	return 0.5 / fq.scale
}

// Scale returns the fixed point scale factor.
func (fq *FixedPointQuantizer) Scale() float64 {
	return fq.scale
}

// MaxValue returns the largest representable value.
func (fq *FixedPointQuantizer) MaxValue() float64 {
	return math.MaxUint16 / fq.scale
}
