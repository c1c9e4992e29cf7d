package preprocess

import (
	"math"
)

const (
	// Dimension is the fixed length of every normalized vector.
	Dimension = 768

	// Epsilon keeps min-max normalization finite when all values are equal.
	Epsilon = 1e-8
)

// Vector is a normalized vector: exactly Dimension values in [0, 1].
type Vector []float64

// Zero returns the all-zero vector.
func Zero() Vector {
	return make(Vector, Dimension)
}

// Preprocess maps any input to a normalized vector.
//
// It never fails: unsupported or malformed input (empty, non-finite values,
// unconvertible sequence elements) yields the zero vector.
func Preprocess(in Input) Vector {
	v, _ := PreprocessSized(in)
	return v
}

// PreprocessSized is Preprocess that also reports the raw element count of the
// input before resizing. The count is 0 when the fallback vector is returned.
func PreprocessSized(in Input) (Vector, int) {
	raw, err := in.values()
	if err != nil {
		return Zero(), 0
	}
	norm, err := normalize(raw)
	if err != nil {
		return Zero(), 0
	}
	return Vector(Resize(norm, Dimension)), len(raw)
}

// Measure returns the raw element count of the input, or 0 if it cannot be converted.
func Measure(in Input) int {
	raw, err := in.values()
	if err != nil {
		return 0
	}
	return len(raw)
}

// MinMaxNormalize maps values to [0, 1] with (x-min)/(max-min+Epsilon).
//
// values must be non-empty and finite; the result is undefined otherwise.
func MinMaxNormalize(values []float64) []float64 {
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}

	out := make([]float64, len(values))
	denom := hi - lo + Epsilon
	for i, v := range values {
		out[i] = (v - lo) / denom
	}
	return out
}

// Resize returns a slice of length n built by cyclic wraparound when values is
// shorter than n, or truncation when it is longer. values must be non-empty.
func Resize(values []float64, n int) []float64 {
	out := make([]float64, n)
	if len(values) >= n {
		copy(out, values[:n])
		return out
	}
	for i := range out {
		out[i] = values[i%len(values)]
	}
	return out
}

func normalize(raw []float64) ([]float64, error) {
	if len(raw) == 0 {
		return nil, errEmptyInput
	}
	for _, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errNonFinite
		}
	}
	out := MinMaxNormalize(raw)
	// Extreme ranges can overflow max-min.
	for _, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errNonFinite
		}
	}
	return out, nil
}

// Valid reports whether v has the normalized shape: Dimension finite values in [0, 1].
func (v Vector) Valid() bool {
	if len(v) != Dimension {
		return false
	}
	for _, x := range v {
		if math.IsNaN(x) || x < 0 || x > 1 {
			return false
		}
	}
	return true
}
