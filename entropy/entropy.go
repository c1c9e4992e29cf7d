// Package entropy implements the frequency-domain statistical summary channel.
//
// Encode reduces a normalized vector to 16 statistics of its DFT magnitude
// spectrum. Decode tiles those statistics back to 768 values; the result is a
// coarse approximation, not an inverse.
package entropy

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"math"
	"math/cmplx"
	"sync"

	"golang.org/x/crypto/hkdf"
	"gonum.org/v1/gonum/dsp/fourier"

	"github.com/hupe1980/vecid/preprocess"
	"github.com/hupe1980/vecid/quantization"
)

const (
	// Components is the number of values in a Signature.
	Components = 16

	// Segments is the number of contiguous spectrum segments.
	Segments = 16

	segmentSize = preprocess.Dimension / Segments
	maskSize    = 32
	maskInfo    = "vecid/entropy-mask/v1"
)

var (
	// ErrInvalidLength is returned when the input vector is not preprocess.Dimension long.
	ErrInvalidLength = errors.New("invalid vector length")

	// ErrEmptyKey is returned by EncodeKeyed for an empty key.
	ErrEmptyKey = errors.New("empty key")
)

// Signature is the fixed-size entropy summary.
type Signature [Components]float64

// Finite reports whether every component is a finite number.
func (s Signature) Finite() bool {
	for _, x := range s {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

var fftPool = sync.Pool{
	New: func() any { return fourier.NewCmplxFFT(preprocess.Dimension) },
}

// Encode computes the entropy signature of v.
//
// The spectrum is the unscaled |DFT(v)|, split into 16 segments of 48 bins. Even components hold the mean of their
// segment, odd components hold half the standard deviation of theirs, so every
// segment contributes exactly one statistic.
func Encode(v []float64) (Signature, error) {
	spectrum, err := magnitudes(v)
	if err != nil {
		return Signature{}, err
	}
	return summarize(spectrum), nil
}

// EncodeKeyed computes a signature that cannot be reproduced without key.
//
// Spectrum magnitudes are min-max normalized, widened to bytes, XORed with a
// repeating 32-byte mask derived from key with HKDF-SHA256, and normalized back
// to [0, 1] before the statistics are taken.
func EncodeKeyed(v []float64, key []byte) (Signature, error) {
	if len(key) == 0 {
		return Signature{}, ErrEmptyKey
	}
	spectrum, err := magnitudes(v)
	if err != nil {
		return Signature{}, err
	}
	mask, err := deriveMask(key)
	if err != nil {
		return Signature{}, err
	}

	q := quantization.NewScalarQuantizer()
	masked := make([]float64, len(spectrum))
	for i, m := range preprocess.MinMaxNormalize(spectrum) {
		masked[i] = float64(q.Quantize(m) ^ mask[i%maskSize])
	}
	return summarize(preprocess.MinMaxNormalize(masked)), nil
}

// Decode returns the lossy 768-length approximation of a signature: the components
// tiled cyclically and min-max normalized. Non-finite components decode as 0.
func Decode(s Signature) preprocess.Vector {
	vals := make([]float64, Components)
	for i, x := range s {
		if !math.IsNaN(x) && !math.IsInf(x, 0) {
			vals[i] = x
		}
	}
	return preprocess.Vector(preprocess.MinMaxNormalize(preprocess.Resize(vals, preprocess.Dimension)))
}

func magnitudes(v []float64) ([]float64, error) {
	if len(v) != preprocess.Dimension {
		return nil, fmt.Errorf("%w: expected %d, got %d", ErrInvalidLength, preprocess.Dimension, len(v))
	}

	seq := make([]complex128, len(v))
	for i, x := range v {
		seq[i] = complex(x, 0)
	}

	fft := fftPool.Get().(*fourier.CmplxFFT)
	coeff := fft.Coefficients(nil, seq)
	fftPool.Put(fft)

	out := make([]float64, len(coeff))
	for i, c := range coeff {
		out[i] = cmplx.Abs(c)
	}
	return out, nil
}

func summarize(spectrum []float64) Signature {
	var s Signature
	for seg := 0; seg < Segments; seg++ {
		bins := spectrum[seg*segmentSize : (seg+1)*segmentSize]
		mean, std := meanStd(bins)
		if seg%2 == 0 {
			s[seg] = mean
		} else {
			s[seg] = 0.5 * std
		}
	}
	return s
}

func meanStd(x []float64) (float64, float64) {
	var sum float64
	for _, v := range x {
		sum += v
	}
	mean := sum / float64(len(x))

	var sq float64
	for _, v := range x {
		d := v - mean
		sq += d * d
	}
	return mean, math.Sqrt(sq / float64(len(x)))
}

func deriveMask(key []byte) ([maskSize]byte, error) {
	var mask [maskSize]byte
	r := hkdf.New(sha256.New, key, nil, []byte(maskInfo))
	if _, err := io.ReadFull(r, mask[:]); err != nil {
		return mask, fmt.Errorf("derive entropy mask: %w", err)
	}
	return mask, nil
}
