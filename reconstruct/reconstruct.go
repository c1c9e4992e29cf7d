// Package reconstruct merges the lossy channel decodes into one approximation and
// measures its error.
package reconstruct

import (
	"fmt"

	"github.com/hupe1980/vecid/entropy"
	"github.com/hupe1980/vecid/preprocess"
	"github.com/hupe1980/vecid/symbolic"
)

// Merge averages two decoded vectors elementwise. Both must be preprocess.Dimension long.
func Merge(entropyDecoded, symbolicDecoded []float64) preprocess.Vector {
	out := make(preprocess.Vector, preprocess.Dimension)
	for i := range out {
		out[i] = (entropyDecoded[i] + symbolicDecoded[i]) / 2
	}
	return out
}

// Channels decodes both channels and merges them.
func Channels(d symbolic.Digest, s entropy.Signature) preprocess.Vector {
	return Merge(entropy.Decode(s), symbolic.Decode(d))
}

// MSE returns the mean squared error between a and b.
func MSE(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("length mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, nil
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum / float64(len(a)), nil
}
