package symbolic

import (
	"math"
	"strings"
	"testing"

	"github.com/hupe1980/vecid/preprocess"
	"github.com/hupe1980/vecid/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_Deterministic(t *testing.T) {
	v := preprocess.Preprocess(preprocess.Text("determinism"))

	a := Encode(v, DefaultPasses)
	b := Encode(v, DefaultPasses)
	assert.Equal(t, a, b)
	assert.Len(t, a.String(), 64)
}

func TestEncode_PassesDiffer(t *testing.T) {
	rng := testutil.NewRNG(7)
	v := rng.UniformVector(preprocess.Dimension)

	seen := make(map[Digest]int)
	for p := 1; p <= 8; p++ {
		d := Encode(v, p)
		prev, dup := seen[d]
		assert.False(t, dup, "passes %d and %d produced the same digest", prev, p)
		seen[d] = p
	}
}

func TestEncode_ZeroPasses(t *testing.T) {
	assert.Equal(t, Digest{}, Encode(preprocess.Zero(), 0))

	// With no mixing the digest is the plain XOR fold of round(x*255).
	v := make([]float64, preprocess.Dimension)
	v[0] = 1
	d := Encode(v, 0)
	assert.Equal(t, byte(255), d[0])
	for _, b := range d[1:] {
		assert.Equal(t, byte(0), b)
	}
}

func TestEncode_OnePassOnZeroVector(t *testing.T) {
	// Pass 0 on the zero vector leaves just the mask, folded.
	var want Digest
	for c := range want {
		for i := c * chunkSize; i < (c+1)*chunkSize; i++ {
			want[c] ^= byte((i*i + 3*i + 1) % 256)
		}
	}
	assert.Equal(t, want, Encode(preprocess.Zero(), 1))
}

// naiveEncode restates the pass loop with slice rotation.
func naiveEncode(v []float64, passes int) Digest {
	n := len(v)
	values := make([]int, n)
	for i, x := range v {
		values[i] = int(math.Round(x * 255))
	}

	var digest Digest
	for p := 0; p < passes; p++ {
		xored := make([]int, n)
		for i := range values {
			xored[i] = values[i] ^ ((i*i + 3*i + 1) % 256)
		}
		shift := (p * 17) % n
		rotated := append(append([]int{}, xored[shift:]...), xored[:shift]...)

		mixed := make([]int, n)
		for i, x := range rotated {
			mixed[i] = (x * (p + 1) * (p + 1)) % 256
		}

		width := n / DigestSize
		for c := range digest {
			acc := 0
			for _, x := range mixed[c*width : (c+1)*width] {
				acc ^= x
			}
			digest[c] = byte(acc)
		}

		for i := range values {
			values[i] = (mixed[i] + int(digest[p%DigestSize])) % 256
		}
	}
	return digest
}

func TestEncode_MatchesNaivePasses(t *testing.T) {
	rng := testutil.NewRNG(42)
	vectors := map[string][]float64{
		"uniform": rng.UniformVector(preprocess.Dimension),
		"text":    preprocess.Preprocess(preprocess.Text("The quick brown fox jumps over the lazy dog")),
		"ramp":    preprocess.Preprocess(preprocess.Numeric([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10})),
	}

	for name, v := range vectors {
		for _, passes := range []int{3, 4, 6, 33, 50} {
			assert.Equal(t, naiveEncode(v, passes), Encode(v, passes), "%s passes=%d", name, passes)
		}
	}
}

func TestEncode_RotatesLeft(t *testing.T) {
	// Second pass shifts by 17, so a rotate-right variant lands on different chunks.
	v := make([]float64, preprocess.Dimension)
	v[100] = 1

	d := Encode(v, 2)
	assert.Equal(t, naiveEncode(v, 2), d)

	rightward := func() Digest {
		values := make([]int, preprocess.Dimension)
		values[100] = 255
		var digest Digest
		for p := 0; p < 2; p++ {
			mixed := make([]int, preprocess.Dimension)
			shift := p * 17
			for i := range mixed {
				j := (i - shift + preprocess.Dimension) % preprocess.Dimension
				mixed[i] = ((values[j] ^ ((j*j + 3*j + 1) % 256)) * (p + 1) * (p + 1)) % 256
			}
			for c := range digest {
				acc := 0
				for _, x := range mixed[c*chunkSize : (c+1)*chunkSize] {
					acc ^= x
				}
				digest[c] = byte(acc)
			}
			for i := range values {
				values[i] = (mixed[i] + int(digest[p%DigestSize])) % 256
			}
		}
		return digest
	}()
	assert.NotEqual(t, rightward, d)
}

func TestEncode_AnyLength(t *testing.T) {
	short := Encode([]float64{0.1, 0.9}, DefaultPasses)
	tiled := Encode(preprocess.Resize([]float64{0.1, 0.9}, preprocess.Dimension), DefaultPasses)
	assert.Equal(t, tiled, short)

	assert.Equal(t, Encode(preprocess.Zero(), 3), Encode(nil, 3))
}

func TestDecode(t *testing.T) {
	var d Digest
	for i := range d {
		d[i] = byte(i * 8)
	}

	out := Decode(d)
	require.Len(t, out, preprocess.Dimension)
	assert.True(t, out.Valid())
	for i, x := range out {
		assert.InDelta(t, float64(d[i%DigestSize])/255.0, x, 1e-12)
	}
}

func TestDecodeHex(t *testing.T) {
	var d Digest
	d[0] = 0xff
	out, err := DecodeHex(d.String())
	require.NoError(t, err)
	assert.Equal(t, Decode(d), out)

	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"odd length", "abc"},
		{"non hex", "zz"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeHex(tt.in)
			require.ErrorIs(t, err, ErrInvalidDigest)
		})
	}

	_, err = DecodeBytes(nil)
	require.ErrorIs(t, err, ErrInvalidDigest)
}

func TestParseDigest(t *testing.T) {
	v := preprocess.Preprocess(preprocess.Text("parse"))
	d := Encode(v, DefaultPasses)

	parsed, err := ParseDigest(d.String())
	require.NoError(t, err)
	assert.Equal(t, d, parsed)

	_, err = ParseDigest(strings.ToUpper(d.String()))
	require.ErrorIs(t, err, ErrInvalidDigest)

	out, err := DecodeHex(strings.ToUpper(d.String()))
	require.NoError(t, err)
	assert.Equal(t, Decode(d), out)

	_, err = ParseDigest("abcd")
	require.ErrorIs(t, err, ErrInvalidDigest)
}
