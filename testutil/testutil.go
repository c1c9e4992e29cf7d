package testutil

import (
	"math"
	"math/rand"
	"strconv"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// FillUniform fills dst with random values in range [0, 1).
// Locks only once per call (preferred over calling Float64 in a loop).
func (r *RNG) FillUniform(dst []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range dst {
		dst[i] = r.rand.Float64()
	}
}

// UniformVector generates a vector with values in range [0, 1).
func (r *RNG) UniformVector(dimensions int) []float64 {
	vec := make([]float64, dimensions)
	r.FillUniform(vec)
	return vec
}

// UniformVectors generates random vectors with values in range [0, 1).
// Uses a single backing array for efficiency.
func (r *RNG) UniformVectors(num int, dimensions int) [][]float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	data := make([]float64, num*dimensions)
	vectors := make([][]float64, num)

	for i := range num {
		vec := data[i*dimensions : (i+1)*dimensions]
		for j := range vec {
			vec[j] = r.rand.Float64()
		}
		vectors[i] = vec
	}

	return vectors
}

// UnitVector generates a single L2-normalized random vector.
func (r *RNG) UnitVector(dimensions int) []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	vec := make([]float64, dimensions)
	var norm float64
	for j := range vec {
		v := r.rand.NormFloat64()
		vec[j] = v
		norm += v * v
	}

	if norm == 0 {
		norm = 1
	}

	inv := 1.0 / math.Sqrt(norm)
	for j := range vec {
		vec[j] *= inv
	}
	return vec
}

// Bytes returns n random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := make([]byte, n)
	_, _ = r.rand.Read(b)
	return b
}

const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "

// Text returns a random string of n characters from a printable alphabet.
func (r *RNG) Text(n int) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	b := make([]byte, n)
	for i := range b {
		b[i] = alphabet[r.rand.Intn(len(alphabet))]
	}
	return string(b)
}

// Texts returns num distinct random strings of length n, prefixed with their index.
func (r *RNG) Texts(num, n int) []string {
	out := make([]string, num)
	for i := range out {
		out[i] = strconv.Itoa(i) + ":" + r.Text(n)
	}
	return out
}

// Mapping returns a random flat mapping with num keys and mixed string/number values.
func (r *RNG) Mapping(num int) map[string]any {
	m := make(map[string]any, num)
	for i := range num {
		key := "k" + strconv.Itoa(i)
		if r.Intn(2) == 0 {
			m[key] = r.Text(8)
		} else {
			m[key] = math.Round(r.Float64()*1000) / 1000
		}
	}
	return m
}
