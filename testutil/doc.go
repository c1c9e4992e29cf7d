// Package testutil provides deterministic random inputs for vecid tests.
//
// This package is intended for use in tests and benchmarks only.
//
//	rng := testutil.NewRNG(seed)
//	vec := rng.UniformVector(768) // uniform [0, 1)
//	unit := rng.UnitVector(768)   // L2-normalized
//	texts := rng.Texts(100, 32)   // distinct identity strings
package testutil
