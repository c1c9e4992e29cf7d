package optimizer

import (
	"context"
	"testing"

	"github.com/hupe1980/vecid/entropy"
	"github.com/hupe1980/vecid/payload"
	"github.com/hupe1980/vecid/preprocess"
	"github.com/hupe1980/vecid/reconstruct"
	"github.com/hupe1980/vecid/symbolic"
	"github.com/hupe1980/vecid/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimize_Deterministic(t *testing.T) {
	v := preprocess.Preprocess(preprocess.Text("optimize me"))

	a, err := Optimize(v, 5, payload.Default)
	require.NoError(t, err)
	b, err := Optimize(v, 5, payload.Default)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, payload.Default, a.Payload.Tier)
	assert.Equal(t, payload.Default.BasePasses()+a.Trial, a.Passes)
}

func TestOptimize_MatchesBestTrial(t *testing.T) {
	v := testutil.NewRNG(3).UniformVector(preprocess.Dimension)
	sig, err := entropy.Encode(v)
	require.NoError(t, err)

	res, err := Optimize(v, 6, payload.Large)
	require.NoError(t, err)

	for trial := range 6 {
		d := symbolic.Encode(v, payload.Large.BasePasses()+trial)
		mse, err := reconstruct.MSE(reconstruct.Channels(d, sig), v)
		require.NoError(t, err)
		assert.LessOrEqual(t, res.MSE, mse)
		if trial < res.Trial {
			assert.Greater(t, mse, res.MSE, "earlier trial %d ties or beats the winner", trial)
		}
	}
	assert.Equal(t, sig, res.Payload.Entropy)
}

func TestOptimize_MoreTrialsNeverWorse(t *testing.T) {
	v := testutil.NewRNG(5).UniformVector(preprocess.Dimension)

	prev := -1.0
	for trials := 1; trials <= 6; trials++ {
		res, err := Optimize(v, trials, payload.Tiny)
		require.NoError(t, err)
		if prev >= 0 {
			assert.LessOrEqual(t, res.MSE, prev)
		}
		prev = res.MSE
	}
}

func TestOptimize_DefaultTrials(t *testing.T) {
	v := preprocess.Preprocess(preprocess.Text("Hi"))

	res, err := Optimize(v, 0, payload.Tiny)
	require.NoError(t, err)
	assert.Less(t, res.Trial, payload.Tiny.Trials())

	explicit, err := Optimize(v, payload.Tiny.Trials(), payload.Tiny)
	require.NoError(t, err)
	assert.Equal(t, explicit, res)
}

func TestOptimize_Errors(t *testing.T) {
	_, err := Optimize(make([]float64, 10), 2, payload.Default)
	require.ErrorIs(t, err, entropy.ErrInvalidLength)

	_, err = Optimize(preprocess.Zero(), 2, payload.Tier(0b011))
	require.ErrorIs(t, err, ErrInvalidTier)

	_, err = Optimize(preprocess.Zero(), -1, payload.Default)
	require.ErrorIs(t, err, ErrInvalidTrials)

	_, err = OptimizeParallel(context.Background(), preprocess.Zero(), -3, payload.Default, 2)
	require.ErrorIs(t, err, ErrInvalidTrials)
}

func TestOptimizeParallel_EqualsSequential(t *testing.T) {
	rng := testutil.NewRNG(9)
	for i := range 4 {
		v := rng.UniformVector(preprocess.Dimension)

		seq, err := Optimize(v, 8, payload.Default)
		require.NoError(t, err)

		for _, workers := range []int{0, 1, 3, 8} {
			par, err := OptimizeParallel(context.Background(), v, 8, payload.Default, workers)
			require.NoError(t, err)
			assert.Equal(t, seq, par, "vector %d workers %d", i, workers)
		}
	}
}

func TestOptimizeParallel_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := OptimizeParallel(ctx, preprocess.Zero(), 4, payload.Default, 2)
	require.ErrorIs(t, err, context.Canceled)
}
