// Package optimizer searches symbolic pass counts for the payload whose merged
// reconstruction is closest (by MSE) to the original vector.
//
// The search is deterministic: the same vector, trial count and tier always yield the
// same payload and MSE.
package optimizer

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/vecid/entropy"
	"github.com/hupe1980/vecid/payload"
	"github.com/hupe1980/vecid/reconstruct"
	"github.com/hupe1980/vecid/symbolic"
)

var (
	// ErrInvalidTier is returned when the tier is not one of the defined tiers.
	ErrInvalidTier = errors.New("optimizer: invalid tier")

	// ErrInvalidTrials is returned for a negative trial count.
	ErrInvalidTrials = errors.New("optimizer: negative trial count")
)

// Result is the outcome of a search.
type Result struct {
	Payload *payload.Payload
	MSE     float64

	// Passes is the symbolic pass count of the winning trial.
	Passes int
	// Trial is the zero-based index of the winning trial.
	Trial int
}

type trial struct {
	digest symbolic.Digest
	mse    float64
}

type searcher struct {
	vec   []float64
	sig   entropy.Signature
	tier  payload.Tier
	count int
}

func newSearcher(vec []float64, trials int, tier payload.Tier) (*searcher, error) {
	if !tier.Valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTier, tier)
	}
	if trials < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTrials, trials)
	}
	sig, err := entropy.Encode(vec)
	if err != nil {
		return nil, err
	}
	if trials == 0 {
		trials = tier.Trials()
	}
	return &searcher{vec: vec, sig: sig, tier: tier, count: trials}, nil
}

func (s *searcher) passes(t int) int {
	return s.tier.BasePasses() + t
}

func (s *searcher) run(t int) trial {
	d := symbolic.Encode(s.vec, s.passes(t))
	// Both operands are Dimension long here, so MSE cannot fail.
	mse, _ := reconstruct.MSE(reconstruct.Channels(d, s.sig), s.vec)
	return trial{digest: d, mse: mse}
}

// reduce picks the first trial with the strictly lowest MSE.
func (s *searcher) reduce(trials []trial) Result {
	best := 0
	for t := 1; t < len(trials); t++ {
		if trials[t].mse < trials[best].mse {
			best = t
		}
	}
	return Result{
		Payload: payload.New(s.tier, trials[best].digest, s.sig),
		MSE:     trials[best].mse,
		Passes:  s.passes(best),
		Trial:   best,
	}
}

// Optimize runs trials sequentially. Trial t encodes the symbolic channel with
// tier.BasePasses()+t passes while the entropy channel stays fixed.
//
// A trial count of 0 means "use the tier default" (tier.Trials()), so Optimize(v, 0, tier)
// equals Optimize(v, tier.Trials(), tier). Negative counts return ErrInvalidTrials.
func Optimize(vec []float64, trials int, tier payload.Tier) (Result, error) {
	s, err := newSearcher(vec, trials, tier)
	if err != nil {
		return Result{}, err
	}

	results := make([]trial, s.count)
	for t := range results {
		results[t] = s.run(t)
	}
	return s.reduce(results), nil
}

// OptimizeParallel runs trials on up to workers goroutines. Results are reduced in
// trial order, so the outcome is identical to Optimize. trials follows the same
// rules as in Optimize.
func OptimizeParallel(ctx context.Context, vec []float64, trials int, tier payload.Tier, workers int) (Result, error) {
	s, err := newSearcher(vec, trials, tier)
	if err != nil {
		return Result{}, err
	}
	if workers <= 0 {
		workers = 1
	}

	results := make([]trial, s.count)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for t := range results {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[t] = s.run(t)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}
	return s.reduce(results), nil
}
