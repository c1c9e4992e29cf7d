package vecid

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/hupe1980/vecid/codec"
	"github.com/hupe1980/vecid/entropy"
	"github.com/hupe1980/vecid/envelope"
	"github.com/hupe1980/vecid/hashing"
	"github.com/hupe1980/vecid/optimizer"
	"github.com/hupe1980/vecid/payload"
	"github.com/hupe1980/vecid/preprocess"
	"github.com/hupe1980/vecid/symbolic"
	"golang.org/x/sync/errgroup"
)

// Engine runs the identity pipeline with a fixed configuration.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	tier    payload.Tier
	trials  int
	workers int
	codec   codec.Codec
	hashAlg hashing.Algorithm
	metrics MetricsCollector
	logger  *Logger
}

// New returns an Engine configured by optFns.
func New(optFns ...Option) (*Engine, error) {
	opts := applyOptions(optFns)

	if opts.tier != 0 && !opts.tier.Valid() {
		return nil, fmt.Errorf("%w: tier %s", ErrValidation, opts.tier)
	}
	if opts.trials < 0 {
		return nil, fmt.Errorf("%w: trials %d", ErrValidation, opts.trials)
	}

	workers := opts.workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	return &Engine{
		tier:    opts.tier,
		trials:  opts.trials,
		workers: workers,
		codec:   opts.codec,
		hashAlg: opts.hashAlgorithm,
		metrics: opts.metricsCollector,
		logger:  opts.logger,
	}, nil
}

// Codec returns the JSON codec used for textual payloads and envelopes.
func (e *Engine) Codec() codec.Codec { return e.codec }

// Logger returns the engine logger.
func (e *Engine) Logger() *Logger { return e.logger }

// Preprocess maps any input to a normalized vector. It never fails.
func (e *Engine) Preprocess(in preprocess.Input) preprocess.Vector {
	return preprocess.Preprocess(in)
}

func (e *Engine) tierOr(fallback payload.Tier) payload.Tier {
	if e.tier != 0 {
		return e.tier
	}
	return fallback
}

// Encode encodes a normalized vector with the configured tier (payload.Default if
// none was set).
func (e *Engine) Encode(ctx context.Context, vec preprocess.Vector) (*payload.Payload, error) {
	return e.encode(ctx, vec, e.tierOr(payload.Default), entropy.Encode)
}

// EncodeKeyed is Encode with a keyed entropy signature that cannot be reproduced
// without key. The symbolic digest is unchanged.
func (e *Engine) EncodeKeyed(ctx context.Context, vec preprocess.Vector, key []byte) (*payload.Payload, error) {
	return e.encode(ctx, vec, e.tierOr(payload.Default), keyedSignature(key))
}

// EncodeInput preprocesses in and encodes it. Without WithTier the tier is chosen
// from the raw input size.
func (e *Engine) EncodeInput(ctx context.Context, in preprocess.Input) (*payload.Payload, error) {
	vec, size := preprocess.PreprocessSized(in)
	return e.encode(ctx, vec, e.tierOr(payload.TierFor(size)), entropy.Encode)
}

// EncodeInputKeyed is EncodeInput with a keyed entropy signature.
func (e *Engine) EncodeInputKeyed(ctx context.Context, in preprocess.Input, key []byte) (*payload.Payload, error) {
	vec, size := preprocess.PreprocessSized(in)
	return e.encode(ctx, vec, e.tierOr(payload.TierFor(size)), keyedSignature(key))
}

type signatureFunc func([]float64) (entropy.Signature, error)

func keyedSignature(key []byte) signatureFunc {
	return func(v []float64) (entropy.Signature, error) {
		return entropy.EncodeKeyed(v, key)
	}
}

func (e *Engine) encode(ctx context.Context, vec preprocess.Vector, tier payload.Tier, sign signatureFunc) (*payload.Payload, error) {
	start := time.Now()

	p, err := encodeVector(vec, tier, sign)
	err = translateError(err)

	e.metrics.RecordEncode(time.Since(start), err)
	e.logger.LogEncode(ctx, tier, len(vec), err)
	return p, err
}

func encodeVector(vec preprocess.Vector, tier payload.Tier, sign signatureFunc) (*payload.Payload, error) {
	if !tier.Valid() {
		return nil, payload.ErrInvalidTier
	}
	sig, err := sign(vec)
	if err != nil {
		return nil, err
	}
	return payload.New(tier, symbolic.Encode(vec, tier.BasePasses()), sig), nil
}

// EncodeBatch encodes inputs concurrently. Results are returned in input order.
// The first error cancels the remaining work.
func (e *Engine) EncodeBatch(ctx context.Context, inputs []preprocess.Input) ([]*payload.Payload, error) {
	start := time.Now()
	out := make([]*payload.Payload, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for i, in := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vec, size := preprocess.PreprocessSized(in)
			p, err := encodeVector(vec, e.tierOr(payload.TierFor(size)), entropy.Encode)
			if err != nil {
				return fmt.Errorf("input %d: %w", i, err)
			}
			out[i] = p
			return nil
		})
	}

	err := translateError(g.Wait())

	failed := 0
	for _, p := range out {
		if p == nil {
			failed++
		}
	}
	e.metrics.RecordBatch(len(inputs), failed, time.Since(start))
	e.logger.LogBatch(ctx, len(inputs), failed)

	if err != nil {
		return nil, err
	}
	return out, nil
}

// Reconstruct returns the approximation of the normalized vector carried by p.
func (e *Engine) Reconstruct(p *payload.Payload) (preprocess.Vector, error) {
	if err := p.Validate(); err != nil {
		return nil, translateError(err)
	}
	return p.Reconstruct(), nil
}

// Optimize searches symbolic pass counts for the lowest reconstruction error. With
// more than one worker the trials run concurrently; the result is identical.
func (e *Engine) Optimize(ctx context.Context, vec preprocess.Vector) (optimizer.Result, error) {
	start := time.Now()
	tier := e.tierOr(payload.Default)

	var (
		res optimizer.Result
		err error
	)
	if e.workers > 1 {
		res, err = optimizer.OptimizeParallel(ctx, vec, e.trials, tier, e.workers)
	} else {
		res, err = optimizer.Optimize(vec, e.trials, tier)
	}
	err = translateError(err)

	trials := e.trials
	if trials == 0 {
		trials = tier.Trials()
	}
	e.metrics.RecordOptimize(trials, res.MSE, time.Since(start), err)
	e.logger.LogOptimize(ctx, trials, res.Trial, res.MSE, err)
	return res, err
}

// Serialize returns the compact binary form of p.
func (e *Engine) Serialize(p *payload.Payload) ([]byte, error) {
	b, err := payload.Compact{}.Encode(p)
	return b, translateError(err)
}

// SerializeText returns the textual document form of p.
func (e *Engine) SerializeText(p *payload.Payload) ([]byte, error) {
	b, err := payload.Textual{Codec: e.codec}.Encode(p)
	return b, translateError(err)
}

// Deserialize parses a compact payload.
func (e *Engine) Deserialize(ctx context.Context, data []byte) (*payload.Payload, error) {
	return e.decode(ctx, payload.Compact{}, data)
}

// DeserializeText parses a textual document.
func (e *Engine) DeserializeText(ctx context.Context, data []byte) (*payload.Payload, error) {
	return e.decode(ctx, payload.Textual{Codec: e.codec}, data)
}

func (e *Engine) decode(ctx context.Context, c payload.Codec, data []byte) (*payload.Payload, error) {
	start := time.Now()
	p, err := c.Decode(data)
	err = translateError(err)

	e.metrics.RecordDecode(time.Since(start), err)
	e.logger.LogDecode(ctx, c.Name(), len(data), err)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Sign wraps p in an authenticated envelope.
func (e *Engine) Sign(p *payload.Payload, key []byte, opts ...envelope.Option) (*envelope.Envelope, error) {
	env, err := envelope.Sign(p, key, opts...)
	return env, translateError(err)
}

// Verify checks env against key and returns the enclosed payload. It never
// returns a payload together with an error.
func (e *Engine) Verify(ctx context.Context, env *envelope.Envelope, key []byte) (*payload.Payload, error) {
	start := time.Now()

	p, err := verify(env, key)
	err = translateError(err)

	keyID := ""
	if env != nil {
		keyID = env.Metadata.KeyID
	}
	e.metrics.RecordVerify(time.Since(start), err)
	e.logger.LogVerify(ctx, keyID, err)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func verify(env *envelope.Envelope, key []byte) (*payload.Payload, error) {
	if err := envelope.Verify(env, key); err != nil {
		return nil, err
	}
	return payload.FromDocument(env.Data)
}

// Open parses, verifies and unwraps a serialized envelope.
func (e *Engine) Open(ctx context.Context, data, key []byte) (*payload.Payload, error) {
	env, err := envelope.Parse(data)
	if err != nil {
		err = translateError(err)
		e.metrics.RecordVerify(0, err)
		e.logger.LogVerify(ctx, "", err)
		return nil, err
	}
	return e.Verify(ctx, env, key)
}

// Hash returns the deterministic hex digest of in, prefixed by salt.
func (e *Engine) Hash(in preprocess.Input, salt string) (string, error) {
	h, err := hashing.Hash(in, salt, hashing.WithAlgorithm(e.hashAlg))
	return h, translateError(err)
}
