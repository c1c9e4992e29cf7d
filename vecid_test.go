package vecid

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/hupe1980/vecid/codec"
	"github.com/hupe1980/vecid/envelope"
	"github.com/hupe1980/vecid/hashing"
	"github.com/hupe1980/vecid/optimizer"
	"github.com/hupe1980/vecid/payload"
	"github.com/hupe1980/vecid/preprocess"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()

	e, err := New(opts...)
	require.NoError(t, err)
	return e
}

func TestEngine_HiScenario(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t, WithTier(payload.Default))

	vec := e.Preprocess(preprocess.Bytes([]byte("Hi")))
	require.Len(t, vec, preprocess.Dimension)
	assert.True(t, vec.Valid())

	p, err := e.Encode(ctx, vec)
	require.NoError(t, err)

	b, err := e.Serialize(p)
	require.NoError(t, err)
	require.Len(t, b, 65)
	assert.Equal(t, byte(0b010), b[0]&0b111)

	decoded, err := e.Deserialize(ctx, b)
	require.NoError(t, err)
	out, err := e.Reconstruct(decoded)
	require.NoError(t, err)
	require.Len(t, out, preprocess.Dimension)
	for _, x := range out {
		assert.False(t, math.IsNaN(x) || math.IsInf(x, 0))
	}

	env, err := e.Sign(p, []byte("k"))
	require.NoError(t, err)

	_, err = e.Verify(ctx, env, []byte("wrong"))
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.ErrorIs(t, err, envelope.ErrAuthentication)

	got, err := e.Verify(ctx, env, []byte("k"))
	require.NoError(t, err)
	assert.Equal(t, p.Digest, got.Digest)
}

func TestEngine_EncodeInputSelectsTier(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	tests := []struct {
		name string
		in   preprocess.Input
		want payload.Tier
	}{
		{"tiny", preprocess.Text("Hi"), payload.Tiny},
		{"default", preprocess.Numeric(make([]float64, 100)), payload.Default},
		{"large", preprocess.Bytes(make([]byte, 9000)), payload.Large},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := e.EncodeInput(ctx, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Tier)
		})
	}

	pinned := newEngine(t, WithTier(payload.Large))
	p, err := pinned.EncodeInput(ctx, preprocess.Text("Hi"))
	require.NoError(t, err)
	assert.Equal(t, payload.Large, p.Tier)
}

func TestEngine_EncodeDeterministic(t *testing.T) {
	ctx := context.Background()
	e := newEngine(t)

	a, err := e.EncodeInput(ctx, preprocess.Text("same input"))
	require.NoError(t, err)
	b, err := e.EncodeInput(ctx, preprocess.Text("same input"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestEngine_EncodeRejectsWrongLength(t *testing.T) {
	metrics := &BasicMetricsCollector{}
	e := newEngine(t, WithMetricsCollector(metrics))

	_, err := e.Encode(context.Background(), make(preprocess.Vector, 10))
	assert.ErrorIs(t, err, ErrValidation)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.EncodeCount)
	assert.Equal(t, int64(1), stats.EncodeErrors)
}

func TestNew_InvalidTier(t *testing.T) {
	_, err := New(WithTier(payload.Tiny | payload.Large))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestNew_NegativeTrials(t *testing.T) {
	_, err := New(WithTrials(-1))
	assert.ErrorIs(t, err, ErrValidation)

	_, err = New(WithTrials(0))
	assert.NoError(t, err)
}

func TestEngine_EncodeKeyed(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	e := newEngine(t, WithMetricsCollector(metrics))
	key := []byte("secret")

	plain, err := e.EncodeInput(ctx, preprocess.Text("keyed payload"))
	require.NoError(t, err)
	keyed, err := e.EncodeInputKeyed(ctx, preprocess.Text("keyed payload"), key)
	require.NoError(t, err)
	again, err := e.EncodeInputKeyed(ctx, preprocess.Text("keyed payload"), key)
	require.NoError(t, err)
	other, err := e.EncodeInputKeyed(ctx, preprocess.Text("keyed payload"), []byte("other"))
	require.NoError(t, err)

	assert.Equal(t, plain.Tier, keyed.Tier)
	assert.Equal(t, plain.Digest, keyed.Digest)
	assert.NotEqual(t, plain.Entropy, keyed.Entropy)
	assert.Equal(t, keyed, again)
	assert.NotEqual(t, keyed.Entropy, other.Entropy)

	env, err := e.Sign(keyed, key)
	require.NoError(t, err)
	b, err := env.Marshal(e.Codec())
	require.NoError(t, err)

	got, err := e.Open(ctx, b, key)
	require.NoError(t, err)
	assert.True(t, payload.Equivalent(keyed, got, 1e-9))

	out, err := e.Reconstruct(got)
	require.NoError(t, err)
	assert.True(t, out.Valid())

	vec := e.Preprocess(preprocess.Text("keyed payload"))
	direct, err := e.EncodeKeyed(ctx, vec, key)
	require.NoError(t, err)
	assert.Equal(t, keyed.Entropy, direct.Entropy)

	_, err = e.EncodeKeyed(ctx, vec, nil)
	assert.ErrorIs(t, err, ErrValidation)

	stats := metrics.GetStats()
	assert.Equal(t, int64(6), stats.EncodeCount)
	assert.Equal(t, int64(1), stats.EncodeErrors)
}

func TestEngine_EncodeBatch(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	e := newEngine(t, WithWorkers(4), WithMetricsCollector(metrics))

	inputs := make([]preprocess.Input, 32)
	for i := range inputs {
		inputs[i] = preprocess.Text(fmt.Sprintf("batch item %d", i))
	}

	got, err := e.EncodeBatch(ctx, inputs)
	require.NoError(t, err)
	require.Len(t, got, len(inputs))

	for i, in := range inputs {
		want, err := e.EncodeInput(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, want, got[i], "item %d out of order", i)
	}

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.BatchCount)
	assert.Equal(t, int64(len(inputs)), stats.BatchItems)
	assert.Equal(t, int64(0), stats.BatchFailed)
}

func TestEngine_EncodeBatchCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	e := newEngine(t, WithWorkers(2))
	_, err := e.EncodeBatch(ctx, []preprocess.Input{preprocess.Text("a"), preprocess.Text("b")})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_Optimize(t *testing.T) {
	ctx := context.Background()
	vec := preprocess.Preprocess(preprocess.Text("optimize me"))

	seq := newEngine(t, WithWorkers(1), WithTrials(4))
	par := newEngine(t, WithWorkers(4), WithTrials(4))

	a, err := seq.Optimize(ctx, vec)
	require.NoError(t, err)
	b, err := par.Optimize(ctx, vec)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	direct, err := optimizer.Optimize(vec, 4, payload.Default)
	require.NoError(t, err)
	assert.Equal(t, direct, a)
}

func TestEngine_TextualRoundTrip(t *testing.T) {
	ctx := context.Background()

	for _, c := range []codec.Codec{codec.JSON{}, codec.GoJSON{}} {
		t.Run(c.Name(), func(t *testing.T) {
			e := newEngine(t, WithCodec(c))
			p, err := e.EncodeInput(ctx, preprocess.Text("document"))
			require.NoError(t, err)

			doc, err := e.SerializeText(p)
			require.NoError(t, err)
			got, err := e.DeserializeText(ctx, doc)
			require.NoError(t, err)
			assert.Equal(t, p.Digest, got.Digest)
			assert.Equal(t, p.Tier, got.Tier)
		})
	}
}

func TestEngine_DeserializeErrors(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	e := newEngine(t, WithMetricsCollector(metrics))

	_, err := e.Deserialize(ctx, make([]byte, 10))
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, payload.ErrTooShort)

	var ve *payload.ValidationError
	assert.True(t, errors.As(err, &ve))

	_, err = e.DeserializeText(ctx, []byte(`{"symbolic":"zz"}`))
	assert.ErrorIs(t, err, ErrValidation)

	assert.Equal(t, int64(2), metrics.GetStats().DecodeErrors)
}

func TestEngine_Open(t *testing.T) {
	ctx := context.Background()
	metrics := &BasicMetricsCollector{}
	e := newEngine(t, WithMetricsCollector(metrics))

	p, err := e.EncodeInput(ctx, preprocess.Text("open"))
	require.NoError(t, err)
	env, err := e.Sign(p, []byte("key"), envelope.WithSalt([]byte("salt")))
	require.NoError(t, err)
	b, err := env.Marshal(e.Codec())
	require.NoError(t, err)

	got, err := e.Open(ctx, b, []byte("key"))
	require.NoError(t, err)
	assert.Equal(t, p.Digest, got.Digest)

	_, err = e.Open(ctx, []byte(`{"data":{}}`), []byte("key"))
	assert.ErrorIs(t, err, ErrAuthentication)

	stats := metrics.GetStats()
	assert.Equal(t, int64(2), stats.VerifyCount)
	assert.Equal(t, int64(1), stats.VerifyFailures)
}

func TestEngine_SignEmptyKey(t *testing.T) {
	e := newEngine(t)
	p, err := e.EncodeInput(context.Background(), preprocess.Text("x"))
	require.NoError(t, err)

	_, err = e.Sign(p, nil)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestEngine_Hash(t *testing.T) {
	e := newEngine(t)

	h1, err := e.Hash(preprocess.Text("abc"), "")
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h1)

	h2, err := e.Hash(preprocess.Text("abc"), "salt")
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
	assert.Len(t, h2, 64)

	sha3 := newEngine(t, WithHashAlgorithm(hashing.SHA3_256))
	h3, err := sha3.Hash(preprocess.Text("abc"), "")
	require.NoError(t, err)
	assert.Equal(t, "3a985da74fe225b2045c172d6bd390bd855f086e3e9d525b46bfe24511431532", h3)
}

func TestEngine_ReconstructInvalid(t *testing.T) {
	e := newEngine(t)
	_, err := e.Reconstruct(&payload.Payload{Version: 1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTranslateError(t *testing.T) {
	assert.NoError(t, translateError(nil))

	plain := errors.New("plain")
	assert.Equal(t, plain, translateError(plain))

	once := translateError(payload.ErrInvalidTier)
	assert.ErrorIs(t, once, ErrValidation)
	assert.Equal(t, once, translateError(once))
}
