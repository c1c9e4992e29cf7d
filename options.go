package vecid

import (
	"log/slog"

	"github.com/hupe1980/vecid/codec"
	"github.com/hupe1980/vecid/hashing"
	"github.com/hupe1980/vecid/payload"
)

type options struct {
	tier             payload.Tier
	trials           int
	workers          int
	codec            codec.Codec
	hashAlgorithm    hashing.Algorithm
	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures an Engine.
type Option func(*options)

// WithTier pins the tier used for every encode.
//
// By default EncodeInput selects the tier from the raw input size and Encode uses
// payload.Default.
func WithTier(t payload.Tier) Option {
	return func(o *options) {
		o.tier = t
	}
}

// WithTrials sets the optimizer trial count. 0 uses the tier default; New rejects
// negative values.
func WithTrials(n int) Option {
	return func(o *options) {
		o.trials = n
	}
}

// WithWorkers bounds the goroutines used by EncodeBatch and Optimize.
// Values <= 0 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithCodec configures the JSON codec used for textual payloads and envelopes.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithHashAlgorithm selects the digest used by Hash.
func WithHashAlgorithm(a hashing.Algorithm) Option {
	return func(o *options) {
		o.hashAlgorithm = a
	}
}

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &vecid.BasicMetricsCollector{}
//	e := vecid.New(vecid.WithMetricsCollector(metrics))
//	// ... use e ...
//	stats := metrics.GetStats()
//	fmt.Printf("Encodes: %d, Avg latency: %dns\n", stats.EncodeCount, stats.EncodeAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:            codec.Default,
		hashAlgorithm:    hashing.SHA256,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
