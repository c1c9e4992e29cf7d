package vecid

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems; the prommetrics
// package provides a Prometheus implementation.
type MetricsCollector interface {
	// RecordEncode is called after each encode operation.
	RecordEncode(duration time.Duration, err error)

	// RecordDecode is called after each deserialize operation.
	RecordDecode(duration time.Duration, err error)

	// RecordOptimize is called after each optimizer run. trials is the number of
	// trials evaluated and mse the best reconstruction error found.
	RecordOptimize(trials int, mse float64, duration time.Duration, err error)

	// RecordVerify is called after each envelope verification.
	RecordVerify(duration time.Duration, err error)

	// RecordBatch is called after each batch encode operation.
	// count is the number of items attempted, failed is the number that failed.
	RecordBatch(count, failed int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordEncode(time.Duration, error)                 {}
func (NoopMetricsCollector) RecordDecode(time.Duration, error)                 {}
func (NoopMetricsCollector) RecordOptimize(int, float64, time.Duration, error) {}
func (NoopMetricsCollector) RecordVerify(time.Duration, error)                 {}
func (NoopMetricsCollector) RecordBatch(int, int, time.Duration)               {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	EncodeCount      atomic.Int64
	EncodeErrors     atomic.Int64
	EncodeTotalNanos atomic.Int64
	DecodeCount      atomic.Int64
	DecodeErrors     atomic.Int64
	OptimizeCount    atomic.Int64
	OptimizeTrials   atomic.Int64
	OptimizeErrors   atomic.Int64
	VerifyCount      atomic.Int64
	VerifyFailures   atomic.Int64
	BatchCount       atomic.Int64
	BatchItems       atomic.Int64
	BatchFailed      atomic.Int64
}

// RecordEncode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEncode(duration time.Duration, err error) {
	b.EncodeCount.Add(1)
	b.EncodeTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.EncodeErrors.Add(1)
	}
}

// RecordDecode implements MetricsCollector.
func (b *BasicMetricsCollector) RecordDecode(_ time.Duration, err error) {
	b.DecodeCount.Add(1)
	if err != nil {
		b.DecodeErrors.Add(1)
	}
}

// RecordOptimize implements MetricsCollector.
func (b *BasicMetricsCollector) RecordOptimize(trials int, _ float64, _ time.Duration, err error) {
	b.OptimizeCount.Add(1)
	b.OptimizeTrials.Add(int64(trials))
	if err != nil {
		b.OptimizeErrors.Add(1)
	}
}

// RecordVerify implements MetricsCollector.
func (b *BasicMetricsCollector) RecordVerify(_ time.Duration, err error) {
	b.VerifyCount.Add(1)
	if err != nil {
		b.VerifyFailures.Add(1)
	}
}

// RecordBatch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordBatch(count, failed int, _ time.Duration) {
	b.BatchCount.Add(1)
	b.BatchItems.Add(int64(count))
	b.BatchFailed.Add(int64(failed))
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		EncodeCount:    b.EncodeCount.Load(),
		EncodeErrors:   b.EncodeErrors.Load(),
		EncodeAvgNanos: b.getAvgEncodeNanos(),
		DecodeCount:    b.DecodeCount.Load(),
		DecodeErrors:   b.DecodeErrors.Load(),
		OptimizeCount:  b.OptimizeCount.Load(),
		OptimizeTrials: b.OptimizeTrials.Load(),
		OptimizeErrors: b.OptimizeErrors.Load(),
		VerifyCount:    b.VerifyCount.Load(),
		VerifyFailures: b.VerifyFailures.Load(),
		BatchCount:     b.BatchCount.Load(),
		BatchItems:     b.BatchItems.Load(),
		BatchFailed:    b.BatchFailed.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgEncodeNanos() int64 {
	count := b.EncodeCount.Load()
	if count == 0 {
		return 0
	}
	return b.EncodeTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	EncodeCount    int64
	EncodeErrors   int64
	EncodeAvgNanos int64
	DecodeCount    int64
	DecodeErrors   int64
	OptimizeCount  int64
	OptimizeTrials int64
	OptimizeErrors int64
	VerifyCount    int64
	VerifyFailures int64
	BatchCount     int64
	BatchItems     int64
	BatchFailed    int64
}
