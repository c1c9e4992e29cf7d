// Package prommetrics exports vecid engine metrics to Prometheus.
//
//	c := prommetrics.New(prometheus.DefaultRegisterer)
//	e, err := vecid.New(vecid.WithMetricsCollector(c))
package prommetrics

import (
	"time"

	"github.com/hupe1980/vecid"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "vecid"

// Collector implements vecid.MetricsCollector.
type Collector struct {
	opLatency  *prometheus.HistogramVec
	ops        *prometheus.CounterVec
	optTrials  prometheus.Counter
	optMSE     prometheus.Histogram
	batchItems *prometheus.CounterVec
}

var _ vecid.MetricsCollector = (*Collector)(nil)

// New creates a Collector and registers its metrics with reg. A nil reg skips
// registration.
func New(reg prometheus.Registerer) *Collector {
	c := &Collector{
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_latency_seconds",
			Help:      "Latency of engine operations",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
		}, []string{"op"}),
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Engine operations by outcome",
		}, []string{"op", "status"}),
		optTrials: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "optimizer_trials_total",
			Help:      "Optimizer trials evaluated",
		}),
		optMSE: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "optimizer_best_mse",
			Help:      "Best reconstruction MSE found per optimizer run",
			Buckets:   prometheus.LinearBuckets(0, 0.01, 10),
		}),
		batchItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batch_items_total",
			Help:      "Batch encode items by outcome",
		}, []string{"status"}),
	}

	if reg != nil {
		reg.MustRegister(c.opLatency, c.ops, c.optTrials, c.optMSE, c.batchItems)
	}
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (c *Collector) observe(op string, d time.Duration, err error) {
	c.opLatency.WithLabelValues(op).Observe(d.Seconds())
	c.ops.WithLabelValues(op, status(err)).Inc()
}

// RecordEncode implements vecid.MetricsCollector.
func (c *Collector) RecordEncode(d time.Duration, err error) { c.observe("encode", d, err) }

// RecordDecode implements vecid.MetricsCollector.
func (c *Collector) RecordDecode(d time.Duration, err error) { c.observe("decode", d, err) }

// RecordVerify implements vecid.MetricsCollector.
func (c *Collector) RecordVerify(d time.Duration, err error) { c.observe("verify", d, err) }

// RecordOptimize implements vecid.MetricsCollector.
func (c *Collector) RecordOptimize(trials int, mse float64, d time.Duration, err error) {
	c.observe("optimize", d, err)
	c.optTrials.Add(float64(trials))
	if err == nil {
		c.optMSE.Observe(mse)
	}
}

// RecordBatch implements vecid.MetricsCollector.
func (c *Collector) RecordBatch(count, failed int, d time.Duration) {
	c.opLatency.WithLabelValues("batch").Observe(d.Seconds())
	c.batchItems.WithLabelValues("ok").Add(float64(count - failed))
	c.batchItems.WithLabelValues("error").Add(float64(failed))
}
