package telemetry

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RecordsConsumed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "relay", Subsystem: "pipeline", Name: "records_consumed_total",
		Help: "Records fetched from the input topic",
	})
	RecordsEmitted = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "relay", Subsystem: "pipeline", Name: "records_emitted_total",
		Help: "Records transformed and durably published",
	})
	RecordsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "relay", Subsystem: "pipeline", Name: "records_dropped_total",
		Help: "Records intentionally discarded by the transform",
	})
	RecordsErrored = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "relay", Subsystem: "pipeline", Name: "records_errored_total",
		Help: "Records the transform could not interpret",
	})
	PublishRetries = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "relay", Subsystem: "sink", Name: "publish_retries_total",
		Help: "Publish attempts repeated after a sink failure",
	})
	CommitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "relay", Subsystem: "source", Name: "commits_total",
		Help: "Offset commits issued to the broker",
	})
	PublishLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "relay", Subsystem: "sink", Name: "publish_duration_seconds",
		Help:    "Time to durable acknowledgment per publish attempt",
		Buckets: prometheus.DefBuckets,
	})

	registerOnce sync.Once
)

func register(r prometheus.Registerer) {
	registerOnce.Do(func() {
		r.MustRegister(
			RecordsConsumed, RecordsEmitted, RecordsDropped, RecordsErrored,
			PublishRetries, CommitsTotal, PublishLatency,
		)
	})
}

func Expose(port int) {
	register(prometheus.DefaultRegisterer)
	go func() {
		http.Handle("/metrics", promhttp.Handler())
		_ = http.ListenAndServe(fmt.Sprintf(":%d", port), nil)
	}()
}
