package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// IngestionMetrics holds the Prometheus collectors of the ingestion pipeline.
type IngestionMetrics struct {
	// Runs by trigger and final status
	RunsTotal *prometheus.CounterVec
	// Run duration by trigger and status
	RunDuration *prometheus.HistogramVec
	// Failures by stage: fetch, parse, store
	FailuresTotal *prometheus.CounterVec
	// Field-level warnings reported by the parser
	FieldWarningsTotal prometheus.Counter
	// Quotes written by the last successful run
	QuotesStored prometheus.Gauge
	// Unix time of the last successful run
	LastSuccessTimestamp prometheus.Gauge
	// Cold-start reads that had to ingest before answering
	ColdStartsTotal prometheus.Counter
}

// NewIngestionMetrics registers the collectors on reg. Pass
// prometheus.DefaultRegisterer in production and a fresh registry in tests.
func NewIngestionMetrics(reg prometheus.Registerer) *IngestionMetrics {
	factory := promauto.With(reg)
	return &IngestionMetrics{
		RunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exchange_rate_ingestion_runs_total",
				Help: "Total ingestion runs by trigger and status",
			},
			[]string{"trigger", "status"},
		),
		RunDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "exchange_rate_ingestion_duration_seconds",
				Help:    "Ingestion run duration in seconds",
				Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms .. ~25s
			},
			[]string{"trigger", "status"},
		),
		FailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "exchange_rate_ingestion_failures_total",
				Help: "Failed ingestion runs by stage",
			},
			[]string{"stage"},
		),
		FieldWarningsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "exchange_rate_parse_field_warnings_total",
				Help: "Rate fields that could not be parsed and were stored as zero",
			},
		),
		QuotesStored: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "exchange_rate_quotes_stored",
				Help: "Number of quotes written by the last successful ingestion",
			},
		),
		LastSuccessTimestamp: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "exchange_rate_last_success_timestamp_seconds",
				Help: "Unix time of the last successful ingestion",
			},
		),
		ColdStartsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "exchange_rate_cold_starts_total",
				Help: "Reads that found the store empty and ingested synchronously",
			},
		),
	}
}

// RecordSuccess records a successful run. A nil receiver is a no-op.
func (m *IngestionMetrics) RecordSuccess(trigger string, d time.Duration, quotes, warnings int, at time.Time) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(trigger, "success").Inc()
	m.RunDuration.WithLabelValues(trigger, "success").Observe(d.Seconds())
	m.FieldWarningsTotal.Add(float64(warnings))
	m.QuotesStored.Set(float64(quotes))
	m.LastSuccessTimestamp.Set(float64(at.Unix()))
}

// RecordFailure records a failed run at stage.
func (m *IngestionMetrics) RecordFailure(trigger, stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.RunsTotal.WithLabelValues(trigger, "error").Inc()
	m.RunDuration.WithLabelValues(trigger, "error").Observe(d.Seconds())
	m.FailuresTotal.WithLabelValues(stage).Inc()
}

// RecordColdStart counts a read that had to ingest first.
func (m *IngestionMetrics) RecordColdStart() {
	if m == nil {
		return
	}
	m.ColdStartsTotal.Inc()
}
