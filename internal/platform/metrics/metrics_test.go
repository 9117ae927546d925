package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestIngestionMetrics_Record(t *testing.T) {
	m := NewIngestionMetrics(prometheus.NewRegistry())
	at := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	m.RecordSuccess("schedule", 200*time.Millisecond, 4, 1, at)
	m.RecordFailure("schedule", "fetch", time.Second)
	m.RecordFailure("manual", "parse", time.Second)
	m.RecordColdStart()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("schedule", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RunsTotal.WithLabelValues("schedule", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FailuresTotal.WithLabelValues("parse")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FieldWarningsTotal))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.QuotesStored))
	assert.Equal(t, float64(at.Unix()), testutil.ToFloat64(m.LastSuccessTimestamp))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ColdStartsTotal))
}

func TestIngestionMetrics_NilIsNoop(t *testing.T) {
	var m *IngestionMetrics
	assert.NotPanics(t, func() {
		m.RecordSuccess("manual", time.Second, 1, 0, time.Now())
		m.RecordFailure("manual", "store", time.Second)
		m.RecordColdStart()
	})
}
