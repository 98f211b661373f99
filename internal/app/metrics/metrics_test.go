package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordJob("submit", "completed", "")
	m.RecordJob("submit", "completed", "")
	m.RecordJob("submit", "failed", "corrupt_media")
	m.RecordReservation("reserve")
	m.RecordReservation("refund")
	m.RecordAudio(90 * time.Second)
	m.RecordSuccess("transcribing", 2*time.Second)
	m.RecordFailure("normalizing", time.Second)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.jobs.WithLabelValues("submit", "completed", "")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobs.WithLabelValues("submit", "failed", "corrupt_media")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reservations.WithLabelValues("refund")))
	assert.Equal(t, 90.0, testutil.ToFloat64(m.audioSeconds))
	assert.Equal(t, 2, testutil.CollectAndCount(m.stageDuration))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordJob("submit", "completed", "")
		m.RecordReservation("reserve")
		m.RecordSuccess("persisting", time.Millisecond)
		m.RecordFailure("persisting", time.Millisecond)
		m.RecordAudio(time.Second)
	})
}
