package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "v2n"

// Metrics records job and ledger activity. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	jobs          *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	reservations  *prometheus.CounterVec
	audioSeconds  prometheus.Counter
}

// New registers the collectors on reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_total",
			Help:      "Finished jobs by flow, final state and error kind.",
		}, []string{"flow", "state", "error_kind"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent per pipeline stage.",
			Buckets:   []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300, 900},
		}, []string{"stage", "result"}),
		reservations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reservations_total",
			Help:      "Credit reservation transitions.",
		}, []string{"transition"}),
		audioSeconds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_processed_seconds_total",
			Help:      "Seconds of normalized audio sent to transcription.",
		}),
	}
	reg.MustRegister(m.jobs, m.stageDuration, m.reservations, m.audioSeconds)
	return m
}

// RecordJob counts a finished job
func (m *Metrics) RecordJob(flow, state, errorKind string) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(flow, state, errorKind).Inc()
}

// RecordSuccess records a stage that completed
func (m *Metrics) RecordSuccess(stage string, latency time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage, "ok").Observe(latency.Seconds())
}

// RecordFailure records a stage that failed
func (m *Metrics) RecordFailure(stage string, latency time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage, "error").Observe(latency.Seconds())
}

// RecordReservation counts a ledger transition: reserve, commit, refund, refuse
func (m *Metrics) RecordReservation(transition string) {
	if m == nil {
		return
	}
	m.reservations.WithLabelValues(transition).Inc()
}

// RecordAudio adds normalized audio duration
func (m *Metrics) RecordAudio(d time.Duration) {
	if m == nil {
		return
	}
	m.audioSeconds.Add(d.Seconds())
}
