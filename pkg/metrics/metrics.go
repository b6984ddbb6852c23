// Package metrics defines the Prometheus metrics of recording sessions.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ringcapture"

const (
	OutcomeSuccess  = "success"
	OutcomeNoData   = "no_data"
	OutcomeEmpty    = "empty"
	OutcomeCanceled = "canceled"
	OutcomeError    = "error"
)

type Metrics struct {
	Sessions          *prometheus.CounterVec
	TruncatedSessions prometheus.Counter
	ExtractedFrames   prometheus.Counter
	EncodedBytes      prometheus.Counter
	SessionDuration   prometheus.Histogram
	CapturedBytes     prometheus.Counter

	SinkStores *prometheus.CounterVec
}

// New creates the metrics and registers them in reg.
// A nil reg means prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Sessions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_total",
			Help:      "Total number of finished recording sessions by outcome",
		}, []string{"outcome"}),
		TruncatedSessions: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_truncated_total",
			Help:      "Total number of sessions that were longer than the ring buffer",
		}),
		ExtractedFrames: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extracted_frames_total",
			Help:      "Total number of frames extracted from the ring buffer",
		}),
		EncodedBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "encoded_bytes_total",
			Help:      "Total size of the produced WAV files",
		}),
		SessionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "session_duration_seconds",
			Help:      "Wall-clock duration of recording sessions",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4 minutes
		}),
		CapturedBytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "captured_bytes_total",
			Help:      "Total number of raw PCM bytes received from the recorder",
		}),
		SinkStores: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sink_stores_total",
			Help:      "Total number of store attempts by sink and result",
		}, []string{"sink", "result"}),
	}
}

func (m *Metrics) ObserveSession(
	outcome string,
	durationSeconds float64,
	frames uint64,
	wavBytes int,
	truncated bool,
) {
	if m == nil {
		return
	}
	m.Sessions.WithLabelValues(outcome).Inc()
	if outcome != OutcomeSuccess {
		return
	}
	m.SessionDuration.Observe(durationSeconds)
	m.ExtractedFrames.Add(float64(frames))
	m.EncodedBytes.Add(float64(wavBytes))
	if truncated {
		m.TruncatedSessions.Inc()
	}
}

func (m *Metrics) ObserveCapturedBytes(n uint64) {
	if m == nil {
		return
	}
	m.CapturedBytes.Add(float64(n))
}

func (m *Metrics) ObserveStore(sink string, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SinkStores.WithLabelValues(sink, result).Inc()
}
