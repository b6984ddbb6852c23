package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserveSession(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveSession(OutcomeSuccess, 1.5, 72000, 144044, true)
	m.ObserveSession(OutcomeSuccess, 1, 48000, 96044, false)
	m.ObserveSession(OutcomeNoData, 0, 0, 0, false)

	require.Equal(t, 2.0, testutil.ToFloat64(m.Sessions.WithLabelValues(OutcomeSuccess)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.Sessions.WithLabelValues(OutcomeNoData)))
	require.Equal(t, 1.0, testutil.ToFloat64(m.TruncatedSessions))
	require.Equal(t, 120000.0, testutil.ToFloat64(m.ExtractedFrames))
	require.Equal(t, 240088.0, testutil.ToFloat64(m.EncodedBytes))
}

func TestObserveStore(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveStore("file", nil)
	m.ObserveStore("s3", errors.New("denied"))

	require.Equal(t, 1.0, testutil.ToFloat64(m.SinkStores.WithLabelValues("file", "ok")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.SinkStores.WithLabelValues("s3", "error")))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.ObserveSession(OutcomeSuccess, 1, 1, 1, true)
	m.ObserveCapturedBytes(1)
	m.ObserveStore("file", nil)
}
