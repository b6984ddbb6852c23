package main

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/ringcapture/pkg/pcmwav"
	"github.com/xaionaro-go/ringcapture/pkg/ringcapture"
)

func TestMeasureLevels(t *testing.T) {
	b, err := pcmwav.Encode(&ringcapture.ExtractedSamples{
		SampleRate: 8000,
		Channels:   1,
		Samples:    []float32{1, -1, 1, -1},
	})
	require.NoError(t, err)

	l, err := measureLevels(b)
	require.NoError(t, err)
	require.InDelta(t, 1, l.Peak, 1e-9)
	require.InDelta(t, 1, l.RMS, 1e-9)
	require.InDelta(t, 4000, l.DominantFrequency, 1e-9)
	require.InDelta(t, 0, dBFS(l.Peak), 1e-6)
	require.True(t, math.IsInf(dBFS(0), -1))
}

func TestMeasureLevelsTone(t *testing.T) {
	const (
		rate      = 8000
		frequency = 500
	)
	samples := make([]float32, 0, 2*rate)
	for i := 0; i < rate; i++ {
		v := float32(0.5 * math.Sin(2*math.Pi*frequency*float64(i)/rate))
		samples = append(samples, v, v)
	}
	b, err := pcmwav.Encode(&ringcapture.ExtractedSamples{
		SampleRate: rate,
		Channels:   2,
		Samples:    samples,
	})
	require.NoError(t, err)

	l, err := measureLevels(b)
	require.NoError(t, err)
	require.InDelta(t, 0.5, l.Peak, 0.001)
	require.InDelta(t, 0.5/math.Sqrt2, l.RMS, 0.001)
	require.InDelta(t, frequency, l.DominantFrequency, 1)
}
