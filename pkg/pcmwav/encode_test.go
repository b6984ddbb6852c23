package pcmwav

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xaionaro-go/ringcapture/pkg/audio/types"
	"github.com/xaionaro-go/ringcapture/pkg/ringcapture"
)

func samplesOf(channels uint16, rate uint32, s ...float32) *ringcapture.ExtractedSamples {
	return &ringcapture.ExtractedSamples{
		SampleRate: types.SampleRate(rate),
		Channels:   types.Channel(channels),
		Samples:    s,
	}
}

func TestEncodeHeader(t *testing.T) {
	for _, tc := range []struct {
		name     string
		channels uint16
		rate     uint32
		samples  []float32
	}{
		{"Mono", 1, 44100, []float32{0, 0.5, -0.5}},
		{"Stereo", 2, 48000, []float32{0, 0, 1, -1, 0.25, -0.25, 0.5, 0.5}},
		{"SingleFrame", 1, 8000, []float32{0.1}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			b, err := Encode(samplesOf(tc.channels, tc.rate, tc.samples...))
			require.NoError(t, err)

			dataBytes := uint32(len(tc.samples) * 2)
			require.Len(t, b, HeaderSize+int(dataBytes))
			require.Equal(t, "RIFF", string(b[0:4]))
			require.Equal(t, 36+dataBytes, binary.LittleEndian.Uint32(b[4:8]))
			require.Equal(t, "WAVE", string(b[8:12]))
			require.Equal(t, "fmt ", string(b[12:16]))
			require.Equal(t, uint32(16), binary.LittleEndian.Uint32(b[16:20]))
			require.Equal(t, uint16(1), binary.LittleEndian.Uint16(b[20:22]))
			require.Equal(t, tc.channels, binary.LittleEndian.Uint16(b[22:24]))
			require.Equal(t, tc.rate, binary.LittleEndian.Uint32(b[24:28]))
			require.Equal(t, tc.rate*uint32(tc.channels)*2, binary.LittleEndian.Uint32(b[28:32]))
			require.Equal(t, tc.channels*2, binary.LittleEndian.Uint16(b[32:34]))
			require.Equal(t, uint16(16), binary.LittleEndian.Uint16(b[34:36]))
			require.Equal(t, "data", string(b[36:40]))
			require.Equal(t, dataBytes, binary.LittleEndian.Uint32(b[40:44]))
			require.Equal(t, len(b)-8, int(binary.LittleEndian.Uint32(b[4:8])))
		})
	}
}

func TestEncodeSampleConversion(t *testing.T) {
	b, err := Encode(samplesOf(1, 8000, 0, 1, -1, 1.5, -2, 0.5, float32(math.NaN()), float32(math.Inf(1)), float32(math.Inf(-1))))
	require.NoError(t, err)

	var got []int16
	for off := HeaderSize; off < len(b); off += 2 {
		got = append(got, int16(binary.LittleEndian.Uint16(b[off:])))
	}
	require.Equal(t, []int16{0, 32767, -32767, 32767, -32767, 16384, 0, 32767, -32767}, got)

	// little-endian: low byte first
	require.Equal(t, []byte{0xff, 0x7f}, b[HeaderSize+2:HeaderSize+4])
	require.Equal(t, []byte{0x01, 0x80}, b[HeaderSize+4:HeaderSize+6])
}

func TestQuantize(t *testing.T) {
	assert.Equal(t, Quantize(1), Quantize(1.5))
	assert.Equal(t, Quantize(-1), Quantize(-2))
	assert.Equal(t, int16(0), Quantize(0))
	assert.Equal(t, int16(-16384), Quantize(-0.5))
}

func TestEncodeRoundTrip(t *testing.T) {
	const rate = 22050
	var s []float32
	for i := 0; i < 1000; i++ {
		v := float32(math.Sin(float64(i) / 10))
		s = append(s, v, -v/2)
	}

	b, err := Encode(samplesOf(2, rate, s...))
	require.NoError(t, err)

	require.True(t, wav.NewDecoder(bytes.NewReader(b)).IsValidFile())

	d := wav.NewDecoder(bytes.NewReader(b))
	buf, err := d.FullPCMBuffer()
	require.NoError(t, err)
	require.Equal(t, 2, buf.Format.NumChannels)
	require.Equal(t, rate, buf.Format.SampleRate)
	require.Equal(t, uint16(16), d.BitDepth)
	require.Len(t, buf.Data, len(s))
	for idx, v := range s {
		require.InDelta(t, float64(v), float64(buf.Data[idx])/32767, 1.0/32767, idx)
	}

	h, err := ReadHeader(b)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), h.FrameCount())
	dur, err := wav.NewDecoder(bytes.NewReader(b)).Duration()
	require.NoError(t, err)
	require.InDelta(t, dur.Seconds(), h.Duration().Seconds(), 0.001)
}

func TestEncodeErrors(t *testing.T) {
	_, err := Encode(nil)
	require.ErrorIs(t, err, ErrEmptyInput)

	_, err = Encode(samplesOf(1, 8000))
	require.ErrorIs(t, err, ErrEmptyInput)

	_, err = Encode(samplesOf(3, 8000, 0, 0, 0))
	require.ErrorIs(t, err, ErrInvalidFormat)

	_, err = Encode(samplesOf(1, 0, 0))
	require.ErrorIs(t, err, ErrInvalidFormat)

	_, err = Encode(samplesOf(2, 8000, 0, 0, 0))
	require.ErrorIs(t, err, ErrInvalidFormat)
}

func TestDataSizeLimit(t *testing.T) {
	size, err := dataSizeFor(maxDataSize / 2)
	require.NoError(t, err)
	require.LessOrEqual(t, uint64(size)+36, uint64(math.MaxUint32))

	_, err = dataSizeFor(maxDataSize/2 + 1)
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestEncodeFromExtract(t *testing.T) {
	ring := make([]float32, 200)
	for i := range ring {
		ring[i] = float32(i%2) - 0.5
	}
	extracted, err := ringcapture.Extract(
		ringcapture.RingBufferView{Samples: ring, Channels: 2},
		10, true,
		ringcapture.SessionRequest{SampleRate: 100, Channels: 2, TargetDuration: 0.3, BufferCapacityFrames: 100},
	)
	require.NoError(t, err)

	b, err := Encode(extracted)
	require.NoError(t, err)
	require.Len(t, b, HeaderSize+30*2*2)
}
