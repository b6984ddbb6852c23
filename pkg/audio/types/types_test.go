package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPCMFormatSize(t *testing.T) {
	for f := PCMFormatU8; f < EndOfPCMFormat; f++ {
		require.NotZero(t, f.Size(), f.String())
	}
	require.Zero(t, PCMFormatUndefined.Size())
}

func TestPCMFormatEncodeDecode(t *testing.T) {
	for f := PCMFormatU8; f < EndOfPCMFormat; f++ {
		f := f
		t.Run(f.String(), func(t *testing.T) {
			buf := make([]byte, f.Size())
			for _, v := range []float64{-1, -0.5, 0, 0.25, 0.5} {
				f.EncodeFloat64(buf, v)
				assert.InDelta(t, v, f.DecodeFloat64(buf), 0.01)
			}
		})
	}
}

func TestPCMFormatEncodeSaturates(t *testing.T) {
	buf := make([]byte, 2)
	PCMFormatS16LE.EncodeFloat64(buf, 1)
	require.Equal(t, []byte{0xff, 0x7f}, buf)
	PCMFormatS16LE.EncodeFloat64(buf, -3)
	require.Equal(t, []byte{0x00, 0x80}, buf)
}

func TestEncodingPCMBytesForDuration(t *testing.T) {
	enc := EncodingPCM{PCMFormat: PCMFormatS16LE, SampleRate: 48000}
	require.Equal(t, uint64(9600), enc.BytesForDuration(100_000_000))
	require.Equal(t, uint(2), enc.BytesPerSample())
}

func TestParsePCMFormat(t *testing.T) {
	for f := PCMFormatU8; f < EndOfPCMFormat; f++ {
		parsed, err := ParsePCMFormat(f.String())
		require.NoError(t, err)
		require.Equal(t, f, parsed)
	}
	_, err := ParsePCMFormat("mp3")
	require.Error(t, err)
}
