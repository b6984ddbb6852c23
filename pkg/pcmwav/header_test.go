package pcmwav

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestReadHeader(t *testing.T) {
	b, err := Encode(samplesOf(2, 48000, make([]float32, 96000)...))
	require.NoError(t, err)

	h, err := ReadHeader(b)
	require.NoError(t, err)
	require.Equal(t, uint64(48000), h.FrameCount())
	require.Equal(t, time.Second, h.Duration())
	require.Equal(t, uint16(4), h.BlockAlign)

	data, err := h.Data(b)
	require.NoError(t, err)
	require.Len(t, data, 96000*2)

	_, err = h.Data(b[:100])
	require.ErrorIs(t, err, ErrInvalidHeader)
}

func TestReadHeaderInvalid(t *testing.T) {
	valid, err := Encode(samplesOf(1, 8000, 0, 0))
	require.NoError(t, err)

	corrupt := func(fn func(b []byte)) []byte {
		b := append([]byte{}, valid...)
		fn(b)
		return b
	}

	for name, b := range map[string][]byte{
		"Short":        valid[:43],
		"NotRIFF":      corrupt(func(b []byte) { copy(b, "RIFX") }),
		"NotWAVE":      corrupt(func(b []byte) { copy(b[8:], "AVI ") }),
		"NoData":       corrupt(func(b []byte) { copy(b[36:], "LIST") }),
		"NotPCM":       corrupt(func(b []byte) { binary.LittleEndian.PutUint16(b[20:], 3) }),
		"FmtSize":      corrupt(func(b []byte) { binary.LittleEndian.PutUint32(b[16:], 18) }),
		"Bits":         corrupt(func(b []byte) { binary.LittleEndian.PutUint16(b[34:], 24) }),
		"ZeroChannels": corrupt(func(b []byte) { binary.LittleEndian.PutUint16(b[22:], 0) }),
		"ByteRate":     corrupt(func(b []byte) { binary.LittleEndian.PutUint32(b[28:], 1) }),
		"ChunkSize":    corrupt(func(b []byte) { binary.LittleEndian.PutUint32(b[4:], 1) }),
		"OddData":      corrupt(func(b []byte) { binary.LittleEndian.PutUint32(b[40:], 3); binary.LittleEndian.PutUint32(b[4:], 39) }),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ReadHeader(b)
			require.ErrorIs(t, err, ErrInvalidHeader)
		})
	}
}
