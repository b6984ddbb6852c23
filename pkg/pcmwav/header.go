package pcmwav

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/xaionaro-go/ringcapture/pkg/audio/types"
)

const (
	HeaderSize     = 44
	BitsPerSample  = 16
	BytesPerSample = BitsPerSample / 8

	formatPCM   = 1
	fmtChunkLen = 16

	// the RIFF chunk size is 32 bits and also covers the 36 header bytes
	// that follow it
	maxDataSize = 1<<32 - 1 - (HeaderSize - 8)
)

// Header is the canonical 44-byte header of a 16-bit PCM WAV file.
type Header struct {
	ChunkSize     uint32
	Channels      types.Channel
	SampleRate    types.SampleRate
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	DataSize      uint32
}

func newHeader(channels types.Channel, sampleRate types.SampleRate, dataSize uint32) Header {
	return Header{
		ChunkSize:     HeaderSize - 8 + dataSize,
		Channels:      channels,
		SampleRate:    sampleRate,
		ByteRate:      uint32(sampleRate) * uint32(channels) * BytesPerSample,
		BlockAlign:    uint16(channels) * BytesPerSample,
		BitsPerSample: BitsPerSample,
		DataSize:      dataSize,
	}
}

func (h Header) FrameCount() uint64 {
	if h.BlockAlign == 0 {
		return 0
	}
	return uint64(h.DataSize) / uint64(h.BlockAlign)
}

func (h Header) Duration() time.Duration {
	if h.SampleRate == 0 {
		return 0
	}
	return time.Duration(h.FrameCount()) * time.Second / time.Duration(h.SampleRate)
}

func (h Header) String() string {
	return fmt.Sprintf(
		"PCM S16LE, %d channel(s), %dHz, %d frames (%v)",
		h.Channels, h.SampleRate, h.FrameCount(), h.Duration(),
	)
}

func (h Header) put(b []byte) {
	copy(b[0:4], "RIFF")
	binary.LittleEndian.PutUint32(b[4:8], h.ChunkSize)
	copy(b[8:12], "WAVE")
	copy(b[12:16], "fmt ")
	binary.LittleEndian.PutUint32(b[16:20], fmtChunkLen)
	binary.LittleEndian.PutUint16(b[20:22], formatPCM)
	binary.LittleEndian.PutUint16(b[22:24], uint16(h.Channels))
	binary.LittleEndian.PutUint32(b[24:28], uint32(h.SampleRate))
	binary.LittleEndian.PutUint32(b[28:32], h.ByteRate)
	binary.LittleEndian.PutUint16(b[32:34], h.BlockAlign)
	binary.LittleEndian.PutUint16(b[34:36], h.BitsPerSample)
	copy(b[36:40], "data")
	binary.LittleEndian.PutUint32(b[40:44], h.DataSize)
}

// ReadHeader parses and validates the header of a file produced by Encode.
//
// Only the canonical layout is accepted: a "fmt " chunk of 16 bytes
// followed directly by the "data" chunk.
func ReadHeader(b []byte) (Header, error) {
	if len(b) < HeaderSize {
		return Header{}, fmt.Errorf("%w: expected at least %d bytes, got %d", ErrInvalidHeader, HeaderSize, len(b))
	}
	for _, tag := range []struct {
		offset int
		value  string
	}{
		{0, "RIFF"},
		{8, "WAVE"},
		{12, "fmt "},
		{36, "data"},
	} {
		if got := string(b[tag.offset : tag.offset+4]); got != tag.value {
			return Header{}, fmt.Errorf("%w: expected %q at offset %d, got %q", ErrInvalidHeader, tag.value, tag.offset, got)
		}
	}
	if v := binary.LittleEndian.Uint32(b[16:20]); v != fmtChunkLen {
		return Header{}, fmt.Errorf("%w: unexpected fmt chunk size %d", ErrInvalidHeader, v)
	}
	if v := binary.LittleEndian.Uint16(b[20:22]); v != formatPCM {
		return Header{}, fmt.Errorf("%w: audio format %d is not PCM", ErrInvalidHeader, v)
	}

	h := Header{
		ChunkSize:     binary.LittleEndian.Uint32(b[4:8]),
		Channels:      types.Channel(binary.LittleEndian.Uint16(b[22:24])),
		SampleRate:    types.SampleRate(binary.LittleEndian.Uint32(b[24:28])),
		ByteRate:      binary.LittleEndian.Uint32(b[28:32]),
		BlockAlign:    binary.LittleEndian.Uint16(b[32:34]),
		BitsPerSample: binary.LittleEndian.Uint16(b[34:36]),
		DataSize:      binary.LittleEndian.Uint32(b[40:44]),
	}
	if h.BitsPerSample != BitsPerSample {
		return Header{}, fmt.Errorf("%w: %d bits per sample, only %d is supported", ErrInvalidHeader, h.BitsPerSample, BitsPerSample)
	}
	if h.Channels == 0 || h.SampleRate == 0 {
		return Header{}, fmt.Errorf("%w: channels:%d, sample rate:%d", ErrInvalidHeader, h.Channels, h.SampleRate)
	}
	if expected := newHeader(h.Channels, h.SampleRate, h.DataSize); expected != h {
		return Header{}, fmt.Errorf("%w: inconsistent fields: %+v, expected %+v", ErrInvalidHeader, h, expected)
	}
	if h.DataSize%uint32(h.BlockAlign) != 0 {
		return Header{}, fmt.Errorf("%w: data size %d is not a multiple of block align %d", ErrInvalidHeader, h.DataSize, h.BlockAlign)
	}
	return h, nil
}

// Data returns the data section of a file that has header h.
func (h Header) Data(b []byte) ([]byte, error) {
	end := uint64(HeaderSize) + uint64(h.DataSize)
	if uint64(len(b)) < end {
		return nil, fmt.Errorf("%w: the header declares %d data bytes, but only %d are present", ErrInvalidHeader, h.DataSize, len(b)-HeaderSize)
	}
	return b[HeaderSize:end], nil
}
