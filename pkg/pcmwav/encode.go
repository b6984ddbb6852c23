// Package pcmwav serializes extracted samples into a 16-bit PCM WAV file
// with the canonical 44-byte header.
package pcmwav

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/xaionaro-go/ringcapture/pkg/ringcapture"
)

// Encode returns the complete WAV file for the given samples.
//
// Samples are clamped to [-1, 1] (NaN is treated as silence) and scaled
// by 32767, so the output is symmetric and never wraps around.
func Encode(samples *ringcapture.ExtractedSamples) ([]byte, error) {
	if samples == nil || len(samples.Samples) == 0 {
		return nil, ErrEmptyInput
	}
	if samples.Channels != 1 && samples.Channels != 2 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidFormat, samples.Channels)
	}
	if samples.SampleRate == 0 {
		return nil, fmt.Errorf("%w: zero sample rate", ErrInvalidFormat)
	}
	if len(samples.Samples)%int(samples.Channels) != 0 {
		return nil, fmt.Errorf("%w: %d samples is not a multiple of %d channels", ErrInvalidFormat, len(samples.Samples), samples.Channels)
	}
	dataSize, err := dataSizeFor(uint64(len(samples.Samples)))
	if err != nil {
		return nil, err
	}

	out := make([]byte, HeaderSize+int(dataSize))
	newHeader(samples.Channels, samples.SampleRate, dataSize).put(out[:HeaderSize])
	data := out[HeaderSize:]
	for idx, v := range samples.Samples {
		binary.LittleEndian.PutUint16(data[idx*BytesPerSample:], uint16(Quantize(v)))
	}
	return out, nil
}

func dataSizeFor(sampleCount uint64) (uint32, error) {
	if sampleCount > maxDataSize/BytesPerSample {
		return 0, fmt.Errorf("%w: %d samples", ErrTooLarge, sampleCount)
	}
	return uint32(sampleCount * BytesPerSample), nil
}

// Quantize converts a float sample into a signed 16-bit one.
func Quantize(v float32) int16 {
	f := float64(v)
	switch {
	case math.IsNaN(f):
		return 0
	case f > 1:
		f = 1
	case f < -1:
		f = -1
	}
	return int16(math.Round(f * math.MaxInt16))
}
