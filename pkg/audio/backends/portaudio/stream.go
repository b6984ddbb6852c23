package portaudio

import (
	"context"
	"fmt"
	"time"
	"unsafe"

	"github.com/gordonklaus/portaudio"
	"github.com/xaionaro-go/ringcapture/pkg/audio/types"
)

type sampleType interface {
	uint8 | int16 | int32 | int64 | float32 | float64
}

// openStream opens the default device with an interleaved buffer of
// bufferSize worth of frames and returns the buffer as raw bytes.
func openStream[T sampleType](
	sampleRate types.SampleRate,
	inputChannels types.Channel,
	outputChannels types.Channel,
	bufferSize time.Duration,
) (*portaudio.Stream, []byte, error) {
	framesPerBuffer := int(bufferSize.Seconds() * float64(sampleRate))
	if framesPerBuffer <= 0 {
		return nil, nil, fmt.Errorf("buffer size %v is too small for sample rate %d", bufferSize, sampleRate)
	}
	channels := max(inputChannels, outputChannels)

	buf := make([]T, framesPerBuffer*int(channels))
	var (
		stream *portaudio.Stream
		err    error
	)
	if outputChannels > 0 {
		stream, err = portaudio.OpenDefaultStream(0, int(outputChannels), float64(sampleRate), framesPerBuffer, &buf)
	} else {
		stream, err = portaudio.OpenDefaultStream(int(inputChannels), 0, float64(sampleRate), framesPerBuffer, buf)
	}
	if err != nil {
		return nil, nil, err
	}

	var sample T
	ptr := unsafe.SliceData(buf)
	bytesBuf := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), len(buf)*int(unsafe.Sizeof(sample)))
	return stream, bytesBuf, nil
}

func openStreamForFormat(
	ctx context.Context,
	format types.PCMFormat,
	sampleRate types.SampleRate,
	inputChannels types.Channel,
	outputChannels types.Channel,
	bufferSize time.Duration,
) (*portaudio.Stream, []byte, error) {
	switch format {
	case types.PCMFormatU8:
		return openStream[uint8](sampleRate, inputChannels, outputChannels, bufferSize)
	case types.PCMFormatS16LE:
		return openStream[int16](sampleRate, inputChannels, outputChannels, bufferSize)
	case types.PCMFormatS32LE:
		return openStream[int32](sampleRate, inputChannels, outputChannels, bufferSize)
	case types.PCMFormatS64LE:
		return openStream[int64](sampleRate, inputChannels, outputChannels, bufferSize)
	case types.PCMFormatFloat32LE:
		return openStream[float32](sampleRate, inputChannels, outputChannels, bufferSize)
	case types.PCMFormatFloat64LE:
		return openStream[float64](sampleRate, inputChannels, outputChannels, bufferSize)
	default:
		return nil, nil, fmt.Errorf("do not know how to start a stream for PCM format %s", format)
	}
}
