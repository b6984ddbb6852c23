package resampler

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/xaionaro-go/ringcapture/pkg/audio/types"
)

const (
	distanceStep = 10000
)

type Format struct {
	Channels   types.Channel
	SampleRate types.SampleRate
	PCMFormat  types.PCMFormat
}

type precalculated struct {
	inSampleSize    uint
	outSampleSize   uint
	inFrameSize     uint
	outFrameSize    uint
	outDistanceStep uint64
}

type Resampler struct {
	inReader    io.Reader
	inFormat    Format
	outFormat   Format
	inDistance  uint64
	outDistance uint64
	locker      sync.Mutex
	buffer      []byte
	precalculated
}

var _ io.Reader = (*Resampler)(nil)

func NewResampler(
	inFormat Format,
	inReader io.Reader,
	outFormat Format,
) (*Resampler, error) {
	r := &Resampler{
		inReader:  inReader,
		inFormat:  inFormat,
		outFormat: outFormat,
	}
	err := r.init()
	if err != nil {
		return nil, fmt.Errorf("unable to initialize a resampler from %#+v to %#+v: %w", inFormat, outFormat, err)
	}
	return r, nil
}

func (r *Resampler) init() error {
	if r.inFormat.PCMFormat.Size() == 0 || r.outFormat.PCMFormat.Size() == 0 {
		return fmt.Errorf("unsupported PCM format: %s -> %s", r.inFormat.PCMFormat, r.outFormat.PCMFormat)
	}
	if r.inFormat.SampleRate == 0 || r.outFormat.SampleRate == 0 {
		return fmt.Errorf("sample rate must be positive: %d -> %d", r.inFormat.SampleRate, r.outFormat.SampleRate)
	}
	if r.inFormat.Channels == 0 || r.outFormat.Channels == 0 {
		return fmt.Errorf("channel count must be positive: %d -> %d", r.inFormat.Channels, r.outFormat.Channels)
	}
	if r.inFormat.Channels != r.outFormat.Channels && r.inFormat.Channels != 1 && r.outFormat.Channels != 1 {
		return fmt.Errorf("do not know how to convert %d channels to %d", r.inFormat.Channels, r.outFormat.Channels)
	}

	r.inSampleSize = r.inFormat.PCMFormat.Size()
	r.outSampleSize = r.outFormat.PCMFormat.Size()
	r.inFrameSize = r.inSampleSize * uint(r.inFormat.Channels)
	r.outFrameSize = r.outSampleSize * uint(r.outFormat.Channels)

	sampleRateAdjust := float64(r.outFormat.SampleRate) / float64(r.inFormat.SampleRate)
	r.outDistanceStep = uint64(float64(distanceStep) / sampleRateAdjust)

	r.inDistance = 0
	r.outDistance = 0

	return nil
}

// convertFrame writes one output frame from one input frame: channels are
// copied one-to-one, a mono input is spread over all output channels and a
// mono output gets the average of all input channels.
func (r *Resampler) convertFrame(out, in []byte) {
	inChannels := uint(r.inFormat.Channels)
	outChannels := uint(r.outFormat.Channels)
	switch {
	case inChannels == outChannels:
		for ch := uint(0); ch < inChannels; ch++ {
			v := r.inFormat.PCMFormat.DecodeFloat64(in[ch*r.inSampleSize:])
			r.outFormat.PCMFormat.EncodeFloat64(out[ch*r.outSampleSize:], v)
		}
	case inChannels == 1:
		v := r.inFormat.PCMFormat.DecodeFloat64(in)
		for ch := uint(0); ch < outChannels; ch++ {
			r.outFormat.PCMFormat.EncodeFloat64(out[ch*r.outSampleSize:], v)
		}
	default:
		var sum float64
		for ch := uint(0); ch < inChannels; ch++ {
			sum += r.inFormat.PCMFormat.DecodeFloat64(in[ch*r.inSampleSize:])
		}
		r.outFormat.PCMFormat.EncodeFloat64(out, sum/float64(inChannels))
	}
}

func (r *Resampler) Read(p []byte) (int, error) {
	r.locker.Lock()
	defer r.locker.Unlock()

	maxOutFrames := uint64(len(p)) / uint64(r.outFrameSize)
	if maxOutFrames == 0 {
		return 0, nil
	}

	framesToRead := uint64(float64(maxOutFrames) * float64(r.inFormat.SampleRate) / float64(r.outFormat.SampleRate))
	if framesToRead == 0 {
		framesToRead = 1
	}
	bytesToRead := framesToRead * uint64(r.inFrameSize)
	if cap(r.buffer) < int(bytesToRead) {
		r.buffer = make([]byte, bytesToRead)
	} else {
		r.buffer = r.buffer[:bytesToRead]
	}
	n, err := io.ReadAtLeast(r.inReader, r.buffer, int(r.inFrameSize))
	if errors.Is(err, io.ErrUnexpectedEOF) {
		err = io.EOF
	}
	r.buffer = r.buffer[:n]

	if n%int(r.inFrameSize) != 0 {
		return 0, fmt.Errorf("read a number of bytes (%d) that is not a multiple of %d", n, r.inFrameSize)
	}
	framesRead := uint64(n) / uint64(r.inFrameSize)

	dstFrameIdx := uint64(0)
	srcFrameIdx := uint64(0)
	for srcFrameIdx < framesRead && dstFrameIdx < maxOutFrames {
		// skip input frames while the output is behind
		for r.inDistance < r.outDistance && srcFrameIdx < framesRead {
			srcFrameIdx++
			r.inDistance += distanceStep
		}
		if srcFrameIdx >= framesRead {
			break
		}

		in := r.buffer[srcFrameIdx*uint64(r.inFrameSize):]
		// repeat the input frame while the output is ahead
		for dstFrameIdx < maxOutFrames && r.outDistance <= r.inDistance {
			r.convertFrame(p[dstFrameIdx*uint64(r.outFrameSize):], in)
			dstFrameIdx++
			r.outDistance += r.outDistanceStep
		}

		srcFrameIdx++
		r.inDistance += distanceStep
	}

	if dstFrameIdx > 0 && errors.Is(err, io.EOF) {
		err = nil
	}
	return int(dstFrameIdx * uint64(r.outFrameSize)), err
}
