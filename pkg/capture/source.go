// Package capture runs a recorder backend into a ring of decoded frames.
package capture

import (
	"context"
	"fmt"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/datacounter"
	"github.com/xaionaro-go/ringcapture/pkg/audio/types"
)

type Source struct {
	Recorder types.RecorderPCM

	// Format is the PCM format requested from the recorder.
	// PCMFormatFloat32LE is used if it is not set.
	Format types.PCMFormat
}

func NewSource(recorder types.RecorderPCM, format types.PCMFormat) *Source {
	return &Source{
		Recorder: recorder,
		Format:   format,
	}
}

// Handle is a running capture.
type Handle struct {
	ring       *Ring
	stream     types.RecordStream
	counter    *datacounter.WriterCounter
	sampleRate types.SampleRate

	stopOnce sync.Once
	stopErr  error
}

func (s *Source) Start(
	ctx context.Context,
	sampleRate types.SampleRate,
	channels types.Channel,
	capacityFrames uint32,
) (_ret *Handle, _err error) {
	logger.Debugf(ctx, "Start(%d, %d, %d)", sampleRate, channels, capacityFrames)
	defer func() { logger.Debugf(ctx, "/Start(%d, %d, %d): %v", sampleRate, channels, capacityFrames, _err) }()

	if s.Recorder == nil {
		return nil, fmt.Errorf("no recorder is set")
	}
	format := s.Format
	if format == types.PCMFormatUndefined {
		format = types.PCMFormatFloat32LE
	}

	ring, err := NewRing(format, channels, capacityFrames)
	if err != nil {
		return nil, fmt.Errorf("unable to initialize the ring buffer: %w", err)
	}

	counter := datacounter.NewWriterCounter(ring)
	stream, err := s.Recorder.RecordPCM(ctx, sampleRate, channels, format, counter)
	if err != nil {
		return nil, fmt.Errorf("unable to start recording: %w", err)
	}

	return &Handle{
		ring:       ring,
		stream:     stream,
		counter:    counter,
		sampleRate: sampleRate,
	}, nil
}

func (h *Handle) Ring() *Ring {
	return h.ring
}

func (h *Handle) SampleRate() types.SampleRate {
	return h.sampleRate
}

// CurrentWritePosition returns the wrapped write head.
func (h *Handle) CurrentWritePosition() uint64 {
	return h.ring.Position()
}

func (h *Handle) Snapshot() Snapshot {
	return h.ring.Snapshot()
}

// BytesReceived returns the amount of raw PCM bytes received from the
// recorder.
func (h *Handle) BytesReceived() uint64 {
	return h.counter.Count()
}

// Stop stops the recording. It is safe to call it multiple times.
func (h *Handle) Stop() error {
	h.stopOnce.Do(func() {
		if err := h.stream.Close(); err != nil {
			h.stopErr = fmt.Errorf("unable to close the record stream: %w", err)
		}
	})
	return h.stopErr
}
