package session

import (
	"context"
	"time"

	"github.com/xaionaro-go/ringcapture/pkg/audio/types"
	"github.com/xaionaro-go/ringcapture/pkg/capture"
)

type CaptureHandle interface {
	CurrentWritePosition() uint64
	Snapshot() capture.Snapshot
	Stop() error
}

type CaptureSource interface {
	StartCapture(
		ctx context.Context,
		sampleRate types.SampleRate,
		channels types.Channel,
		capacityFrames uint32,
	) (CaptureHandle, error)
}

// FromSource makes a CaptureSource out of a recorder-backed source.
func FromSource(src *capture.Source) CaptureSource {
	return captureSource{Source: src}
}

type captureSource struct {
	*capture.Source
}

func (s captureSource) StartCapture(
	ctx context.Context,
	sampleRate types.SampleRate,
	channels types.Channel,
	capacityFrames uint32,
) (CaptureHandle, error) {
	h, err := s.Source.Start(ctx, sampleRate, channels, capacityFrames)
	if err != nil {
		return nil, err
	}
	return h, nil
}

type Clock interface {
	Now() time.Time
	NewTimer(d time.Duration) Timer
}

type Timer interface {
	C() <-chan time.Time
	Stop() bool
}

type clockReal struct{}

func (clockReal) Now() time.Time {
	return time.Now()
}

func (clockReal) NewTimer(d time.Duration) Timer {
	return timerReal{timer: time.NewTimer(d)}
}

type timerReal struct {
	timer *time.Timer
}

func (t timerReal) C() <-chan time.Time {
	return t.timer.C
}

func (t timerReal) Stop() bool {
	return t.timer.Stop()
}
