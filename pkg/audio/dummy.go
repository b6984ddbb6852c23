package audio

import (
	"context"
	"fmt"
	"io"
	"time"
)

// RecorderPCMDummy is the fallback used when no recording device is
// available: it never writes anything, so a session started on it ends
// with ringcapture.ErrNoDataObserved.
type RecorderPCMDummy struct{}

var _ RecorderPCM = RecorderPCMDummy{}

func (RecorderPCMDummy) Close() error {
	return nil
}

func (RecorderPCMDummy) Ping(context.Context) error {
	return nil
}

func (RecorderPCMDummy) RecordPCM(
	ctx context.Context,
	sampleRate SampleRate,
	channels Channel,
	format PCMFormat,
	writer io.Writer,
) (RecordStream, error) {
	return StreamDummy{}, nil
}

// PlayerPCMDummy is the fallback used when no playback device is
// available: the played data is read and discarded.
type PlayerPCMDummy struct{}

var _ PlayerPCM = PlayerPCMDummy{}

func (PlayerPCMDummy) Close() error {
	return nil
}

func (PlayerPCMDummy) Ping(context.Context) error {
	return nil
}

func (PlayerPCMDummy) PlayPCM(
	ctx context.Context,
	sampleRate SampleRate,
	channels Channel,
	format PCMFormat,
	bufferSize time.Duration,
	reader io.Reader,
) (PlayStream, error) {
	return &discardStream{reader: reader}, nil
}

type discardStream struct {
	reader io.Reader
}

var _ PlayStream = (*discardStream)(nil)

// Drain consumes the rest of the played data.
func (s *discardStream) Drain() error {
	if _, err := io.Copy(io.Discard, s.reader); err != nil {
		return fmt.Errorf("unable to drain the data: %w", err)
	}
	return nil
}

func (s *discardStream) Close() error {
	return nil
}

type StreamDummy struct{}

var _ Stream = StreamDummy{}

func (StreamDummy) Drain() error {
	return nil
}

func (StreamDummy) Close() error {
	return nil
}
