package portaudio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/gordonklaus/portaudio"
	"github.com/xaionaro-go/observability"
)

type PlayPCMStream struct {
	PortAudioStream *portaudio.Stream
	OutputBuffer    []byte
	Reader          io.Reader
	CancelFunc      context.CancelFunc
	WaitGroup       sync.WaitGroup
	closeOnce       sync.Once
	closeErr        error
}

func newPlayPCMStream(
	stream *portaudio.Stream,
	outputBuffer []byte,
) *PlayPCMStream {
	return &PlayPCMStream{
		PortAudioStream: stream,
		OutputBuffer:    outputBuffer,
	}
}

func (s *PlayPCMStream) init(
	ctx context.Context,
	rawReader io.Reader,
) error {
	s.Reader = rawReader
	ctx, s.CancelFunc = context.WithCancel(ctx)

	err := s.PortAudioStream.Start()
	if err != nil {
		return fmt.Errorf("unable to start the stream: %w", err)
	}

	s.WaitGroup.Add(1)
	observability.Go(ctx, func() {
		defer s.WaitGroup.Done()
		defer s.CancelFunc()
		s.playLoop(ctx)
	})
	return nil
}

// playLoop fills the device buffer from the reader until EOF. A short
// last chunk is padded with silence.
func (s *PlayPCMStream) playLoop(
	ctx context.Context,
) (_ret error) {
	logger.Debugf(ctx, "playLoop")
	defer func() { logger.Debugf(ctx, "/playLoop: %v", _ret) }()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, err := io.ReadFull(s.Reader, s.OutputBuffer)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, io.ErrUnexpectedEOF):
			clear(s.OutputBuffer[n:])
		case err != nil:
			return fmt.Errorf("unable to read: %w", err)
		}

		logger.Tracef(ctx, "Write")
		err = s.PortAudioStream.Write()
		logger.Tracef(ctx, "/Write: %v", err)
		if err != nil {
			return fmt.Errorf("unable to write: %w", err)
		}
		if n < len(s.OutputBuffer) {
			return nil
		}
	}
}

func (s *PlayPCMStream) Close() error {
	s.closeOnce.Do(func() {
		s.CancelFunc()
		s.closeErr = s.PortAudioStream.Abort()
	})
	return s.closeErr
}

func (s *PlayPCMStream) Drain() error {
	s.WaitGroup.Wait()
	return nil
}
