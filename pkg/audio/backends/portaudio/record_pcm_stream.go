package portaudio

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/gordonklaus/portaudio"
	"github.com/xaionaro-go/observability"
)

const (
	RecordBufferSize = time.Millisecond * 100
)

// RecordPCMStream reads the device buffer in one goroutine and hands a copy
// of it to the writer in another, so a slow writer does not stall the device
// for longer than one buffer.
type RecordPCMStream struct {
	PortAudioStream  *portaudio.Stream
	InputBuffer      []byte
	OutputBuffer     []byte
	Writer           io.Writer
	CancelFunc       context.CancelFunc
	WaitGroup        sync.WaitGroup
	StartWritingChan chan struct{}
	StartReadingChan chan struct{}
	closeOnce        sync.Once
	closeErr         error
}

func newRecordPCMStream(
	stream *portaudio.Stream,
	inputBuffer []byte,
) *RecordPCMStream {
	return &RecordPCMStream{
		PortAudioStream:  stream,
		InputBuffer:      inputBuffer,
		OutputBuffer:     make([]byte, len(inputBuffer)),
		StartWritingChan: make(chan struct{}),
		StartReadingChan: make(chan struct{}),
	}
}

func (s *RecordPCMStream) init(
	ctx context.Context,
	writer io.Writer,
) error {
	s.Writer = writer
	ctx, s.CancelFunc = context.WithCancel(ctx)

	err := s.PortAudioStream.Start()
	if err != nil {
		return fmt.Errorf("unable to start the stream: %w", err)
	}

	s.WaitGroup.Add(1)
	observability.Go(ctx, func() {
		defer s.WaitGroup.Done()
		<-ctx.Done()
		s.Close()
	})
	s.WaitGroup.Add(1)
	observability.Go(ctx, func() {
		defer s.WaitGroup.Done()
		defer s.CancelFunc()
		s.readerLoop(ctx)
	})
	s.WaitGroup.Add(1)
	observability.Go(ctx, func() {
		defer s.WaitGroup.Done()
		defer s.CancelFunc()
		s.writerLoop(ctx)
	})
	return nil
}

func (s *RecordPCMStream) readerLoop(
	ctx context.Context,
) (_ret error) {
	logger.Debugf(ctx, "readerLoop")
	defer func() { logger.Debugf(ctx, "/readerLoop: %v", _ret) }()
	defer close(s.StartWritingChan)

	for {
		logger.Tracef(ctx, "Read")
		err := s.PortAudioStream.Read()
		logger.Tracef(ctx, "/Read: %v", err)
		if err != nil {
			return fmt.Errorf("unable to read: %w", err)
		}
		select {
		case s.StartWritingChan <- struct{}{}:
		case <-s.StartReadingChan:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
		select {
		case <-s.StartReadingChan:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (s *RecordPCMStream) writerLoop(
	ctx context.Context,
) (_ret error) {
	logger.Debugf(ctx, "writerLoop")
	defer func() { logger.Debugf(ctx, "/writerLoop: %v", _ret) }()
	defer close(s.StartReadingChan)

	for {
		if _, ok := <-s.StartWritingChan; !ok {
			return nil
		}
		copy(s.OutputBuffer, s.InputBuffer)
		select {
		case s.StartReadingChan <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}

		logger.Tracef(ctx, "Write")
		n, err := s.Writer.Write(s.OutputBuffer)
		logger.Tracef(ctx, "/Write: %d %v", n, err)
		if err != nil {
			return fmt.Errorf("unable to write: %w", err)
		}
		if n != len(s.OutputBuffer) {
			return fmt.Errorf("invalid write length: %d != %d", n, len(s.OutputBuffer))
		}
	}
}

func (s *RecordPCMStream) Close() error {
	s.closeOnce.Do(func() {
		s.CancelFunc()
		s.closeErr = s.PortAudioStream.Abort()
	})
	return s.closeErr
}
