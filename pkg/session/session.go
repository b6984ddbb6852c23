// Package session runs one bounded recording: it starts the capture,
// decides when the recording ends, and turns the ring buffer into a WAV
// file.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/ringcapture/pkg/metrics"
	"github.com/xaionaro-go/ringcapture/pkg/pcmwav"
	"github.com/xaionaro-go/ringcapture/pkg/ringcapture"
)

type StopReason int

const (
	StopReasonUndefined = StopReason(iota)
	StopReasonDuration
	StopReasonMaxDuration
	StopReasonUser
)

func (r StopReason) String() string {
	switch r {
	case StopReasonUndefined:
		return "<undefined>"
	case StopReasonDuration:
		return "duration"
	case StopReasonMaxDuration:
		return "max_duration"
	case StopReasonUser:
		return "user"
	default:
		return fmt.Sprintf("<unknown_%d>", int(r))
	}
}

type Result struct {
	WAV        []byte
	Samples    *ringcapture.ExtractedSamples
	Elapsed    time.Duration
	StopReason StopReason
	Truncated  bool
}

// Observation is a write position seen by the monitor.
type Observation struct {
	Time     time.Time
	Position uint64

	// FramesAdvanced is how many frames the write position moved since
	// the session started, as seen by polling. It is for diagnostics
	// only: the session length is measured by the clock.
	FramesAdvanced uint64
}

type Option func(*options)

type options struct {
	clock   Clock
	metrics *metrics.Metrics
}

// WithClock sets the clock the session is measured and timed by: the
// Duration, MaxDuration and StartTimeout deadlines fire according to it.
// The write position is still polled every PollInterval of wall time.
func WithClock(clock Clock) Option {
	return func(o *options) {
		o.clock = clock
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

var _ io.Closer = (*Session)(nil)

type Session struct {
	cfg       Config
	capacity  uint32
	handle    CaptureHandle
	clock     Clock
	metrics   *metrics.Metrics
	startedAt time.Time

	durationCh    <-chan time.Time
	maxDurationCh <-chan time.Time
	timers        []Timer

	stopCh   chan struct{}
	stopOnce sync.Once
	consumed atomic.Bool

	cancelMonitor context.CancelFunc
	monitorDone   chan struct{}

	observedLocker sync.Mutex
	observed       Observation
}

// Start starts the capture and returns once the capture is confirmed to
// produce data. If no data shows up within cfg.StartTimeout, the capture
// is stopped and ringcapture.ErrNoDataObserved is returned.
func Start(
	ctx context.Context,
	source CaptureSource,
	cfg Config,
	opts ...Option,
) (_ret *Session, _err error) {
	logger.Debugf(ctx, "Start(%#+v)", cfg)
	defer func() { logger.Debugf(ctx, "/Start(%#+v): %v", cfg, _err) }()

	o := options{clock: clockReal{}}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	capacity := cfg.BufferCapacityFrames()
	handle, err := source.StartCapture(ctx, cfg.SampleRate, cfg.Channels, capacity)
	if err != nil {
		o.metrics.ObserveSession(metrics.OutcomeError, 0, 0, 0, false)
		return nil, fmt.Errorf("unable to start the capture: %w", err)
	}

	initialPosition, startedAt, err := waitForData(ctx, handle, cfg, o.clock)
	if err != nil {
		var mErr *multierror.Error
		mErr = multierror.Append(mErr, err)
		if stopErr := handle.Stop(); stopErr != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to stop the capture: %w", stopErr))
		}
		o.metrics.ObserveSession(outcomeOf(err), 0, 0, 0, false)
		return nil, mErr.ErrorOrNil()
	}
	logger.Debugf(ctx, "the capture is running")

	s := &Session{
		cfg:       cfg,
		capacity:  capacity,
		handle:    handle,
		clock:     o.clock,
		metrics:   o.metrics,
		startedAt: startedAt,
		stopCh:    make(chan struct{}),
		observed: Observation{
			Time:     startedAt,
			Position: initialPosition,
		},
	}
	if cfg.Duration > 0 {
		t := o.clock.NewTimer(cfg.Duration)
		s.timers = append(s.timers, t)
		s.durationCh = t.C()
	}
	if cfg.MaxDuration > 0 {
		t := o.clock.NewTimer(cfg.MaxDuration)
		s.timers = append(s.timers, t)
		s.maxDurationCh = t.C()
	}

	monitorCtx, cancelFn := context.WithCancel(ctx)
	s.cancelMonitor = cancelFn
	s.monitorDone = make(chan struct{})
	observability.Go(monitorCtx, func() {
		defer close(s.monitorDone)
		s.monitorLoop(monitorCtx)
	})
	return s, nil
}

func waitForData(
	ctx context.Context,
	handle CaptureHandle,
	cfg Config,
	clock Clock,
) (uint64, time.Time, error) {
	initial := handle.CurrentWritePosition()

	deadline := clock.NewTimer(cfg.StartTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return 0, time.Time{}, ctx.Err()
		case <-deadline.C():
			return 0, time.Time{}, fmt.Errorf("%w: the write position stayed at %d for %v", ringcapture.ErrNoDataObserved, initial, cfg.StartTimeout)
		case <-ticker.C:
		}
		if pos := handle.CurrentWritePosition(); pos != initial {
			return pos, clock.Now(), nil
		}
	}
}

func (s *Session) monitorLoop(ctx context.Context) {
	logger.Tracef(ctx, "monitorLoop")
	defer logger.Tracef(ctx, "/monitorLoop")

	ticker := time.NewTicker(s.cfg.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		pos := s.handle.CurrentWritePosition()
		now := s.clock.Now()

		s.observedLocker.Lock()
		prev := s.observed
		advanced := (pos + uint64(s.capacity) - prev.Position%uint64(s.capacity)) % uint64(s.capacity)
		s.observed = Observation{
			Time:           now,
			Position:       pos,
			FramesAdvanced: prev.FramesAdvanced + advanced,
		}
		s.observedLocker.Unlock()
		logger.Tracef(ctx, "write position: %d (+%d)", pos, advanced)
	}
}

// LastObserved returns the latest write position seen by the monitor.
func (s *Session) LastObserved() Observation {
	s.observedLocker.Lock()
	defer s.observedLocker.Unlock()
	return s.observed
}

func (s *Session) StartedAt() time.Time {
	return s.startedAt
}

// Stop asks the session to end. It is safe to call it multiple times and
// concurrently; Wait returns the result.
func (s *Session) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
}

// Wait blocks until the session ends and returns the recording.
// A session may be waited for only once.
func (s *Session) Wait(ctx context.Context) (_ret *Result, _err error) {
	logger.Debugf(ctx, "Wait")
	defer func() { logger.Debugf(ctx, "/Wait: %v", _err) }()

	if !s.consumed.CompareAndSwap(false, true) {
		return nil, ErrAlreadyConsumed
	}
	defer s.release()

	var reason StopReason
	select {
	case <-ctx.Done():
		err := ctx.Err()
		var mErr *multierror.Error
		mErr = multierror.Append(mErr, err)
		if stopErr := s.handle.Stop(); stopErr != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to stop the capture: %w", stopErr))
		}
		s.metrics.ObserveSession(metrics.OutcomeCanceled, 0, 0, 0, false)
		return nil, mErr.ErrorOrNil()
	case <-s.durationCh:
		reason = StopReasonDuration
	case <-s.maxDurationCh:
		reason = StopReasonMaxDuration
	case <-s.stopCh:
		reason = StopReasonUser
	}
	logger.Debugf(ctx, "stopping the session, reason: %v", reason)

	result, err := s.finish(ctx, reason)
	if err != nil {
		s.metrics.ObserveSession(outcomeOf(err), 0, 0, 0, false)
		return nil, err
	}
	s.metrics.ObserveSession(
		metrics.OutcomeSuccess,
		result.Elapsed.Seconds(),
		result.Samples.FrameCount(),
		len(result.WAV),
		result.Truncated,
	)
	return result, nil
}

// Close releases a session that is not going to be waited for: it stops
// the capture and the monitor. It is a no-op once Wait was called.
func (s *Session) Close() (_err error) {
	if !s.consumed.CompareAndSwap(false, true) {
		return nil
	}
	defer s.release()

	s.metrics.ObserveSession(metrics.OutcomeCanceled, 0, 0, 0, false)
	if err := s.handle.Stop(); err != nil {
		return fmt.Errorf("unable to stop the capture: %w", err)
	}
	return nil
}

func (s *Session) finish(ctx context.Context, reason StopReason) (*Result, error) {
	// the snapshot must be taken while the producer is still alive
	snapshot := s.handle.Snapshot()
	elapsed := s.clock.Now().Sub(s.startedAt)
	if err := s.handle.Stop(); err != nil {
		logger.Errorf(ctx, "unable to stop the capture: %v", err)
	}
	if counter, ok := s.handle.(interface{ BytesReceived() uint64 }); ok {
		s.metrics.ObserveCapturedBytes(counter.BytesReceived())
	}
	if s.cfg.MaxDuration > 0 && elapsed > s.cfg.MaxDuration {
		elapsed = s.cfg.MaxDuration
	}
	logger.Debugf(ctx, "elapsed: %v, write head: %d, frames written: %d", elapsed, snapshot.WriteHead, snapshot.View.FramesWritten)
	if elapsed <= 0 {
		return nil, fmt.Errorf("%w: the session was stopped right after it started", ringcapture.ErrEmptyCapture)
	}

	samples, err := ringcapture.Extract(
		snapshot.View,
		snapshot.WriteHead,
		snapshot.HasData,
		ringcapture.SessionRequest{
			SampleRate:           s.cfg.SampleRate,
			Channels:             s.cfg.Channels,
			TargetDuration:       ringcapture.TargetDurationFrom(elapsed),
			BufferCapacityFrames: s.capacity,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("unable to extract the session from the ring buffer: %w", err)
	}
	if samples.Truncated {
		logger.Warnf(ctx, "the session is truncated: requested %d frames, extracted %d", samples.RequestedFrames, samples.FrameCount())
	}

	wav, err := pcmwav.Encode(samples)
	if err != nil {
		return nil, fmt.Errorf("unable to encode the session: %w", err)
	}

	return &Result{
		WAV:        wav,
		Samples:    samples,
		Elapsed:    elapsed,
		StopReason: reason,
		Truncated:  samples.Truncated,
	}, nil
}

func (s *Session) release() {
	for _, t := range s.timers {
		t.Stop()
	}
	s.cancelMonitor()
	<-s.monitorDone
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ringcapture.ErrNoDataObserved):
		return metrics.OutcomeNoData
	case errors.Is(err, ringcapture.ErrEmptyCapture):
		return metrics.OutcomeEmpty
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return metrics.OutcomeCanceled
	default:
		return metrics.OutcomeError
	}
}
