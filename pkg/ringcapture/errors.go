package ringcapture

import (
	"errors"
)

var (
	// ErrInvalidDuration means the requested duration is not a positive
	// finite number of seconds.
	ErrInvalidDuration = errors.New("invalid duration")

	// ErrInvalidSampleRate means the sample rate is zero.
	ErrInvalidSampleRate = errors.New("invalid sample rate")

	// ErrInvalidChannels means the channel count is neither 1 nor 2.
	ErrInvalidChannels = errors.New("invalid channel count")

	// ErrInconsistentView means the ring buffer view does not match the
	// request (channel count, capacity, or a sample count that is not
	// a whole number of frames).
	ErrInconsistentView = errors.New("ring buffer view is inconsistent with the request")

	// ErrNoDataObserved means the producer never wrote a single frame.
	ErrNoDataObserved = errors.New("no data observed")

	// ErrEmptyCapture means the window is empty after clamping.
	ErrEmptyCapture = errors.New("empty capture")
)
