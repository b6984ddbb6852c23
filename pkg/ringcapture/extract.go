// Package ringcapture extracts the frames of a recording session from a
// ring buffer that a capture device keeps writing into.
//
// The package is pure: it does no I/O, keeps no state and never looks at
// the clock. The duration of the session is measured by the caller.
package ringcapture

import (
	"fmt"
	"math"
)

// Extract copies the last req.TargetDuration seconds of audio that ends
// right before writeHead out of the ring.
//
// writeHead is the position the producer writes the next frame to; it may
// be either already wrapped or an absolute frame counter. Position 0 is
// ambiguous (nothing written yet vs. wrapped exactly to 0), so the caller
// must tell whether any data was ever written via hasAnyData.
//
// A request longer than the ring (or than what was ever written, if
// view.FramesWritten is known) is clamped and reported through
// ExtractedSamples.Truncated.
func Extract(
	view RingBufferView,
	writeHead uint64,
	hasAnyData bool,
	req SessionRequest,
) (*ExtractedSamples, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if view.Channels != req.Channels {
		return nil, fmt.Errorf("%w: the view has %d channels, while %d were requested", ErrInconsistentView, view.Channels, req.Channels)
	}
	if len(view.Samples)%int(view.Channels) != 0 {
		return nil, fmt.Errorf("%w: %d samples is not a multiple of %d channels", ErrInconsistentView, len(view.Samples), view.Channels)
	}
	capacity := view.Capacity()
	if capacity != uint64(req.BufferCapacityFrames) {
		return nil, fmt.Errorf("%w: the view holds %d frames, while the request says %d", ErrInconsistentView, capacity, req.BufferCapacityFrames)
	}
	if capacity == 0 {
		return nil, fmt.Errorf("%w: the ring buffer has zero capacity", ErrEmptyCapture)
	}

	if writeHead == 0 && !hasAnyData {
		return nil, ErrNoDataObserved
	}
	head := writeHead % capacity

	requested := float64(req.SampleRate) * req.TargetDuration
	var requestedFrames, targetFrames uint64
	truncated := false
	if requested >= float64(capacity) {
		// comparing before converting keeps huge requests from overflowing
		targetFrames = capacity
		requestedFrames = math.MaxUint64
		if rounded := math.Round(requested); rounded < math.MaxUint64 {
			requestedFrames = uint64(rounded)
		}
		truncated = requestedFrames > capacity
	} else {
		requestedFrames = uint64(math.Round(requested))
		targetFrames = requestedFrames
	}
	if view.FramesWritten > 0 && view.FramesWritten < targetFrames {
		targetFrames = view.FramesWritten
		truncated = true
	}
	if targetFrames == 0 {
		return nil, fmt.Errorf("%w: %fs at %dHz is less than a frame", ErrEmptyCapture, req.TargetDuration, req.SampleRate)
	}

	start := euclideanMod(int64(head)-int64(targetFrames), int64(capacity))

	result := &ExtractedSamples{
		SampleRate:      req.SampleRate,
		Channels:        req.Channels,
		Samples:         make([]float32, targetFrames*uint64(req.Channels)),
		RequestedFrames: requestedFrames,
		Truncated:       truncated,
	}
	copyWindow(result.Samples, view.Samples, uint64(start), targetFrames, capacity, uint64(req.Channels))
	return result, nil
}

// copyWindow copies frames [start, start+count) of the ring into dst,
// continuing from frame 0 once the end of the ring is reached.
func copyWindow(
	dst []float32,
	ring []float32,
	start uint64,
	count uint64,
	capacity uint64,
	channels uint64,
) {
	if start+count <= capacity {
		copy(dst, ring[start*channels:(start+count)*channels])
		return
	}

	tailFrames := capacity - start
	n := copy(dst, ring[start*channels:capacity*channels])
	copy(dst[n:], ring[:(count-tailFrames)*channels])
}

func euclideanMod(a, m int64) int64 {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

func (req SessionRequest) validate() error {
	if req.SampleRate == 0 {
		return ErrInvalidSampleRate
	}
	if req.Channels != 1 && req.Channels != 2 {
		return fmt.Errorf("%w: %d", ErrInvalidChannels, req.Channels)
	}
	if math.IsNaN(req.TargetDuration) || math.IsInf(req.TargetDuration, 0) || req.TargetDuration <= 0 {
		return fmt.Errorf("%w: %v", ErrInvalidDuration, req.TargetDuration)
	}
	return nil
}
