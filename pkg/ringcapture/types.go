package ringcapture

import (
	"time"

	"github.com/xaionaro-go/ringcapture/pkg/audio/types"
)

// RingBufferView is a read-only view of a ring buffer of interleaved
// float samples. One slot of the ring is one frame: a sample per channel.
//
// The view borrows Samples; the caller keeps the storage alive (and
// unmodified) until Extract returns.
type RingBufferView struct {
	Samples  []float32
	Channels types.Channel

	// FramesWritten is the total amount of frames the producer has ever
	// written into the ring, or 0 if unknown. When known, it prevents
	// never-written slots from being returned as audio.
	FramesWritten uint64
}

// Capacity returns the amount of frames the ring can hold.
func (v RingBufferView) Capacity() uint64 {
	if v.Channels == 0 {
		return 0
	}
	return uint64(len(v.Samples)) / uint64(v.Channels)
}

// SessionRequest describes the session to extract.
type SessionRequest struct {
	SampleRate types.SampleRate
	Channels   types.Channel

	// TargetDuration is the session length in seconds, as measured by
	// the caller.
	TargetDuration float64

	BufferCapacityFrames uint32
}

// TargetDurationFrom converts a wall-clock duration into
// SessionRequest.TargetDuration.
func TargetDurationFrom(d time.Duration) float64 {
	return d.Seconds()
}

// ExtractedSamples is a linear copy of the session's frames.
type ExtractedSamples struct {
	SampleRate types.SampleRate
	Channels   types.Channel

	// Samples are interleaved, len(Samples) == FrameCount()*Channels.
	Samples []float32

	// RequestedFrames is the amount of frames the request asked for,
	// before clamping.
	RequestedFrames uint64

	// Truncated is set when fewer frames than requested could be
	// extracted. It is not an error.
	Truncated bool
}

func (s *ExtractedSamples) FrameCount() uint64 {
	if s == nil || s.Channels == 0 {
		return 0
	}
	return uint64(len(s.Samples)) / uint64(s.Channels)
}

func (s *ExtractedSamples) Duration() time.Duration {
	if s == nil || s.SampleRate == 0 {
		return 0
	}
	return time.Duration(s.FrameCount()) * time.Second / time.Duration(s.SampleRate)
}
