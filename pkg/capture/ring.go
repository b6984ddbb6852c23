package capture

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/iamcalledrob/circular"
	"github.com/xaionaro-go/ringcapture/pkg/audio/types"
	"github.com/xaionaro-go/ringcapture/pkg/ringcapture"
)

// stagingFrames is how many frames of raw PCM the ring accumulates
// before decoding them.
const stagingFrames = 256

// Ring is a fixed-capacity ring of decoded frames fed by raw PCM.
//
// The ring is an io.Writer: writes may be of any length, bytes of a frame
// that is not complete yet are kept until the rest of it arrives.
type Ring struct {
	locker        sync.Mutex
	format        types.PCMFormat
	channels      types.Channel
	samples       []float32
	capacity      uint64
	framesWritten uint64

	staging        *circular.Buffer
	stagingSize    int
	stagingPending int
	frameBuf       []byte
}

var _ io.Writer = (*Ring)(nil)

// Snapshot is a consistent copy of the ring's state.
type Snapshot struct {
	View      ringcapture.RingBufferView
	WriteHead uint64
	HasData   bool
}

func NewRing(
	format types.PCMFormat,
	channels types.Channel,
	capacityFrames uint32,
) (*Ring, error) {
	if format.Size() == 0 {
		return nil, fmt.Errorf("unsupported PCM format: %v", format)
	}
	if channels == 0 {
		return nil, fmt.Errorf("the amount of channels cannot be zero")
	}
	if capacityFrames == 0 {
		return nil, fmt.Errorf("the capacity cannot be zero")
	}

	frameSize := int(format.Size()) * int(channels)
	stagingSize := frameSize * stagingFrames
	return &Ring{
		format:      format,
		channels:    channels,
		samples:     make([]float32, uint64(capacityFrames)*uint64(channels)),
		capacity:    uint64(capacityFrames),
		staging:     circular.NewBuffer(stagingSize + 1),
		stagingSize: stagingSize,
		frameBuf:    make([]byte, frameSize),
	}, nil
}

func (r *Ring) Write(p []byte) (int, error) {
	r.locker.Lock()
	defer r.locker.Unlock()

	total := len(p)
	for len(p) > 0 {
		n := r.stagingSize - r.stagingPending
		if n > len(p) {
			n = len(p)
		}
		w, err := r.staging.Write(p[:n])
		if err != nil && !errors.Is(err, circular.ErrNoSpace) {
			return total - len(p), fmt.Errorf("unable to write to the staging buffer: %w", err)
		}
		r.stagingPending += w
		p = p[w:]

		decoded, err := r.decodePendingFrames()
		if err != nil {
			return total - len(p), err
		}
		if w == 0 && decoded == 0 {
			return total - len(p), fmt.Errorf("the staging buffer is stuck: pending %d of %d bytes", r.stagingPending, r.stagingSize)
		}
	}
	return total, nil
}

func (r *Ring) decodePendingFrames() (int, error) {
	frameSize := len(r.frameBuf)
	sampleSize := int(r.format.Size())
	count := 0
	for r.stagingPending >= frameSize {
		if _, err := io.ReadFull(r.staging, r.frameBuf); err != nil {
			return count, fmt.Errorf("unable to read a frame from the staging buffer: %w", err)
		}
		r.stagingPending -= frameSize

		offset := (r.framesWritten % r.capacity) * uint64(r.channels)
		for ch := 0; ch < int(r.channels); ch++ {
			r.samples[offset+uint64(ch)] = float32(r.format.DecodeFloat64(r.frameBuf[ch*sampleSize:]))
		}
		r.framesWritten++
		count++
	}
	return count, nil
}

func (r *Ring) Capacity() uint64 {
	return r.capacity
}

func (r *Ring) Channels() types.Channel {
	return r.channels
}

// Position returns the slot the next frame will be written to.
func (r *Ring) Position() uint64 {
	r.locker.Lock()
	defer r.locker.Unlock()
	return r.framesWritten % r.capacity
}

func (r *Ring) FramesWritten() uint64 {
	r.locker.Lock()
	defer r.locker.Unlock()
	return r.framesWritten
}

func (r *Ring) HasData() bool {
	r.locker.Lock()
	defer r.locker.Unlock()
	return r.framesWritten > 0
}

// Snapshot copies the samples and the write head under the same lock.
func (r *Ring) Snapshot() Snapshot {
	r.locker.Lock()
	defer r.locker.Unlock()
	samples := make([]float32, len(r.samples))
	copy(samples, r.samples)
	return Snapshot{
		View: ringcapture.RingBufferView{
			Samples:       samples,
			Channels:      r.channels,
			FramesWritten: r.framesWritten,
		},
		WriteHead: r.framesWritten % r.capacity,
		HasData:   r.framesWritten > 0,
	}
}
