package capture

import (
	"encoding/binary"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/ringcapture/pkg/audio/types"
	"github.com/xaionaro-go/ringcapture/pkg/ringcapture"
)

func f32le(values ...float32) []byte {
	b := make([]byte, 4*len(values))
	for idx, v := range values {
		binary.LittleEndian.PutUint32(b[idx*4:], math.Float32bits(v))
	}
	return b
}

func TestRingUnalignedWrites(t *testing.T) {
	r, err := NewRing(types.PCMFormatFloat32LE, 2, 8)
	require.NoError(t, err)

	raw := f32le(1, -1, 2, -2, 3, -3)
	for _, chunk := range [][]byte{raw[:3], raw[3:9], raw[9:10], raw[10:]} {
		n, err := r.Write(chunk)
		require.NoError(t, err)
		require.Equal(t, len(chunk), n)
	}

	require.Equal(t, uint64(3), r.FramesWritten())
	require.Equal(t, uint64(3), r.Position())
	require.True(t, r.HasData())

	s := r.Snapshot()
	require.Equal(t, []float32{1, -1, 2, -2, 3, -3, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, s.View.Samples)
	require.Equal(t, uint64(3), s.WriteHead)
	require.Equal(t, uint64(3), s.View.FramesWritten)
}

func TestRingPartialFrameIsNotVisible(t *testing.T) {
	r, err := NewRing(types.PCMFormatS16LE, 1, 4)
	require.NoError(t, err)

	_, err = r.Write([]byte{0x00})
	require.NoError(t, err)
	require.False(t, r.HasData())
	require.Equal(t, uint64(0), r.Position())

	_, err = r.Write([]byte{0x40})
	require.NoError(t, err)
	require.True(t, r.HasData())
	require.Equal(t, []float32{0.5, 0, 0, 0}, r.Snapshot().View.Samples)
}

func TestRingWrap(t *testing.T) {
	r, err := NewRing(types.PCMFormatFloat32LE, 1, 4)
	require.NoError(t, err)

	_, err = r.Write(f32le(0.1, 0.2, 0.3, 0.4, 0.5, 0.6))
	require.NoError(t, err)

	s := r.Snapshot()
	require.Equal(t, uint64(2), s.WriteHead)
	require.Equal(t, uint64(6), s.View.FramesWritten)
	require.Equal(t, []float32{0.5, 0.6, 0.3, 0.4}, s.View.Samples)

	// wrapping exactly onto zero still reports data
	_, err = r.Write(f32le(0.7, 0.8))
	require.NoError(t, err)
	s = r.Snapshot()
	require.Equal(t, uint64(0), s.WriteHead)
	require.True(t, s.HasData)

	out, err := ringcapture.Extract(s.View, s.WriteHead, s.HasData, ringcapture.SessionRequest{
		SampleRate:           4,
		Channels:             1,
		TargetDuration:       0.75,
		BufferCapacityFrames: 4,
	})
	require.NoError(t, err)
	require.Equal(t, []float32{0.6, 0.7, 0.8}, out.Samples)
}

func TestRingLargeWrite(t *testing.T) {
	const frames = stagingFrames*3 + 17
	r, err := NewRing(types.PCMFormatFloat32LE, 1, 100)
	require.NoError(t, err)

	values := make([]float32, frames)
	for idx := range values {
		values[idx] = float32(idx) / frames
	}
	n, err := r.Write(f32le(values...))
	require.NoError(t, err)
	require.Equal(t, frames*4, n)
	require.Equal(t, uint64(frames), r.FramesWritten())

	s := r.Snapshot()
	out, err := ringcapture.Extract(s.View, s.WriteHead, s.HasData, ringcapture.SessionRequest{
		SampleRate:           100,
		Channels:             1,
		TargetDuration:       1,
		BufferCapacityFrames: 100,
	})
	require.NoError(t, err)
	require.Equal(t, values[frames-100:], out.Samples)
}

func TestRingSnapshotIsACopy(t *testing.T) {
	r, err := NewRing(types.PCMFormatFloat32LE, 1, 2)
	require.NoError(t, err)
	_, err = r.Write(f32le(0.25))
	require.NoError(t, err)

	s := r.Snapshot()
	_, err = r.Write(f32le(0.5, 0.75))
	require.NoError(t, err)
	require.Equal(t, []float32{0.25, 0}, s.View.Samples)
	require.Equal(t, uint64(1), s.WriteHead)
}

func TestRingConcurrentSnapshot(t *testing.T) {
	r, err := NewRing(types.PCMFormatFloat32LE, 1, 64)
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			// every frame holds its own absolute index
			_, err := r.Write(f32le(float32(i)))
			if err != nil {
				panic(err)
			}
		}
	}()

	for i := 0; i < 100; i++ {
		s := r.Snapshot()
		if !s.HasData {
			continue
		}
		last := (s.WriteHead + 63) % 64
		require.Equal(t, float32(s.View.FramesWritten-1), s.View.Samples[last])
	}
	wg.Wait()
}

func TestNewRingInvalid(t *testing.T) {
	_, err := NewRing(types.PCMFormatUndefined, 1, 1)
	require.Error(t, err)
	_, err = NewRing(types.PCMFormatS16LE, 0, 1)
	require.Error(t, err)
	_, err = NewRing(types.PCMFormatS16LE, 1, 0)
	require.Error(t, err)
}
