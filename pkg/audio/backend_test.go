package audio

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeBackend struct {
	pingErr error
	closed  bool
}

func (b *fakeBackend) Ping(context.Context) error { return b.pingErr }
func (b *fakeBackend) Close() error {
	b.closed = true
	return nil
}

func TestAutoSelect(t *testing.T) {
	ctx := context.Background()
	broken := &fakeBackend{pingErr: errors.New("no device")}
	working := &fakeBackend{}
	backends := map[string]*fakeBackend{
		"broken":  broken,
		"working": working,
	}
	newBackend := func(name string) (*fakeBackend, error) {
		if name == "missing" {
			return nil, errors.New("not installed")
		}
		return backends[name], nil
	}

	var last lastSuccessful[string]
	backend, err := autoSelect(ctx, &last, []string{"missing", "broken", "working"}, newBackend)
	require.NoError(t, err)
	require.Same(t, working, backend)
	require.True(t, broken.closed)
	require.Equal(t, "working", *last.get())

	_, err = autoSelect(ctx, &lastSuccessful[string]{}, []string{"missing", "broken"}, newBackend)
	require.Error(t, err)
	require.Contains(t, err.Error(), "not installed")
	require.Contains(t, err.Error(), "no device")

	_, err = autoSelect(ctx, &lastSuccessful[string]{}, nil, newBackend)
	require.Error(t, err)
}

func TestPlayerPCMDummyDiscards(t *testing.T) {
	ctx := context.Background()
	data := bytes.NewReader(make([]byte, 1000))

	stream, err := PlayerPCMDummy{}.PlayPCM(ctx, 48000, 1, PCMFormatS16LE, time.Second, data)
	require.NoError(t, err)
	require.NoError(t, stream.Drain())
	require.NoError(t, stream.Close())
	require.Zero(t, data.Len())
}

func TestRecorderPCMDummyWritesNothing(t *testing.T) {
	var buf bytes.Buffer
	stream, err := RecorderPCMDummy{}.RecordPCM(context.Background(), 48000, 1, PCMFormatFloat32LE, &buf)
	require.NoError(t, err)
	require.NoError(t, stream.Close())
	require.Zero(t, buf.Len())
}
