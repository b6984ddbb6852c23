package registry

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xaionaro-go/ringcapture/pkg/audio/types"
)

type lowFactory struct{}

func (lowFactory) NewRecorderPCM() (types.RecorderPCM, error) { return nil, nil }

type highFactory struct{}

func (*highFactory) NewRecorderPCM() (types.RecorderPCM, error) { return nil, nil }

func TestRecorderFactoriesOrder(t *testing.T) {
	r := newFactoryRegistry[RecorderPCMFactory]()
	r.register(10, lowFactory{})
	r.register(20, &highFactory{})

	factories := r.list()
	require.Len(t, factories, 2)
	require.IsType(t, &highFactory{}, factories[0])
	require.IsType(t, lowFactory{}, factories[1])

	require.Panics(t, func() { r.register(30, lowFactory{}) })

	require.True(t, r.unregister(lowFactory{}))
	require.False(t, r.unregister(lowFactory{}))
	require.Len(t, r.list(), 1)
}
