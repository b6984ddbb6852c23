package oto

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/xaionaro-go/ringcapture/pkg/audio/types"
)

const (
	SampleRate = types.SampleRate(48000)
	Channels   = types.Channel(2)
	Format     = types.PCMFormatFloat32LE
	BufferSize = 100 * time.Millisecond
)

var (
	otoContextOnce sync.Once
	otoContext     *oto.Context
	otoContextErr  error
)

// getOtoContext returns the process-wide oto context: oto allows to create
// only one.
func getOtoContext() (*oto.Context, error) {
	otoContextOnce.Do(func() {
		var readyChan chan struct{}
		otoContext, readyChan, otoContextErr = oto.NewContext(&oto.NewContextOptions{
			SampleRate:   int(SampleRate),
			ChannelCount: int(Channels),
			Format:       oto.FormatFloat32LE,
			BufferSize:   BufferSize,
		})
		if otoContextErr != nil {
			otoContextErr = fmt.Errorf("unable to initialize an oto context: %w", otoContextErr)
			return
		}
		<-readyChan
	})
	return otoContext, otoContextErr
}
