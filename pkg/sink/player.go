package sink

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/ringcapture/pkg/audio/types"
	"github.com/xaionaro-go/ringcapture/pkg/pcmwav"
)

// Player plays recordings back instead of storing them.
type Player struct {
	player     types.PlayerPCM
	bufferSize time.Duration
}

var _ Sink = (*Player)(nil)

func NewPlayer(player types.PlayerPCM, bufferSize time.Duration) *Player {
	return &Player{
		player:     player,
		bufferSize: bufferSize,
	}
}

func (p *Player) Store(ctx context.Context, name string, wav []byte) (_err error) {
	logger.Debugf(ctx, "Player.Store(ctx, '%s', <%d bytes>)", name, len(wav))
	defer func() { logger.Debugf(ctx, "/Player.Store(ctx, '%s', <%d bytes>): %v", name, len(wav), _err) }()

	h, err := pcmwav.ReadHeader(wav)
	if err != nil {
		return fmt.Errorf("unable to parse the WAV header: %w", err)
	}
	data, err := h.Data(wav)
	if err != nil {
		return err
	}
	logger.Debugf(ctx, "playing %s", h)

	stream, err := p.player.PlayPCM(
		ctx,
		h.SampleRate,
		h.Channels,
		types.PCMFormatS16LE,
		p.bufferSize,
		bytes.NewReader(data),
	)
	if err != nil {
		return fmt.Errorf("unable to start playing: %w", err)
	}

	var mErr *multierror.Error
	if err := stream.Drain(); err != nil {
		mErr = multierror.Append(mErr, fmt.Errorf("unable to drain the stream: %w", err))
	}
	if err := stream.Close(); err != nil {
		mErr = multierror.Append(mErr, fmt.Errorf("unable to close the stream: %w", err))
	}
	return mErr.ErrorOrNil()
}
