package main

import (
	"context"
	"net/http"
	_ "net/http/pprof"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/ringcapture/pkg/audio"
	_ "github.com/xaionaro-go/ringcapture/pkg/audio/backends/oto"
	_ "github.com/xaionaro-go/ringcapture/pkg/audio/backends/portaudio"
	_ "github.com/xaionaro-go/ringcapture/pkg/audio/backends/pulseaudio"
	"github.com/xaionaro-go/ringcapture/pkg/capture"
	"github.com/xaionaro-go/ringcapture/pkg/session"
	"github.com/xaionaro-go/ringcapture/pkg/sink"
)

// loopback records a short session and plays it back right away, which
// is handy to check a microphone.
func main() {
	loggerLevel := logger.LevelDebug
	pflag.Var(&loggerLevel, "log-level", "Log level")
	netPprofAddr := pflag.String("net-pprof-listen-addr", "", "an address to listen for incoming net/pprof connections")
	duration := pflag.Duration("duration", 3*time.Second, "how long to record")
	channels := pflag.Uint16("channels", 2, "amount of channels to record")
	pflag.Parse()

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	if *netPprofAddr != "" {
		observability.Go(ctx, func() { l.Error(http.ListenAndServe(*netPprofAddr, nil)) })
	}

	logger.Infof(ctx, "starting...")
	recorder := audio.NewRecorderAuto(ctx)
	defer recorder.Close()

	player := audio.NewPlayerAuto(ctx)
	defer player.Close()
	logger.Infof(ctx, "started (%T -> %T)", recorder.RecorderPCM, player.PlayerPCM)

	cfg := session.DefaultConfig()
	cfg.Channels = audio.Channel(*channels)
	cfg.Duration = *duration
	cfg.MaxDuration = 0
	cfg.BufferDuration = *duration + time.Second

	s, err := session.Start(
		ctx,
		session.FromSource(capture.NewSource(recorder, audio.PCMFormatFloat32LE)),
		cfg,
	)
	assertNoError(err)
	defer s.Close()
	logger.Infof(ctx, "recording for %v...", *duration)

	result, err := s.Wait(ctx)
	assertNoError(err)
	logger.Infof(ctx, "playing back %v (last observed: %+v)", result.Elapsed, s.LastObserved())

	assertNoError(sink.NewPlayer(player, 300*time.Millisecond).Store(ctx, "loopback.wav", result.WAV))
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
