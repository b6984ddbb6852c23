package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/ringcapture/pkg/audio"
	_ "github.com/xaionaro-go/ringcapture/pkg/audio/backends/oto"
	_ "github.com/xaionaro-go/ringcapture/pkg/audio/backends/portaudio"
	_ "github.com/xaionaro-go/ringcapture/pkg/audio/backends/pulseaudio"
	"github.com/xaionaro-go/ringcapture/pkg/sink"
)

func main() {
	loggerLevel := logger.LevelInfo
	pflag.Var(&loggerLevel, "log-level", "Log level")
	bufferSize := pflag.Duration("buffer-size", 100*time.Millisecond, "playback buffer size")
	pflag.Parse()

	if pflag.NArg() != 1 {
		panic("expected exactly one positional argument: path to a 16-bit PCM WAV file")
	}
	filePath := pflag.Arg(0)

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	wav, err := os.ReadFile(filePath)
	assertNoError(err)

	player := audio.NewPlayerAuto(ctx)
	defer player.Close()
	logger.Infof(ctx, "started (file -> %T)", player.PlayerPCM)

	assertNoError(sink.NewPlayer(player, *bufferSize).Store(ctx, filepath.Base(filePath), wav))
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
