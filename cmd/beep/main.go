package main

import (
	"context"
	"math"
	"time"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/ringcapture/pkg/audio"
	_ "github.com/xaionaro-go/ringcapture/pkg/audio/backends/oto"
	_ "github.com/xaionaro-go/ringcapture/pkg/audio/backends/portaudio"
	_ "github.com/xaionaro-go/ringcapture/pkg/audio/backends/pulseaudio"
	"github.com/xaionaro-go/ringcapture/pkg/pcmwav"
	"github.com/xaionaro-go/ringcapture/pkg/ringcapture"
	"github.com/xaionaro-go/ringcapture/pkg/sink"
)

func main() {
	loggerLevel := logger.LevelInfo
	pflag.Var(&loggerLevel, "log-level", "Log level")
	frequency := pflag.Float64("frequency", 440, "tone frequency in Hz")
	duration := pflag.Duration("duration", 500*time.Millisecond, "tone duration")
	volume := pflag.Float64("volume", 0.3, "amplitude in range (0, 1]")
	outputDir := pflag.String("output-dir", "", "also save the tone as a WAV file into this directory")
	pflag.Parse()

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	wav, err := pcmwav.Encode(tone(48000, *frequency, *duration, *volume))
	assertNoError(err)

	p := audio.NewPlayerAuto(ctx)
	defer p.Close()
	logger.Infof(ctx, "using backend %T", p.PlayerPCM)

	sinks := sink.Multi{sink.NewPlayer(p, audio.BufferSize)}
	if *outputDir != "" {
		f, err := sink.NewFile(*outputDir)
		assertNoError(err)
		sinks = append(sinks, f)
	}
	assertNoError(sinks.Store(ctx, "beep.wav", wav))
}

func tone(
	sampleRate uint32,
	frequency float64,
	duration time.Duration,
	volume float64,
) *ringcapture.ExtractedSamples {
	frames := int(duration.Seconds() * float64(sampleRate))
	samples := make([]float32, frames)
	for idx := range samples {
		samples[idx] = float32(volume * math.Sin(2*math.Pi*frequency*float64(idx)/float64(sampleRate)))
	}
	return &ringcapture.ExtractedSamples{
		SampleRate:      audio.SampleRate(sampleRate),
		Channels:        1,
		Samples:         samples,
		RequestedFrames: uint64(frames),
	}
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
