package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/observability"
	"github.com/xaionaro-go/ringcapture/pkg/audio"
	_ "github.com/xaionaro-go/ringcapture/pkg/audio/backends/portaudio"
	_ "github.com/xaionaro-go/ringcapture/pkg/audio/backends/pulseaudio"
	"github.com/xaionaro-go/ringcapture/pkg/capture"
	"github.com/xaionaro-go/ringcapture/pkg/config"
	"github.com/xaionaro-go/ringcapture/pkg/metrics"
	"github.com/xaionaro-go/ringcapture/pkg/session"
	"github.com/xaionaro-go/ringcapture/pkg/sink"
)

func main() {
	loggerLevel := logger.LevelInfo
	pflag.Var(&loggerLevel, "log-level", "Log level")
	configPath := pflag.String("config", "", "path to the YAML config file")
	duration := pflag.Duration("duration", 0, "override session.duration (0 means: record until Ctrl+C or max_duration)")
	outputDir := pflag.String("output-dir", "", "override sink.file.dir")
	playback := pflag.Bool("playback", false, "play the recording back when it is done")
	pflag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		assertNoError(err)
		cfg = *loaded
	}
	if pflag.CommandLine.Changed("duration") {
		cfg.Session.Duration = *duration
	}
	if *outputDir != "" {
		cfg.Sink.File.Dir = *outputDir
	}
	if *playback {
		cfg.Sink.Playback = true
	}
	assertNoError(cfg.Validate())
	if !pflag.CommandLine.Changed("log-level") {
		level, err := cfg.Logging.ParseLevel()
		assertNoError(err)
		loggerLevel = level
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	ctx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()

	m := metrics.New(prometheus.DefaultRegisterer)
	if cfg.Metrics.ListenAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		observability.Go(ctx, func() {
			logger.Infof(ctx, "serving metrics at http://%s/metrics", cfg.Metrics.ListenAddr)
			l.Error(http.ListenAndServe(cfg.Metrics.ListenAddr, mux))
		})
	}

	format, err := cfg.Capture.Format()
	assertNoError(err)

	recorder := audio.NewRecorderAuto(ctx)
	defer recorder.Close()
	logger.Infof(ctx, "using recorder %T", recorder.RecorderPCM)

	s, err := session.Start(
		ctx,
		session.FromSource(capture.NewSource(recorder, format)),
		cfg.Session.ToSession(),
		session.WithMetrics(m),
	)
	assertNoError(err)
	defer s.Close()
	logger.Infof(ctx, "recording... (press Ctrl+C to stop)")

	signalCh := make(chan os.Signal, 2)
	signal.Notify(signalCh, os.Interrupt, syscall.SIGTERM)
	observability.Go(ctx, func() {
		select {
		case <-ctx.Done():
			return
		case <-signalCh:
			logger.Infof(ctx, "stopping the recording")
			s.Stop()
		}
		select {
		case <-ctx.Done():
		case <-signalCh:
			logger.Warnf(ctx, "received the second signal, aborting")
			cancelFn()
		}
	})

	result, err := s.Wait(ctx)
	assertNoError(err)
	if result.Truncated {
		logger.Warnf(ctx, "the recording is truncated to the last %v (buffer_duration)", cfg.Session.BufferDuration)
	}
	logger.Infof(ctx, "recorded %v (%d frames, stop reason: %v)", result.Elapsed, result.Samples.FrameCount(), result.StopReason)

	sinks, closeSinks, err := newSinks(ctx, cfg.Sink, m)
	defer closeSinks()
	assertNoError(err)
	name := sink.NameFor(s.StartedAt())
	assertNoError(sinks.Store(ctx, name, result.WAV))
	logger.Infof(ctx, "stored '%s' (%d bytes)", name, len(result.WAV))
}

func assertNoError(err error) {
	if err != nil {
		panic(err)
	}
}
