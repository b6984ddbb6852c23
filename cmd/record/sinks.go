package main

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/ringcapture/pkg/audio"
	_ "github.com/xaionaro-go/ringcapture/pkg/audio/backends/oto"
	"github.com/xaionaro-go/ringcapture/pkg/config"
	"github.com/xaionaro-go/ringcapture/pkg/metrics"
	"github.com/xaionaro-go/ringcapture/pkg/sink"
)

func newSinks(
	ctx context.Context,
	cfg config.SinkConfig,
	m *metrics.Metrics,
) (_ sink.Multi, _close func(), _err error) {
	var (
		sinks   sink.Multi
		closers []func() error
	)
	_close = func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				logger.Errorf(ctx, "unable to close a sink: %v", err)
			}
		}
	}
	if cfg.File.Dir != "" {
		f, err := sink.NewFile(cfg.File.Dir)
		if err != nil {
			return nil, _close, fmt.Errorf("unable to initialize the file sink: %w", err)
		}
		logger.Debugf(ctx, "file sink: %s", f.Root())
		sinks = append(sinks, &sink.Instrumented{Name: "file", Sink: f, Metrics: m})
	}
	if cfg.S3.Bucket != "" {
		client, err := newS3Client(ctx, cfg.S3)
		if err != nil {
			return nil, _close, fmt.Errorf("unable to initialize the S3 sink: %w", err)
		}
		logger.Debugf(ctx, "s3 sink: s3://%s/%s", cfg.S3.Bucket, cfg.S3.Prefix)
		sinks = append(sinks, &sink.Instrumented{
			Name:    "s3",
			Sink:    sink.NewS3(client, cfg.S3.Bucket, cfg.S3.Prefix),
			Metrics: m,
		})
	}
	if cfg.Playback {
		player := audio.NewPlayerAuto(ctx)
		closers = append(closers, player.Close)
		logger.Debugf(ctx, "playback sink: %T", player.PlayerPCM)
		sinks = append(sinks, &sink.Instrumented{
			Name:    "playback",
			Sink:    sink.NewPlayer(player, audio.BufferSize),
			Metrics: m,
		})
	}
	return sinks, _close, nil
}

func newS3Client(ctx context.Context, cfg config.S3SinkConfig) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load the AWS configuration: %w", err)
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	}), nil
}
