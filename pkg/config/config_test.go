package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/stretchr/testify/require"

	"github.com/xaionaro-go/ringcapture/pkg/audio/types"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	level, err := cfg.Logging.ParseLevel()
	require.NoError(t, err)
	require.Equal(t, logger.LevelInfo, level)

	format, err := cfg.Capture.Format()
	require.NoError(t, err)
	require.Equal(t, types.PCMFormatFloat32LE, format)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
capture:
  pcm_format: s16le
session:
  sample_rate: 44100
  channels: 2
  buffer_duration: 2m
  duration: 0s
  max_duration: 90s
sink:
  file:
    dir: /tmp/recordings
  s3:
    bucket: recordings
    prefix: mic
    region: eu-west-1
    endpoint: http://localhost:9000
    use_path_style: true
metrics:
  listen_addr: 127.0.0.1:9090
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, "s16le", cfg.Capture.PCMFormat)
	s := cfg.Session.ToSession()
	require.Equal(t, types.SampleRate(44100), s.SampleRate)
	require.Equal(t, types.Channel(2), s.Channels)
	require.Equal(t, 2*time.Minute, s.BufferDuration)
	require.Zero(t, s.Duration)
	require.Equal(t, 90*time.Second, s.MaxDuration)
	// not in the file, so the defaults are kept
	require.Equal(t, 10*time.Millisecond, s.PollInterval)
	require.Equal(t, 2*time.Second, s.StartTimeout)

	require.Equal(t, "/tmp/recordings", cfg.Sink.File.Dir)
	require.Equal(t, S3SinkConfig{
		Bucket:       "recordings",
		Prefix:       "mic",
		Region:       "eu-west-1",
		Endpoint:     "http://localhost:9000",
		UsePathStyle: true,
	}, cfg.Sink.S3)
	require.Equal(t, "127.0.0.1:9090", cfg.Metrics.ListenAddr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseInvalid(t *testing.T) {
	for name, yamlText := range map[string]string{
		"Syntax":         "session: [",
		"BadDuration":    "session:\n  duration: soon\n",
		"ZeroRate":       "session:\n  sample_rate: 0\n",
		"FiveChannels":   "session:\n  channels: 5\n",
		"NoSinks":        "sink:\n  file:\n    dir: ''\n",
		"S3NoBucket":     "sink:\n  s3:\n    prefix: p\n",
		"BadLogLevel":    "logging:\n  level: loud\n",
		"BadPCMFormat":   "capture:\n  pcm_format: mp3\n",
		"NegativeMaxDur": "session:\n  max_duration: -1s\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(yamlText))
			require.Error(t, err)
		})
	}
}

func TestParseS3WithoutRegion(t *testing.T) {
	cfg, err := Parse([]byte("sink:\n  s3:\n    bucket: b\n"))
	require.NoError(t, err)
	require.Equal(t, "b", cfg.Sink.S3.Bucket)
	require.Empty(t, cfg.Sink.S3.Region)
}
