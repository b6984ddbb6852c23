// Package config loads the YAML configuration of the recorder.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/facebookincubator/go-belt/tool/logger"
	"gopkg.in/yaml.v3"

	"github.com/xaionaro-go/ringcapture/pkg/audio/types"
	"github.com/xaionaro-go/ringcapture/pkg/session"
)

type Config struct {
	Capture CaptureConfig `yaml:"capture"`
	Session SessionConfig `yaml:"session"`
	Sink    SinkConfig    `yaml:"sink"`
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type CaptureConfig struct {
	// PCMFormat is the format requested from the recorder backend,
	// see types.PCMFormat.String for the values.
	PCMFormat string `yaml:"pcm_format"`
}

type SessionConfig struct {
	SampleRate     uint32        `yaml:"sample_rate"`
	Channels       uint16        `yaml:"channels"`
	BufferDuration time.Duration `yaml:"buffer_duration"`
	Duration       time.Duration `yaml:"duration"`
	MaxDuration    time.Duration `yaml:"max_duration"`
	PollInterval   time.Duration `yaml:"poll_interval"`
	StartTimeout   time.Duration `yaml:"start_timeout"`
}

type SinkConfig struct {
	File     FileSinkConfig `yaml:"file"`
	S3       S3SinkConfig   `yaml:"s3"`
	Playback bool           `yaml:"playback"`
}

type FileSinkConfig struct {
	Dir string `yaml:"dir"`
}

type S3SinkConfig struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
	// Region is optional: when empty it is resolved by the AWS SDK from
	// the environment or the shared config.
	Region       string `yaml:"region"`
	Endpoint     string `yaml:"endpoint"`
	UsePathStyle bool   `yaml:"use_path_style"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type MetricsConfig struct {
	// ListenAddr is where /metrics is served; empty disables it.
	ListenAddr string `yaml:"listen_addr"`
}

func Default() Config {
	s := session.DefaultConfig()
	return Config{
		Capture: CaptureConfig{
			PCMFormat: types.PCMFormatFloat32LE.String(),
		},
		Session: SessionConfig{
			SampleRate:     uint32(s.SampleRate),
			Channels:       uint16(s.Channels),
			BufferDuration: s.BufferDuration,
			Duration:       s.Duration,
			MaxDuration:    s.MaxDuration,
			PollInterval:   s.PollInterval,
			StartTimeout:   s.StartTimeout,
		},
		Sink: SinkConfig{
			File: FileSinkConfig{
				Dir: ".",
			},
		},
		Logging: LoggingConfig{
			Level: logger.LevelInfo.String(),
		},
	}
}

// Load reads the file at path on top of Default and validates the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read config file '%s': %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("unable to load config file '%s': %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unable to parse the config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if err := c.Capture.Validate(); err != nil {
		return fmt.Errorf("capture config: %w", err)
	}
	if err := c.Session.Validate(); err != nil {
		return fmt.Errorf("session config: %w", err)
	}
	if err := c.Sink.Validate(); err != nil {
		return fmt.Errorf("sink config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

func (c *CaptureConfig) Validate() error {
	_, err := c.Format()
	return err
}

func (c *CaptureConfig) Format() (types.PCMFormat, error) {
	return types.ParsePCMFormat(c.PCMFormat)
}

func (c *SessionConfig) Validate() error {
	return c.ToSession().Validate()
}

func (c *SessionConfig) ToSession() session.Config {
	return session.Config{
		SampleRate:     types.SampleRate(c.SampleRate),
		Channels:       types.Channel(c.Channels),
		BufferDuration: c.BufferDuration,
		Duration:       c.Duration,
		MaxDuration:    c.MaxDuration,
		PollInterval:   c.PollInterval,
		StartTimeout:   c.StartTimeout,
	}
}

func (c *SinkConfig) Validate() error {
	if c.File.Dir == "" && c.S3.Bucket == "" && !c.Playback {
		return fmt.Errorf("no sink is configured: at least one of file.dir, s3.bucket or playback is required")
	}
	if c.S3.Bucket == "" && (c.S3.Prefix != "" || c.S3.Endpoint != "") {
		return fmt.Errorf("s3.bucket cannot be empty when other s3 options are set")
	}
	return nil
}

func (c *LoggingConfig) Validate() error {
	_, err := c.ParseLevel()
	return err
}

func (c *LoggingConfig) ParseLevel() (logger.Level, error) {
	var level logger.Level
	if err := level.Set(c.Level); err != nil {
		return logger.LevelUndefined, fmt.Errorf("invalid log level '%s': %w", c.Level, err)
	}
	return level, nil
}
