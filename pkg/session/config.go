package session

import (
	"fmt"
	"math"
	"time"

	"github.com/xaionaro-go/ringcapture/pkg/audio/types"
)

type Config struct {
	SampleRate types.SampleRate
	Channels   types.Channel

	// BufferDuration is the length of the ring buffer. Sessions longer
	// than that are truncated to the last BufferDuration of audio.
	BufferDuration time.Duration

	// Duration is the fixed session length; zero means the session lasts
	// until Stop is called (or MaxDuration is reached).
	Duration time.Duration

	// MaxDuration caps the session; zero means no cap.
	MaxDuration time.Duration

	PollInterval time.Duration
	StartTimeout time.Duration
}

func DefaultConfig() Config {
	return Config{
		SampleRate:     48000,
		Channels:       1,
		BufferDuration: 60 * time.Second,
		Duration:       5 * time.Second,
		MaxDuration:    60 * time.Second,
		PollInterval:   10 * time.Millisecond,
		StartTimeout:   2 * time.Second,
	}
}

func (cfg Config) Validate() error {
	if cfg.SampleRate == 0 {
		return fmt.Errorf("sample rate cannot be zero")
	}
	if cfg.Channels != 1 && cfg.Channels != 2 {
		return fmt.Errorf("only mono and stereo are supported, got %d channels", cfg.Channels)
	}
	if cfg.BufferDuration <= 0 {
		return fmt.Errorf("buffer duration must be positive, got %v", cfg.BufferDuration)
	}
	if frames := cfg.BufferDuration.Seconds() * float64(cfg.SampleRate); frames < 1 || frames > math.MaxUint32 {
		return fmt.Errorf("buffer duration %v at %dHz gives %.0f frames, which is out of range", cfg.BufferDuration, cfg.SampleRate, frames)
	}
	if cfg.Duration < 0 {
		return fmt.Errorf("duration cannot be negative, got %v", cfg.Duration)
	}
	if cfg.MaxDuration < 0 {
		return fmt.Errorf("max duration cannot be negative, got %v", cfg.MaxDuration)
	}
	if cfg.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %v", cfg.PollInterval)
	}
	if cfg.StartTimeout <= 0 {
		return fmt.Errorf("start timeout must be positive, got %v", cfg.StartTimeout)
	}
	return nil
}

// BufferCapacityFrames returns the ring buffer capacity in frames.
func (cfg Config) BufferCapacityFrames() uint32 {
	return uint32(math.Round(cfg.BufferDuration.Seconds() * float64(cfg.SampleRate)))
}
