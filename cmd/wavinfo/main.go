package main

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"

	"github.com/facebookincubator/go-belt"
	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/facebookincubator/go-belt/tool/logger/implementation/logrus"
	"github.com/go-audio/wav"
	"github.com/mjibson/go-dsp/fft"
	"github.com/spf13/pflag"
	"github.com/xaionaro-go/ringcapture/pkg/pcmwav"
)

func main() {
	loggerLevel := logger.LevelWarning
	pflag.Var(&loggerLevel, "log-level", "Log level")
	levels := pflag.Bool("levels", false, "decode the samples and print the peak and RMS levels, and the dominant frequency")
	pflag.Parse()

	if pflag.NArg() == 0 {
		panic("expected at least one positional argument: path to a WAV file")
	}

	l := logrus.Default().WithLevel(loggerLevel)
	ctx := logger.CtxWithLogger(context.Background(), l)
	logger.Default = func() logger.Logger {
		return l
	}
	defer belt.Flush(ctx)

	exitCode := 0
	for _, filePath := range pflag.Args() {
		if err := printInfo(ctx, filePath, *levels); err != nil {
			logger.Errorf(ctx, "%s: %v", filePath, err)
			exitCode = 1
		}
	}
	belt.Flush(ctx)
	os.Exit(exitCode)
}

func printInfo(ctx context.Context, filePath string, levels bool) error {
	b, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("unable to read the file: %w", err)
	}
	logger.Debugf(ctx, "read %d bytes from '%s'", len(b), filePath)

	h, err := pcmwav.ReadHeader(b)
	if err != nil {
		return err
	}
	if _, err := h.Data(b); err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", filePath, h)
	if !levels {
		return nil
	}

	l, err := measureLevels(b)
	if err != nil {
		return fmt.Errorf("unable to decode the samples: %w", err)
	}
	fmt.Printf(
		"%s: peak %.1f dBFS, RMS %.1f dBFS, dominant frequency %.1f Hz\n",
		filePath, dBFS(l.Peak), dBFS(l.RMS), l.DominantFrequency,
	)
	return nil
}

type signalLevels struct {
	Peak              float64
	RMS               float64
	DominantFrequency float64
}

// measureLevels decodes the file independently of pcmwav.
func measureLevels(b []byte) (signalLevels, error) {
	d := wav.NewDecoder(bytes.NewReader(b))
	buf, err := d.FullPCMBuffer()
	if err != nil {
		return signalLevels{}, err
	}
	if len(buf.Data) == 0 {
		return signalLevels{}, nil
	}
	channels := buf.Format.NumChannels

	var (
		l          signalLevels
		sumSquares float64
		mono       = make([]float64, len(buf.Data)/channels)
	)
	for idx, v := range buf.Data {
		f := float64(v) / math.MaxInt16
		l.Peak = math.Max(l.Peak, math.Abs(f))
		sumSquares += f * f
		if frame := idx / channels; frame < len(mono) {
			mono[frame] += f / float64(channels)
		}
	}
	l.RMS = math.Sqrt(sumSquares / float64(len(buf.Data)))
	l.DominantFrequency = dominantFrequency(mono, buf.Format.SampleRate)
	return l, nil
}

func dominantFrequency(samples []float64, sampleRate int) float64 {
	if len(samples) < 2 {
		return 0
	}
	spectrum := fft.FFTReal(samples)
	bestBin, bestMagnitude := 0, 0.0
	// bin 0 is DC
	for bin := 1; bin <= len(spectrum)/2; bin++ {
		re, im := real(spectrum[bin]), imag(spectrum[bin])
		if magnitude := re*re + im*im; magnitude > bestMagnitude {
			bestBin, bestMagnitude = bin, magnitude
		}
	}
	return float64(bestBin) * float64(sampleRate) / float64(len(samples))
}

func dBFS(v float64) float64 {
	if v <= 0 {
		return math.Inf(-1)
	}
	return 20 * math.Log10(v)
}
