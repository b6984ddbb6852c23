package pcmwav

import (
	"errors"
)

var (
	// ErrEmptyInput means there is not a single frame to encode. Extract
	// never returns such samples, so getting it is a bug in the caller.
	ErrEmptyInput = errors.New("no samples to encode")

	ErrInvalidFormat = errors.New("invalid sample format")
	ErrTooLarge      = errors.New("the data does not fit into a RIFF container")
	ErrInvalidHeader = errors.New("invalid WAV header")
)
