package pulseaudio

import (
	"fmt"

	"github.com/jfreymuth/pulse"
)

// RecordStream does not own the Pulse client: the client belongs to
// RecorderPCM and is closed together with it.
type RecordStream struct {
	*pulse.RecordStream
}

func newRecordStream(
	pulseStream *pulse.RecordStream,
) *RecordStream {
	return &RecordStream{
		RecordStream: pulseStream,
	}
}

func (stream *RecordStream) Close() (err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("got a panic: %v", r)
		}
	}()
	stream.RecordStream.Stop()
	stream.RecordStream.Close()
	if stream.Error() != nil {
		return fmt.Errorf("an error occurred during recording: %w", stream.Error())
	}
	return nil
}
