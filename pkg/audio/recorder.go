package audio

import (
	"context"
	"io"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/xaionaro-go/ringcapture/pkg/audio/registry"
)

type Recorder struct {
	RecorderPCM
}

func NewRecorder(recorderPCM RecorderPCM) *Recorder {
	return &Recorder{
		RecorderPCM: recorderPCM,
	}
}

var lastSuccessfulRecorderFactory lastSuccessful[registry.RecorderPCMFactory]

// NewRecorderAuto picks the highest-priority recorder backend that works
// on this machine. If none does, a dummy recorder (which never produces
// any data) is returned.
func NewRecorderAuto(
	ctx context.Context,
) *Recorder {
	recorderPCM, err := autoSelect(
		ctx,
		&lastSuccessfulRecorderFactory,
		registry.RecorderFactories(),
		func(factory registry.RecorderPCMFactory) (RecorderPCM, error) {
			return factory.NewRecorderPCM()
		},
	)
	if err != nil {
		logger.Infof(ctx, "was unable to initialize any PCM recorder: %v", err)
		return NewRecorder(RecorderPCMDummy{})
	}
	return NewRecorder(recorderPCM)
}

func (a *Recorder) RecordPCM(
	ctx context.Context,
	sampleRate SampleRate,
	channels Channel,
	pcmFormat PCMFormat,
	pcmWriter io.Writer,
) (RecordStream, error) {
	return a.RecorderPCM.RecordPCM(
		ctx,
		sampleRate,
		channels,
		pcmFormat,
		pcmWriter,
	)
}
