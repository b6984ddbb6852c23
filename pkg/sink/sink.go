// Package sink persists or transmits encoded recordings.
package sink

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/xaionaro-go/ringcapture/pkg/metrics"
)

type Sink interface {
	// Store persists wav under the given name. name is a forward-slash
	// separated relative path.
	Store(ctx context.Context, name string, wav []byte) error
}

// NameFor returns the name of a recording made at the given time.
func NameFor(t time.Time) string {
	return "recording-" + t.UTC().Format("20060102-150405.000") + ".wav"
}

// Multi stores a recording into every sink, even if some of them fail.
type Multi []Sink

var _ Sink = Multi(nil)

func (m Multi) Store(ctx context.Context, name string, wav []byte) error {
	var mErr *multierror.Error
	for idx, s := range m {
		if err := s.Store(ctx, name, wav); err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("sink #%d (%T): %w", idx, s, err))
		}
	}
	return mErr.ErrorOrNil()
}

// Instrumented counts store attempts of a sink.
type Instrumented struct {
	Name    string
	Sink    Sink
	Metrics *metrics.Metrics
}

var _ Sink = (*Instrumented)(nil)

func (s *Instrumented) Store(ctx context.Context, name string, wav []byte) error {
	err := s.Sink.Store(ctx, name, wav)
	s.Metrics.ObserveStore(s.Name, err)
	return err
}
