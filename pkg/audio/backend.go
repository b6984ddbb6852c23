package audio

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/hashicorp/go-multierror"
)

type pingCloser interface {
	io.Closer
	Ping(context.Context) error
}

type lastSuccessful[F any] struct {
	locker  sync.Mutex
	factory *F
}

func (l *lastSuccessful[F]) get() *F {
	l.locker.Lock()
	defer l.locker.Unlock()
	return l.factory
}

func (l *lastSuccessful[F]) set(factory F) {
	l.locker.Lock()
	defer l.locker.Unlock()
	l.factory = &factory
}

// autoSelect returns the first backend (in the order of factories) that
// could be both initialized and pinged. The factory that succeeded last
// time is tried first.
func autoSelect[F any, T pingCloser](
	ctx context.Context,
	last *lastSuccessful[F],
	factories []F,
	newBackend func(F) (T, error),
) (T, error) {
	if factory := last.get(); factory != nil {
		backend, err := newBackend(*factory)
		if err == nil {
			if err := backend.Ping(ctx); err == nil {
				return backend, nil
			}
			backend.Close()
		}
	}

	var mErr *multierror.Error
	for _, factory := range factories {
		backend, err := newBackend(factory)
		logger.Debugf(ctx, "initializing a backend using %T result is %v", factory, err)
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to initialize a backend using %T: %w", factory, err))
			continue
		}

		err = backend.Ping(ctx)
		logger.Debugf(ctx, "pinging %T result is %v", backend, err)
		if err != nil {
			mErr = multierror.Append(mErr, fmt.Errorf("unable to ping %T: %w", backend, err))
			backend.Close()
			continue
		}

		last.set(factory)
		return backend, nil
	}

	var zero T
	if mErr == nil {
		return zero, fmt.Errorf("no backends registered")
	}
	return zero, mErr.ErrorOrNil()
}
