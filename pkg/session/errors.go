package session

import (
	"errors"
)

// ErrAlreadyConsumed is returned by Wait if the session was already
// waited for.
var ErrAlreadyConsumed = errors.New("the session was already consumed")
