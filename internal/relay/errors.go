package relay

import (
	"errors"
	"fmt"
)

// ErrConnectionGone classifies a delivery failure where the peer is no longer
// reachable. Transport adapters must wrap their "gone" condition with it so
// the router can branch on the error kind instead of message text.
var ErrConnectionGone = errors.New("connection gone")

// PersistenceError wraps a failed durable-store read or write. It aborts the
// transition it occurred in: no fanout happens after a failed write.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence: %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
