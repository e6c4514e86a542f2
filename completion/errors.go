package completion

import (
	"errors"
	"fmt"
)

// ErrStopped is returned by MarkComplete/AckAll after the worker has exited,
// either via Close or because a flush hit a fatal error.
var ErrStopped = errors.New("completion handler stopped")

// FatalError reports a flush step that cannot be recovered from locally:
// a serialize or emit failure means the buffered batch can neither be
// confirmed downstream nor safely dropped, so the handler clears its buffers
// and stops. A supervising layer decides whether to restart the process;
// un-deleted messages come back through the queue's visibility timeout.
type FatalError struct {
	Op  string
	Err error
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("completion %s: %v", e.Op, e.Err)
}

func (e *FatalError) Unwrap() error { return e.Err }
