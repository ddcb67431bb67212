package supervisor

import (
	"errors"
	"fmt"
)

// ErrTimeout reports a subprocess that exceeded its step timeout and was
// killed together with its process group.
var ErrTimeout = errors.New("step timed out")

// ErrCancelled reports a subprocess terminated because the operator
// interrupted the run.
var ErrCancelled = errors.New("step cancelled")

// NonZeroExitError reports a subprocess that exited with a code other than
// the step's declared expectation. Output carries the captured stdout and
// stderr for the operator.
type NonZeroExitError struct {
	Code     int
	Expected int
	Output   string
}

func (e *NonZeroExitError) Error() string {
	return fmt.Sprintf("exited with code %d (expected %d)", e.Code, e.Expected)
}
