package classify

import (
	"errors"
	"fmt"
)

// ErrClassificationCall marks a failed call to the classification capability.
var ErrClassificationCall = errors.New("classification call failed")

// CallError records which item failed and why. Items that fail are skipped,
// never retried.
type CallError struct {
	Index int
	Err   error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("item %d: %v", e.Index, e.Err)
}

func (e *CallError) Unwrap() error { return e.Err }

// Is reports true for ErrClassificationCall so callers can match the kind
// without caring about the underlying transport error.
func (e *CallError) Is(target error) bool {
	return target == ErrClassificationCall
}
