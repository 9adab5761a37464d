package table

import (
	"errors"
	"fmt"
)

var (
	// ErrInputFormat is matched by every *InputFormatError.
	ErrInputFormat = errors.New("input format error")
	// ErrOutputWrite is matched by every *OutputWriteError.
	ErrOutputWrite = errors.New("output write error")
)

// InputFormatError reports an input table that cannot be used, most often
// because the required column is missing.
type InputFormatError struct {
	Source string
	Column string
	Reason string
}

func (e *InputFormatError) Error() string {
	src := e.Source
	if src == "" {
		src = "input"
	}
	if e.Column != "" {
		return fmt.Sprintf("%s: %s (column %q)", src, e.Reason, e.Column)
	}
	return fmt.Sprintf("%s: %s", src, e.Reason)
}

func (e *InputFormatError) Is(target error) bool { return target == ErrInputFormat }

// OutputWriteError reports a table that cannot be written.
type OutputWriteError struct {
	Reason string
	Err    error
}

func (e *OutputWriteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot write output table: %s: %v", e.Reason, e.Err)
	}
	return "cannot write output table: " + e.Reason
}

func (e *OutputWriteError) Unwrap() error { return e.Err }

func (e *OutputWriteError) Is(target error) bool { return target == ErrOutputWrite }
