package parser

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates the input file does not exist.
	ErrNotFound = errors.New("file not found")
	// ErrUnreadable indicates no registered parser accepted the file.
	ErrUnreadable = errors.New("cannot read file")
)

// LoadError reports a failed table load for a specific path. Both kinds are
// fatal to a dashboard render.
type LoadError struct {
	Path string
	Op   string // stat, read or parse
	Err  error  // ErrNotFound or ErrUnreadable
	// Cause holds the underlying stat/read/parse failures.
	Cause error
}

func (e *LoadError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Path, e.Err, e.Cause)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *LoadError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Err}
	}
	return []error{e.Err, e.Cause}
}

// UserMessage is the message shown when a render halts on this error.
func (e *LoadError) UserMessage() string {
	if errors.Is(e.Err, ErrNotFound) {
		return "File not found: " + e.Path
	}
	return "Cannot read file: " + e.Path
}
