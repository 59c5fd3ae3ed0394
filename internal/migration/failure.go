package migration

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"
)

// Failure is one step that aborted.
type Failure struct {
	Step    string
	Message string
	Source  string // file:line where the error was raised, when known
}

func (f Failure) String() string {
	if f.Source == "" {
		return fmt.Sprintf("%s: %s", f.Step, f.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", f.Step, f.Message, f.Source)
}

type tracedError struct {
	err    error
	source string
}

func (e *tracedError) Error() string { return e.err.Error() }
func (e *tracedError) Unwrap() error { return e.err }

// Trace records the caller's file and line on err so the final report can
// point at the place a step failed. Already traced errors are returned as is.
func Trace(err error) error {
	if err == nil {
		return nil
	}
	var t *tracedError
	if errors.As(err, &t) {
		return err
	}
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		return err
	}
	return &tracedError{err: err, source: fmt.Sprintf("%s:%d", filepath.Base(file), line)}
}

// Tracef formats an error and traces it at the caller.
func Tracef(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		return err
	}
	return &tracedError{err: err, source: fmt.Sprintf("%s:%d", filepath.Base(file), line)}
}

// SourceOf returns the location recorded by Trace, or "".
func SourceOf(err error) string {
	var t *tracedError
	if errors.As(err, &t) {
		return t.source
	}
	return ""
}

// panicSource walks the stack of a recovering goroutine and returns the
// first frame outside the runtime, which is where the panic was raised.
func panicSource() string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !strings.HasPrefix(frame.Function, "runtime.") {
			return fmt.Sprintf("%s:%d", filepath.Base(frame.File), frame.Line)
		}
		if !more {
			return ""
		}
	}
}
