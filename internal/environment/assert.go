package environment

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/nightjar-editor/nightjar/internal/events"
	"go.uber.org/zap"
)

// ErrMissingCollaborator is returned by New when a required port is nil.
var ErrMissingCollaborator = errors.New("environment: store, project, workspace and windows are required")

// AssertionError reports a violated programmer invariant. Its stack is
// captured at the assertion call site, not inside the helper.
type AssertionError struct {
	Msg      string
	Metadata any
	Stack    string
}

func (e *AssertionError) Error() string { return e.Msg }

// AssertionCallback receives the assertion error instead of having it
// carry metadata.
type AssertionCallback func(*AssertionError)

// Assert checks a programmer invariant. A truthy condition returns true
// with no side effects. On failure every OnDidFailAssertion subscriber
// is notified; unreleased builds then panic with the error (fail fast),
// released builds return false.
//
// extra may carry either a metadata value to attach to the error or an
// AssertionCallback invoked with it.
func (e *Environment) Assert(condition bool, message string, extra ...any) bool {
	if condition {
		return true
	}

	err := &AssertionError{
		Msg:   "Assertion failed: " + message,
		Stack: callSiteStack(1),
	}

	if len(extra) > 0 && extra[0] != nil {
		switch v := extra[0].(type) {
		case AssertionCallback:
			v(err)
		case func(*AssertionError):
			v(err)
		default:
			err.Metadata = v
		}
	}

	if e.opts.Metrics != nil {
		e.opts.Metrics.AssertionFails.Inc()
	}
	e.logger.Error("assertion failed", zap.String("message", message))
	e.didFailAssertion.Emit(err)

	if !e.IsReleasedVersion() {
		panic(err)
	}
	return false
}

// OnDidFailAssertion subscribes fn to assertion failures.
func (e *Environment) OnDidFailAssertion(fn func(*AssertionError)) events.Disposable {
	return e.didFailAssertion.On(fn)
}

// callSiteStack formats the stack starting skip frames above the caller,
// so the trace begins at the assertion site rather than in the helper.
func callSiteStack(skip int) string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&b, "%s\n\t%s:%d\n", frame.Function, frame.File, frame.Line)
		if !more {
			break
		}
	}
	return b.String()
}
