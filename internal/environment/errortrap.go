package environment

import (
	"github.com/nightjar-editor/nightjar/internal/events"
	"go.uber.org/zap"
)

// ErrorEvent describes one uncaught error routed through the host trap.
// Pre-hook subscribers may call PreventDefault to suppress the default
// diagnostic action; post-hook subscribers observe the same descriptor
// but cannot influence handling.
type ErrorEvent struct {
	Message  string
	URL      string
	Line     int
	Column   int
	Original error

	handled bool
}

// PreventDefault marks the event handled, suppressing the default
// diagnostic-panel action.
func (ev *ErrorEvent) PreventDefault() { ev.handled = true }

// Handled reports whether a pre-hook subscriber suppressed the default
// action.
func (ev *ErrorEvent) Handled() bool { return ev.handled }

// HandleUncaughtError is the handler the environment installs on the
// host error trap. It runs the two-phase hook sequence: pre-hooks that
// may suppress the default action, the default diagnostic action, then
// the informational post-hooks.
func (e *Environment) HandleUncaughtError(ev *ErrorEvent) {
	if ev == nil {
		return
	}

	if e.opts.Metrics != nil {
		e.opts.Metrics.UncaughtErrors.Inc()
	}
	e.logger.Error("uncaught error",
		zap.String("error_message", ev.Message),
		zap.String("url", ev.URL),
		zap.Int("line", ev.Line),
		zap.Int("column", ev.Column),
		zap.Error(ev.Original))

	e.willThrowError.Emit(ev)

	if !ev.Handled() && e.opts.Diagnostics != nil {
		if err := e.opts.Diagnostics.OpenPanel(); err != nil {
			e.logger.Warn("failed to open diagnostic panel", zap.Error(err))
		} else if err := e.opts.Diagnostics.RunDiagnostic(); err != nil {
			e.logger.Warn("failed to run diagnostic", zap.Error(err))
		}
	}

	e.didThrowError.Emit(ev)
}

// OnWillThrowError subscribes fn to uncaught errors before the default
// action runs; fn may call PreventDefault on the event.
func (e *Environment) OnWillThrowError(fn func(*ErrorEvent)) events.Disposable {
	return e.willThrowError.On(fn)
}

// OnDidThrowError subscribes fn to uncaught errors after handling;
// purely informational.
func (e *Environment) OnDidThrowError(fn func(*ErrorEvent)) events.Disposable {
	return e.didThrowError.On(fn)
}
