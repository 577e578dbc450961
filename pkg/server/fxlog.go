package server

import (
	"github.com/charmbracelet/log"
	"go.uber.org/fx/fxevent"
)

// fxLogger forwards fx lifecycle events to the server logger. Successful
// events are debug noise; failures are errors.
type fxLogger struct {
	logger *log.Logger
}

var _ fxevent.Logger = (*fxLogger)(nil)

func (l *fxLogger) LogEvent(event fxevent.Event) {
	switch e := event.(type) {
	case *fxevent.OnStartExecuted:
		if e.Err != nil {
			l.logger.Error("start hook failed", "callee", e.FunctionName, "err", e.Err)
			return
		}
		l.logger.Debug("start hook", "callee", e.FunctionName, "runtime", e.Runtime)
	case *fxevent.OnStopExecuted:
		if e.Err != nil {
			l.logger.Error("stop hook failed", "callee", e.FunctionName, "err", e.Err)
			return
		}
		l.logger.Debug("stop hook", "callee", e.FunctionName, "runtime", e.Runtime)
	case *fxevent.Provided:
		if e.Err != nil {
			l.logger.Error("provide failed", "constructor", e.ConstructorName, "err", e.Err)
			return
		}
		l.logger.Debug("provided", "constructor", e.ConstructorName, "types", e.OutputTypeNames)
	case *fxevent.Invoked:
		if e.Err != nil {
			l.logger.Error("invoke failed", "function", e.FunctionName, "err", e.Err)
		}
	case *fxevent.Started:
		if e.Err != nil {
			l.logger.Error("start failed", "err", e.Err)
			return
		}
		l.logger.Debug("started")
	case *fxevent.Stopped:
		if e.Err != nil {
			l.logger.Error("stop failed", "err", e.Err)
			return
		}
		l.logger.Debug("stopped")
	}
}
