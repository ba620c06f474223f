package app

import (
	"log/slog"

	"go.uber.org/fx/fxevent"
)

// FxLogger routes fx lifecycle events to the default slog logger at debug
// level so they stay out of normal output.
func FxLogger() fxevent.Logger {
	l := &fxevent.SlogLogger{Logger: slog.Default()}
	l.UseLogLevel(slog.LevelDebug)
	return l
}
