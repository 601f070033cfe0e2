package con

import (
	charmlog "charm.land/log/v2"
)

// Logger is the debug-tracing hook accepted by Options. *charmlog.Logger
// already satisfies it, so library callers that have one of their own need
// no adapter at all; NewLogger exists only for callers configuring a
// destination from scratch.
type Logger interface {
	Debugf(format string, args ...any)
}

// NewLogger returns a Logger backed by charm.land/log/v2, the structured
// logger MacroPower-x depends on directly (its own log package wraps
// log/slog instead of calling into charm.land/log/v2 anywhere in the
// retrieval pack; CON uses the library itself here rather than imitating
// that wrapper, since Options.Logger only ever needs the one Debugf method
// charmlog.Logger already exposes).
func NewLogger() Logger {
	return charmlog.Default()
}

// discardLogger implements Logger by doing nothing; it backs
// NewDiscardLogger for tests that want logf call sites exercised without
// producing output.
type discardLogger struct{}

func (discardLogger) Debugf(string, ...any) {}

// NewDiscardLogger returns a Logger that never writes output.
func NewDiscardLogger() Logger {
	return discardLogger{}
}
