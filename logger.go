package videosurface

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/gogpu/videosurface/internal/gpu"
	"github.com/gogpu/videosurface/renderloop"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost on the frame path.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from the producer
// and render goroutines.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for videosurface and its sub-packages.
// By default, videosurface produces no log output.
//
// SetLogger is safe for concurrent use: it stores the new logger
// atomically. Pass nil to restore the default silent behavior.
//
// Log levels used:
//   - [slog.LevelDebug]: per-frame events (pulls, coalesced notifications)
//   - [slog.LevelInfo]: lifecycle events (node built, surface destroyed)
//   - [slog.LevelWarn]: non-fatal issues (stale notification dropped,
//     producer release error)
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	// Propagate to sub-packages that cannot import this one.
	gpu.SetLogger(l)
	renderloop.SetLogger(l)
}

// Logger returns the current logger.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// slogger returns the active logger for package-internal use.
func slogger() *slog.Logger {
	return loggerPtr.Load()
}
