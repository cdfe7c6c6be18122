// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gst

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler discards all log records.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := slog.New(nopHandler{})
	loggerPtr.Store(l)
}

// SetLogger configures logging for the GStreamer producer. This package
// is not reached by videosurface.SetLogger, so hosts that want pipeline
// logs set it here explicitly. Pass nil to silence.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

func slogger() *slog.Logger {
	return loggerPtr.Load()
}
