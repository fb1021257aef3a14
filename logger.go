package voxel

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// The Enabled method returns false so the caller skips message formatting
// entirely, making disabled logging effectively zero-cost.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	l := newNopLogger()
	loggerPtr.Store(l)
}

// SetLogger configures the logger for voxel and all its sub-packages.
// By default, voxel produces no log output. Call SetLogger to enable logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by voxel:
//   - [slog.LevelDebug]: internal diagnostics (per-chunk build timing, budget changes)
//   - [slog.LevelInfo]: important lifecycle events (session start/finish)
//   - [slog.LevelWarn]: non-fatal issues (skipped chunks, resource release errors)
//
// Example:
//
//	// Enable info-level logging to stderr:
//	voxel.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	voxel.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	// Propagate to the mesh uploader if it supports logging.
	uploaderMu.RLock()
	u := uploader
	uploaderMu.RUnlock()
	if u != nil {
		propagateLogger(u, l)
	}
}

// Logger returns the current logger used by voxel.
// Sub-packages (render/, integration/ebitenloop/) call this to share the
// same logger configuration without introducing import cycles.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// loggerSetter is implemented by uploaders that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes the logger to an uploader if it implements the
// loggerSetter interface. Called from both SetLogger and RegisterUploader
// to ensure the uploader always has the current logger.
func propagateLogger(u MeshUploader, l *slog.Logger) {
	if ls, ok := u.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}
