package voxel

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSetLoggerRoundTrip(t *testing.T) {
	defer SetLogger(nil)

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))

	Logger().Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("log output missing message: %q", buf.String())
	}

	// Nil restores the silent default.
	SetLogger(nil)
	buf.Reset()
	Logger().Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("silent logger produced output: %q", buf.String())
	}
}

func TestNopLoggerDisabled(t *testing.T) {
	defer SetLogger(nil)
	SetLogger(nil)

	// The nop handler reports disabled, so formatting is skipped entirely.
	if Logger().Enabled(context.Background(), slog.LevelError) {
		t.Error("nop logger reports enabled")
	}
}

// loggerUploader records logger propagation.
type loggerUploader struct {
	logger *slog.Logger
}

func (u *loggerUploader) Name() string                   { return "test" }
func (u *loggerUploader) Init() error                    { return nil }
func (u *loggerUploader) Close()                         {}
func (u *loggerUploader) Upload(*Mesh) (Releaser, error) { return nil, nil }
func (u *loggerUploader) SetLogger(l *slog.Logger)       { u.logger = l }

func TestSetLoggerPropagatesToUploader(t *testing.T) {
	defer SetLogger(nil)

	up := &loggerUploader{}
	if err := RegisterUploader(up); err != nil {
		t.Fatalf("RegisterUploader failed: %v", err)
	}
	if up.logger == nil {
		t.Fatal("registration did not propagate the logger")
	}

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	SetLogger(custom)
	if up.logger != custom {
		t.Error("SetLogger did not propagate to the uploader")
	}
}
