// Package podlog is the pod's structured logging facade. Ambient concern
// the distilled spec omits (SPEC_FULL.md §6 "Logging"); grounded on
// joeycumines-go-utilpkg/logiface's pluggable-facade idea, narrowed to a
// single log/slog-backed implementation so every module logs one
// structured event per transition/failure without pulling in logiface's
// multi-backend machinery for an app that only ever needs one backend.
package podlog

import (
	"log/slog"
	"os"
)

// Logger is the narrow facade every module depends on. Keeping it an
// interface (rather than depending on *slog.Logger directly) lets tests
// substitute a buffering logger without touching call sites.
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Error(msg string, kv ...any)
	With(kv ...any) Logger
}

type slogLogger struct {
	l *slog.Logger
}

// New returns a Logger writing structured JSON to stderr, named for the
// owning module (e.g. "navigation", "statemachine", "telemetry").
func New(module string) Logger {
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	return &slogLogger{l: slog.New(h).With("module", module)}
}

func (s *slogLogger) Debug(msg string, kv ...any) { s.l.Debug(msg, kv...) }
func (s *slogLogger) Info(msg string, kv ...any)  { s.l.Info(msg, kv...) }
func (s *slogLogger) Error(msg string, kv ...any) { s.l.Error(msg, kv...) }
func (s *slogLogger) With(kv ...any) Logger {
	return &slogLogger{l: s.l.With(kv...)}
}

// Discard is a Logger that drops every record, used by tests that don't
// want log noise.
var Discard Logger = discardLogger{}

type discardLogger struct{}

func (discardLogger) Debug(string, ...any)  {}
func (discardLogger) Info(string, ...any)   {}
func (discardLogger) Error(string, ...any)  {}
func (discardLogger) With(...any) Logger    { return discardLogger{} }
