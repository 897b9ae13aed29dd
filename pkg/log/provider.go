// Package log provides the default slog-backed logger provider.
//
// This file wires the Logger interface to Go's log/slog with the
// cockroachdb/errors stacktrace handler, and exposes package-level accessors
// used throughout stattest. A custom LoggerProvider can be installed with
// SetProvider for applications that bring their own logging stack.

package log

import (
	"context"
	"log/slog"
	"os"
	"sync"
)

// slogLogger adapts a *slog.Logger to the Logger interface.
type slogLogger struct {
	logger *slog.Logger
}

// Debug implements Logger.Debug.
func (l *slogLogger) Debug(msg string, fields ...any) {
	l.logger.Debug(msg, fields...)
}

// Info implements Logger.Info.
func (l *slogLogger) Info(msg string, fields ...any) {
	l.logger.Info(msg, fields...)
}

// Warn implements Logger.Warn.
func (l *slogLogger) Warn(msg string, fields ...any) {
	l.logger.Warn(msg, fields...)
}

// Error implements Logger.Error.
func (l *slogLogger) Error(msg string, fields ...any) {
	l.logger.Error(msg, fields...)
}

// With implements Logger.With.
func (l *slogLogger) With(fields ...any) Logger {
	return &slogLogger{logger: l.logger.With(fields...)}
}

// Enabled implements Logger.Enabled.
func (l *slogLogger) Enabled(ctx context.Context, level Level) bool {
	return l.logger.Enabled(ctx, slog.Level(level))
}

// defaultProvider is the slog-backed LoggerProvider used when no custom
// provider has been installed. Output goes to stderr as JSON, with stack
// traces extracted from cockroachdb/errors values.
type defaultProvider struct {
	level *slog.LevelVar
	root  Logger
}

func newDefaultProvider() *defaultProvider {
	level := &slog.LevelVar{}
	level.Set(slog.LevelWarn)

	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	root := &slogLogger{logger: slog.New(WrapByErrFmtHandler(handler))}

	return &defaultProvider{level: level, root: root}
}

// GetLogger implements LoggerProvider.GetLogger.
func (p *defaultProvider) GetLogger() Logger {
	return p.root
}

// GetLoggerWithName implements LoggerProvider.GetLoggerWithName.
func (p *defaultProvider) GetLoggerWithName(name string) Logger {
	return p.root.With(ComponentKey, name)
}

// SetLevel implements LoggerProvider.SetLevel.
func (p *defaultProvider) SetLevel(level Level) {
	p.level.Set(slog.Level(level))
}

var (
	providerMu sync.RWMutex
	provider   LoggerProvider = newDefaultProvider()
)

// SetProvider installs a custom LoggerProvider as the global provider.
// Passing nil restores the default slog-backed provider.
func SetProvider(p LoggerProvider) {
	providerMu.Lock()
	defer providerMu.Unlock()
	if p == nil {
		p = newDefaultProvider()
	}
	provider = p
}

// GetLogger returns the default logger from the global provider.
func GetLogger() Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLogger()
}

// GetLoggerWithName returns a logger tagged with a component name from the
// global provider.
func GetLoggerWithName(name string) Logger {
	providerMu.RLock()
	defer providerMu.RUnlock()
	return provider.GetLoggerWithName(name)
}

// SetLevel sets the minimum log level on the global provider.
func SetLevel(level Level) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	provider.SetLevel(level)
}
