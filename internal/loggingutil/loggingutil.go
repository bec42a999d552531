// Package loggingutil holds small pslog helpers shared by the bridge packages.
package loggingutil

import (
	"fmt"
	"io"
	"strings"

	"pkt.systems/pslog"
)

// EnsureLogger returns l when non-nil, otherwise it returns a disabled logger.
func EnsureLogger(l pslog.Logger) pslog.Logger {
	if l != nil {
		return l
	}
	return pslog.NoopLogger()
}

// WithSubsystem tags l with a "sys" field, skipping empty names.
func WithSubsystem(l pslog.Logger, subsystem string) pslog.Logger {
	l = EnsureLogger(l)
	subsystem = strings.Trim(subsystem, ". ")
	if subsystem == "" {
		return l
	}
	return l.With("sys", subsystem)
}

// New builds a structured logger writing to w at the named level. An empty level means
// info; "none", "off" and "disabled" return a disabled logger. Environment variables
// carrying envPrefix override the defaults the same way they do for any pslog logger.
func New(w io.Writer, envPrefix, level string) (pslog.Logger, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "":
		level = "info"
	case "none", "off", "disabled":
		return pslog.NoopLogger(), nil
	}
	parsed, ok := pslog.ParseLevel(level)
	if !ok {
		return nil, fmt.Errorf("invalid log level %q", level)
	}
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvPrefix(envPrefix),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeStructured, MinLevel: pslog.InfoLevel}),
		pslog.WithEnvWriter(w),
	)
	return logger.LogLevel(parsed), nil
}
