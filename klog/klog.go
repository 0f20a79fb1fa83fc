// Package klog is the kernel debug log collaborator: a variadic
// Debug(level, format, ...) taking a severity. It is backed by
// github.com/joeycumines/logiface, using github.com/joeycumines/izerolog
// (github.com/rs/zerolog) as the concrete writer.
package klog

import (
	"os"
	"sync"

	"github.com/joeycumines/izerolog"
	"github.com/joeycumines/logiface"
	"github.com/rs/zerolog"
)

// Level is the log severity: INFO/WARN/ERR, plus Debug for
// development builds. It maps directly onto logiface's syslog levels.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelErr
)

func (l Level) logifaceLevel() logiface.Level {
	switch l {
	case LevelDebug:
		return logiface.LevelDebug
	case LevelInfo:
		return logiface.LevelInformational
	case LevelWarn:
		return logiface.LevelWarning
	case LevelErr:
		return logiface.LevelError
	default:
		return logiface.LevelInformational
	}
}

var (
	mu      sync.RWMutex
	current = logiface.New(izerolog.WithZerolog(zerolog.New(os.Stderr).With().Timestamp().Logger()))
)

// SetOutput reconfigures the package-level logger to write through w;
// it takes no level of its own. Intended for use by a kernel's own boot
// code, or by tests that want to capture log output.
func SetOutput(w *zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	current = logiface.New(izerolog.WithZerolog(*w))
}

// Debug logs a formatted message at the given severity. Arguments are
// applied with fmt-style formatting via the builder's Logf.
func Debug(level Level, format string, args ...any) {
	mu.RLock()
	l := current
	mu.RUnlock()
	l.Build(level.logifaceLevel()).Logf(format, args...)
}
