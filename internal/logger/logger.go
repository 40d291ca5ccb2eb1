// Package logger provides leveled logging for refrag.
//
// Messages below the current level are dropped. The default level is
// LevelWarn, so warnings and errors are always visible; --verbose lowers it
// to LevelDebug. Output goes to stderr so it never mixes with answers on
// stdout.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level is a log severity.
type Level int

// Log levels, lowest first.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// String returns the upper-case level name.
func (l Level) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel parses a level name such as "debug" or "WARN".
// "warning" is accepted as an alias.
func ParseLevel(s string) (Level, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if name == "WARNING" {
		return LevelWarn, nil
	}
	for l, n := range levelNames {
		if n == name {
			return l, nil
		}
	}
	return LevelWarn, fmt.Errorf("unknown log level %q", s)
}

var (
	mu     sync.RWMutex
	level            = LevelWarn
	output io.Writer = os.Stderr
)

// SetLevel sets the minimum level that is printed.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// GetLevel returns the current level.
func GetLevel() Level {
	mu.RLock()
	defer mu.RUnlock()
	return level
}

// SetVerbose switches between LevelDebug and the default LevelWarn.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelWarn)
}

// IsVerbose reports whether debug messages are printed.
func IsVerbose() bool {
	return GetLevel() <= LevelDebug
}

// SetOutput sets the output writer. Tests swap it for a buffer.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(l Level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l < level {
		return
	}
	fmt.Fprintf(output, "[%s] %s\n", l, fmt.Sprintf(format, args...))
}

// Debug logs pipeline detail: strategies, candidate counts, cache hits.
func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }

// Info logs progress such as ingested or loaded row counts.
func Info(format string, args ...any) { logf(LevelInfo, format, args...) }

// Warn logs a degraded but recoverable condition.
func Warn(format string, args ...any) { logf(LevelWarn, format, args...) }

// Error logs a failure.
func Error(format string, args ...any) { logf(LevelError, format, args...) }

// Section prints a stage header in verbose mode.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if level <= LevelDebug {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Timed logs the elapsed time of a stage at debug level when the
// returned function is called.
//
//	defer logger.Timed("retrieval")()
func Timed(stage string) func() {
	start := time.Now()
	return func() {
		Debug("%s took %s", stage, time.Since(start).Round(time.Millisecond))
	}
}
