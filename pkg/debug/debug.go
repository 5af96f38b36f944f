// Package debug provides conditional debug logging for affectmap.
//
// Debug logging is enabled by setting the AFFECTMAP_DEBUG environment variable
// or passing --debug:
//
//	AFFECTMAP_DEBUG=1 affectmap --data words.json
//
// When enabled, debug messages are written to stderr (or the writer given to
// SetOutput, which the TUI points at a log file) with timestamps. When
// disabled, all debug functions are no-ops.
package debug

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// EnvVar enables debug logging when set to any non-empty value.
const EnvVar = "AFFECTMAP_DEBUG"

const prefix = "[AFFECTMAP] "

var (
	mu      sync.RWMutex
	enabled bool
	logger  *log.Logger
)

func init() {
	if os.Getenv(EnvVar) != "" {
		enabled = true
		logger = newLogger(os.Stderr)
	}
}

func newLogger(w io.Writer) *log.Logger {
	return log.New(w, prefix, log.Ltime|log.Lmicroseconds)
}

// Enabled returns whether debug logging is enabled.
func Enabled() bool {
	mu.RLock()
	defer mu.RUnlock()
	return enabled
}

// SetEnabled allows programmatic control of debug logging.
func SetEnabled(e bool) {
	mu.Lock()
	defer mu.Unlock()
	enabled = e
	if e && logger == nil {
		logger = newLogger(os.Stderr)
	}
}

// SetOutput redirects debug output. A full-screen TUI owns stderr, so the
// viewer sends debug lines to a file instead.
// A nil writer restores stderr.
func SetOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	mu.Lock()
	defer mu.Unlock()
	logger = newLogger(w)
}

func active() *log.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if !enabled {
		return nil
	}
	return logger
}

// Log writes a debug message if debug logging is enabled.
// Uses printf-style formatting.
func Log(format string, args ...any) {
	if l := active(); l != nil {
		l.Printf(format, args...)
	}
}

// LogTiming writes a timing message if debug logging is enabled.
func LogTiming(name string, d time.Duration) {
	if l := active(); l != nil {
		l.Printf("%s took %v", name, d)
	}
}

// Assert logs a message and panics if the condition is false.
// Only active when debug is enabled.
func Assert(cond bool, msg string) {
	l := active()
	if l == nil || cond {
		return
	}
	l.Printf("ASSERTION FAILED: %s", msg)
	panic(fmt.Sprintf("debug assertion failed: %s", msg))
}

// AssertNoError logs and panics if err is not nil.
// Only active when debug is enabled.
func AssertNoError(err error, context string) {
	l := active()
	if l == nil || err == nil {
		return
	}
	l.Printf("ASSERTION FAILED: %s: %v", context, err)
	panic(fmt.Sprintf("debug assertion failed: %s: %v", context, err))
}
