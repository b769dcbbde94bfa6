package output

import (
	"fmt"
	"io"
	"sync/atomic"
)

var plain atomic.Bool

// SetColor toggles the emoji prefixes on status messages.
func SetColor(enabled bool) {
	plain.Store(!enabled)
}

func prefix(fancy, basic string) string {
	if plain.Load() {
		return basic
	}
	return fancy
}

// Info prints an informational message with an info prefix.
func Info(w io.Writer, msg string) {
	_, _ = fmt.Fprintln(w, prefix("ℹ️  ", "info: ")+msg)
}

// Infof prints a formatted informational message.
func Infof(w io.Writer, format string, args ...any) {
	Info(w, fmt.Sprintf(format, args...))
}

// Warn prints a warning message with a warning prefix.
func Warn(w io.Writer, msg string) {
	_, _ = fmt.Fprintln(w, prefix("⚠️  ", "warning: ")+msg)
}

// Warnf prints a formatted warning message.
func Warnf(w io.Writer, format string, args ...any) {
	Warn(w, fmt.Sprintf(format, args...))
}

// Success prints a success message with a success prefix.
func Success(w io.Writer, msg string) {
	_, _ = fmt.Fprintln(w, prefix("✅ ", "ok: ")+msg)
}

// Successf prints a formatted success message.
func Successf(w io.Writer, format string, args ...any) {
	Success(w, fmt.Sprintf(format, args...))
}
