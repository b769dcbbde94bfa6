// Package output provides text and JSON rendering for the poktwallet CLI.
package output

import (
	"encoding/json"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Format selects how command results are printed.
type Format string

// Output formats.
const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatAuto Format = "auto"
)

// Formatter carries the resolved output format for one invocation.
type Formatter struct {
	format Format
}

// NewFormatter creates a formatter. FormatAuto is treated as text.
func NewFormatter(format Format) *Formatter {
	if format == FormatAuto {
		format = FormatText
	}
	return &Formatter{format: format}
}

// Format returns the resolved format.
func (f *Formatter) Format() Format {
	return f.format
}

// IsJSON reports whether results should be printed as JSON.
func (f *Formatter) IsJSON() bool {
	return f.format == FormatJSON
}

// WriteJSON encodes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// DetectFormat resolves FormatAuto: text on a terminal, JSON when piped.
func DetectFormat(w io.Writer, explicit Format) Format {
	if explicit != FormatAuto {
		return explicit
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) { //nolint:gosec // G115: Fd fits in int
		return FormatText
	}
	return FormatJSON
}

// ParseFormat maps a config or flag value to a Format. Unknown values are auto.
func ParseFormat(s string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON
	case FormatText:
		return FormatText
	default:
		return FormatAuto
	}
}
