package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

// Prompt hooks, replaced in tests.
//
//nolint:gochecknoglobals // swapped by tests
var (
	promptPasswordFn = promptPassword
	promptLineFn     = promptLine
	promptConfirmFn  = promptConfirm
)

// stdinReader is shared so buffered input is not lost between prompts.
//
//nolint:gochecknoglobals // one reader per process stdin
var stdinReader = bufio.NewReader(os.Stdin)

// out is a helper for CLI output that ignores write errors (standard pattern for CLI tools).
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func out(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format, args...)
}

// outln is a helper for CLI output with newline.
//
//nolint:errcheck // CLI output writes to stdout are intentionally unchecked
func outln(w io.Writer, args ...any) {
	fmt.Fprintln(w, args...)
}

// promptPassword prompts for a secret with hidden input.
// The caller is responsible for zeroing the returned bytes after use.
func promptPassword(prompt string) ([]byte, error) {
	out(os.Stderr, "%s", prompt)

	password, err := term.ReadPassword(syscall.Stdin)
	outln(os.Stderr) // Add newline after hidden input

	if err != nil {
		return nil, fmt.Errorf("reading password: %w", err)
	}

	return password, nil
}

// promptLine reads one line of visible input.
func promptLine(prompt string) (string, error) {
	out(os.Stderr, "%s", prompt)

	line, err := stdinReader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", walleterr.WithSuggestion(walleterr.ErrInvalidInput, "no input provided")
	}
	return strings.TrimSpace(line), nil
}

// promptConfirm asks a yes/no question, defaulting to no.
func promptConfirm(question string) bool {
	response, err := promptLineFn(question + " [y/N]: ")
	if err != nil {
		return false
	}

	response = strings.ToLower(response)
	return response == "y" || response == "yes"
}

// isTerminal reports whether r is an interactive terminal.
func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // Fd fits in int
}

// readCredential returns the credential from flag, stdin, or an interactive
// prompt, in that order.
func readCredential(in io.Reader, flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}

	if !isTerminal(in) {
		data, err := io.ReadAll(io.LimitReader(in, 1<<20))
		if err != nil {
			return "", fmt.Errorf("reading input: %w", err)
		}
		if s := strings.TrimSpace(string(data)); s != "" {
			return s, nil
		}
		return "", walleterr.WithSuggestion(walleterr.ErrInvalidInput, "no input provided; use --input or pipe the credential on stdin")
	}

	return promptLineFn(prompt)
}

// readPassphrase prompts for an optional passphrase when asked to.
func readPassphrase(enabled bool, prompt string) (string, error) {
	if !enabled {
		return "", nil
	}
	pw, err := promptPasswordFn(prompt)
	if err != nil {
		return "", err
	}
	defer clear(pw)
	return string(pw), nil
}
