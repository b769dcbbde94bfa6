// Package errors provides structured error handling for poktwallet.
// It defines sentinel errors, exit codes, and helpers for adding
// context, details, and suggestions to errors.
//
//nolint:revive // Package name intentionally shadows stdlib for domain-specific error handling
package errors

import (
	"errors"
	"fmt"
	"sort"
)

// Exit codes returned by the CLI.
const (
	ExitSuccess     = 0 // Successful execution
	ExitGeneral     = 1 // General/unknown error
	ExitInput       = 2 // Invalid input
	ExitAuth        = 3 // Wrong passphrase or undecryptable secret
	ExitNotFound    = 4 // Resource not found
	ExitUnavailable = 5 // Remote service unreachable or misconfigured
)

// WalletError is the structured error type for poktwallet.
type WalletError struct {
	Code       string            // Machine-readable error code
	Message    string            // Human-readable message
	Details    map[string]string // Additional context
	Suggestion string            // Actionable suggestion for user
	Cause      error             // Underlying error
	ExitCode   int               // Exit code for CLI
}

func (e *WalletError) Error() string {
	msg := e.Message

	if len(e.Details) > 0 {
		keys := make([]string, 0, len(e.Details))
		for k := range e.Details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			msg = fmt.Sprintf("%s (%s: %s)", msg, k, e.Details[k])
		}
	}

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *WalletError) Unwrap() error {
	return e.Cause
}

// Is reports whether target carries the same code.
func (e *WalletError) Is(target error) bool {
	var t *WalletError
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// Sentinel errors.
var (
	ErrGeneral = &WalletError{
		Code:     "GENERAL_ERROR",
		Message:  "an error occurred",
		ExitCode: ExitGeneral,
	}

	ErrInvalidInput = &WalletError{
		Code:     "INVALID_INPUT",
		Message:  "invalid input",
		ExitCode: ExitInput,
	}

	ErrNotFound = &WalletError{
		Code:     "NOT_FOUND",
		Message:  "resource not found",
		ExitCode: ExitNotFound,
	}

	// Credential errors.
	ErrClassificationUnrecognized = &WalletError{
		Code:       "CLASSIFICATION_UNRECOGNIZED",
		Message:    "unrecognized credential format",
		ExitCode:   ExitInput,
		Suggestion: "expected a PPK key file, a JSON wallet export, a hex private key " +
			"(128 chars for Morse, 64 for Shannon), or a 12/24 word mnemonic",
	}

	ErrDerivationFailed = &WalletError{
		Code:     "DERIVATION_FAILED",
		Message:  "could not derive account from secret - wrong passphrase or malformed key",
		ExitCode: ExitAuth,
	}

	ErrImportFailed = &WalletError{
		Code:     "IMPORT_FAILED",
		Message:  "import failed",
		ExitCode: ExitInput,
	}

	ErrInvalidMnemonic = &WalletError{
		Code:     "INVALID_MNEMONIC",
		Message:  "invalid mnemonic phrase",
		ExitCode: ExitInput,
	}

	ErrDecryptionFailed = &WalletError{
		Code:     "DECRYPTION_FAILED",
		Message:  "decryption failed - wrong passphrase or corrupted container",
		ExitCode: ExitAuth,
	}

	// Registry errors.
	ErrRegistryInconsistency = &WalletError{
		Code:     "REGISTRY_INCONSISTENCY",
		Message:  "wallet registry contains duplicate addresses",
		ExitCode: ExitGeneral,
	}

	ErrRecordNotFound = &WalletError{
		Code:     "RECORD_NOT_FOUND",
		Message:  "wallet not found",
		ExitCode: ExitNotFound,
	}

	ErrInvalidAccountModel = &WalletError{
		Code:       "INVALID_ACCOUNT_MODEL",
		Message:    "invalid account model",
		ExitCode:   ExitInput,
		Suggestion: "use 'morse' or 'shannon'",
	}

	// Migration errors.
	ErrNetworkUnavailable = &WalletError{
		Code:     "NETWORK_UNAVAILABLE",
		Message:  "migration service is unavailable",
		ExitCode: ExitUnavailable,
	}

	ErrServiceMisconfigured = &WalletError{
		Code:     "SERVICE_MISCONFIGURED",
		Message:  "migration service is misconfigured",
		ExitCode: ExitUnavailable,
	}

	ErrMigrationRejected = &WalletError{
		Code:     "MIGRATION_REJECTED",
		Message:  "migration rejected",
		ExitCode: ExitGeneral,
	}

	ErrInvalidStage = &WalletError{
		Code:     "INVALID_STAGE",
		Message:  "operation not allowed in the current migration stage",
		ExitCode: ExitInput,
	}

	// Config errors.
	ErrConfigNotFound = &WalletError{
		Code:     "CONFIG_NOT_FOUND",
		Message:  "configuration file not found",
		ExitCode: ExitNotFound,
	}

	ErrConfigInvalid = &WalletError{
		Code:     "CONFIG_INVALID",
		Message:  "configuration file is invalid",
		ExitCode: ExitInput,
	}

	ErrUnknownConfigKey = &WalletError{
		Code:     "UNKNOWN_CONFIG_KEY",
		Message:  "unknown config key",
		ExitCode: ExitInput,
	}
)

// New creates a new WalletError with the given code and message.
func New(code, message string) *WalletError {
	return &WalletError{
		Code:     code,
		Message:  message,
		ExitCode: ExitGeneral,
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}

	msg := fmt.Sprintf(format, args...)

	var we *WalletError
	if errors.As(err, &we) {
		return &WalletError{
			Code:       we.Code,
			Message:    fmt.Sprintf("%s: %s", msg, we.Message),
			Details:    we.Details,
			Suggestion: we.Suggestion,
			Cause:      err,
			ExitCode:   we.ExitCode,
		}
	}

	return &WalletError{
		Code:     "GENERAL_ERROR",
		Message:  msg,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// Because returns a copy of sentinel with message replaced and cause attached.
// The code and exit code are preserved so errors.Is still matches sentinel,
// and cause stays reachable through Unwrap.
func Because(sentinel *WalletError, cause error, format string, args ...any) error {
	return &WalletError{
		Code:       sentinel.Code,
		Message:    fmt.Sprintf(format, args...),
		Details:    sentinel.Details,
		Suggestion: sentinel.Suggestion,
		Cause:      cause,
		ExitCode:   sentinel.ExitCode,
	}
}

// WithDetails adds details to an error.
func WithDetails(err error, details map[string]string) error {
	if err == nil {
		return nil
	}

	var we *WalletError
	if errors.As(err, &we) {
		return &WalletError{
			Code:       we.Code,
			Message:    we.Message,
			Details:    details,
			Suggestion: we.Suggestion,
			Cause:      we.Cause,
			ExitCode:   we.ExitCode,
		}
	}

	return &WalletError{
		Code:     "GENERAL_ERROR",
		Message:  err.Error(),
		Details:  details,
		Cause:    err,
		ExitCode: ExitGeneral,
	}
}

// WithSuggestion adds a suggestion to an error.
func WithSuggestion(err error, suggestion string) error {
	if err == nil {
		return nil
	}

	var we *WalletError
	if errors.As(err, &we) {
		return &WalletError{
			Code:       we.Code,
			Message:    we.Message,
			Details:    we.Details,
			Suggestion: suggestion,
			Cause:      we.Cause,
			ExitCode:   we.ExitCode,
		}
	}

	return &WalletError{
		Code:       "GENERAL_ERROR",
		Message:    err.Error(),
		Suggestion: suggestion,
		Cause:      err,
		ExitCode:   ExitGeneral,
	}
}

// ExitCode returns the appropriate exit code for an error.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var we *WalletError
	if errors.As(err, &we) {
		return we.ExitCode
	}

	return ExitGeneral
}

// Code returns the error code for an error.
func Code(err error) string {
	var we *WalletError
	if errors.As(err, &we) {
		return we.Code
	}
	return "GENERAL_ERROR"
}

// Is wraps errors.Is for convenience.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As wraps errors.As for convenience.
func As(err error, target any) bool {
	return errors.As(err, target)
}
