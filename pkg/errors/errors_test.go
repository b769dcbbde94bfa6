package errors_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

var (
	errInner     = errors.New("inner")
	errRootCause = errors.New("root cause")
	errPlain     = errors.New("plain error")
)

func TestExitCodes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"success", nil, walleterr.ExitSuccess},
		{"general error", walleterr.ErrGeneral, walleterr.ExitGeneral},
		{"input error", walleterr.ErrInvalidInput, walleterr.ExitInput},
		{"derivation error", walleterr.ErrDerivationFailed, walleterr.ExitAuth},
		{"not found error", walleterr.ErrRecordNotFound, walleterr.ExitNotFound},
		{"network unavailable", walleterr.ErrNetworkUnavailable, walleterr.ExitUnavailable},
		{"misconfigured", walleterr.ErrServiceMisconfigured, walleterr.ExitUnavailable},
		{"plain error", errPlain, walleterr.ExitGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, walleterr.ExitCode(tt.err))
		})
	}
}

func TestWrapPreservesIdentity(t *testing.T) {
	t.Parallel()

	for _, sentinel := range []*walleterr.WalletError{
		walleterr.ErrGeneral,
		walleterr.ErrImportFailed,
		walleterr.ErrDerivationFailed,
		walleterr.ErrMigrationRejected,
	} {
		wrapped := walleterr.Wrap(sentinel, "wrapped")
		require.ErrorIs(t, wrapped, sentinel)
		assert.Equal(t, sentinel.ExitCode, walleterr.ExitCode(wrapped))
	}
}

func TestWrapNil(t *testing.T) {
	t.Parallel()
	assert.NoError(t, walleterr.Wrap(nil, "context"))
	assert.NoError(t, walleterr.WithDetails(nil, map[string]string{"a": "b"}))
	assert.NoError(t, walleterr.WithSuggestion(nil, "try again"))
}

func TestWrapPlainError(t *testing.T) {
	t.Parallel()
	wrapped := walleterr.Wrap(errInner, "loading %s", "store")
	require.ErrorIs(t, wrapped, errInner)
	assert.Equal(t, "GENERAL_ERROR", walleterr.Code(wrapped))
	assert.Equal(t, "loading store: inner", wrapped.Error())
}

func TestBecause(t *testing.T) {
	t.Parallel()

	cause := walleterr.Because(walleterr.ErrDerivationFailed, errRootCause, "bad key")
	err := walleterr.Because(walleterr.ErrImportFailed, cause, "import failed: %s", "bad key")

	require.ErrorIs(t, err, walleterr.ErrImportFailed)
	require.ErrorIs(t, err, walleterr.ErrDerivationFailed)
	require.ErrorIs(t, err, errRootCause)
	assert.NotErrorIs(t, err, walleterr.ErrMigrationRejected)
	assert.Equal(t, "IMPORT_FAILED", walleterr.Code(err))
	assert.Equal(t, walleterr.ExitInput, walleterr.ExitCode(err))
}

func TestWithDetailsSortedInMessage(t *testing.T) {
	t.Parallel()
	err := walleterr.WithDetails(walleterr.ErrMigrationRejected, map[string]string{
		"status": "500",
		"body":   "boom",
	})
	assert.Equal(t, "migration rejected (body: boom) (status: 500)", err.Error())
}

func TestWithSuggestion(t *testing.T) {
	t.Parallel()
	err := walleterr.WithSuggestion(walleterr.ErrInvalidInput, "use --model")

	var we *walleterr.WalletError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, "use --model", we.Suggestion)
	assert.Equal(t, "INVALID_INPUT", we.Code)

	plain := walleterr.WithSuggestion(errPlain, "retry")
	require.ErrorAs(t, plain, &we)
	assert.Equal(t, "GENERAL_ERROR", we.Code)
	assert.Equal(t, "retry", we.Suggestion)
}

func TestCodeOfPlainError(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "GENERAL_ERROR", walleterr.Code(errPlain))
	assert.Equal(t, "NETWORK_UNAVAILABLE", walleterr.Code(walleterr.ErrNetworkUnavailable))
}
