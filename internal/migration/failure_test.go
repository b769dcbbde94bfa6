package migration

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

func TestClassifyFailure(t *testing.T) {
	t.Parallel()

	tests := []struct {
		message string
		want    *walleterr.WalletError
		user    string
	}{
		{"connect ECONNREFUSED 127.0.0.1:3001", walleterr.ErrNetworkUnavailable, msgConnectionRefused},
		{"dial tcp: connection refused", walleterr.ErrNetworkUnavailable, msgConnectionRefused},
		{"502 Bad Gateway", walleterr.ErrNetworkUnavailable, msgGatewayDown},
		{"Service Unavailable", walleterr.ErrNetworkUnavailable, msgGatewayDown},
		{"upstream gateway timeout", walleterr.ErrNetworkUnavailable, msgGatewayDown},
		{"spawn pocketd ENOENT", walleterr.ErrServiceMisconfigured, msgToolMissing},
		{"sh: pocketd: command not found", walleterr.ErrServiceMisconfigured, msgToolMissing},
		{"missing binary", walleterr.ErrServiceMisconfigured, msgToolMissing},
		{"pocketd: not found", walleterr.ErrServiceMisconfigured, msgToolMissing},
		{"exec: \"pocketd\": executable file not found in $PATH", walleterr.ErrServiceMisconfigured, msgToolMissing},
		{"insufficient funds", walleterr.ErrMigrationRejected, msgRejected},
		{"insufficient funds: balance 15030upokt", walleterr.ErrMigrationRejected, msgRejected},
		{"morse account already claimed at height 502114", walleterr.ErrMigrationRejected, msgRejected},
		{"invalid signature for pocketd claim", walleterr.ErrMigrationRejected, msgRejected},
		{"gateway address mismatch", walleterr.ErrMigrationRejected, msgRejected},
		{"", walleterr.ErrMigrationRejected, msgRejected},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			t.Parallel()
			err := ClassifyFailure(tt.message)
			require.ErrorIs(t, err, tt.want)

			var we *walleterr.WalletError
			require.ErrorAs(t, err, &we)
			assert.Equal(t, tt.user, we.Message)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestClassifyStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		message string
		want    *walleterr.WalletError
		user    string
	}{
		{"502 with json error", http.StatusBadGateway, "upstream closed", walleterr.ErrNetworkUnavailable, msgGatewayDown},
		{"503", http.StatusServiceUnavailable, "try later", walleterr.ErrNetworkUnavailable, msgGatewayDown},
		{"504", http.StatusGatewayTimeout, "504 Gateway Timeout", walleterr.ErrNetworkUnavailable, msgGatewayDown},
		{"400 mentioning 503", http.StatusBadRequest, "claim 503 already processed", walleterr.ErrMigrationRejected, msgRejected},
		{"500 falls back to message", http.StatusInternalServerError, "spawn pocketd ENOENT", walleterr.ErrServiceMisconfigured, msgToolMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := classifyStatus(tt.status, tt.message)
			require.ErrorIs(t, err, tt.want)

			var we *walleterr.WalletError
			require.ErrorAs(t, err, &we)
			assert.Equal(t, tt.user, we.Message)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}
