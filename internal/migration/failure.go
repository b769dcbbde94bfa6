package migration

import (
	"errors"
	"net/http"
	"strings"

	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

// User-facing messages per failure class.
const (
	msgConnectionRefused = "cannot reach the migration service; make sure it is running and the URL is correct"
	msgGatewayDown       = "the migration service is temporarily unavailable behind its gateway; try again later"
	msgToolMissing       = "the migration service cannot run pocketd; check that it is installed and configured on the service host"
	msgRejected          = "the migration service rejected the request"
)

// Markers are phrases, never bare numbers or tool names.
//
//nolint:gochecknoglobals // substring tables
var (
	connectionRefusedMarkers = []string{"connection refused", "econnrefused"}
	gatewayMarkers           = []string{"bad gateway", "service unavailable", "gateway timeout", "gateway time-out"}
	toolMarkers              = []string{
		"pocketd not found", "pocketd: not found", "command not found",
		"executable file not found", "enoent", "not installed", "missing binary",
	}
)

// ClassifyFailure maps a remote failure message to NETWORK_UNAVAILABLE,
// SERVICE_MISCONFIGURED, or MIGRATION_REJECTED. The original message is
// kept as the cause.
func ClassifyFailure(message string) error {
	cause := errors.New(message)
	lower := strings.ToLower(message)

	switch {
	case containsAny(lower, connectionRefusedMarkers):
		return walleterr.Because(walleterr.ErrNetworkUnavailable, cause, msgConnectionRefused)
	case containsAny(lower, gatewayMarkers):
		return walleterr.Because(walleterr.ErrNetworkUnavailable, cause, msgGatewayDown)
	case containsAny(lower, toolMarkers):
		return walleterr.Because(walleterr.ErrServiceMisconfigured, cause, msgToolMissing)
	default:
		return walleterr.Because(walleterr.ErrMigrationRejected, cause, msgRejected)
	}
}

// classifyStatus classifies a non-2xx response. Gateway status codes win
// over whatever the body says.
func classifyStatus(status int, message string) error {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return walleterr.Because(walleterr.ErrNetworkUnavailable, errors.New(message), msgGatewayDown)
	default:
		return ClassifyFailure(message)
	}
}

// transportFailure wraps an error that produced no HTTP response.
func transportFailure(err error) error {
	return walleterr.Because(walleterr.ErrNetworkUnavailable, err, msgConnectionRefused)
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
