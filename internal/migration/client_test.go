package migration

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/poktwallet/internal/metrics"
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

func newTestClient(t *testing.T, f *fakeService) (*Client, *metrics.Metrics) {
	t.Helper()
	srv := f.start(t)
	m := &metrics.Metrics{}
	return NewClient(&ClientOptions{BaseURL: srv.URL + "/", Timeout: 5 * time.Second, Metrics: m}), m
}

func TestNewClientDefaults(t *testing.T) {
	t.Parallel()

	c := NewClient(nil)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultHealthPath, c.healthPath)
	assert.Equal(t, DefaultMigratePath, c.migratePath)
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
}

func TestClientHealth(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()
		c, m := newTestClient(t, newFakeService())
		h, err := c.Health(ctx)
		require.NoError(t, err)
		assert.Equal(t, "ok", h.Status)
		assert.Equal(t, int64(1), m.Snapshot().RemoteCallsTotal)
	})

	t.Run("pocketd unavailable", func(t *testing.T) {
		t.Parallel()
		f := newFakeService()
		f.healthBody = `{"status":"ok","pocketd":{"available":false,"error":"missing binary"}}`
		c, _ := newTestClient(t, f)

		_, err := c.Health(ctx)
		require.ErrorIs(t, err, walleterr.ErrServiceMisconfigured)
		assert.Contains(t, err.Error(), "missing binary")
	})

	t.Run("status not ok", func(t *testing.T) {
		t.Parallel()
		f := newFakeService()
		f.healthBody = `{"status":"degraded"}`
		c, _ := newTestClient(t, f)

		_, err := c.Health(ctx)
		require.ErrorIs(t, err, walleterr.ErrNetworkUnavailable)
		assert.Contains(t, err.Error(), "degraded")
	})

	t.Run("gateway error status", func(t *testing.T) {
		t.Parallel()
		f := newFakeService()
		f.healthStatus = http.StatusBadGateway
		f.healthBody = `<html>bad gateway</html>`
		c, m := newTestClient(t, f)

		_, err := c.Health(ctx)
		require.ErrorIs(t, err, walleterr.ErrNetworkUnavailable)
		assert.Contains(t, err.Error(), "502")
		assert.Equal(t, int64(1), m.Snapshot().RemoteErrorsTotal)
	})

	t.Run("non-json health body", func(t *testing.T) {
		t.Parallel()
		f := newFakeService()
		f.healthBody = `<html>proxy login</html>`
		c, _ := newTestClient(t, f)

		_, err := c.Health(ctx)
		require.ErrorIs(t, err, walleterr.ErrServiceMisconfigured)
		require.NotErrorIs(t, err, walleterr.ErrMigrationRejected)
		assert.Contains(t, err.Error(), "did not return JSON")
	})

	t.Run("connection refused", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		_, err := NewClient(&ClientOptions{BaseURL: url, Metrics: &metrics.Metrics{}}).Health(ctx)
		require.ErrorIs(t, err, walleterr.ErrNetworkUnavailable)
	})
}

func TestClientMigrate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	payload := &Payload{MorsePrivateKey: "k", ShannonAddress: ShannonAddress{Address: "pokt1x", Signature: "s"}}

	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  *walleterr.WalletError
		contains string
	}{
		{"success", http.StatusOK, `{"success":true,"data":{"result":{"success":true}}}`, nil, ""},
		{"success without nested result", http.StatusOK, `{"success":true}`, nil, ""},
		{"nested failure", http.StatusOK, `{"success":true,"data":{"result":{"success":false,"error":"insufficient funds"}}}`, walleterr.ErrMigrationRejected, "insufficient funds"},
		{"nested failure with height", http.StatusOK, `{"success":true,"data":{"result":{"success":false,"error":"already claimed at height 502114"}}}`, walleterr.ErrMigrationRejected, "502114"},
		{"json error on 502", http.StatusBadGateway, `{"error":"upstream reset"}`, walleterr.ErrNetworkUnavailable, "upstream reset"},
		{"data error preferred over top-level", http.StatusOK, `{"success":false,"data":{"error":"claim exists"},"error":"generic"}`, walleterr.ErrMigrationRejected, "claim exists"},
		{"top-level error", http.StatusOK, `{"success":false,"error":"bad signature"}`, walleterr.ErrMigrationRejected, "bad signature"},
		{"non-string error", http.StatusOK, `{"success":false,"error":{"code":7}}`, walleterr.ErrMigrationRejected, `"code":7`},
		{"details on 500", http.StatusInternalServerError, `{"error":"internal","details":"spawn pocketd ENOENT"}`, walleterr.ErrServiceMisconfigured, "ENOENT"},
		{"error on 400", http.StatusBadRequest, `{"error":"invalid morsePrivateKey"}`, walleterr.ErrMigrationRejected, "invalid morsePrivateKey"},
		{"status text on 503", http.StatusServiceUnavailable, `not json`, walleterr.ErrNetworkUnavailable, "503"},
		{"unreadable 200", http.StatusOK, `not json`, walleterr.ErrMigrationRejected, "unreadable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFakeService()
			f.migrateStatus = tt.status
			f.migrateBody = tt.body
			c, _ := newTestClient(t, f)

			resp, err := c.Migrate(ctx, payload)
			if tt.wantErr == nil {
				require.NoError(t, err)
				assert.True(t, resp.Success)
				assert.JSONEq(t, tt.body, string(resp.Raw))
				assert.Equal(t, *payload, f.lastPost(t))
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	r := NewRateLimiter(1, 1)
	assert.True(t, r.Allow("/migrate"))
	assert.False(t, r.Allow("/migrate"))
	assert.True(t, r.Allow("/health"))

	unlimited := NewRateLimiter(0, 0)
	for range 10 {
		assert.True(t, unlimited.Allow("/health"))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Error(t, r.Wait(ctx, "/migrate"))
}
