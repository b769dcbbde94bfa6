package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	t.Parallel()
	tests := []struct {
		a, b string
		want int
	}{
		{"1.2.3", "1.2.3", 0},
		{"v1.2.4", "1.2.3", 1},
		{"1.2.3", "v1.10.0", -1},
		{"2.0.0-rc1", "1.9.9", 1},
		{"1.0", "1.0.0", 0},
		{"dev", "0.0.1", -1},
		{"0.0.1", "abc1234", 1},
		{"dev", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_vs_"+tt.b, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, Compare(tt.a, tt.b))
		})
	}
}

func TestIsCommitHash(t *testing.T) {
	t.Parallel()
	assert.True(t, isCommitHash("abc1234"))
	assert.True(t, isCommitHash("abc1234-dirty"))
	assert.False(t, isCommitHash("1234567"))
	assert.False(t, isCommitHash("abc12"))
	assert.False(t, isCommitHash("xyz1234"))
}

func TestCurrent(t *testing.T) {
	t.Parallel()
	b := Current()
	assert.Equal(t, Version, b.Version)
	assert.NotEmpty(t, b.GoVersion)
	assert.Contains(t, b.Platform, "/")
}

func TestChecker_Check(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/mrz1836/poktwallet/releases/latest", r.URL.Path)
		assert.Contains(t, r.Header.Get("User-Agent"), "poktwallet/")
		_, _ = w.Write([]byte(`{"tag_name":"v1.4.0","name":"1.4.0"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewChecker(srv.URL+"/", nil)

	up, err := c.Check(context.Background(), "v1.3.9")
	require.NoError(t, err)
	assert.Equal(t, &Update{Current: "v1.3.9", Latest: "v1.4.0", Newer: true}, up)

	up, err = c.Check(context.Background(), "1.4.0")
	require.NoError(t, err)
	assert.False(t, up.Newer)
}

func TestChecker_Errors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusForbidden)
	}))
	t.Cleanup(srv.Close)

	_, err := NewChecker(srv.URL, srv.Client()).Latest(context.Background())
	require.ErrorIs(t, err, ErrReleaseLookup)
	assert.Contains(t, err.Error(), "rate limited")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = NewChecker(srv.URL, nil).Latest(ctx)
	require.Error(t, err)
}
