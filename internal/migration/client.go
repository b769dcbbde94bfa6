package migration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mrz1836/poktwallet/internal/metrics"
	walleterr "github.com/mrz1836/poktwallet/pkg/errors"
)

// Client defaults.
const (
	DefaultBaseURL     = "http://localhost:3001"
	DefaultHealthPath  = "/health"
	DefaultMigratePath = "/migrate"
	DefaultTimeout     = 120 * time.Second

	// maxResponseBody caps how much of a response is read.
	maxResponseBody = 1 << 20
)

// ClientOptions configures a Client. Zero values select the defaults.
type ClientOptions struct {
	BaseURL       string
	HealthPath    string
	MigratePath   string
	Timeout       time.Duration
	RatePerSecond float64
	Burst         int
	HTTPClient    *http.Client
	Metrics       *metrics.Metrics
}

// Client talks to the remote migration service.
type Client struct {
	baseURL     string
	healthPath  string
	migratePath string
	httpClient  *http.Client
	limiter     *RateLimiter
	metrics     *metrics.Metrics
}

// NewClient creates a migration service client.
func NewClient(opts *ClientOptions) *Client {
	if opts == nil {
		opts = &ClientOptions{}
	}

	c := &Client{
		baseURL:     strings.TrimRight(valueOr(opts.BaseURL, DefaultBaseURL), "/"),
		healthPath:  valueOr(opts.HealthPath, DefaultHealthPath),
		migratePath: valueOr(opts.MigratePath, DefaultMigratePath),
		httpClient:  opts.HTTPClient,
		limiter:     NewRateLimiter(opts.RatePerSecond, opts.Burst),
		metrics:     opts.Metrics,
	}
	if c.httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	}
	if c.metrics == nil {
		c.metrics = metrics.Global
	}
	return c
}

// BaseURL returns the service root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Message is a JSON field that is usually a string but may be any value.
type Message string

// UnmarshalJSON accepts a string, or keeps any other JSON value as text.
func (m *Message) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = Message(s)
		return nil
	}
	if string(data) == "null" {
		*m = ""
		return nil
	}
	*m = Message(data)
	return nil
}

// PocketdStatus reports whether the service can run its CLI tool.
type PocketdStatus struct {
	Available bool    `json:"available"`
	Error     Message `json:"error,omitempty"`
}

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status  string         `json:"status"`
	Pocketd *PocketdStatus `json:"pocketd,omitempty"`
}

// MigrateResult is the nested outcome reported by the service.
type MigrateResult struct {
	Success *bool   `json:"success,omitempty"`
	Error   Message `json:"error,omitempty"`
}

// MigrateData wraps the nested result.
type MigrateData struct {
	Result *MigrateResult `json:"result,omitempty"`
	Error  Message        `json:"error,omitempty"`
}

// MigrateResponse is the POST /migrate body.
type MigrateResponse struct {
	Success bool         `json:"success"`
	Data    *MigrateData `json:"data,omitempty"`
	Error   Message      `json:"error,omitempty"`

	// Raw is the undecoded body.
	Raw json.RawMessage `json:"-"`
}

// failure returns "" when the response reports success, otherwise the most
// specific error message available.
func (r *MigrateResponse) failure() string {
	nestedFailed := r.Data != nil && r.Data.Result != nil &&
		r.Data.Result.Success != nil && !*r.Data.Result.Success
	if r.Success && !nestedFailed {
		return ""
	}

	switch {
	case r.Data != nil && r.Data.Result != nil && r.Data.Result.Error != "":
		return string(r.Data.Result.Error)
	case r.Data != nil && r.Data.Error != "":
		return string(r.Data.Error)
	case r.Error != "":
		return string(r.Error)
	default:
		return "migration service reported failure without details"
	}
}

// errorBody is the JSON shape of non-2xx responses.
type errorBody struct {
	Details Message `json:"details"`
	Error   Message `json:"error"`
}

// Health probes the service. It fails unless status is "ok" and the pocketd
// tool, when reported, is available.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	raw, err := c.do(ctx, http.MethodGet, c.healthPath, nil)
	if err != nil {
		return nil, err
	}

	var health HealthResponse
	if err = json.Unmarshal(raw, &health); err != nil {
		return nil, walleterr.Because(walleterr.ErrServiceMisconfigured, err,
			"the migration service health endpoint did not return JSON; check the service URL")
	}

	if health.Pocketd != nil && !health.Pocketd.Available {
		reason := string(health.Pocketd.Error)
		if reason == "" {
			reason = "pocketd is not available"
		}
		return &health, walleterr.Because(walleterr.ErrServiceMisconfigured, fmt.Errorf("pocketd unavailable: %s", reason), msgToolMissing)
	}
	if health.Status != "ok" {
		return &health, walleterr.Because(walleterr.ErrNetworkUnavailable,
			fmt.Errorf("health status %q", health.Status), "the migration service is not healthy")
	}
	return &health, nil
}

// Migrate submits the payload. A 2xx response that does not report success
// is classified like any other failure.
func (c *Client) Migrate(ctx context.Context, payload *Payload) (*MigrateResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling payload: %w", err)
	}

	raw, err := c.do(ctx, http.MethodPost, c.migratePath, body)
	if err != nil {
		return nil, err
	}

	var resp MigrateResponse
	if err = json.Unmarshal(raw, &resp); err != nil {
		return nil, walleterr.Because(walleterr.ErrMigrationRejected, err, "the migration service returned an unreadable response")
	}
	resp.Raw = raw

	if msg := resp.failure(); msg != "" {
		return &resp, ClassifyFailure(msg)
	}
	return &resp, nil
}

// do sends one request and returns a 2xx body. Non-2xx responses are
// classified from their status and their details or error field.
func (c *Client) do(ctx context.Context, method, path string, body []byte) (raw []byte, err error) {
	start := time.Now()
	defer func() { c.metrics.RecordRemoteCall(time.Since(start), err) }()

	if err = c.limiter.Wait(ctx, path); err != nil {
		return nil, transportFailure(err)
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportFailure(err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, transportFailure(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, walleterr.WithDetails(classifyStatus(resp.StatusCode, errorMessage(resp, raw)), map[string]string{
			"status": fmt.Sprint(resp.StatusCode),
		})
	}
	return raw, nil
}

func errorMessage(resp *http.Response, raw []byte) string {
	var eb errorBody
	if json.Unmarshal(raw, &eb) == nil {
		if eb.Details != "" {
			return string(eb.Details)
		}
		if eb.Error != "" {
			return string(eb.Error)
		}
	}
	if resp.Status != "" {
		return resp.Status
	}
	return http.StatusText(resp.StatusCode)
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
