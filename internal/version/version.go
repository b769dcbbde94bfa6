// Package version reports the build version and checks for newer releases.
package version

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Build metadata, set with -ldflags "-X".
//
//nolint:gochecknoglobals // ldflags targets must be package variables
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Release source.
const (
	DefaultBaseURL = "https://api.github.com"
	Owner          = "mrz1836"
	Repo           = "poktwallet"
	DefaultTimeout = 10 * time.Second

	maxBodySize = 64 * 1024
)

// ErrReleaseLookup is returned when the release API answers with an error.
var ErrReleaseLookup = errors.New("release lookup failed")

// Build describes the running binary.
type Build struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Date      string `json:"date"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// Current returns the running binary's build metadata.
func Current() Build {
	return Build{
		Version:   Version,
		Commit:    Commit,
		Date:      Date,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Release is the subset of a GitHub release that is used.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	PublishedAt time.Time `json:"published_at"`
}

// Update is the result of a release check.
type Update struct {
	Current string `json:"current"`
	Latest  string `json:"latest"`
	Newer   bool   `json:"newer"`
}

// Checker looks up the latest published release.
type Checker struct {
	baseURL    string
	httpClient *http.Client
}

// NewChecker creates a checker. An empty baseURL uses GitHub.
func NewChecker(baseURL string, httpClient *http.Client) *Checker {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Checker{baseURL: strings.TrimSuffix(baseURL, "/"), httpClient: httpClient}
}

// Latest fetches the latest release.
func (c *Checker) Latest(ctx context.Context) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, Owner, Repo)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", fmt.Sprintf("poktwallet/%s (%s/%s)", Version, runtime.GOOS, runtime.GOARCH))

	resp, err := c.httpClient.Do(req) //nolint:gosec // fixed API endpoint
	if err != nil {
		return nil, fmt.Errorf("fetching release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body := io.LimitReader(resp.Body, maxBodySize)
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrReleaseLookup, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var rel Release
	if err := json.NewDecoder(body).Decode(&rel); err != nil {
		return nil, fmt.Errorf("decoding release: %w", err)
	}
	return &rel, nil
}

// Check compares current against the latest release.
func (c *Checker) Check(ctx context.Context, current string) (*Update, error) {
	rel, err := c.Latest(ctx)
	if err != nil {
		return nil, err
	}
	return &Update{
		Current: current,
		Latest:  rel.TagName,
		Newer:   Compare(rel.TagName, current) > 0,
	}, nil
}

// Compare orders two versions: 1 if a > b, -1 if a < b, 0 otherwise.
// Development builds ("dev", empty, or a commit hash) sort before releases.
func Compare(a, b string) int {
	aDev, bDev := isDevBuild(a), isDevBuild(b)
	switch {
	case aDev && bDev:
		return 0
	case aDev:
		return -1
	case bDev:
		return 1
	}

	pa, pb := numbers(a), numbers(b)
	for i := range 3 {
		if pa[i] != pb[i] {
			if pa[i] > pb[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// numbers returns major, minor, and patch, ignoring pre-release suffixes.
func numbers(v string) [3]int {
	var out [3]int
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if idx := strings.IndexAny(v, "-+"); idx != -1 {
		v = v[:idx]
	}
	for i, part := range strings.SplitN(v, ".", 3) {
		n, err := strconv.Atoi(part)
		if err == nil {
			out[i] = n
		}
	}
	return out
}

func isDevBuild(v string) bool {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if v == "" || v == "dev" {
		return true
	}
	return isCommitHash(v)
}

// isCommitHash reports whether s looks like a short or full git SHA. At
// least one letter is required so numeric versions are not mistaken for one.
func isCommitHash(s string) bool {
	s = strings.TrimSuffix(s, "-dirty")
	if len(s) < 7 || len(s) > 40 {
		return false
	}
	hasLetter := false
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F'):
			hasLetter = true
		default:
			return false
		}
	}
	return hasLetter
}
