package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

const (
	testMorseAddr = "aa11aa11aa11aa11aa11aa11aa11aa11aa11aa11"
	testMnemonic  = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
)

func morseJSONWallet() string {
	return `{"addr":"` + testMorseAddr + `","name":"w1","priv":"secretkey"}`
}

// testEnv isolates a CLI run: HOME points at a temp dir so the default data
// directory, config file, and log file all land there.
type testEnv struct {
	home    string
	dataDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("NO_COLOR", "1")
	t.Setenv("POKTWALLET_HOME", "")
	t.Setenv("POKTWALLET_MIGRATION_URL", "")
	t.Setenv("POKTWALLET_STORE_BACKEND", "")
	t.Setenv("POKTWALLET_OUTPUT_FORMAT", "")
	t.Setenv("POKTWALLET_LOG_LEVEL", "")
	return &testEnv{home: home, dataDir: filepath.Join(home, ".poktwallet")}
}

// withPrompts replaces the interactive prompts for one test.
func withPrompts(t *testing.T, password string, confirm bool) {
	t.Helper()
	origPW, origLine, origConfirm := promptPasswordFn, promptLineFn, promptConfirmFn
	t.Cleanup(func() {
		promptPasswordFn, promptLineFn, promptConfirmFn = origPW, origLine, origConfirm
	})
	promptPasswordFn = func(string) ([]byte, error) { return []byte(password), nil }
	promptLineFn = func(string) (string, error) { return "", nil }
	promptConfirmFn = func(string) bool { return confirm }
}

// resetFlags restores every flag to its default; cobra keeps flag state
// between Execute calls.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes the root command with args and stdin.
func run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	t.Cleanup(func() {
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	err := ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// mustRun fails the test when the command errors.
func mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	r := run(t, stdin, args...)
	require.NoError(t, r.err, "stderr: %s", r.stderr)
	return r.stdout
}

func decodeJSON(t *testing.T, s string, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal([]byte(s), v), s)
}

// migrationService is a stand-in for the remote migration service.
type migrationService struct {
	mu        sync.Mutex
	available bool
	status    int
	posts     []map[string]any
}

func startMigrationService(t *testing.T) *migrationService {
	t.Helper()
	svc := &migrationService{available: true, status: http.StatusOK}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		svc.mu.Lock()
		defer svc.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if svc.available {
			_, _ = w.Write([]byte(`{"status":"ok","pocketd":{"available":true}}`))
			return
		}
		_, _ = w.Write([]byte(`{"status":"degraded","pocketd":{"available":false,"error":"missing binary"}}`))
	})
	mux.HandleFunc("POST /migrate", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		svc.mu.Lock()
		defer svc.mu.Unlock()
		svc.posts = append(svc.posts, body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(svc.status)
		if svc.status == http.StatusOK {
			_, _ = w.Write([]byte(`{"success":true,"data":{"result":{"success":true,"txHash":"ABC"}}}`))
			return
		}
		_, _ = w.Write([]byte(`{"success":false,"error":"claim rejected"}`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	t.Setenv("POKTWALLET_MIGRATION_URL", srv.URL)
	return svc
}

func (s *migrationService) postCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.posts)
}
