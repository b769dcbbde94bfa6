package migration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeService is an in-process migration service.
type fakeService struct {
	mu            sync.Mutex
	healthStatus  int
	healthBody    string
	migrateStatus int
	migrateBody   string
	healthCalls   int
	posts         []Payload
}

func newFakeService() *fakeService {
	return &fakeService{
		healthStatus:  http.StatusOK,
		healthBody:    `{"status":"ok","pocketd":{"available":true}}`,
		migrateStatus: http.StatusOK,
		migrateBody:   `{"success":true,"data":{"result":{"success":true,"txHash":"ABC"}}}`,
	}
}

func (f *fakeService) start(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.healthCalls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.healthStatus)
		_, _ = w.Write([]byte(f.healthBody))
	})
	mux.HandleFunc("POST /migrate", func(w http.ResponseWriter, r *http.Request) {
		var p Payload
		if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		f.posts = append(f.posts, p)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(f.migrateStatus)
		_, _ = w.Write([]byte(f.migrateBody))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (f *fakeService) postCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.posts)
}

func (f *fakeService) lastPost(t *testing.T) Payload {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.posts)
	return f.posts[len(f.posts)-1]
}
