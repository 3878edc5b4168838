package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/backend"
)

// MockBackend is a stand-in for the model backend. It answers every request with
// the configured handler and records what it received.
type MockBackend struct {
	// Handler answers requests. The default replies {"status":"success"}.
	Handler http.HandlerFunc

	mu       sync.Mutex
	requests []RecordedRequest
	server   *httptest.Server
}

// RecordedRequest is one request seen by a MockBackend.
type RecordedRequest struct {
	Path        string
	ContentType string
	Body        string
}

// NewMockBackend starts a mock backend that is shut down when the test completes.
//
// Example usage:
//
//	mock := testutil.NewMockBackend(t)
//	mock.Handler = func(w http.ResponseWriter, r *http.Request) {
//	    w.WriteHeader(http.StatusBadRequest)
//	}
//	client := mock.Client()
func NewMockBackend(t *testing.T) *MockBackend {
	t.Helper()

	m := &MockBackend{
		Handler: func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"success"}`)) //nolint:errcheck // test server
		},
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.serve))
	t.Cleanup(m.server.Close)
	return m
}

func (m *MockBackend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	m.mu.Lock()
	m.requests = append(m.requests, RecordedRequest{
		Path:        r.URL.Path,
		ContentType: r.Header.Get("Content-Type"),
		Body:        string(body),
	})
	handler := m.Handler
	m.mu.Unlock()
	handler(w, r)
}

// Client returns a backend client pointed at the mock.
func (m *MockBackend) Client() *backend.Client {
	return backend.NewClient(m.server.URL, 5*time.Second)
}

// URL returns the base address of the mock.
func (m *MockBackend) URL() string {
	return m.server.URL
}

// Requests returns a copy of every request received so far.
func (m *MockBackend) Requests() []RecordedRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]RecordedRequest(nil), m.requests...)
}

// NewUnreachableBackend returns a client whose backend address refuses connections.
func NewUnreachableBackend(t *testing.T) *backend.Client {
	t.Helper()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return backend.NewClient(url, time.Second)
}
