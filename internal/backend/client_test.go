package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ndewijer/Renewables-Dashboard-Backend/internal/apperrors"
)

func newBackend(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", 5*time.Second)
}

func TestClient_PostJSON(t *testing.T) {
	t.Run("forwards body and returns answer", func(t *testing.T) {
		var got map[string]any
		c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, PathRunModel, r.URL.Path)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"status":"success"}`))
		})

		data, err := c.PostJSON(context.Background(), PathRunModel, map[string]any{"portfolio": "p1"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"status":"success"}`, string(data))
		assert.Equal(t, "p1", got["portfolio"])
	})

	t.Run("non-2xx carries backend message", func(t *testing.T) {
		c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"message":"bad config"}`))
		})

		_, err := c.PostJSON(context.Background(), PathRunModel, map[string]any{})
		se, ok := AsStatusError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusUnprocessableEntity, se.StatusCode)
		assert.Equal(t, "bad config", se.Message)
	})

	t.Run("non-2xx without message", func(t *testing.T) {
		c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		})

		_, err := c.PostJSON(context.Background(), PathRunModel, map[string]any{})
		se, ok := AsStatusError(err)
		require.True(t, ok)
		assert.Equal(t, "Backend returned 502", se.Message)
	})

	t.Run("unreachable backend", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		url := srv.URL
		srv.Close()

		c := NewClient(url, time.Second)
		_, err := c.PostJSON(context.Background(), PathRunModel, map[string]any{})
		assert.True(t, errors.Is(err, apperrors.ErrBackendUnavailable))
	})
}

func TestClient_PostRaw(t *testing.T) {
	c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, PathAnalyzePriceCurves, r.URL.Path)
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "--x--", string(body))
		_, _ = w.Write([]byte(`{"curves":2}`))
	})

	data, err := c.PostRaw(context.Background(), PathAnalyzePriceCurves, "multipart/form-data; boundary=x", strings.NewReader("--x--"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"curves":2}`, string(data))
}

func TestClient_Stream(t *testing.T) {
	t.Run("relays events", func(t *testing.T) {
		c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/event-stream")
			flusher := w.(http.Flusher)
			for _, ev := range []string{"data: start\n\n", "data: done\n\n"} {
				_, _ = w.Write([]byte(ev))
				flusher.Flush()
			}
		})

		stream, err := c.Stream(context.Background(), PathRunModelStream, map[string]any{})
		require.NoError(t, err)
		defer stream.Close()

		rec := httptest.NewRecorder()
		n, err := Relay(rec, stream)
		require.NoError(t, err)
		assert.Equal(t, "data: start\n\ndata: done\n\n", rec.Body.String())
		assert.Equal(t, int64(rec.Body.Len()), n)
		assert.True(t, rec.Flushed)
	})

	t.Run("non-2xx", func(t *testing.T) {
		c := newBackend(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})

		_, err := c.Stream(context.Background(), PathRunModelStream, map[string]any{})
		se, ok := AsStatusError(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
		assert.Equal(t, "Backend returned 503", se.Message)
	})
}

func TestSensitivityRequest(t *testing.T) {
	tests := []struct {
		name string
		in   map[string]any
		want map[string]any
	}{
		{
			name: "defaults",
			in:   map[string]any{},
			want: map[string]any{"config_file": DefaultSensitivityConfigFile, "prefix": DefaultSensitivityPrefix},
		},
		{
			name: "inline config wins",
			in:   map[string]any{"config": map[string]any{"a": 1.0}, "config_file": "x.json", "prefix": "run2", "portfolio": "p1"},
			want: map[string]any{"config": map[string]any{"a": 1.0}, "prefix": "run2", "portfolio": "p1"},
		},
		{
			name: "config file",
			in:   map[string]any{"config_file": "custom.json"},
			want: map[string]any{"config_file": "custom.json", "prefix": DefaultSensitivityPrefix},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SensitivityRequest(tt.in))
		})
	}
}
