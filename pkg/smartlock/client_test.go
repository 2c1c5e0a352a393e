package smartlock

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/", "secret", time.Second)
}

func TestQueryLockReachable(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    bool
		wantErr bool
	}{
		{"reachable", http.StatusOK, `{"id":"lock-1","state":"locked","reachable":true}`, true, false},
		{"offline", http.StatusOK, `{"id":"lock-1","state":"unknown","reachable":false}`, false, false},
		{"unknown lock", http.StatusNotFound, `{"error":"not found"}`, false, false},
		{"vendor failure", http.StatusBadGateway, `{"message":"upstream down"}`, false, true},
		{"garbage", http.StatusOK, `nope`, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodGet, r.Method)
				assert.Equal(t, "/locks/lock-1", r.URL.Path)
				assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			got, err := c.QueryLockReachable(context.Background(), "lock-1")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnlock(t *testing.T) {
	var action actionRequest
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/locks/lock-1/actions", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&action))
		w.WriteHeader(http.StatusAccepted)
	})

	require.NoError(t, c.Unlock(context.Background(), "lock-1"))
	assert.Equal(t, "unlock", action.Action)
}

func TestUnlock_Rejected(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"message":"door jammed"}`))
	})

	err := c.Unlock(context.Background(), "lock-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "door jammed")
}

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient("", "", time.Second)

	_, err := c.QueryLockReachable(context.Background(), "lock-1")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", 20*time.Millisecond)
	err := c.Unlock(context.Background(), "lock-1")
	assert.Error(t, err)
}
