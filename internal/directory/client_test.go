package directory

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weiawesome/ward-rooms/internal/config"
)

func TestClient_Branches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2", r.URL.Query().Get("entityCategory"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"name":"Central"}]`))
	}))
	defer srv.Close()

	c := NewClient(config.DirectoryConfig{BranchesURL: srv.URL + "/values?entityCategory=2"})

	body, err := c.Branches(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Central"}]`, string(body))
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"floors":[]}`))
	}))
	defer srv.Close()

	c := NewClient(config.DirectoryConfig{FloorsURL: srv.URL, RetryCount: 1})

	body, err := c.Floors(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, `{"floors":[]}`, string(body))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_BreakerOpensAfterFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(config.DirectoryConfig{BranchesURL: srv.URL})

	for i := 0; i < 3; i++ {
		_, err := c.Branches(context.Background())
		assert.ErrorIs(t, err, ErrUpstream)
	}

	_, err := c.Branches(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_InvalidJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>"))
	}))
	defer srv.Close()

	c := NewClient(config.DirectoryConfig{BranchesURL: srv.URL})

	_, err := c.Branches(context.Background())
	assert.ErrorIs(t, err, ErrUpstream)
}
