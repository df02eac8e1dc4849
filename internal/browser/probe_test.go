package browser

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsChromeReachable(t *testing.T) {
	ok := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/json/version", r.URL.Path)
		w.Write([]byte(`{"Browser":"Chrome/1"}`))
	}))
	defer ok.Close()
	assert.True(t, IsChromeReachable(ok.URL, time.Second))
	assert.True(t, IsChromeReachable(ok.URL+"/", time.Second))

	missing := httptest.NewServer(http.NotFoundHandler())
	defer missing.Close()
	assert.False(t, IsChromeReachable(missing.URL, time.Second))

	assert.False(t, IsChromeReachable(cdpURL(freePort(t)), 200*time.Millisecond))
}

func TestIsChromeReachableTimeout(t *testing.T) {
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer slow.Close()
	defer close(release)

	start := time.Now()
	assert.False(t, IsChromeReachable(slow.URL, 100*time.Millisecond))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestListTabs(t *testing.T) {
	tabs := []Tab{
		{ID: "W1", Type: "service_worker", URL: "chrome://sw"},
		{ID: "P1", Type: "page", Title: "Blank", URL: "about:blank", WebSocketDebuggerURL: "ws://x/devtools/page/P1"},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/json/list", r.URL.Path)
		json.NewEncoder(w).Encode(tabs)
	}))
	defer srv.Close()

	got, err := ListTabs(srv.URL, time.Second)
	require.NoError(t, err)
	assert.Equal(t, tabs, got)
}

func TestListTabsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := ListTabs(srv.URL, time.Second)
	assert.ErrorContains(t, err, "500")
}

func TestPickTab(t *testing.T) {
	tabs := []Tab{
		{ID: "W1", Type: "service_worker", WebSocketDebuggerURL: "ws://x/w1"},
		{ID: "P0", Type: "page"},
		{ID: "P1", Type: "page", WebSocketDebuggerURL: "ws://x/p1"},
		{ID: "P2", Type: "page", WebSocketDebuggerURL: "ws://x/p2"},
	}

	tab, err := PickTab(tabs, "")
	require.NoError(t, err)
	assert.Equal(t, "P1", tab.ID)

	tab, err = PickTab(tabs, "P2")
	require.NoError(t, err)
	assert.Equal(t, "P2", tab.ID)

	_, err = PickTab(tabs, "nope")
	assert.ErrorIs(t, err, ErrTabNotFound)

	_, err = PickTab(tabs, "P0")
	require.ErrorIs(t, err, ErrTabNotFound)
	assert.Contains(t, err.Error(), "P0 is not debuggable")

	_, err = PickTab(nil, "")
	assert.ErrorIs(t, err, ErrTabNotFound)
}
