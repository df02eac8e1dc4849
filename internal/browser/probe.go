package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Tab is a debuggable target as reported by /json/list.
type Tab struct {
	ID                   string `json:"id"`
	Type                 string `json:"type"`
	Title                string `json:"title"`
	URL                  string `json:"url"`
	WebSocketDebuggerURL string `json:"webSocketDebuggerUrl,omitempty"`
}

// IsChromeReachable issues one /json/version probe. Any error, timeout or
// non-2xx status means unreachable.
func IsChromeReachable(cdpURL string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	versionURL := strings.TrimSuffix(cdpURL, "/") + "/json/version"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, versionURL, nil)
	if err != nil {
		return false
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// ListTabs returns the targets exposed by the debug endpoint.
func ListTabs(cdpURL string, timeout time.Duration) ([]Tab, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	listURL := strings.TrimSuffix(cdpURL, "/") + "/json/list"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, listURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("list tabs: unexpected status %d", resp.StatusCode)
	}

	var tabs []Tab
	if err := json.NewDecoder(resp.Body).Decode(&tabs); err != nil {
		return nil, fmt.Errorf("list tabs: %w", err)
	}
	return tabs, nil
}

// PickTab returns the tab with the given id, or the first page when id is empty.
func PickTab(tabs []Tab, id string) (Tab, error) {
	for _, t := range tabs {
		if id != "" {
			if t.ID == id {
				if t.WebSocketDebuggerURL == "" {
					return Tab{}, fmt.Errorf("%w: %s is not debuggable", ErrTabNotFound, id)
				}
				return t, nil
			}
			continue
		}
		if t.Type == "page" && t.WebSocketDebuggerURL != "" {
			return t, nil
		}
	}
	if id != "" {
		return Tab{}, fmt.Errorf("%w: %s", ErrTabNotFound, id)
	}
	return Tab{}, fmt.Errorf("%w: no debuggable page", ErrTabNotFound)
}
