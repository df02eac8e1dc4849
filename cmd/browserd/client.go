package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/neboloop/browserd/internal/httputil"
)

// controlClient talks to a running control server.
type controlClient struct {
	baseURL string
	http    *http.Client
}

func newControlClient(baseURL string) *controlClient {
	return &controlClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 90 * time.Second},
	}
}

func (c *controlClient) do(ctx context.Context, method, path string, query url.Values) (*http.Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("control server at %s not reachable (is 'browserd serve' running?): %w", c.baseURL, err)
	}
	if resp.StatusCode >= 300 {
		defer resp.Body.Close()
		var e httputil.ErrorResponse
		if json.NewDecoder(resp.Body).Decode(&e) == nil && e.Message != "" {
			return nil, fmt.Errorf("%s %s: %s (%d)", method, path, e.Message, resp.StatusCode)
		}
		return nil, fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	return resp, nil
}

func (c *controlClient) json(ctx context.Context, method, path string, out any) error {
	resp, err := c.do(ctx, method, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *controlClient) screenshot(ctx context.Context, targetID string, fullPage bool) ([]byte, error) {
	q := url.Values{}
	if targetID != "" {
		q.Set("targetId", targetID)
	}
	if fullPage {
		q.Set("fullPage", "true")
	}
	resp, err := c.do(ctx, http.MethodPost, "/screenshot", q)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	return io.ReadAll(resp.Body)
}
