package cdp

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/chromedp/cdproto/page"

	"github.com/neboloop/browserd/internal/logging"
)

// CaptureOptions controls a screenshot capture.
type CaptureOptions struct {
	// FullPage captures the whole scrollable content when its size can be
	// resolved, otherwise the viewport.
	FullPage bool
}

// Capture connects to a target, captures a PNG and closes the connection.
func Capture(ctx context.Context, endpoint string, opts CaptureOptions) ([]byte, error) {
	conn, err := Dial(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	return conn.CaptureScreenshot(ctx, opts)
}

// CaptureScreenshot runs the capture sequence on this connection. Only one
// sequence runs at a time per connection; each step is awaited before the
// next command is sent.
func (c *Conn) CaptureScreenshot(ctx context.Context, opts CaptureOptions) ([]byte, error) {
	c.captureMu.Lock()
	defer c.captureMu.Unlock()

	if err := c.Call(ctx, page.CommandEnable, nil, nil); err != nil {
		return nil, fmt.Errorf("enable page events: %w", err)
	}

	params := page.CaptureScreenshotParams{
		Format:                page.CaptureScreenshotFormatPng,
		FromSurface:           true,
		CaptureBeyondViewport: true,
	}
	if opts.FullPage {
		clip, err := c.fullPageClip(ctx)
		if err != nil {
			return nil, err
		}
		params.Clip = clip
	}

	var res page.CaptureScreenshotReturns
	if err := c.Call(ctx, page.CommandCaptureScreenshot, &params, &res); err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}
	if res.Data == "" {
		return nil, fmt.Errorf("%w: response has no image data", ErrCaptureFailed)
	}

	img, err := base64.StdEncoding.DecodeString(res.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: decode image data: %v", ErrCaptureFailed, err)
	}
	return img, nil
}

// fullPageClip sizes a clip to the page content. Unresolvable metrics fall
// back to a viewport capture (nil clip); only a dead connection is an error.
func (c *Conn) fullPageClip(ctx context.Context) (*page.Viewport, error) {
	var metrics page.GetLayoutMetricsReturns
	if err := c.Call(ctx, page.CommandGetLayoutMetrics, nil, &metrics); err != nil {
		if errors.Is(err, ErrConnectionClosed) || ctx.Err() != nil {
			return nil, fmt.Errorf("get layout metrics: %w", err)
		}
		logging.Debugf("cdp %s: layout metrics unavailable, using viewport: %v", c.id[:8], err)
		return nil, nil
	}

	size := metrics.CSSContentSize
	if size == nil {
		size = metrics.ContentSize
	}
	if size == nil || size.Width <= 0 || size.Height <= 0 {
		return nil, nil
	}
	return &page.Viewport{X: 0, Y: 0, Width: size.Width, Height: size.Height, Scale: 1}, nil
}
