// Package server exposes the managed browser over a small local HTTP API.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/neboloop/browserd/internal/browser"
	"github.com/neboloop/browserd/internal/cdp"
	"github.com/neboloop/browserd/internal/httputil"
	"github.com/neboloop/browserd/internal/logging"
	"github.com/neboloop/browserd/internal/metrics"
)

// Browser is the part of browser.Manager the control server drives.
type Browser interface {
	EnsureRunning() (*browser.RunningChrome, error)
	Stop() error
	Status() browser.Status
	Tabs() ([]browser.Tab, error)
	Screenshot(ctx context.Context, targetID string, fullPage bool) ([]byte, error)
}

// captureTimeout bounds a single screenshot request, launch included.
const captureTimeout = 60 * time.Second

// NewRouter builds the control API:
//
//	GET  /            status
//	POST /start       launch (or reuse) the browser
//	POST /stop        stop the browser
//	GET  /tabs        list debuggable targets
//	POST /screenshot  capture a PNG (?targetId=&fullPage=)
//	GET  /metrics     Prometheus metrics
func NewRouter(b Browser) http.Handler {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/", statusHandler(b))
	r.Post("/start", startHandler(b))
	r.Post("/stop", stopHandler(b))
	r.Get("/tabs", tabsHandler(b))
	r.Post("/screenshot", screenshotHandler(b))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	return r
}

// Run serves the control API on addr until ctx is cancelled.
func Run(ctx context.Context, addr string, b Browser) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("control server listen on %s: %w", addr, err)
	}
	return Serve(ctx, ln, b)
}

// Serve is Run on an existing listener.
func Serve(ctx context.Context, ln net.Listener, b Browser) error {
	httpServer := &http.Server{
		Handler:           NewRouter(b),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(ln)
	}()
	logging.Infof("control server listening on http://%s", ln.Addr())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logging.Info("shutting down control server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

func statusHandler(b Browser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		httputil.OkJSON(w, b.Status())
	}
}

func startHandler(b Browser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := b.EnsureRunning(); err != nil {
			writeError(w, err)
			return
		}
		httputil.OkJSON(w, b.Status())
	}
}

func stopHandler(b Browser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := b.Stop(); err != nil {
			writeError(w, err)
			return
		}
		httputil.OkJSON(w, b.Status())
	}
}

func tabsHandler(b Browser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tabs, err := b.Tabs()
		if err != nil {
			writeError(w, err)
			return
		}
		if tabs == nil {
			tabs = []browser.Tab{}
		}
		httputil.OkJSON(w, tabs)
	}
}

func screenshotHandler(b Browser) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), captureTimeout)
		defer cancel()

		targetID := httputil.QueryString(r, "targetId", "")
		fullPage := httputil.QueryBool(r, "fullPage", false)

		img, err := b.Screenshot(ctx, targetID, fullPage)
		if err != nil {
			writeError(w, err)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(len(img)))
		w.WriteHeader(http.StatusOK)
		w.Write(img)
	}
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var cmdErr *cdp.CommandError
	switch {
	case errors.Is(err, browser.ErrPortUnavailable), errors.Is(err, browser.ErrNotRunning):
		return http.StatusConflict
	case errors.Is(err, browser.ErrNoBrowserFound), errors.Is(err, browser.ErrTabNotFound):
		return http.StatusNotFound
	case errors.Is(err, browser.ErrDisabled):
		return http.StatusServiceUnavailable
	case errors.Is(err, browser.ErrLaunchTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, cdp.ErrConnectionFailed), errors.Is(err, cdp.ErrConnectionClosed),
		errors.Is(err, cdp.ErrCaptureFailed), errors.As(err, &cmdErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		logging.Errorf("control request failed: %v", err)
	}
	switch code {
	case http.StatusNotFound:
		httputil.NotFound(w, err.Error())
	case http.StatusInternalServerError:
		httputil.InternalError(w, err.Error())
	default:
		httputil.ErrorWithCode(w, code, err.Error())
	}
}

// requestLogger logs one structured line per request.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			logging.L().Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", chimw.GetReqID(r.Context())),
			)
		}()
		next.ServeHTTP(ww, r)
	})
}
