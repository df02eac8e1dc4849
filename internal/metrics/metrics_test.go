package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitIdempotent(t *testing.T) {
	Init()
	Init()
	require.NotNil(t, browserLaunchesTotal)
	require.NotNil(t, captureTotal)
	require.NotNil(t, httpRequestsTotal)
}

func TestObserveLaunch(t *testing.T) {
	okBefore := testutil.ToFloat64(launches("ok"))
	errBefore := testutil.ToFloat64(launches("error"))

	ObserveLaunch(nil, time.Second)
	assert.Equal(t, 1.0, testutil.ToFloat64(browserRunning))
	ObserveLaunch(errors.New("boom"), 0)

	assert.Equal(t, okBefore+1, testutil.ToFloat64(launches("ok")))
	assert.Equal(t, errBefore+1, testutil.ToFloat64(launches("error")))

	ObserveStopped()
	assert.Equal(t, 0.0, testutil.ToFloat64(browserRunning))
}

func TestObserveCapture(t *testing.T) {
	Init()
	before := testutil.ToFloat64(captureTotal.WithLabelValues("full_page", "ok"))

	ObserveCapture(true, nil, 200*time.Millisecond)
	ObserveCapture(false, errors.New("closed"), 0)

	assert.Equal(t, before+1, testutil.ToFloat64(captureTotal.WithLabelValues("full_page", "ok")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(captureTotal.WithLabelValues("viewport", "error")), 1.0)
	assert.Positive(t, testutil.CollectAndCount(captureSeconds))
}

func TestMiddleware(t *testing.T) {
	Init()
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/tabs", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	})
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "409"))
	for _, path := range []string{"/tabs", "/"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	}

	assert.Equal(t, before+1, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "409")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", "200")), 1.0)
	assert.Positive(t, testutil.CollectAndCount(httpRequestDurationSeconds))
}

func TestHandlerServesMetrics(t *testing.T) {
	ObserveLaunch(nil, time.Second)

	w := httptest.NewRecorder()
	Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "browserd_browser_launches_total")
}

func launches(result string) prometheus.Counter {
	Init()
	return browserLaunchesTotal.WithLabelValues(result)
}
