package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/stretchr/testify/require"
)

var testCounter = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "metrics_test",
	Name:      "hits_total",
	Help:      "Counter used by the router test.",
})

func TestNewRouter_ServesRegistry(t *testing.T) {
	testCounter.Inc()

	rec := httptest.NewRecorder()
	NewRouter("").ServeHTTP(rec, httptest.NewRequest(http.MethodGet, DefaultPath, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "metrics_test_hits_total")

	rec = httptest.NewRecorder()
	NewRouter("/metrics").ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/metrics", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
