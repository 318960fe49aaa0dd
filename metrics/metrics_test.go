package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveConnectorInit(t *testing.T) {
	m := New("test")

	m.ObserveConnectorInit(nil, time.Millisecond)
	m.ObserveConnectorInit(errors.New("boom"), time.Millisecond)
	m.ObserveConnectorInit(errors.New("boom"), time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.connectorInits.WithLabelValues("ok")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.connectorInits.WithLabelValues("error")))
}

func TestObserveAskAndHTTP(t *testing.T) {
	m := New("test")

	m.ObserveAsk("ok", time.Second)
	m.ObserveHTTP(http.MethodPost, "/ask", http.StatusOK, time.Second)
	m.ObserveHTTP(http.MethodGet, "", http.StatusNotFound, time.Millisecond)
	m.IncRateLimited()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.asks.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/ask", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "unmatched", "404")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rateLimited))
}

func TestHandler(t *testing.T) {
	m := New("test")
	m.ObserveAsk("invalid", time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `askbrooks_asks_total{outcome="invalid",service="test"} 1`)
}
