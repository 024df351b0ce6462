package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestPromMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	prom := NewProm(registry)

	prom.ObserveQuery("temperature", "reading")
	prom.ObserveQuery("temperature", "reading")
	assert.Equal(t, float64(2), testutil.ToFloat64(prom.queries.WithLabelValues("temperature", "reading")))

	prom.ObserveSession("connect_failed")
	assert.Equal(t, float64(1), testutil.ToFloat64(prom.sessions.WithLabelValues("connect_failed")))

	prom.ObserveScan(1500*time.Millisecond, 4, true)
	assert.Equal(t, float64(1), testutil.ToFloat64(prom.scans.WithLabelValues("true")))
	assert.Equal(t, float64(4), testutil.ToFloat64(prom.advertisers))
	assert.Equal(t, 1, testutil.CollectAndCount(prom.scanLatency))

	prom.SetQueueLength(3)
	assert.Equal(t, float64(3), testutil.ToFloat64(prom.queue))

	prom.ObserveTransition("advertising")
	assert.Equal(t, float64(1), testutil.ToFloat64(prom.transitions.WithLabelValues("advertising")))

	prom.ObserveSleep(8 * time.Second)
	assert.Equal(t, 1, testutil.CollectAndCount(prom.sleep))
}

func TestHandlerServesRegisteredMetrics(t *testing.T) {
	registry := prometheus.NewRegistry()
	prom := NewProm(registry)
	prom.ObserveQuery("humidity", "not_found")

	recorder := httptest.NewRecorder()
	Handler(registry).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), `gateway_queries_total{kind="humidity",outcome="not_found"} 1`)
}

func TestNewServerExposesDutyCycleCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	prom := NewProm(registry)
	prom.ObserveTransition("standby")
	prom.ObserveSleep(8 * time.Second)

	server := NewServer(":9101", registry)
	recorder := httptest.NewRecorder()
	server.Handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, ":9101", server.Addr)
	assert.Equal(t, 5*time.Second, server.ReadHeaderTimeout)
	assert.Contains(t, recorder.Body.String(), `sensor_duty_cycle_transitions_total{state="standby"} 1`)
	assert.Contains(t, recorder.Body.String(), "sensor_duty_cycle_sleep_seconds_count 1")
}
