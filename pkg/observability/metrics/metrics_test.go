package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCounts(t *testing.T) {
	c := New()
	c.ObserveAPIRequest("GET", "/appointments", "ok", 20*time.Millisecond)
	c.ObserveAPIRequest("GET", "/appointments", "ok", 30*time.Millisecond)
	c.ObserveStoreOp("add", nil)
	c.ObserveStoreOp("add", errors.New("disk full"))

	if got := testutil.ToFloat64(c.apiRequests.WithLabelValues("GET", "/appointments", "ok")); got != 2 {
		t.Fatalf("expected 2 api requests, got %v", got)
	}
	if got := testutil.ToFloat64(c.storeOps.WithLabelValues("add", "error")); got != 1 {
		t.Fatalf("expected 1 failed store op, got %v", got)
	}
}

func TestHandlerServesRegistry(t *testing.T) {
	c := New()
	c.SetBreakerState("clinic-api", 2)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `eyecare_console_clinic_api_breaker_state{breaker="clinic-api"} 2`) {
		t.Fatalf("breaker gauge missing from output:\n%s", rec.Body.String())
	}
}

func TestNilCollectorIsNoop(t *testing.T) {
	var c *Collector
	c.ObserveAPIRequest("GET", "/x", "ok", time.Millisecond)
	c.ObserveHTTPRequest("GET", "/x", 200, time.Millisecond)
	c.ObserveActivity("patient.added", nil)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 from nil collector, got %d", rec.Code)
	}
}
