package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
)

// TestMetrics_Endpoint_Returns200 verifies /metrics serves Prometheus text
func TestMetrics_Endpoint_Returns200(t *testing.T) {
	e := echo.New()
	e.Use(echoprometheus.NewMiddleware("twilio_gateway"))
	e.GET("/metrics", echoprometheus.NewHandler())

	e.GET("/health", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	// Generate some request metrics
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if contentType := rec.Header().Get("Content-Type"); !strings.Contains(contentType, "text/plain") {
		t.Errorf("expected Content-Type text/plain, got %q", contentType)
	}
	if rec.Body.Len() == 0 {
		t.Error("expected metrics in response body, got empty")
	}
}

// TestMetrics_ForwardOutcomes_Labeled verifies the outcome counter appears
// with channel and outcome labels
func TestMetrics_ForwardOutcomes_Labeled(t *testing.T) {
	ForwardOutcomes.WithLabelValues("whatsapp", "delivered").Inc()
	ForwardOutcomes.WithLabelValues("sms", "backend_error").Inc()

	e := echo.New()
	e.GET("/metrics", echoprometheus.NewHandler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	body := rec.Body.String()
	if !strings.Contains(body, "twilio_gateway_forward_outcomes_total") {
		t.Error("expected twilio_gateway_forward_outcomes_total metric, not found")
	}
	if !strings.Contains(body, `channel="whatsapp"`) {
		t.Error("expected whatsapp channel label, not found")
	}
	if !strings.Contains(body, `outcome="backend_error"`) {
		t.Error("expected backend_error outcome label, not found")
	}
}

// TestMetrics_QueueDepth_Updates verifies the queue depth gauge
func TestMetrics_QueueDepth_Updates(t *testing.T) {
	QueueDepthGauge.Set(0)

	e := echo.New()
	e.GET("/metrics", echoprometheus.NewHandler())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "twilio_gateway_forward_queue_depth") {
		t.Error("expected twilio_gateway_forward_queue_depth metric, not found")
	}

	QueueDepthGauge.Set(5)

	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if !strings.Contains(rec.Body.String(), "twilio_gateway_forward_queue_depth 5") {
		t.Error("expected queue depth gauge to show value 5")
	}

	QueueDepthGauge.Set(0)
}
