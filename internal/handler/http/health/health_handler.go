package health

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/atomic"
)

// HealthHandler serves the liveness and readiness endpoints. Neither
// depends on the backend: the gateway is healthy precisely when it can
// answer at all.
type HealthHandler struct {
	readiness *atomic.Bool
}

// NewHealthHandler creates a HealthHandler.
// readiness: thread-safe flag indicating if the gateway accepts traffic
func NewHealthHandler(readiness *atomic.Bool) *HealthHandler {
	return &HealthHandler{
		readiness: readiness,
	}
}

// HandleRoot handles GET / - service info
func (h *HealthHandler) HandleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"service": "twilio-gateway",
		"status":  "running",
	})
}

// HandleHealth handles GET /health - liveness probe
// Always returns 200 with a fixed body, regardless of backend state
func (h *HealthHandler) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "healthy"})
}

// HandleReadiness handles GET /readyz - readiness probe
// Returns 200 when accepting traffic, 503 while draining during shutdown
func (h *HealthHandler) HandleReadiness(c echo.Context) error {
	if h.readiness.Load() {
		return c.NoContent(http.StatusOK)
	}
	return c.NoContent(http.StatusServiceUnavailable)
}
