package health

import (
	"github.com/labstack/echo/v4"
)

// SetupRoutes registers health check routes with the Echo instance
func (h *HealthHandler) SetupRoutes(e *echo.Echo) {
	e.GET("/", h.HandleRoot)
	e.GET("/health", h.HandleHealth)
	e.GET("/readyz", h.HandleReadiness)
}
