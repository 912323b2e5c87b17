package webhook

import (
	"github.com/labstack/echo/v4"
)

// SetupRoutes registers the Twilio webhook routes with the Echo instance.
// The path set is closed: any other path falls through to echo's 404.
func (h *WebhookHandler) SetupRoutes(e *echo.Echo) {
	e.POST("/twilio/whatsapp", h.HandleWhatsApp)
	e.POST("/twilio/sms", h.HandleSMS)
}
