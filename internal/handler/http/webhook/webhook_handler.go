package webhook

import (
	"io"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"

	"twilio-gateway/internal/forwarder"
	"twilio-gateway/internal/metrics"
	"twilio-gateway/internal/relay"
	"twilio-gateway/pkg/logger"
)

// twimlAck is the fixed acknowledgment Twilio expects on its webhook
// calls. The gateway answers it for every outcome so the provider never
// enters a retry storm against a gateway that cannot recover the message
// either way.
const twimlAck = `<?xml version="1.0" encoding="UTF-8"?><Response></Response>`

const mimeApplicationXML = "application/xml"

// WebhookHandler receives Twilio webhook calls and relays them unmodified
// to the backend. In sync mode (fwd == nil) the backend is called inline
// and its reply body is passed through; in async modes the payload is
// submitted to the forwarder and the provider is acknowledged immediately.
type WebhookHandler struct {
	client *relay.Client
	fwd    forwarder.Forwarder
}

// NewWebhookHandler creates a WebhookHandler. fwd may be nil for
// synchronous forwarding.
func NewWebhookHandler(client *relay.Client, fwd forwarder.Forwarder) *WebhookHandler {
	return &WebhookHandler{
		client: client,
		fwd:    fwd,
	}
}

// HandleWhatsApp handles POST /twilio/whatsapp
func (h *WebhookHandler) HandleWhatsApp(c echo.Context) error {
	return h.relay(c, "whatsapp")
}

// HandleSMS handles POST /twilio/sms
func (h *WebhookHandler) HandleSMS(c echo.Context) error {
	return h.relay(c, "sms")
}

func (h *WebhookHandler) relay(c echo.Context, channel string) error {
	// Buffer the payload as-is; the gateway is payload-agnostic and
	// performs no schema validation
	payload, err := io.ReadAll(c.Request().Body)
	if err != nil {
		logger.Error("Failed to read %s webhook body: %v", channel, err)
		return ack(c)
	}

	contentType := c.Request().Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/x-www-form-urlencoded"
	}

	// Best-effort sender extraction for the log line; a payload that does
	// not parse as form data is still relayed unmodified
	if vals, parseErr := url.ParseQuery(string(payload)); parseErr == nil {
		if from := vals.Get("From"); from != "" {
			logger.Info("%s message from %s", channel, from)
		}
	} else {
		logger.Warn("%s webhook payload is not valid form data, relaying as-is", channel)
	}

	if h.fwd != nil {
		if submitErr := h.fwd.Submit(channel, payload, contentType); submitErr != nil {
			// Queue full: the message cannot be recovered, so absorb the
			// failure and still acknowledge the provider
			logger.Warn("Forwarder rejected %s delivery: %v", channel, submitErr)
			metrics.ForwardOutcomes.WithLabelValues(channel, "dropped").Inc()
		}
		return ack(c)
	}

	outcome := h.client.Forward(c.Request().Context(), channel, payload, contentType)
	metrics.ForwardOutcomes.WithLabelValues(channel, outcome.Kind.String()).Inc()

	switch outcome.Kind {
	case relay.OutcomeDelivered:
		logger.Info("Forwarded %s webhook: backend returned %d", channel, outcome.StatusCode)
		if len(outcome.Body) > 0 {
			// Backend produced a reply (e.g. a TwiML message); pass it through
			replyType := outcome.ContentType
			if replyType == "" {
				replyType = mimeApplicationXML
			}
			return c.Blob(http.StatusOK, replyType, outcome.Body)
		}
	case relay.OutcomeBackendError:
		logger.Warn("Forwarded %s webhook but backend returned %d", channel, outcome.StatusCode)
	case relay.OutcomeTimeout:
		logger.Error("Forwarding %s webhook timed out", channel)
	case relay.OutcomeUnreachable:
		logger.Error("Backend unreachable while forwarding %s webhook", channel)
	}

	return ack(c)
}

func ack(c echo.Context) error {
	return c.Blob(http.StatusOK, mimeApplicationXML, []byte(twimlAck))
}
