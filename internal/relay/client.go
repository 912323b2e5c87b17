package relay

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// maxReplyBytes caps how much of a backend reply body is buffered for
// pass-through to the provider. TwiML replies are tiny; anything larger
// is truncated rather than held in memory.
const maxReplyBytes = 64 * 1024

// OutcomeKind classifies the result of a single forwarding attempt
type OutcomeKind int

const (
	// OutcomeDelivered means the backend answered with a 2xx status
	OutcomeDelivered OutcomeKind = iota
	// OutcomeBackendError means the backend answered with a non-2xx status
	OutcomeBackendError
	// OutcomeTimeout means the backend did not answer within the configured bound
	OutcomeTimeout
	// OutcomeUnreachable means the backend could not be reached at all
	// (connection refused, DNS failure, caller disconnect)
	OutcomeUnreachable
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeDelivered:
		return "delivered"
	case OutcomeBackendError:
		return "backend_error"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

// Outcome is the normalized result of a forwarding attempt. StatusCode,
// Body and ContentType are only populated when the backend responded
// (Delivered or BackendError).
type Outcome struct {
	Kind        OutcomeKind
	StatusCode  int
	Body        []byte
	ContentType string
}

// Client forwards webhook payloads to the configured backend.
// It holds the single backend base URL for the process lifetime and a
// shared HTTP client with connection pooling.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a relay client for the given backend base URL.
// timeout bounds each Forward call end to end; Twilio enforces its own
// response ceiling on webhook calls, so this must stay well under it.
func NewClient(baseURL string, timeout time.Duration) *Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          200,
		MaxIdleConnsPerHost:   100,
		MaxConnsPerHost:       200,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		timeout:    timeout,
		httpClient: &http.Client{Transport: transport},
	}
}

// BaseURL returns the configured backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Forward POSTs payload to <baseURL>/<channel> with the given content type
// and waits up to the client timeout for a response. The passed context is
// honored so an in-flight call is cancelled when the inbound connection
// drops. Every transport fault is normalized into an Outcome; Forward
// never returns a raw error to the caller.
func (c *Client) Forward(ctx context.Context, channel string, payload []byte, contentType string) Outcome {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+channel, bytes.NewReader(payload))
	if err != nil {
		return Outcome{Kind: OutcomeUnreachable}
	}
	if contentType == "" {
		contentType = "application/x-www-form-urlencoded"
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Outcome{Kind: OutcomeTimeout}
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return Outcome{Kind: OutcomeTimeout}
		}
		return Outcome{Kind: OutcomeUnreachable}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))

	outcome := Outcome{
		StatusCode:  resp.StatusCode,
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		outcome.Kind = OutcomeDelivered
	} else {
		outcome.Kind = OutcomeBackendError
	}
	return outcome
}
