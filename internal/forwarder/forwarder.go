package forwarder

// Forwarder abstracts the asynchronous forwarding modes. In the default
// "sync" mode no Forwarder is used at all: the webhook handler calls the
// relay client inline and relays the backend response.
type Forwarder interface {
	// Start initializes any background workers
	Start()

	// Stop gracefully stops the forwarder, waiting for in-flight
	// deliveries up to an internal timeout
	Stop()

	// Submit queues a webhook payload for delivery to the backend channel
	// endpoint. Returns an error when no more work can be accepted.
	Submit(channel string, payload []byte, contentType string) error

	// GetQueueDepth returns the current backlog (queued jobs in pool mode,
	// waiting goroutines in semaphore mode)
	GetQueueDepth() int
}
