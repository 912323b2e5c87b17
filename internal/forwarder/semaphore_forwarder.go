package forwarder

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"

	"twilio-gateway/internal/metrics"
	"twilio-gateway/internal/relay"
	"twilio-gateway/pkg/logger"
)

// SemaphoreForwarder delivers each submitted payload in its own goroutine,
// with a weighted semaphore bounding how many backend calls run at once.
// Unlike pool mode there is no queue to fill: Submit always succeeds and
// excess deliveries wait on the semaphore.
type SemaphoreForwarder struct {
	client          *relay.Client
	maxConcurrent   int64
	sem             *semaphore.Weighted
	waiters         atomic.Int64
	wg              sync.WaitGroup
	startOnce       sync.Once
	stopOnce        sync.Once
	stopped         atomic.Bool
	shutdownTimeout time.Duration
}

// NewSemaphoreForwarder creates a semaphore-bounded forwarder using the
// given relay client
func NewSemaphoreForwarder(client *relay.Client, maxConcurrent int64, shutdownTimeout time.Duration) *SemaphoreForwarder {
	if maxConcurrent <= 0 {
		maxConcurrent = 256
	}
	return &SemaphoreForwarder{
		client:          client,
		maxConcurrent:   maxConcurrent,
		sem:             semaphore.NewWeighted(maxConcurrent),
		shutdownTimeout: shutdownTimeout,
	}
}

func (s *SemaphoreForwarder) Start() {
	s.startOnce.Do(func() {
		logger.Info("Semaphore forwarder started with maxConcurrent=%d", s.maxConcurrent)
	})
}

func (s *SemaphoreForwarder) Stop() {
	s.stopOnce.Do(func() {
		s.stopped.Store(true)
		logger.Info("Stopping semaphore forwarder: waiting for in-flight deliveries")

		done := make(chan struct{})
		go func() {
			defer close(done)
			s.wg.Wait()
		}()

		select {
		case <-done:
			logger.Info("Semaphore forwarder stopped: all deliveries finished")
		case <-time.After(s.shutdownTimeout):
			logger.Warn("Semaphore forwarder stop timed out after %v", s.shutdownTimeout)
		}
	})
}

func (s *SemaphoreForwarder) Submit(channel string, payload []byte, contentType string) error {
	if s.stopped.Load() {
		return nil // during shutdown the readiness gate blocks new traffic
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		s.waiters.Inc()
		if err := s.sem.Acquire(context.Background(), 1); err != nil {
			s.waiters.Dec()
			return
		}
		s.waiters.Dec()
		defer s.sem.Release(1)

		metrics.ActiveSendersGauge.Inc()
		defer metrics.ActiveSendersGauge.Dec()

		outcome := s.client.Forward(context.Background(), channel, payload, contentType)
		metrics.ForwardOutcomes.WithLabelValues(channel, outcome.Kind.String()).Inc()

		switch outcome.Kind {
		case relay.OutcomeDelivered:
			logger.Debug("Semaphore forwarder: forwarded %s webhook, backend returned %d", channel, outcome.StatusCode)
		case relay.OutcomeBackendError:
			logger.Warn("Semaphore forwarder: backend returned %d for %s webhook", outcome.StatusCode, channel)
		case relay.OutcomeTimeout:
			logger.Error("Semaphore forwarder: forwarding %s webhook timed out", channel)
		case relay.OutcomeUnreachable:
			logger.Error("Semaphore forwarder: backend unreachable while forwarding %s webhook", channel)
		}
	}()

	return nil
}

func (s *SemaphoreForwarder) GetQueueDepth() int {
	v := s.waiters.Load()
	if v < 0 {
		return 0
	}
	return int(v)
}
