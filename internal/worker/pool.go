package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"twilio-gateway/internal/metrics"
	"twilio-gateway/internal/relay"
	"twilio-gateway/pkg/logger"
)

// Job is one webhook delivery waiting to be forwarded to the backend
type Job struct {
	Channel     string // Path suffix on the backend ("whatsapp", "sms")
	Payload     []byte // Buffered inbound webhook body, forwarded unmodified
	ContentType string
}

// Pool is a bounded goroutine worker pool draining queued webhook
// deliveries through the relay client. Used in "pool" forwarding mode.
type Pool struct {
	workerCount     int
	jobQueue        chan Job
	client          *relay.Client
	wg              sync.WaitGroup
	stopOnce        sync.Once
	startOnce       sync.Once
	shutdownTimeout time.Duration
	permits         chan struct{} // Counts in-flight + queued jobs for deterministic backpressure
}

// NewPool creates a worker pool that forwards jobs with the given relay
// client. workerCount <= 0 auto-detects based on CPU count (deliveries are
// I/O-bound, so workers can far exceed cores).
func NewPool(client *relay.Client, workerCount int, jobQueueSize int, shutdownTimeout time.Duration) *Pool {
	if workerCount <= 0 {
		workerCount = 8 * runtime.NumCPU()
		logger.Info("Worker pool size not configured, using default: %d (8×NumCPU)", workerCount)
	}
	if jobQueueSize <= 0 {
		jobQueueSize = 1000
		logger.Info("Job queue size not configured, using default: %d", jobQueueSize)
	}

	logger.Info("Creating worker pool: workers=%d, queueSize=%d, shutdownTimeout=%v", workerCount, jobQueueSize, shutdownTimeout)

	return &Pool{
		workerCount:     workerCount,
		jobQueue:        make(chan Job, jobQueueSize),
		client:          client,
		shutdownTimeout: shutdownTimeout,
		permits:         make(chan struct{}, workerCount+jobQueueSize),
	}
}

// Start spawns the worker goroutines. Safe to call more than once; workers
// are only started the first time.
func (p *Pool) Start() {
	p.startOnce.Do(func() {
		logger.Info("Starting worker pool with %d workers", p.workerCount)
		for i := 0; i < p.workerCount; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
	})
}

// Stop closes the job queue and waits for in-flight deliveries to finish,
// up to the shutdown timeout. Idempotent.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		logger.Info("Stopping worker pool: closing job queue and waiting for workers to finish")
		close(p.jobQueue)

		done := make(chan struct{})
		go func() {
			defer close(done)
			p.wg.Wait()
		}()

		select {
		case <-done:
			logger.Info("Worker pool stopped: all workers finished gracefully")
		case <-time.After(p.shutdownTimeout):
			logger.Warn("Worker pool stop timed out after %v: some deliveries may not have finished", p.shutdownTimeout)
		}
	})
}

// GetQueueDepth returns the current number of queued deliveries
func (p *Pool) GetQueueDepth() int {
	return len(p.jobQueue)
}

// SubmitJob queues a delivery for forwarding. Returns an error when the
// system (workers + queue buffer) is at capacity.
func (p *Pool) SubmitJob(job Job) error {
	select {
	case p.permits <- struct{}{}:
		// Capacity available; a worker may receive immediately or the buffer has space
		p.jobQueue <- job
		return nil
	default:
		logger.Warn("Job queue full: rejecting new delivery (queue size: %d)", cap(p.jobQueue))
		return fmt.Errorf("worker pool queue full (capacity: %d)", cap(p.jobQueue))
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	logger.Debug("Worker %d started", id)

	for job := range p.jobQueue {
		metrics.ActiveSendersGauge.Inc()

		outcome := p.client.Forward(context.Background(), job.Channel, job.Payload, job.ContentType)
		metrics.ForwardOutcomes.WithLabelValues(job.Channel, outcome.Kind.String()).Inc()

		switch outcome.Kind {
		case relay.OutcomeDelivered:
			logger.Debug("Worker %d: forwarded %s webhook, backend returned %d", id, job.Channel, outcome.StatusCode)
		case relay.OutcomeBackendError:
			logger.Warn("Worker %d: backend returned %d for %s webhook", id, outcome.StatusCode, job.Channel)
		case relay.OutcomeTimeout:
			logger.Error("Worker %d: forwarding %s webhook timed out", id, job.Channel)
		case relay.OutcomeUnreachable:
			logger.Error("Worker %d: backend unreachable while forwarding %s webhook", id, job.Channel)
		}

		metrics.ActiveSendersGauge.Dec()
		<-p.permits
	}

	logger.Debug("Worker %d stopped", id)
}
