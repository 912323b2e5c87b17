package forwarder

import (
	"twilio-gateway/internal/worker"
)

// PoolForwarder adapts worker.Pool to the Forwarder interface
type PoolForwarder struct {
	pool *worker.Pool
}

func NewPoolForwarder(pool *worker.Pool) *PoolForwarder {
	return &PoolForwarder{pool: pool}
}

func (p *PoolForwarder) Start() {
	if p.pool != nil {
		p.pool.Start()
	}
}

func (p *PoolForwarder) Stop() {
	if p.pool != nil {
		p.pool.Stop()
	}
}

func (p *PoolForwarder) Submit(channel string, payload []byte, contentType string) error {
	if p.pool == nil {
		return nil
	}
	return p.pool.SubmitJob(worker.Job{Channel: channel, Payload: payload, ContentType: contentType})
}

func (p *PoolForwarder) GetQueueDepth() int {
	if p.pool == nil {
		return 0
	}
	return p.pool.GetQueueDepth()
}
