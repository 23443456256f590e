package browser

import (
	"context"
	"sync"

	"gitlab.com/nevasik7/alerting/logger"
)

// Factory opens a fresh automation session. Called once per lease.
type Factory func(ctx context.Context) (Session, error)

// Pool is a single-slot resource pool around the browser runtime: at most
// one live session exists at a time, and concurrent callers queue on
// Acquire. This is what bounds the automation runtime's memory use and
// serializes scrapes arriving from concurrent HTTP requests.
type Pool struct {
	log     logger.Logger
	factory Factory
	slot    chan struct{}
}

func NewPool(log logger.Logger, factory Factory) *Pool {
	p := &Pool{
		log:     log,
		factory: factory,
		slot:    make(chan struct{}, 1),
	}
	p.slot <- struct{}{}
	return p
}

// Acquire blocks until the slot is free (or ctx is done), then opens a
// session. The slot is returned if the session cannot be started.
func (p *Pool) Acquire(ctx context.Context) (*Lease, error) {
	select {
	case <-p.slot:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	sess, err := p.factory(ctx)
	if err != nil {
		p.slot <- struct{}{}
		return nil, err
	}

	p.log.Debug("browser session acquired")
	return &Lease{Session: sess, pool: p}, nil
}

// Lease is a held slot plus its live session. Release on every exit path.
type Lease struct {
	Session
	pool *Pool
	once sync.Once
}

// Release closes the session and frees the slot. Idempotent.
func (l *Lease) Release() {
	l.once.Do(func() {
		l.Session.Close()
		l.pool.slot <- struct{}{}
		l.pool.log.Debug("browser session released")
	})
}
