// Package keepalive keeps the backend warm with a periodic no-op request,
// preventing cold starts on idle-evicted hosting.
package keepalive

import (
	"context"
	"sync"
	"time"

	"github.com/hennalash/go-client/api"
	"github.com/hennalash/go-client/logger"
)

// DefaultInterval is how often the pinger fires when not overridden.
const DefaultInterval = 45 * time.Second

// Pinger issues a HEAD /api/ping on a fixed interval for as long as it runs.
// Failures are logged and otherwise ignored: a dead ping never touches
// session or cache state and is never retried out of band.
type Pinger struct {
	client    *api.Client
	logger    logger.Logger
	interval  time.Duration
	ctx       context.Context
	cancel    context.CancelFunc
	waitGroup sync.WaitGroup
	once      sync.Once
}

// Option configures a Pinger.
type Option func(*Pinger)

// WithInterval overrides the ping interval. Values <= 0 keep the default.
func WithInterval(d time.Duration) Option {
	return func(p *Pinger) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithLogger sets the logger. Defaults to a console logger.
func WithLogger(l logger.Logger) Option {
	return func(p *Pinger) { p.logger = l }
}

// New returns a Pinger bound to parent: cancelling parent stops it.
func New(parent context.Context, client *api.Client, opts ...Option) *Pinger {
	ctx, cancel := context.WithCancel(parent)
	p := &Pinger{
		client:   client,
		interval: DefaultInterval,
		ctx:      ctx,
		cancel:   cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.NewConsoleLogger()
	}
	p.logger = p.logger.WithPrefix("keepalive")
	return p
}

// Start launches the ping loop. Calling Start more than once is a no-op
// while the loop is running.
func (p *Pinger) Start() {
	p.once.Do(func() {
		p.waitGroup.Add(1)
		go p.run()
	})
}

// Stop halts the loop and waits for it to exit. Safe to call repeatedly.
func (p *Pinger) Stop() {
	p.cancel()
	p.waitGroup.Wait()
}

func (p *Pinger) run() {
	defer p.waitGroup.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.logger.Debug("pinging every %s", p.interval)
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.ping()
		}
	}
}

func (p *Pinger) ping() {
	if err := p.client.Head(p.ctx, "/api/ping"); err != nil {
		p.logger.Debug("ping failed: %v", err)
		return
	}
	p.logger.Trace("ping ok")
}
