package events

import (
	"auction-engine/utils"
	"context"
	"fmt"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"
)

// Handler reacts to one event. Returning an error asks for a retry.
type Handler interface {
	Name() string
	Handle(ctx context.Context, evt Event) error
}

// Config tunes the dispatcher worker pool
type Config struct {
	Workers        int
	MaxAttempts    int
	RetryDelay     time.Duration
	HandlerTimeout time.Duration
}

// DefaultConfig is used for zero fields of a Config
var DefaultConfig = Config{
	Workers:        4,
	MaxAttempts:    3,
	RetryDelay:     200 * time.Millisecond,
	HandlerTimeout: 10 * time.Second,
}

// Dispatcher delivers events to every handler on a pool of workers.
// Events of one auction always go to the same worker, so their handlers run
// in commit order. Handler failures are retried, then logged and dropped.
type Dispatcher struct {
	cfg      Config
	handlers []Handler
	queues   []*queue

	ctx    context.Context
	cancel context.CancelFunc

	startOnce sync.Once
	closeOnce sync.Once
	wg        sync.WaitGroup

	delivered atomic.Int64
	dropped   atomic.Int64
}

// NewDispatcher creates a stopped dispatcher; call Start or Run to process events
func NewDispatcher(cfg Config, handlers ...Handler) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig.Workers
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig.MaxAttempts
	}
	if cfg.RetryDelay < 0 {
		cfg.RetryDelay = 0
	}
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = DefaultConfig.HandlerTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Dispatcher{
		cfg:      cfg,
		handlers: handlers,
		queues:   make([]*queue, cfg.Workers),
		ctx:      ctx,
		cancel:   cancel,
	}
	for i := range d.queues {
		d.queues[i] = newQueue()
	}
	return d
}

// Publish queues evt for asynchronous delivery. It never blocks.
func (d *Dispatcher) Publish(evt Event) {
	q := d.queues[d.shard(evt.AuctionID)]
	if !q.enqueue(evt) {
		d.dropped.Add(1)
		utils.Warn("event dropped: dispatcher closed", map[string]any{
			"kind":       evt.Kind,
			"auction_id": evt.AuctionID,
		})
	}
}

// Start launches the workers
func (d *Dispatcher) Start() {
	d.startOnce.Do(func() {
		for _, q := range d.queues {
			d.wg.Add(1)
			go d.work(q)
		}
		utils.Info("event dispatcher started", map[string]any{
			"workers":  d.cfg.Workers,
			"handlers": len(d.handlers),
		})
	})
}

// Close stops accepting events, lets the workers drain what is queued and waits for them
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		for _, q := range d.queues {
			q.close()
		}
		d.Start()
		d.wg.Wait()
		d.cancel()
		utils.Info("event dispatcher stopped", map[string]any{
			"delivered": d.delivered.Load(),
			"dropped":   d.dropped.Load(),
		})
	})
}

// Run starts the dispatcher and closes it when ctx is done
func (d *Dispatcher) Run(ctx context.Context) error {
	d.Start()
	<-ctx.Done()
	d.Close()
	return nil
}

// Pending reports how many events are still queued
func (d *Dispatcher) Pending() int {
	n := 0
	for _, q := range d.queues {
		n += q.len()
	}
	return n
}

// Stats reports delivered and dropped handler invocations
func (d *Dispatcher) Stats() (delivered, dropped int64) {
	return d.delivered.Load(), d.dropped.Load()
}

func (d *Dispatcher) shard(auctionID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(auctionID))
	return int(h.Sum32() % uint32(len(d.queues)))
}

func (d *Dispatcher) work(q *queue) {
	defer d.wg.Done()

	for {
		if evt, ok := q.tryDequeue(); ok {
			d.dispatch(evt)
			continue
		}
		if q.drained() {
			return
		}
		select {
		case <-q.signal:
		case <-q.done:
		}
	}
}

func (d *Dispatcher) dispatch(evt Event) {
	for _, h := range d.handlers {
		if err := d.deliver(h, evt); err != nil {
			d.dropped.Add(1)
			utils.Error("event handler failed, event dropped", map[string]any{
				"handler":    h.Name(),
				"kind":       evt.Kind,
				"auction_id": evt.AuctionID,
				"attempts":   d.cfg.MaxAttempts,
				"error":      err.Error(),
			})
			continue
		}
		d.delivered.Add(1)
	}
}

func (d *Dispatcher) deliver(h Handler, evt Event) error {
	var err error
	for attempt := 1; attempt <= d.cfg.MaxAttempts; attempt++ {
		if err = d.attempt(h, evt); err == nil {
			return nil
		}
		utils.Warn("event handler attempt failed", map[string]any{
			"handler":    h.Name(),
			"kind":       evt.Kind,
			"auction_id": evt.AuctionID,
			"attempt":    attempt,
			"error":      err.Error(),
		})
		if attempt < d.cfg.MaxAttempts && d.cfg.RetryDelay > 0 {
			time.Sleep(d.cfg.RetryDelay * time.Duration(attempt))
		}
	}
	return err
}

func (d *Dispatcher) attempt(h Handler, evt Event) (err error) {
	ctx, cancel := context.WithTimeout(d.ctx, d.cfg.HandlerTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler %s panicked: %v", h.Name(), r)
		}
	}()
	return h.Handle(ctx, evt)
}
