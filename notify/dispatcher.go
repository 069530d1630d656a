package notify

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// DispatcherConfig controls asynchronous delivery buffering.
type DispatcherConfig struct {
	BufferSize int
	DropIfFull bool
	// Timeout bounds each background Send. Zero means no bound.
	Timeout time.Duration
}

// Dispatcher delivers notices on a background goroutine. Delivery is best
// effort: failures go to OnError and never reach the caller of Send.
type Dispatcher struct {
	cfg       DispatcherConfig
	sender    Sender
	onError   func(Notice, error)
	ch        chan Notice
	done      chan struct{}
	wg        sync.WaitGroup
	dropped   atomic.Uint64
	failed    atomic.Uint64
	closeOnce sync.Once

	// mu is held shared across the closed check and the enqueue, so no
	// notice lands in ch after run has drained it.
	mu     sync.RWMutex
	closed bool
}

// NewDispatcher starts the worker. onError may be nil.
func NewDispatcher(cfg DispatcherConfig, sender Sender, onError func(Notice, error)) *Dispatcher {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if onError == nil {
		onError = func(Notice, error) {}
	}

	d := &Dispatcher{
		cfg:     cfg,
		sender:  sender,
		onError: onError,
		ch:      make(chan Notice, cfg.BufferSize),
		done:    make(chan struct{}),
	}

	d.wg.Add(1)
	go d.run()

	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()

	for {
		select {
		case n := <-d.ch:
			d.deliver(n)
		case <-d.done:
			for {
				select {
				case n := <-d.ch:
					d.deliver(n)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(n Notice) {
	ctx := context.Background()
	if d.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.Timeout)
		defer cancel()
	}
	if err := d.sender.Send(ctx, n); err != nil {
		d.failed.Add(1)
		d.onError(n, err)
	}
}

// Send enqueues n and returns nil. With DropIfFull a full buffer drops the
// notice; otherwise Send blocks until there is room or ctx is done. Notices
// sent after Close are counted as dropped.
func (d *Dispatcher) Send(ctx context.Context, n Notice) error {
	if d == nil {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		d.dropped.Add(1)
		return nil
	}

	if d.cfg.DropIfFull {
		select {
		case d.ch <- n:
		default:
			d.dropped.Add(1)
		}
		return nil
	}

	// run keeps draining until done is closed, which Close does only after
	// every in-flight Send has released mu.
	select {
	case d.ch <- n:
	case <-ctx.Done():
		d.dropped.Add(1)
	}
	return nil
}

// Close stops accepting notices and drains the buffer. It waits for
// in-flight Send calls to finish enqueueing.
func (d *Dispatcher) Close() {
	if d == nil {
		return
	}
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()
		close(d.done)
		d.wg.Wait()
	})
}

// Dropped reports notices that were never queued.
func (d *Dispatcher) Dropped() uint64 {
	if d == nil {
		return 0
	}
	return d.dropped.Load()
}

// Failed reports notices whose delivery returned an error.
func (d *Dispatcher) Failed() uint64 {
	if d == nil {
		return 0
	}
	return d.failed.Load()
}
