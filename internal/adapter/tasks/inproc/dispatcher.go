package inproc

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/djasnowski/myrefell-sub002/internal/app/ports"
)

var (
	ErrUnknownLane = errors.New("unknown task lane")
	ErrClosed      = errors.New("dispatcher closed")
)

// Handler consumes one task. Returned errors are logged, not retried; the
// jobs riding this dispatcher recover through their own mechanisms (the queue
// reaper, the idempotent world jobs).
type Handler func(ctx context.Context, task ports.Task) error

// Dispatcher is an in-process, lane-partitioned task queue. Each lane owns a
// buffered channel and its own consumer goroutines, so a backlog on one lane
// never blocks another.
type Dispatcher struct {
	mu     sync.Mutex
	lanes  map[string]chan ports.Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	buffer int
	closed bool
}

func New(buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		lanes:  make(map[string]chan ports.Task),
		ctx:    ctx,
		cancel: cancel,
		buffer: buffer,
	}
}

// HandleLane registers a lane and starts its consumers. Must be called before
// anything enqueues onto the lane.
func (d *Dispatcher) HandleLane(lane string, consumers int, handler Handler) {
	if consumers <= 0 {
		consumers = 1
	}
	d.mu.Lock()
	ch, ok := d.lanes[lane]
	if !ok {
		ch = make(chan ports.Task, d.buffer)
		d.lanes[lane] = ch
	}
	d.mu.Unlock()
	if ok {
		return
	}

	for i := 0; i < consumers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			for {
				select {
				case <-d.ctx.Done():
					return
				case task := <-ch:
					if err := handler(d.ctx, task); err != nil {
						log.Printf("task %s on lane %s: %v", task.Kind, lane, err)
					}
				}
			}
		}()
	}
}

// Enqueue accepts the task onto the lane's buffer. It blocks only when the
// lane is full, and gives up when the caller's context or the dispatcher dies.
func (d *Dispatcher) Enqueue(ctx context.Context, lane string, task ports.Task) error {
	d.mu.Lock()
	ch, ok := d.lanes[lane]
	closed := d.closed
	d.mu.Unlock()
	if closed {
		return ErrClosed
	}
	if !ok {
		return ErrUnknownLane
	}

	select {
	case ch <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-d.ctx.Done():
		return ErrClosed
	}
}

// Close stops the consumers and waits for in-flight handlers to return.
// Buffered tasks not yet picked up are dropped; every job class here survives
// a drop (reaper, idempotent world jobs).
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	d.cancel()
	d.wg.Wait()
}
