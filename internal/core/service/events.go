package service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/port"
)

const publishTimeout = 5 * time.Second

// EventDispatcher publishes committed events off the request path through a
// bounded queue drained by a fixed set of workers.
type EventDispatcher struct {
	publisher port.EventPublisher
	queue     chan domain.Event
	wg        sync.WaitGroup
	mu        sync.RWMutex
	closed    bool
}

func NewEventDispatcher(publisher port.EventPublisher, queueSize int) *EventDispatcher {
	return &EventDispatcher{
		publisher: publisher,
		queue:     make(chan domain.Event, queueSize),
	}
}

func (d *EventDispatcher) Start(workers int) {
	for i := 0; i < workers; i++ {
		d.wg.Add(1)
		go func(id int) {
			defer d.wg.Done()
			d.workerLoop(id)
		}(i)
	}
}

// Enqueue never blocks. It reports false when the event was dropped because
// the queue is full or the dispatcher is closed.
func (d *EventDispatcher) Enqueue(evt domain.Event) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		slog.Warn("event dropped, dispatcher closed", "event_id", evt.ID, "type", evt.Type)
		return false
	}

	select {
	case d.queue <- evt:
		return true
	default:
		slog.Warn("event dropped, queue full", "event_id", evt.ID, "type", evt.Type)
		return false
	}
}

// Close stops accepting events, lets the workers drain the queue and waits
// for them to exit.
func (d *EventDispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	d.wg.Wait()
}

func (d *EventDispatcher) workerLoop(id int) {
	for evt := range d.queue {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)

		if err := d.publisher.Publish(ctx, evt); err != nil {
			slog.Error("publish event failed", "worker", id, "event_id", evt.ID, "type", evt.Type, "err", err)
		} else {
			slog.Debug("published event", "worker", id, "event_id", evt.ID, "type", evt.Type)
		}

		cancel()
	}
}
