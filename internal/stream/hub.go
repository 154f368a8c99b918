package stream

import (
	"sync"

	"go.uber.org/zap"
)

// subscriberBuffer is the per-subscriber delivery queue. A subscriber that
// falls this far behind is evicted rather than allowed to stall a broadcast.
const subscriberBuffer = 16

// Subscriber is one live connection's registration handle. It is created by
// Subscribe, owned exclusively by the hub, and removed on write failure or
// disconnect.
type Subscriber struct {
	ch        chan Event
	closeOnce sync.Once
}

// Events exposes the delivery channel. The channel is closed when the
// subscriber is removed from the hub.
func (s *Subscriber) Events() <-chan Event {
	return s.ch
}

func (s *Subscriber) close() {
	s.closeOnce.Do(func() {
		close(s.ch)
	})
}

// Hub is the in-memory registry of live subscribers and the fan-out
// broadcaster. It is constructed once per process and handed to the request
// handlers; it holds no durable log, so a subscriber connected after an event
// was broadcast has permanently missed it.
type Hub struct {
	mu          sync.Mutex
	subscribers map[*Subscriber]struct{}
	logger      *zap.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a new connection handle. There is no upper bound on the
// subscriber count beyond process resources.
func (h *Hub) Subscribe() *Subscriber {
	sub := &Subscriber{ch: make(chan Event, subscriberBuffer)}
	h.mu.Lock()
	h.subscribers[sub] = struct{}{}
	h.mu.Unlock()
	return sub
}

// Unsubscribe removes the handle and closes its channel. Idempotent.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	if sub == nil {
		return
	}
	h.mu.Lock()
	_, present := h.subscribers[sub]
	delete(h.subscribers, sub)
	h.mu.Unlock()
	if present {
		sub.close()
	}
}

// Broadcast delivers the event to every registered subscriber. Delivery is
// best effort: a subscriber whose queue is full is evicted immediately so it
// can never block or fail delivery to the others. Sequential broadcasts reach
// each surviving subscriber in the order they were made.
func (h *Hub) Broadcast(ev Event) {
	var stalled []*Subscriber

	h.mu.Lock()
	for sub := range h.subscribers {
		select {
		case sub.ch <- ev:
		default:
			stalled = append(stalled, sub)
		}
	}
	for _, sub := range stalled {
		delete(h.subscribers, sub)
	}
	h.mu.Unlock()

	for _, sub := range stalled {
		sub.close()
	}
	if len(stalled) > 0 {
		h.logger.Warn("evicted stalled subscribers",
			zap.Int("count", len(stalled)),
			zap.String("event", string(ev.Name)),
		)
	}
}

// Count reports the current number of registered subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}
