package events

import (
	"sync"

	"go.uber.org/zap"
)

// DefaultListenerCap bounds the relay's listener registry. One listener is
// held per open SSE stream; hitting the cap means streams are leaking
// unsubscribes, so further subscriptions are refused rather than letting the
// registry grow without bound.
const DefaultListenerCap = 256

// Relay is a process-local publish/subscribe fan-out for order lifecycle
// events. Delivery is synchronous to all listeners registered at emit time.
// Nothing is persisted and nothing crosses process boundaries; a restart
// drops all listeners and any event emitted while a client is reconnecting
// is simply not seen by that client.
type Relay struct {
	mu        sync.Mutex
	listeners map[int]func(OrderEvent)
	nextID    int
	cap       int
	logger    *zap.Logger
}

func NewRelay(listenerCap int, logger *zap.Logger) *Relay {
	if listenerCap <= 0 {
		listenerCap = DefaultListenerCap
	}
	return &Relay{
		listeners: make(map[int]func(OrderEvent)),
		cap:       listenerCap,
		logger:    logger,
	}
}

// Subscribe registers fn and returns an unsubscribe handle. The handle must
// be called on listener teardown; it is safe to call more than once. A nil
// return means the registry is at capacity and fn was not registered.
func (r *Relay) Subscribe(fn func(OrderEvent)) (unsubscribe func()) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.listeners) >= r.cap {
		r.logger.Warn("event relay listener cap reached, refusing subscription",
			zap.Int("cap", r.cap))
		return nil
	}

	id := r.nextID
	r.nextID++
	r.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.listeners, id)
			r.mu.Unlock()
		})
	}
}

// Emit delivers evt synchronously to every registered listener. The
// listener snapshot is taken under the lock but callbacks run outside it,
// so a listener may subscribe or unsubscribe from inside its callback.
func (r *Relay) Emit(evt OrderEvent) {
	r.mu.Lock()
	fns := make([]func(OrderEvent), 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.Unlock()

	for _, fn := range fns {
		fn(evt)
	}
}

// ListenerCount reports the current registry size.
func (r *Relay) ListenerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.listeners)
}
