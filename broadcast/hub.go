package broadcast

import (
	"net/http"
	"sync"
)

// inboxSize bounds how many unconsumed events a single slow subscriber may
// accumulate before the Hub starts dropping its oldest pending event to make
// room for the newest one. State-change events are idempotent snapshots of
// current state, so losing a stale one in favor of a fresher one is safe.
const inboxSize = 32

// Hub fans Publish calls out to every currently-connected subscriber. A
// slow or gone subscriber can never stall the publisher: writes into a
// subscriber's inbox are non-blocking, dropping the oldest queued event on
// overflow.
type Hub struct {
	mu   sync.Mutex
	subs map[*subscriber]struct{}
}

// NewHub returns an empty Hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*subscriber]struct{})}
}

// Publish implements broadcast.Publisher, fanning evt out to every attached
// subscriber without blocking the caller.
func (h *Hub) Publish(evt Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subs {
		enqueue(s.inbox, evt)
	}
}

// enqueue performs a non-blocking send, dropping the oldest queued event to
// make room when inbox is full.
func enqueue(inbox chan Event, evt Event) {
	select {
	case inbox <- evt:
		return
	default:
	}
	select {
	case <-inbox:
	default:
	}
	select {
	case inbox <- evt:
	default:
	}
}

// ServeWebsocket upgrades r to a websocket, registers it as a subscriber,
// and blocks for the connection's lifetime running its publish/ping/read
// loops. onConnect, if non-nil, is called immediately after registration
// with a send function that enqueues onto the new subscriber's inbox — used
// to seed layout/state_snapshot
// events to a freshly connected observer before any state change occurs.
func (h *Hub) ServeWebsocket(w http.ResponseWriter, r *http.Request, onConnect func(send func(Event))) {
	inbox := make(chan Event, inboxSize)
	sub, err := upgradeSubscriber(w, r, inbox)
	if err != nil {
		return
	}

	h.register(sub)
	defer h.unregister(sub)

	if onConnect != nil {
		onConnect(func(evt Event) { enqueue(inbox, evt) })
	}

	_ = sub.Sync()
}

func (h *Hub) register(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs[s] = struct{}{}
}

func (h *Hub) unregister(s *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subs, s)
	close(s.inbox)
}

// SubscriberCount reports the number of currently-connected observers, for
// diagnostics.
func (h *Hub) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
