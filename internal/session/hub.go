// Package session routes chat input to the selection that is waiting for it.
package session

import (
	"context"
	"sync"

	"github.com/kapu/carfinder-bot-go/internal/domain"
	"go.uber.org/zap"
)

// Key identifies one user in one chat.
type Key struct {
	Room   string
	UserID string
}

type waiter struct {
	viewID string
	ch     chan domain.Input
}

// Hub holds at most one waiter per key. Delivery claims the waiter under the
// lock, so each wait receives exactly one event; anything arriving after the
// claim finds no waiter and is dropped.
type Hub struct {
	mu      sync.Mutex
	waiters map[Key]*waiter
	active  map[Key]struct{}
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		waiters: make(map[Key]*waiter),
		active:  make(map[Key]struct{}),
		logger:  logger,
	}
}

// Begin marks key as running a flow. ok is false when one is already active;
// release must be called exactly once when ok is true.
func (h *Hub) Begin(key Key) (release func(), ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, busy := h.active[key]; busy {
		return nil, false
	}
	h.active[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.active, key)
			delete(h.waiters, key)
			h.mu.Unlock()
		})
	}, true
}

// Active reports whether key has a flow running.
func (h *Hub) Active(key Key) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.active[key]
	return ok
}

// Next blocks until an input for key arrives or ctx ends. Page-turn signals
// only count when they target viewID.
func (h *Hub) Next(ctx context.Context, key Key, viewID string) (domain.Input, error) {
	w := &waiter{viewID: viewID, ch: make(chan domain.Input, 1)}

	h.mu.Lock()
	h.waiters[key] = w
	h.mu.Unlock()

	select {
	case in := <-w.ch:
		return in, nil
	case <-ctx.Done():
	}

	h.mu.Lock()
	current, registered := h.waiters[key]
	if registered && current == w {
		delete(h.waiters, key)
		h.mu.Unlock()
		return domain.Input{}, ctx.Err()
	}
	h.mu.Unlock()

	// Claimed concurrently with the deadline; the send is already buffered.
	return <-w.ch, nil
}

// DeliverText hands a typed message to key's waiter. It reports false when
// nobody was waiting.
func (h *Hub) DeliverText(key Key, text string) bool {
	return h.deliver(key, "", domain.TextInput(text))
}

// DeliverSignal hands a page turn to key's waiter. An empty viewID matches
// whichever page is showing.
func (h *Hub) DeliverSignal(key Key, viewID string, kind domain.InputKind) bool {
	return h.deliver(key, viewID, domain.PageTurn(kind))
}

func (h *Hub) deliver(key Key, viewID string, in domain.Input) bool {
	h.mu.Lock()
	w, ok := h.waiters[key]
	if !ok || (in.Kind.IsPageTurn() && viewID != "" && viewID != w.viewID) {
		h.mu.Unlock()
		h.logger.Debug("Input discarded",
			zap.String("room", key.Room),
			zap.String("user", key.UserID),
			zap.String("kind", in.Kind.String()),
		)
		return false
	}
	delete(h.waiters, key)
	h.mu.Unlock()

	w.ch <- in
	return true
}

// Inbox binds the hub to one key so a selector can wait without knowing
// about rooms and users.
func (h *Hub) Inbox(key Key) domain.Inbox {
	return inbox{hub: h, key: key}
}

type inbox struct {
	hub *Hub
	key Key
}

func (i inbox) Next(ctx context.Context, viewID string) (domain.Input, error) {
	return i.hub.Next(ctx, i.key, viewID)
}
