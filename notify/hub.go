// Package notify fans freshly created notifications out to the live
// connections of their recipient.
package notify

import (
	"sync"

	"taskhub/models"
)

// Hub keeps the open subscriptions per user. The zero value is not usable;
// call NewHub.
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint]map[*Subscription]struct{}
	buffer int
}

// Subscription receives the notifications addressed to one user until Close.
type Subscription struct {
	C <-chan models.Notification

	ch     chan models.Notification
	hub    *Hub
	userID uint
	once   sync.Once
}

// NewHub returns a hub whose subscriptions buffer up to buffer undelivered
// notifications. Publishing to a full subscription drops the notification for
// that subscriber only; it is still stored and listed.
func NewHub(buffer int) *Hub {
	if buffer < 1 {
		buffer = 1
	}
	return &Hub{subs: make(map[uint]map[*Subscription]struct{}), buffer: buffer}
}

func (h *Hub) Subscribe(userID uint) *Subscription {
	ch := make(chan models.Notification, h.buffer)
	s := &Subscription{C: ch, ch: ch, hub: h, userID: userID}

	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[userID] = set
	}
	set[s] = struct{}{}
	return s
}

// Close detaches the subscription and closes its channel. Safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		defer h.mu.Unlock()
		if set, ok := h.subs[s.userID]; ok {
			delete(set, s)
			if len(set) == 0 {
				delete(h.subs, s.userID)
			}
		}
		close(s.ch)
	})
}

// Publish delivers n to every subscription of n.UserID without blocking.
// It returns how many subscribers accepted it.
func (h *Hub) Publish(n models.Notification) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for s := range h.subs[n.UserID] {
		select {
		case s.ch <- n:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers reports the number of open subscriptions for userID.
func (h *Hub) Subscribers(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
