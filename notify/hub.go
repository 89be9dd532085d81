// Package notify fans notifications out to the live connections of their
// recipients. Delivery is best effort: the database row is the source of
// truth and a client that misses a message sees it on its next listing.
package notify

import (
	"sync"

	"github.com/ETTyler/football/model"
	"github.com/rs/zerolog/log"
)

const DefaultBuffer = 16

type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
}

type Subscription struct {
	UserID string
	C      <-chan model.Notification

	ch   chan model.Notification
	hub  *Hub
	once sync.Once
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Hub{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

func (h *Hub) Subscribe(userID string) *Subscription {
	ch := make(chan model.Notification, h.buffer)
	s := &Subscription{UserID: userID, C: ch, ch: ch, hub: h}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][s] = struct{}{}
	return s
}

// Close removes the subscription from the hub and closes its channel. It is
// safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		h := s.hub
		h.mu.Lock()
		defer h.mu.Unlock()

		if subs, ok := h.subs[s.UserID]; ok {
			delete(subs, s)
			if len(subs) == 0 {
				delete(h.subs, s.UserID)
			}
		}
		close(s.ch)
	})
}

// Publish hands n to every subscription of its recipient without blocking.
// Subscribers whose buffer is full miss the message. Returns the number of
// subscriptions that received it.
func (h *Hub) Publish(n model.Notification) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for s := range h.subs[n.UserID] {
		select {
		case s.ch <- n:
			delivered++
		default:
			log.Warn().Str("user", n.UserID).Str("notification", n.ID).Msg("dropping live notification for slow subscriber")
		}
	}
	return delivered
}

func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
