package service

import (
	"sync"

	"github.com/noah-isme/mentora-api/internal/dto"
	"github.com/noah-isme/mentora-api/internal/observability"
)

const reviewHubBufferSize = 16

// ReviewHub fans review events out to the websocket subscribers of this process.
type ReviewHub struct {
	mu          sync.RWMutex
	subscribers map[chan dto.ReviewEvent]struct{}
}

// NewReviewHub constructs an empty hub.
func NewReviewHub() *ReviewHub {
	return &ReviewHub{subscribers: make(map[chan dto.ReviewEvent]struct{})}
}

// Subscribe registers a subscriber; the returned cleanup closes the channel.
func (h *ReviewHub) Subscribe() (<-chan dto.ReviewEvent, func()) {
	ch := make(chan dto.ReviewEvent, reviewHubBufferSize)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()
	observability.ReviewStreamClients().Inc()

	var once sync.Once
	cleanup := func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subscribers, ch)
			close(ch)
			h.mu.Unlock()
			observability.ReviewStreamClients().Dec()
		})
	}
	return ch, cleanup
}

// Broadcast delivers the event to every subscriber, dropping it for slow ones.
func (h *ReviewHub) Broadcast(event dto.ReviewEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribers returns the number of connected subscribers.
func (h *ReviewHub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
