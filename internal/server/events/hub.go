package events

import (
	"context"
	"sync"

	json "github.com/goccy/go-json"
)

// Hub fans events out to in-process subscribers as JSON frames. A
// subscriber whose buffer is full misses the frame rather than blocking
// the publisher.
type Hub struct {
	mu     sync.RWMutex
	subs   map[chan []byte]struct{}
	buffer int
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{subs: make(map[chan []byte]struct{}), buffer: buffer}
}

// Subscribe registers a new subscriber. The returned cancel func
// unregisters it and closes the channel; it is safe to call twice.
func (h *Hub) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, h.buffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs, ch)
			h.mu.Unlock()
			close(ch)
		})
	}
}

func (h *Hub) Publish(_ context.Context, ev Event) error {
	frame, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs {
		select {
		case ch <- frame:
		default:
		}
	}
	return nil
}

// Subscribers reports the current subscriber count.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
