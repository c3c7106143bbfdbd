package events

import (
	"log"
	"sync"
)

// Message is one published event and its position in the stream. Seq starts
// at 1 and doubles as the SSE event id.
type Message struct {
	Seq  uint64
	Data string
}

const (
	subscriberBuffer = 16
	backlogSize      = 64
)

// Hub fans events out to SSE subscribers and keeps the most recent ones so a
// reconnecting client can catch up from its Last-Event-ID. A subscriber that
// falls behind misses events instead of blocking the publisher.
type Hub struct {
	mu      sync.Mutex
	seq     uint64
	backlog []Message
	clients map[chan Message]struct{}
	dropped uint64
	closed  bool
}

func NewHub() *Hub {
	return &Hub{clients: make(map[chan Message]struct{})}
}

// Subscribe registers a subscriber and returns the backlog published after
// lastSeq for replay. lastSeq 0 replays nothing. On a closed hub the channel
// comes back already closed.
func (h *Hub) Subscribe(lastSeq uint64) (chan Message, []Message) {
	ch := make(chan Message, subscriberBuffer)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(ch)
		return ch, nil
	}
	h.clients[ch] = struct{}{}

	var replay []Message
	if lastSeq > 0 {
		for _, m := range h.backlog {
			if m.Seq > lastSeq {
				replay = append(replay, m)
			}
		}
	}
	return ch, replay
}

func (h *Hub) Unsubscribe(ch chan Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[ch]; !ok {
		return
	}
	delete(h.clients, ch)
	close(ch)
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Dropped counts deliveries skipped because a subscriber was full.
func (h *Hub) Dropped() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

// Publish stamps evt with the next sequence number and returns it. It
// returns 0 once the hub is closed.
func (h *Hub) Publish(evt string) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return 0
	}
	h.seq++
	m := Message{Seq: h.seq, Data: evt}
	h.backlog = append(h.backlog, m)
	if len(h.backlog) > backlogSize {
		h.backlog = h.backlog[len(h.backlog)-backlogSize:]
	}

	for ch := range h.clients {
		select {
		case ch <- m:
		default:
			h.dropped++
			log.Printf("level=warn msg=\"event dropped for slow subscriber\" seq=%d dropped_total=%d", m.Seq, h.dropped)
		}
	}
	return m.Seq
}

// Close ends every subscription so open streams return during shutdown.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for ch := range h.clients {
		delete(h.clients, ch)
		close(ch)
	}
}
