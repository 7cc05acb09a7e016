package web

import (
	"fmt"
	"net/http"
	"sync"
)

// eventBuffer is how many undelivered events a slow client may queue.
const eventBuffer = 10

// hub fans events out to Server-Sent Events subscribers.
type hub struct {
	mu   sync.Mutex
	subs map[chan string]struct{}
}

func newHub() *hub {
	return &hub{subs: make(map[chan string]struct{})}
}

// subscribe registers a new receiver. The returned func unregisters it.
func (h *hub) subscribe() (<-chan string, func()) {
	ch := make(chan string, eventBuffer)

	h.mu.Lock()
	h.subs[ch] = struct{}{}
	h.mu.Unlock()

	return ch, func() {
		h.mu.Lock()
		delete(h.subs, ch)
		h.mu.Unlock()
	}
}

// publish delivers event to every subscriber with room in its buffer.
func (h *hub) publish(event string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (h *hub) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// handleEvents streams reload notifications until the client disconnects.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")

	events, unsubscribe := s.events.subscribe()
	defer unsubscribe()

	send := func(data string) {
		_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	send("connected")
	for {
		select {
		case <-r.Context().Done():
			return
		case event := <-events:
			send(event)
		}
	}
}
