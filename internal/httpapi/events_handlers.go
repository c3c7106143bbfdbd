package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"jobtracker-engine/internal/events"
)

const defaultKeepalive = 15 * time.Second

type EventsHandler struct {
	Hub *events.Hub

	// Interval between comment lines on an idle stream. 0 means 15s.
	Keepalive time.Duration
}

// ServeSSE streams hub events. A client reconnecting with Last-Event-ID first
// receives what it missed from the hub backlog.
func (h EventsHandler) ServeSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		WriteError(w, r, http.StatusInternalServerError, "stream_unsupported", "Streaming unsupported")
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	lastSeq, _ := strconv.ParseUint(r.Header.Get("Last-Event-ID"), 10, 64)
	ch, replay := h.Hub.Subscribe(lastSeq)
	defer h.Hub.Unsubscribe(ch)

	// The greeting has no id so it never moves the client's Last-Event-ID.
	reqID := RequestIDFrom(r.Context())
	writeSSE(w, 0, events.MakeEvent(reqID, events.TypePing, 1, map[string]int{"replayed": len(replay)}))
	for _, m := range replay {
		writeSSE(w, m.Seq, m.Data)
	}
	flusher.Flush()

	every := h.Keepalive
	if every <= 0 {
		every = defaultKeepalive
	}
	tick := time.NewTicker(every)
	defer tick.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-tick.C:
			fmt.Fprint(w, ": keepalive\n\n")
			flusher.Flush()
		case m, ok := <-ch:
			if !ok {
				return
			}
			writeSSE(w, m.Seq, m.Data)
			flusher.Flush()
		}
	}
}

func writeSSE(w io.Writer, seq uint64, data string) {
	if seq > 0 {
		fmt.Fprintf(w, "id: %d\n", seq)
	}
	fmt.Fprintf(w, "event: message\ndata: %s\n\n", data)
}
