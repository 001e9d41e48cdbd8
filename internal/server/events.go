package server

import (
	"fmt"
	"net/http"
	"time"

	errs "github.com/matzehuels/graphbridge/pkg/errors"
)

// setSSEHeaders prepares a response for server-sent events.
func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// events streams graph notifications until the client goes away. Each
// event is named after the notification ("invalidate") and carries the
// graph ID as data.
func (s *Server) events(w http.ResponseWriter, r *http.Request) {
	h, err := s.handle(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, r, errs.New(errs.ErrCodeInternal, "streaming not supported"))
		return
	}

	ctx := r.Context()
	sub := h.Subscribe(ctx)
	defer sub.Close()

	setSSEHeaders(w)
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, ": subscribed %s\n\n", sub.ID())
	flusher.Flush()

	s.logger.Debug("event stream opened", "module", h.Module().Path(), "graph", h.ID(), "subscription", sub.ID())
	defer s.logger.Debug("event stream closed", "subscription", sub.ID())

	ticker := time.NewTicker(s.keep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-sub.Done():
			return
		case ev, ok := <-sub.C():
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: %s\ndata: %q\n\n", ev, h.ID().String()); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
