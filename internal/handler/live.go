package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/pkordes/tie-inventory/internal/domain"
	"github.com/pkordes/tie-inventory/internal/live"
)

// StreamQuery is the body of PUT /api/ties/live/{streamId}.
type StreamQuery struct {
	Search   string `json:"search"`
	Category string `json:"category"`
}

type connectedEvent struct {
	StreamID string          `json:"streamId"`
	Query    domain.TieQuery `json:"query"`
}

type heartbeatEvent struct {
	Time time.Time `json:"time"`
}

// StreamTies handles GET /api/ties/live?q=&category= as a Server-Sent Events
// stream. The first event is "connected" with the stream id, followed by a
// "snapshot" for every result set of the current query and a periodic
// "heartbeat". The view is closed when the client goes away.
func (s *Server) StreamTies(w http.ResponseWriter, r *http.Request, params StreamTiesParams) {
	q := domain.NewTieQuery(deref(params.Q), deref(params.Category))

	ctx := r.Context()
	if ctx.Err() != nil {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		s.logger.ErrorContext(ctx, "streaming not supported", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "streaming not supported")
		return
	}

	view := s.live.NewView(ctx, q)
	defer view.Close()

	id, err := s.streams.Add(view)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to register stream", "error", err)
		return
	}
	defer s.streams.Remove(id)

	log := s.logger.With("stream_id", id)
	if err := s.sendEvent(rc, w, "connected", connectedEvent{StreamID: id, Query: q}); err != nil {
		log.WarnContext(ctx, "failed to send connected event", "error", err)
		return
	}

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case snap, ok := <-view.Snapshots():
			if !ok {
				log.InfoContext(ctx, "stream closed by server")
				return
			}
			if err := s.sendEvent(rc, w, "snapshot", snap); err != nil {
				log.InfoContext(ctx, "client disconnected during send")
				return
			}
		case now := <-heartbeat.C:
			if err := s.sendEvent(rc, w, "heartbeat", heartbeatEvent{Time: now.UTC()}); err != nil {
				log.InfoContext(ctx, "client disconnected during heartbeat")
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// SwitchStream handles PUT /api/ties/live/{streamId}. It changes the query
// of an open stream; results of the old query are never sent after it returns.
func (s *Server) SwitchStream(w http.ResponseWriter, r *http.Request, id string) {
	var req StreamQuery
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.rejectBody(w, r, err)
		return
	}

	view, ok := s.streams.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "stream not found")
		return
	}
	q := domain.NewTieQuery(req.Search, req.Category)
	if err := view.Switch(q); err != nil {
		if errors.Is(err, live.ErrViewClosed) {
			writeError(w, http.StatusNotFound, "not_found", "stream not found")
			return
		}
		s.respondError(w, r, err, "stream")
		return
	}
	writeJSON(w, http.StatusOK, q)
}

// sendEvent writes one SSE event and flushes it. Each successful write
// pushes the write deadline out, so the server's WriteTimeout does not end a
// healthy stream.
func (s *Server) sendEvent(rc *http.ResponseController, w http.ResponseWriter, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil {
		return err
	}
	if err := rc.SetWriteDeadline(time.Now().Add(2 * s.heartbeat)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		s.logger.Debug("failed to set write deadline", "error", err)
	}
	return nil
}
