package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rocketscienceinc/tactical-tictactoe/internal/entity"
)

const (
	heartbeatInterval = 15 * time.Second

	eventSession = "session"
	eventClosed  = "closed"
)

// Events streams every snapshot of a session as server-sent events. The
// current snapshot is sent first so clients need no separate fetch. The
// stream ends with a closed event once the session is deleted.
func (that *handlers) Events(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	id := chi.URLParam(r, "id")

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "streaming unsupported"})
		return
	}

	// subscribe before reading so nothing published in between is lost
	updates, err := that.gameUseCase.SessionUpdates(ctx, id)
	if err != nil {
		that.writeError(w, "Events", err)
		return
	}

	current, err := that.gameUseCase.GetSession(ctx, id)
	if err != nil {
		that.writeError(w, "Events", err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	if err = writeEvent(w, eventSession, current); err != nil {
		return
	}
	flusher.Flush()

	sent := current.Revision

	ticker := time.NewTicker(heartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err = io.WriteString(w, ": ping\n\n"); err != nil {
				return
			}
		case snapshot, ok := <-updates:
			if !ok {
				return
			}

			if snapshot.IsClosed() {
				_ = writeEvent(w, eventClosed, snapshot)
				flusher.Flush()
				return
			}

			// already sent
			if snapshot.Revision <= sent {
				continue
			}

			if err = writeEvent(w, eventSession, snapshot); err != nil {
				that.logger.Debug("event stream closed", "session", id, "error", err)
				return
			}

			sent = snapshot.Revision
		}

		flusher.Flush()
	}
}

func writeEvent(w io.Writer, event string, snapshot *entity.Snapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	if _, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	return nil
}
