package http

import (
	"encoding/json"
	"net/http"

	applog "grana/internal/log"
)

// handleStreamSnapshots streams the owner's snapshots as server-sent events.
// A full snapshot is sent on connect and after every change to the owner's
// data; intermediate snapshots are coalesced when the client lags.
func (s *Server) handleStreamSnapshots(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	ownerID := ownerIDFromRequest(r)
	snapshots, cancel, err := s.hub.Subscribe(r.Context(), ownerID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	logger := applog.FromContext(r.Context()).With(applog.FieldOwnerID, ownerID)
	logger.Info("Snapshot stream opened")

	for {
		select {
		case <-r.Context().Done():
			logger.Info("Snapshot stream closed")
			return
		case snap := <-snapshots:
			payload, err := json.Marshal(snap)
			if err != nil {
				logger.Error("Failed to marshal snapshot", applog.FieldError, err)
				continue
			}
			if _, err := w.Write([]byte("event: snapshot\ndata: ")); err != nil {
				return
			}
			if _, err := w.Write(payload); err != nil {
				return
			}
			if _, err := w.Write([]byte("\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
