package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"studyassist/internal/agent"
	"studyassist/internal/docstore"
	"studyassist/internal/stream"
)

// chatRequest is the POST /chat body. CheckpointID resumes a prior
// conversation; when empty a new one is started and its ID announced as
// the first stream event.
type chatRequest struct {
	DocID        string `json:"doc_id"`
	Message      string `json:"message"`
	CheckpointID string `json:"checkpoint_id,omitempty"`
}

// handleChat streams one conversation turn as server-sent events. Events
// arrive in order: an optional checkpoint, then content and tool_start
// interleaved, then exactly one end. Failures surface as an error event
// before the end so the stream always terminates cleanly.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.DocID == "" || req.Message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "doc_id and message are required"})
		return
	}
	if _, err := s.store.Registry().Get(r.Context(), req.DocID); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "document not found"})
			return
		}
		s.log.Error("looking up document", "doc_id", req.DocID, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to look up document"})
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	emit := func(ev stream.Event) {
		w.Write([]byte(ev.SSE()))
		flusher.Flush()
	}

	checkpointID := req.CheckpointID
	if checkpointID == "" {
		checkpointID = agent.NewCheckpointID()
		emit(stream.Checkpoint(checkpointID))
	}

	if err := s.agent.Converse(r.Context(), checkpointID, req.DocID, req.Message, emit); err != nil {
		s.log.Error("conversation turn failed", "checkpoint_id", checkpointID, "error", err)
		if r.Context().Err() == nil {
			emit(stream.Error("An error occurred while processing your message."))
		}
	}
	emit(stream.End())
}
