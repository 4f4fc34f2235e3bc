package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"studyassist/internal/agent"
	"studyassist/internal/docstore"
	"studyassist/internal/stream"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format. Each message runs
// one conversation turn; the stream events for that turn are written
// back as JSON frames.
type wsRequest struct {
	DocID        string `json:"doc_id"`
	Message      string `json:"message"`
	CheckpointID string `json:"checkpoint_id,omitempty"`
}

// handleWebSocket serves conversation turns over a single long-lived
// connection. The event sequence per turn mirrors the SSE endpoint.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("websocket upgrade", "error", err)
		return
	}
	defer conn.Close()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn("websocket read", "error", err)
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendEvent(conn, stream.Error("invalid message format"))
			s.sendEvent(conn, stream.End())
			continue
		}
		if req.DocID == "" || req.Message == "" {
			s.sendEvent(conn, stream.Error("doc_id and message are required"))
			s.sendEvent(conn, stream.End())
			continue
		}
		if _, err := s.store.Registry().Get(r.Context(), req.DocID); err != nil {
			if errors.Is(err, docstore.ErrNotFound) {
				s.sendEvent(conn, stream.Error("document not found"))
			} else {
				s.log.Error("looking up document", "doc_id", req.DocID, "error", err)
				s.sendEvent(conn, stream.Error("failed to look up document"))
			}
			s.sendEvent(conn, stream.End())
			continue
		}

		checkpointID := req.CheckpointID
		if checkpointID == "" {
			checkpointID = agent.NewCheckpointID()
			s.sendEvent(conn, stream.Checkpoint(checkpointID))
		}

		err = s.agent.Converse(r.Context(), checkpointID, req.DocID, req.Message, func(ev stream.Event) {
			s.sendEvent(conn, ev)
		})
		if err != nil {
			s.log.Error("conversation turn failed", "checkpoint_id", checkpointID, "error", err)
			s.sendEvent(conn, stream.Error("An error occurred while processing your message."))
		}
		s.sendEvent(conn, stream.End())
	}
}

func (s *Server) sendEvent(conn *websocket.Conn, ev stream.Event) {
	if err := conn.WriteJSON(ev); err != nil {
		s.log.Warn("websocket write", "error", err)
	}
}
