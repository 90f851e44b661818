package server

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/citysketch/citysketch/internal/logger"
)

// session is one connected editor client: a read pump turning messages into
// edits and a buffered write pump streaming events back.
type session struct {
	server *Server
	conn   *websocket.Conn
	out    chan any

	closeOnce sync.Once
}

func newSession(s *Server, conn *websocket.Conn) *session {
	return &session{
		server: s,
		conn:   conn,
		out:    make(chan any, 64),
	}
}

// send queues an event for delivery; slow clients drop events rather than
// stall the core.
func (s *session) send(event any) {
	select {
	case s.out <- event:
	default:
		logger.Warn("session send buffer full, dropping event",
			"remote", s.conn.RemoteAddr().String())
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.out)
		s.conn.Close()
	})
}

// readPump consumes client messages until the connection drops.
func (s *session) readPump() {
	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg editMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.send(errorEvent("malformed message"))
			continue
		}

		actions, err := s.server.applyEdit(msg)
		if err != nil {
			s.send(errorEvent(err.Error()))
			continue
		}

		s.send(actionsEvent(actions))
		s.server.mu.Lock()
		snapshot := snapshotEvent(s.server.editor.Tilemap())
		s.server.mu.Unlock()
		s.server.broadcast(snapshot)
	}
}

// writePump streams queued events as JSON text messages.
func (s *session) writePump() {
	for event := range s.out {
		data, err := json.Marshal(event)
		if err != nil {
			logger.Error("failed to marshal event", "error", err.Error())
			continue
		}
		if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			return
		}
	}
}
