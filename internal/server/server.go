// Package server exposes the tilemap editor over WebSocket: clients send
// primary/secondary edits as JSON and receive tile actions and tilemap
// snapshots back. A tick loop advances tile lifecycles between edits.
package server

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/citysketch/citysketch/internal/catalog"
	"github.com/citysketch/citysketch/internal/config"
	"github.com/citysketch/citysketch/internal/editor"
	"github.com/citysketch/citysketch/internal/grid"
	"github.com/citysketch/citysketch/internal/journal"
	"github.com/citysketch/citysketch/internal/logger"
	"github.com/citysketch/citysketch/internal/tilemap"
)

// Server owns the editor core and fans events out to connected sessions.
// The core is single-threaded; the server serialises all access through mu.
type Server struct {
	cfg     config.WebSocketConfig
	editor  *editor.Editor
	journal *journal.Journal

	mu       sync.Mutex
	sessions map[*session]struct{}
	upgrader websocket.Upgrader
}

// New creates a server around an editor. The journal may be nil.
func New(cfg config.WebSocketConfig, ed *editor.Editor, j *journal.Journal) *Server {
	s := &Server{
		cfg:      cfg,
		editor:   ed,
		journal:  j,
		sessions: make(map[*session]struct{}),
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

// checkOrigin enforces the configured origin policy: same-origin when no
// origins are listed, a wildcard or explicit allowlist otherwise.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if len(s.cfg.AllowedOrigins) == 0 {
		return sameHost(origin, r.Host)
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}

func sameHost(origin, requestHost string) bool {
	parsed, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Host, requestHost)
}

// Run serves WebSocket sessions and drives the simulation tick loop until
// the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.cfg.Port),
		Handler: mux,
	}

	go s.tickLoop(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("editor server listening", "port", s.cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// tickLoop advances tile lifecycles at the configured interval and
// broadcasts what changed.
func (s *Server) tickLoop(ctx context.Context) {
	interval := time.Duration(s.cfg.TickMillis) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.tick(float32(interval.Seconds()))
		}
	}
}

func (s *Server) tick(delta float32) {
	s.mu.Lock()
	result := s.editor.Tilemap().Update(delta)
	s.mu.Unlock()

	if len(result.Actions) == 0 && len(result.TransitionedCells) == 0 {
		return
	}
	s.broadcast(tickEvent(result))
}

// handleWS upgrades the connection and runs the session pumps.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "error", err.Error())
		return
	}
	conn.SetReadLimit(s.cfg.MaxMessageSize)

	sess := newSession(s, conn)
	s.addSession(sess)
	logger.Info("session connected", "remote", conn.RemoteAddr().String())

	// Bring the new client up to date before edits stream in.
	s.mu.Lock()
	snapshot := snapshotEvent(s.editor.Tilemap())
	s.mu.Unlock()
	sess.send(snapshot)

	go sess.writePump()
	sess.readPump()

	s.removeSession(sess)
	logger.Info("session disconnected", "remote", conn.RemoteAddr().String())
}

func (s *Server) addSession(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess] = struct{}{}
}

func (s *Server) removeSession(sess *session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sess)
	sess.close()
}

// broadcast queues an event for every connected session.
func (s *Server) broadcast(event any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sess := range s.sessions {
		sess.send(event)
	}
}

// applyEdit runs one user edit against the editor core and journals it.
func (s *Server) applyEdit(msg editMessage) ([]tilemap.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	target := grid.Cell{X: msg.X, Y: msg.Y}
	if !target.Valid(s.editor.Tilemap().Size()) {
		return nil, fmt.Errorf("cell %v out of bounds", target)
	}

	var actions []tilemap.Action
	var err error
	switch msg.Action {
	case "primary":
		actions, err = s.editor.Primary(target)
	case "secondary":
		actions, err = s.editor.Secondary(target)
	default:
		return nil, fmt.Errorf("unknown action %q", msg.Action)
	}
	if err != nil {
		return nil, err
	}

	if s.journal != nil {
		kind := journal.EditAdd
		if msg.Action == "secondary" {
			kind = journal.EditRemove
		}
		var tileID catalog.TileID
		if tile, ok := s.editor.Tilemap().FixedTileByCell(target); ok {
			tileID = tile.ID
		}
		if err := s.journal.Record(kind, target, tileID); err != nil {
			logger.Warn("failed to journal edit", "error", err.Error())
		}
	}
	return actions, nil
}
