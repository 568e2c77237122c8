// Package server hosts sketchpad sessions for browsers: an embedded page,
// a small JSON API, exports, and a websocket per peer that carries input
// commands in and redrawn frames out.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"Splonchpad/internal/config"
	"Splonchpad/internal/render"
)

var ErrSessionNotFound = errors.New("session not found")

const (
	// maxSessions bounds how many canvases one host keeps alive.
	maxSessions = 64
	// sessionIdle is how long a session without a peer survives.
	sessionIdle = 30 * time.Minute
	sweepPeriod = time.Minute
)

type Server struct {
	cfg      atomic.Pointer[config.Config]
	glyphs   *render.Glyphs
	log      *slog.Logger
	upgrader websocket.Upgrader
	now      func() time.Time

	mu    sync.RWMutex
	rooms map[string]*room
}

func New(cfg *config.Config, glyphs *render.Glyphs, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		glyphs: glyphs,
		log:    log,
		now:    time.Now,
		rooms:  make(map[string]*room),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 64 * 1024,
		},
	}
	s.cfg.Store(cfg)
	return s
}

// Reload swaps the configuration used for sessions created from now on.
// Existing sessions keep their canvas and palette.
func (s *Server) Reload(cfg *config.Config) {
	s.cfg.Store(cfg)
}

// CreateSession starts a new independent canvas and returns its id. When
// the host is full the least recently used session without a peer makes
// room; if every session has a peer the request fails.
func (s *Server) CreateSession() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictLocked()
	if len(s.rooms) >= maxSessions {
		return "", fmt.Errorf("session limit %d reached", maxSessions)
	}
	id := uuid.NewString()
	r, err := newRoom(id, s.cfg.Load(), s.glyphs, s.log, s.now)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	s.rooms[id] = r
	s.log.Info("session created", "session", id, "sessions", len(s.rooms))
	return id, nil
}

// Sweep drops sessions that have had no peer and no activity for
// sessionIdle.
func (s *Server) Sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for id, r := range s.rooms {
		if r.peers.Len() == 0 && now.Sub(r.lastActive()) > sessionIdle {
			s.dropLocked(id, r, "idle")
		}
	}
}

// evictLocked sweeps idle sessions and, if the host is still full, drops the
// least recently used one that has no peer.
func (s *Server) evictLocked() {
	now := s.now()
	var lru *room
	for id, r := range s.rooms {
		if r.peers.Len() > 0 {
			continue
		}
		if now.Sub(r.lastActive()) > sessionIdle {
			s.dropLocked(id, r, "idle")
			continue
		}
		if lru == nil || r.lastActive().Before(lru.lastActive()) {
			lru = r
		}
	}
	if len(s.rooms) >= maxSessions && lru != nil {
		s.dropLocked(lru.id, lru, "least recently used")
	}
}

func (s *Server) dropLocked(id string, r *room, reason string) {
	r.close()
	delete(s.rooms, id)
	s.log.Info("session evicted", "session", id, "reason", reason, "sessions", len(s.rooms))
}

func (s *Server) lookup(id string) (*room, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrSessionNotFound, id)
	}
	return r, nil
}

// Sessions reports how many sessions are live.
func (s *Server) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rooms)
}

// Close disconnects every peer and drops all sessions.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, r := range s.rooms {
		r.close()
		delete(s.rooms, id)
	}
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("http host listening", "addr", addr)

	sweep := time.NewTicker(sweepPeriod)
	defer sweep.Stop()
wait:
	for {
		select {
		case err := <-errc:
			return fmt.Errorf("serve %s: %w", addr, err)
		case <-sweep.C:
			s.Sweep()
		case <-ctx.Done():
			break wait
		}
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.Close()
	if err := srv.Shutdown(shutdown); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
