package server

import (
	"bufio"
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"Splonchpad/internal/export"
	lannet "Splonchpad/internal/net"
	"Splonchpad/internal/render"
	"Splonchpad/internal/state"
)

//go:embed static
var static embed.FS

// Handler routes the page, the API and the websocket endpoint.
func (s *Server) Handler() http.Handler {
	page, err := fs.Sub(static, "static")
	if err != nil {
		panic(err)
	}
	mux := http.NewServeMux()
	mux.Handle("GET /", http.FileServerFS(page))
	mux.HandleFunc("POST /api/sessions", s.handleCreate)
	mux.HandleFunc("GET /api/sessions/{id}", s.withRoom(s.handleSummary))
	mux.HandleFunc("GET /api/sessions/{id}/frame.png", s.withRoom(s.handleFrame))
	mux.HandleFunc("GET /api/sessions/{id}/export", s.withRoom(s.handleExport))
	mux.HandleFunc("GET /api/sessions/{id}/ws", s.withRoom(s.handleWS))
	return s.logRequests(mux)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Hijack hands the connection to the websocket upgrader.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.log.Debug("http", "method", r.Method, "path", r.URL.Path, "status", sw.status, "took", time.Since(start))
	})
}

func (s *Server) withRoom(h func(http.ResponseWriter, *http.Request, *room)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rm, err := s.lookup(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusNotFound, err)
			return
		}
		rm.touch()
		h(w, r, rm)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	id, err := s.CreateSession()
	if err != nil {
		s.log.Warn("create session", "err", err)
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request, rm *room) {
	writeJSON(w, http.StatusOK, rm.summary())
}

func (s *Server) handleFrame(w http.ResponseWriter, r *http.Request, rm *room) {
	data, err := rm.framePNG()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(data)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request, rm *room) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	img, err := render.Export(rm.snapshot(), rm.width, rm.height, rm.scale, rm.opts)
	if err != nil {
		s.log.Error("export failed", "session", rm.id, "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	var buf bytes.Buffer
	if err := export.Write(&buf, format, img); err != nil {
		s.log.Error("export failed", "session", rm.id, "format", format, "err", err)
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	name := fmt.Sprintf("splonchpad-%s%s", rm.id[:8], format.Ext())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	_, _ = w.Write(buf.Bytes())
	s.log.Info("exported", "session", rm.id, "format", format, "bytes", buf.Len())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request, rm *room) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade", "err", err)
		return
	}
	// one peer drives a session; a reconnect takes over
	peer := lannet.NewPeer(conn, rm.log)
	rm.peers.Replace(peer)
	defer func() {
		rm.peers.Remove(peer)
		rm.touch()
	}()

	if u, err := rm.current(); err == nil {
		peer.Send(u)
	}
	go peer.WritePump()

	err = peer.ReadLoop(func(msg []byte) {
		var cmd Command
		if err := json.Unmarshal(msg, &cmd); err != nil {
			peer.Log().Debug("bad command", "err", err)
			return
		}
		var applyErr error
		rm.do(func(sess *state.Session) { applyErr = cmd.Apply(sess) })
		if applyErr != nil {
			peer.Log().Debug("command rejected", "type", cmd.Type, "err", applyErr)
		}
	})
	if err != nil {
		peer.Log().Debug("peer read ended", "err", err)
	}
}
