package net

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
	maxCommand = 4096
	sendQueue  = 8
)

// Update is one redraw as a peer sees it: a JSON notice and the PNG of the
// new frame. They are always written back to back.
type Update struct {
	Notice []byte
	Frame  []byte
}

// Peer is one websocket client of a session.
type Peer struct {
	ID   string
	conn *websocket.Conn
	send chan Update
	done chan struct{}
	once sync.Once
	log  *slog.Logger
}

func NewPeer(conn *websocket.Conn, log *slog.Logger) *Peer {
	id := uuid.NewString()
	if log == nil {
		log = slog.Default()
	}
	return &Peer{
		ID:   id,
		conn: conn,
		send: make(chan Update, sendQueue),
		done: make(chan struct{}),
		log:  log.With("peer", id, "remote", conn.RemoteAddr().String()),
	}
}

func (p *Peer) Log() *slog.Logger { return p.log }

// Send queues u. Every update carries a complete frame, so when the peer
// is too slow the oldest queued update is dropped to make room; the newest
// frame is always delivered.
func (p *Peer) Send(u Update) bool {
	select {
	case <-p.done:
		return false
	default:
	}
	for {
		select {
		case p.send <- u:
			return true
		default:
		}
		select {
		case <-p.send:
			p.log.Debug("peer lagging, stale update dropped")
		default:
		}
	}
}

// WritePump writes queued updates and keepalive pings until the peer closes.
func (p *Peer) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		p.Close()
	}()
	for {
		select {
		case <-p.done:
			return
		case u := <-p.send:
			if err := p.write(websocket.TextMessage, u.Notice); err != nil {
				p.log.Debug("write notice", "err", err)
				return
			}
			if err := p.write(websocket.BinaryMessage, u.Frame); err != nil {
				p.log.Debug("write frame", "err", err)
				return
			}
		case <-ticker.C:
			if err := p.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (p *Peer) write(kind int, data []byte) error {
	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return p.conn.WriteMessage(kind, data)
}

// ReadLoop passes every text message to handle until the connection ends.
// A normal close returns nil.
func (p *Peer) ReadLoop(handle func([]byte)) error {
	defer p.Close()
	p.conn.SetReadLimit(maxCommand)
	_ = p.conn.SetReadDeadline(time.Now().Add(pongWait))
	p.conn.SetPongHandler(func(string) error {
		return p.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		kind, data, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) || errors.Is(err, websocket.ErrCloseSent) {
				return nil
			}
			return err
		}
		if kind != websocket.TextMessage {
			continue
		}
		handle(data)
	}
}

// Close ends the connection. It is safe to call more than once.
func (p *Peer) Close() {
	p.once.Do(func() {
		close(p.done)
		_ = p.conn.Close()
	})
}

// PeerManager tracks the connected peers of one session.
type PeerManager struct {
	peers map[string]*Peer
	mu    sync.RWMutex
	log   *slog.Logger
}

func NewPeerManager(log *slog.Logger) *PeerManager {
	if log == nil {
		log = slog.Default()
	}
	return &PeerManager{peers: make(map[string]*Peer), log: log}
}

// Replace disconnects every current peer and adds p, so p is the only one.
func (pm *PeerManager) Replace(p *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for id, old := range pm.peers {
		old.Close()
		delete(pm.peers, id)
		pm.log.Info("peer replaced", "peer", id, "by", p.ID)
	}
	pm.peers[p.ID] = p
	pm.log.Info("peer connected", "peer", p.ID)
}

func (pm *PeerManager) Remove(p *Peer) {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	if _, ok := pm.peers[p.ID]; !ok {
		return
	}
	delete(pm.peers, p.ID)
	pm.log.Info("peer disconnected", "peer", p.ID, "peers", len(pm.peers))
}

func (pm *PeerManager) Len() int {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return len(pm.peers)
}

// Broadcast queues u on every peer.
func (pm *PeerManager) Broadcast(u Update) {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	for _, p := range pm.peers {
		p.Send(u)
	}
}

// CloseAll disconnects every peer.
func (pm *PeerManager) CloseAll() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for id, p := range pm.peers {
		p.Close()
		delete(pm.peers, id)
	}
}
