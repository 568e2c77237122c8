package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"Splonchpad/internal/config"
	lannet "Splonchpad/internal/net"
	"Splonchpad/internal/render"
	"Splonchpad/internal/state"
)

// room is one canvas driven by at most one websocket peer at a time. mu
// serialises every session operation, so the peer and exports always see
// whole operations.
type room struct {
	id     string
	log    *slog.Logger
	now    func() time.Time
	active atomic.Int64

	mu       sync.Mutex
	session  *state.Session
	pipeline *render.Pipeline

	peers  *lannet.PeerManager
	width  int
	height int
	scale  int
	opts   render.Options
}

type notice struct {
	Event string `json:"event"`
	Frame uint64 `json:"frame"`
}

func newRoom(id string, cfg *config.Config, glyphs *render.Glyphs, log *slog.Logger, now func() time.Time) (*room, error) {
	log = log.With("session", id)
	opts := render.Options{
		Background:  cfg.Canvas.BackgroundColor(),
		StickerSize: cfg.Canvas.StickerSize,
		Glyphs:      glyphs,
	}
	raster, err := render.NewRaster(cfg.Canvas.Width, cfg.Canvas.Height, 1, opts)
	if err != nil {
		return nil, err
	}
	r := &room{
		id:       id,
		log:      log,
		now:      now,
		session:  state.NewSession(state.WithPalette(cfg.Palette()), state.WithLogger(log)),
		pipeline: render.NewPipeline(raster, log),
		peers:    lannet.NewPeerManager(log),
		width:    cfg.Canvas.Width,
		height:   cfg.Canvas.Height,
		scale:    cfg.Canvas.ExportScale,
		opts:     opts,
	}
	r.touch()
	r.pipeline.OnFrame(r.broadcast)
	r.pipeline.Attach(r.session)
	return r, nil
}

// touch records activity; idle rooms without a peer are evicted.
func (r *room) touch() {
	r.active.Store(r.now().UnixNano())
}

func (r *room) lastActive() time.Time {
	return time.Unix(0, r.active.Load())
}

// do runs fn with the session locked. Redraws and broadcasts triggered by fn
// happen before do returns.
func (r *room) do(fn func(*state.Session)) {
	r.touch()
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.session)
}

func (r *room) broadcast(c state.Change, raster *render.Raster) {
	if r.peers.Len() == 0 {
		return
	}
	u, err := r.update(c, raster)
	if err != nil {
		r.log.Warn("encode frame", "err", err)
		return
	}
	r.peers.Broadcast(u)
}

func (r *room) update(c state.Change, raster *render.Raster) (lannet.Update, error) {
	var buf bytes.Buffer
	if err := raster.EncodePNG(&buf); err != nil {
		return lannet.Update{}, err
	}
	n, err := json.Marshal(notice{Event: c.String(), Frame: r.pipeline.Frames()})
	if err != nil {
		return lannet.Update{}, err
	}
	return lannet.Update{Notice: n, Frame: buf.Bytes()}, nil
}

// current returns the latest frame for a peer that just joined.
func (r *room) current() (lannet.Update, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(state.ChangeDrawing, r.pipeline.Raster())
}

// framePNG encodes the interactive raster.
func (r *room) framePNG() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var buf bytes.Buffer
	if err := r.pipeline.Raster().EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// snapshot copies the frame under the lock; export renders it without
// holding the session.
func (r *room) snapshot() state.Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session.Frame()
}

func (r *room) close() {
	r.peers.CloseAll()
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.pipeline.Raster().Close(); err != nil {
		r.log.Debug("close raster", "err", err)
	}
}
