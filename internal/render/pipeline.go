package render

import (
	"log/slog"

	"Splonchpad/internal/state"
)

// Redraw clears surface and paints frame onto it: committed entities in
// order, then the draft. Calling it twice with the same frame paints the same
// pixels.
func Redraw(surface state.Surface, frame state.Frame) {
	surface.Clear()
	for _, e := range frame.Entities {
		e.Render(surface)
	}
	switch {
	case frame.Stroke != nil:
		frame.Stroke.Render(surface)
	case frame.Sticker != nil:
		frame.Sticker.Render(surface)
	case frame.Preview != nil:
		frame.Preview.Render(surface)
	}
}

// Pipeline is the single listener on a Session. It is the only code that
// paints the interactive raster, once per change notification, and then
// hands the raster to frame listeners.
type Pipeline struct {
	raster    *Raster
	source    *state.Session
	frames    uint64
	listeners []func(state.Change, *Raster)
	log       *slog.Logger
}

func NewPipeline(r *Raster, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{raster: r, log: log}
}

// Attach subscribes p to s and paints the initial frame.
func (p *Pipeline) Attach(s *state.Session) {
	p.source = s
	s.OnChange(p.handle)
	p.Redraw()
}

// OnFrame registers fn to run after every redraw triggered by a change.
func (p *Pipeline) OnFrame(fn func(state.Change, *Raster)) {
	p.listeners = append(p.listeners, fn)
}

func (p *Pipeline) handle(c state.Change) {
	p.Redraw()
	for _, fn := range p.listeners {
		fn(c, p.raster)
	}
}

// Redraw repaints the raster from the attached session's current frame.
func (p *Pipeline) Redraw() {
	if p.source == nil {
		return
	}
	Redraw(p.raster, p.source.Frame())
	p.frames++
	if err := p.raster.Err(); err != nil {
		p.log.Warn("redraw failed", "frame", p.frames, "err", err)
	}
}

// Frames counts redraws since Attach, including the initial one.
func (p *Pipeline) Frames() uint64 { return p.frames }

func (p *Pipeline) Raster() *Raster { return p.raster }
