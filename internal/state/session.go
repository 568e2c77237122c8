package state

import (
	"image/color"
	"log/slog"
)

// Change is the notification a Session emits after a mutation.
type Change int

const (
	// ChangeDrawing means the Document or the in-progress stroke changed.
	ChangeDrawing Change = iota + 1
	// ChangeToolMoved means only the preview or armed sticker moved or changed.
	ChangeToolMoved
)

func (c Change) String() string {
	switch c {
	case ChangeDrawing:
		return "drawing-changed"
	case ChangeToolMoved:
		return "tool-moved"
	default:
		return "unknown"
	}
}

// Mode is the drawing-session state.
type Mode int

const (
	ModeIdle Mode = iota
	ModeDrawing
	ModeStickerArmed
)

func (m Mode) String() string {
	switch m {
	case ModeDrawing:
		return "drawing"
	case ModeStickerArmed:
		return "sticker-armed"
	default:
		return "idle"
	}
}

// offSurface is where an armed sticker waits until the pointer is seen.
var offSurface = Point{X: -1 << 16, Y: -1 << 16}

// Session is the controller for one canvas. It owns the Document, the active
// tool and the draft, and is the only thing that mutates them. A UI calls the
// input methods in event order; a Session is not safe for concurrent use.
type Session struct {
	doc     *Document
	palette Palette
	tool    Tool
	marker  Tool // restored when an armed sticker is placed

	mode    Mode
	stroke  *Stroke
	sticker *Sticker
	preview *ToolPreview

	pointer   Point
	hasPoint  bool
	observers []func(Change)
	log       *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

func WithPalette(p Palette) Option {
	return func(s *Session) { s.palette = p.clone() }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

func NewSession(opts ...Option) *Session {
	s := &Session{
		doc:     NewDocument(),
		palette: DefaultPalette(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.marker = s.palette.defaultMarker()
	s.tool = s.marker
	return s
}

// OnChange registers fn to run synchronously after every mutation.
func (s *Session) OnChange(fn func(Change)) {
	s.observers = append(s.observers, fn)
}

func (s *Session) notify(c Change) {
	for _, fn := range s.observers {
		fn(c)
	}
}

// PointerDown starts a stroke, or places the armed sticker at p and disarms.
func (s *Session) PointerDown(p Point) {
	s.track(p)
	switch s.mode {
	case ModeStickerArmed:
		s.sticker.MoveTo(p)
		s.doc.CommitSticker(s.sticker)
		s.log.Debug("sticker placed", "glyph", s.sticker.Glyph, "x", p.X, "y", p.Y)
		s.sticker = nil
		s.mode = ModeIdle
		s.tool = s.marker
		s.preview = NewToolPreview(s.tool.Thickness, p, s.tool.Color)
		s.notify(ChangeDrawing)
	case ModeIdle:
		s.stroke = NewStroke(p, s.tool.Thickness, s.tool.Color)
		s.mode = ModeDrawing
		s.notify(ChangeDrawing)
	}
}

// PointerMove extends the active stroke, drags the armed sticker, or moves
// the preview.
func (s *Session) PointerMove(p Point) {
	s.track(p)
	switch s.mode {
	case ModeDrawing:
		s.stroke.Extend(p)
		if s.preview != nil {
			s.preview.MoveTo(p)
		}
		s.notify(ChangeDrawing)
	case ModeStickerArmed:
		s.sticker.MoveTo(p)
		s.notify(ChangeToolMoved)
	default:
		if s.preview == nil {
			s.preview = NewToolPreview(s.tool.Thickness, p, s.tool.Color)
		} else {
			s.preview.MoveTo(p)
		}
		s.notify(ChangeToolMoved)
	}
}

// PointerUp commits the active stroke. It is a no-op otherwise.
func (s *Session) PointerUp() {
	if s.mode != ModeDrawing {
		return
	}
	s.commitStroke()
	s.notify(ChangeDrawing)
}

// PointerLeave ends an active stroke the way PointerUp does and hides the
// preview until the pointer comes back.
func (s *Session) PointerLeave() {
	s.hasPoint = false
	switch s.mode {
	case ModeDrawing:
		s.commitStroke()
		s.preview = nil
		s.notify(ChangeDrawing)
	case ModeIdle:
		if s.preview != nil {
			s.preview = nil
			s.notify(ChangeToolMoved)
		}
	}
}

func (s *Session) commitStroke() {
	if s.doc.CommitStroke(s.stroke) {
		s.log.Debug("stroke committed", "points", len(s.stroke.Points), "thickness", s.stroke.Thickness)
	}
	s.stroke = nil
	s.mode = ModeIdle
}

func (s *Session) track(p Point) {
	s.pointer = p
	s.hasPoint = true
}

// SelectMarker makes a marker of the given thickness and colour the active
// tool, disarming any sticker. Non-positive thickness is ignored.
func (s *Session) SelectMarker(thickness float64, c color.NRGBA) {
	if thickness <= 0 || s.mode == ModeDrawing {
		return
	}
	s.marker = Tool{Kind: ToolMarker, Thickness: thickness, Color: c}
	s.tool = s.marker
	s.sticker = nil
	s.mode = ModeIdle
	if s.preview != nil {
		s.preview.SetThickness(thickness)
		s.preview.SetColor(c)
	} else if s.hasPoint {
		s.preview = NewToolPreview(thickness, s.pointer, c)
	}
	s.notify(ChangeToolMoved)
}

// SelectThickness keeps the current marker colour.
func (s *Session) SelectThickness(thickness float64) {
	s.SelectMarker(thickness, s.marker.Color)
}

// SelectColor keeps the current marker thickness.
func (s *Session) SelectColor(c color.NRGBA) {
	s.SelectMarker(s.marker.Thickness, c)
}

// ArmSticker selects a sticker tool. The sticker follows the pointer until
// the next PointerDown places it. A blank glyph is ignored.
func (s *Session) ArmSticker(glyph string, rotation float64) {
	if glyph == "" || s.mode == ModeDrawing {
		return
	}
	pos := offSurface
	if s.hasPoint {
		pos = s.pointer
	}
	s.sticker = NewSticker(glyph, pos, rotation)
	s.tool = Tool{Kind: ToolSticker, Glyph: glyph, Rotation: s.sticker.Rotation}
	s.mode = ModeStickerArmed
	s.preview = nil
	s.log.Debug("sticker armed", "glyph", glyph, "rotation", s.sticker.Rotation)
	s.notify(ChangeToolMoved)
}

// AddCustomSticker adds text to the sticker palette and arms it. Blank text
// adds nothing and reports false.
func (s *Session) AddCustomSticker(text string, rotation float64) bool {
	glyph, ok := s.palette.addSticker(text)
	if !ok {
		return false
	}
	s.ArmSticker(glyph, rotation)
	return true
}

func (s *Session) Undo() {
	if s.doc.Undo() {
		s.notify(ChangeDrawing)
	}
}

func (s *Session) Redo() {
	if s.doc.Redo() {
		s.notify(ChangeDrawing)
	}
}

// Clear empties the Document and the redo stack.
func (s *Session) Clear() {
	s.doc.Clear()
	s.log.Debug("document cleared")
	s.notify(ChangeDrawing)
}

func (s *Session) Mode() Mode { return s.mode }

func (s *Session) Tool() Tool { return s.tool }

func (s *Session) Palette() Palette { return s.palette.clone() }

// Document exposes the committed state for reading. Mutate it only through
// the Session.
func (s *Session) Document() *Document { return s.doc }

// Frame snapshots what a redraw needs: the committed entities and at most one
// visible draft, chosen as active stroke, then armed sticker, then preview.
func (s *Session) Frame() Frame {
	f := Frame{Entities: s.doc.Entities()}
	switch {
	case s.stroke != nil:
		f.Stroke = s.stroke.clone()
	case s.sticker != nil:
		cp := *s.sticker
		f.Sticker = &cp
	case s.preview != nil:
		cp := *s.preview
		f.Preview = &cp
	}
	return f
}

// Frame is a read-only view of a Session at one instant.
type Frame struct {
	Entities []Entity
	Stroke   *Stroke
	Sticker  *Sticker
	Preview  *ToolPreview
}

// Committed returns f without its draft, as used for export.
func (f Frame) Committed() Frame {
	return Frame{Entities: f.Entities}
}

// HasDraft reports whether any draft is visible.
func (f Frame) HasDraft() bool {
	return f.Stroke != nil || f.Sticker != nil || f.Preview != nil
}
