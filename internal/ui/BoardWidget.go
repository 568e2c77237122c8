package ui

import (
	"image"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"Splonchpad/internal/render"
	"Splonchpad/internal/state"
)

// zoom is how many screen units one canvas pixel takes at minimum size.
const zoom = 2

// BoardWidget shows the pipeline's raster and forwards mouse input to the
// session. It never paints entities itself.
type BoardWidget struct {
	widget.BaseWidget
	session  *state.Session
	pipeline *render.Pipeline
	image    *canvas.Image
	width    int
	height   int
	log      *slog.Logger
}

var _ fyne.Widget = (*BoardWidget)(nil)
var _ fyne.Draggable = (*BoardWidget)(nil)
var _ desktop.Mouseable = (*BoardWidget)(nil)
var _ desktop.Hoverable = (*BoardWidget)(nil)

// NewBoardWidget attaches a pipeline to s and shows its frames. width and
// height are the native canvas size.
func NewBoardWidget(s *state.Session, p *render.Pipeline, width, height int, log *slog.Logger) *BoardWidget {
	if log == nil {
		log = slog.Default()
	}
	b := &BoardWidget{
		session:  s,
		pipeline: p,
		width:    width,
		height:   height,
		log:      log,
	}
	b.image = canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, width, height)))
	b.image.FillMode = canvas.ImageFillStretch
	b.image.ScaleMode = canvas.ImageScalePixels
	b.image.SetMinSize(fyne.NewSize(float32(width*zoom), float32(height*zoom)))
	b.ExtendBaseWidget(b)

	p.OnFrame(func(state.Change, *render.Raster) { b.show() })
	p.Attach(s)
	b.show()
	return b
}

func (b *BoardWidget) show() {
	b.image.Image = b.pipeline.Raster().Image()
	b.image.Refresh()
}

// Session exposes the controller driving this board.
func (b *BoardWidget) Session() *state.Session { return b.session }

// toNative maps a widget position to canvas coordinates.
func (b *BoardWidget) toNative(pos fyne.Position) state.Point {
	size := b.Size()
	if size.Width <= 0 || size.Height <= 0 {
		return state.Pt(float64(pos.X)/zoom, float64(pos.Y)/zoom)
	}
	return state.Pt(
		float64(pos.X)*float64(b.width)/float64(size.Width),
		float64(pos.Y)*float64(b.height)/float64(size.Height),
	)
}

func (b *BoardWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		b.session.PointerDown(b.toNative(e.Position))
	}
}

func (b *BoardWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button == desktop.MouseButtonPrimary {
		b.session.PointerUp()
	}
}

func (b *BoardWidget) Dragged(e *fyne.DragEvent) {
	b.session.PointerMove(b.toNative(e.Position))
}

// DragEnd can arrive without a MouseUp when the button is released outside
// the window; PointerUp is a no-op when nothing is being drawn.
func (b *BoardWidget) DragEnd() {
	b.session.PointerUp()
}

func (b *BoardWidget) MouseIn(e *desktop.MouseEvent) {
	b.session.PointerMove(b.toNative(e.Position))
}

func (b *BoardWidget) MouseMoved(e *desktop.MouseEvent) {
	b.session.PointerMove(b.toNative(e.Position))
}

func (b *BoardWidget) MouseOut() {
	b.session.PointerLeave()
}

func (b *BoardWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(b.image)
}
