package state

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

type call struct {
	op      string
	points  []Point
	width   float64
	color   color.Color
	text    string
	degrees float64
}

type fakeSurface struct{ calls []call }

func (f *fakeSurface) Clear() { f.calls = append(f.calls, call{op: "clear"}) }

func (f *fakeSurface) Polyline(points []Point, width float64, c color.Color) {
	f.calls = append(f.calls, call{op: "polyline", points: points, width: width, color: c})
}

func (f *fakeSurface) Circle(center Point, diameter, width float64, c color.Color) {
	f.calls = append(f.calls, call{op: "circle", points: []Point{center}, width: diameter, color: c})
}

func (f *fakeSurface) Glyph(text string, center Point, degrees float64) {
	f.calls = append(f.calls, call{op: "glyph", points: []Point{center}, text: text, degrees: degrees})
}

func TestStrokeRender(t *testing.T) {
	var f fakeSurface
	s := NewStroke(Pt(0, 0), 4, black)
	s.Render(&f)
	assert.Empty(t, f.calls, "single point draws nothing")

	s.Extend(Pt(10, 10))
	s.Render(&f)
	assert.Equal(t, []call{{op: "polyline", points: []Point{Pt(0, 0), Pt(10, 10)}, width: 4, color: black}}, f.calls)
}

func TestStickerRotationNormalised(t *testing.T) {
	for in, want := range map[float64]float64{0: 0, 30: 30, 360: 0, 725: 5, -90: 270} {
		assert.Equal(t, want, NewSticker("⭐", Pt(0, 0), in).Rotation, "rotation %v", in)
	}
}

func TestStickerRender(t *testing.T) {
	var f fakeSurface
	s := NewSticker("🐸", Pt(1, 2), 45)
	s.MoveTo(Pt(7, 8))
	s.Render(&f)
	assert.Equal(t, []call{{op: "glyph", points: []Point{Pt(7, 8)}, text: "🐸", degrees: 45}}, f.calls)
}

func TestToolPreviewRender(t *testing.T) {
	var f fakeSurface
	p := NewToolPreview(6, Pt(3, 3), color.NRGBA{})
	p.Render(&f)
	assert.Equal(t, PreviewGray, f.calls[0].color)
	assert.Equal(t, 6.0, f.calls[0].width)

	red := color.NRGBA{R: 255, A: 255}
	p.SetColor(red)
	p.SetThickness(10)
	p.MoveTo(Pt(4, 4))
	p.Render(&f)
	assert.Equal(t, call{op: "circle", points: []Point{Pt(4, 4)}, width: 10, color: red}, f.calls[1])
}

func TestEntityRenderDispatch(t *testing.T) {
	var f fakeSurface
	Entity{Kind: KindStroke, Stroke: line(Pt(0, 0), Pt(1, 1))}.Render(&f)
	Entity{Kind: KindSticker, Sticker: NewSticker("⭐", Pt(0, 0), 0)}.Render(&f)
	Entity{Kind: KindSticker}.Render(&f)
	assert.Len(t, f.calls, 2)
	assert.Equal(t, "polyline", f.calls[0].op)
	assert.Equal(t, "glyph", f.calls[1].op)
}
