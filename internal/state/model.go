package state

import (
	"image/color"
	"math"
)

// Point is a position in device pixels relative to the surface's top-left corner.
type Point struct{ X, Y float64 }

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float64) Point { return Point{X: x, Y: y} }

// PreviewGray is the outline colour used by a ToolPreview without a colour of its own.
var PreviewGray = color.NRGBA{R: 128, G: 128, B: 128, A: 255}

// Surface is whatever entities paint onto. The render package provides the
// raster implementation; tests record calls instead.
type Surface interface {
	Clear()
	Polyline(points []Point, width float64, c color.Color)
	Circle(center Point, diameter, width float64, c color.Color)
	Glyph(text string, center Point, degrees float64)
}

// Stroke is one pen-down to pen-up path. Thickness and color are fixed at creation.
type Stroke struct {
	Points    []Point     `json:"points"`
	Thickness float64     `json:"thickness"`
	Color     color.NRGBA `json:"color"`
}

func NewStroke(p Point, thickness float64, c color.NRGBA) *Stroke {
	return &Stroke{
		Points:    []Point{p},
		Thickness: thickness,
		Color:     c,
	}
}

// Extend appends a point. Points are never reordered or removed.
func (s *Stroke) Extend(p Point) {
	s.Points = append(s.Points, p)
}

// Render draws the segments between consecutive points. A single point draws nothing.
func (s *Stroke) Render(surface Surface) {
	if len(s.Points) < 2 {
		return
	}
	surface.Polyline(s.Points, s.Thickness, s.Color)
}

func (s *Stroke) clone() *Stroke {
	cp := *s
	cp.Points = append([]Point(nil), s.Points...)
	return &cp
}

// Sticker is an emoji or text glyph placed on the surface.
type Sticker struct {
	Glyph    string  `json:"glyph"`
	Position Point   `json:"position"`
	Rotation float64 `json:"rotation"` // degrees, [0,360)
}

func NewSticker(glyph string, pos Point, rotation float64) *Sticker {
	return &Sticker{
		Glyph:    glyph,
		Position: pos,
		Rotation: normalizeDegrees(rotation),
	}
}

func (s *Sticker) MoveTo(p Point) {
	s.Position = p
}

// Render draws the glyph centred on Position and rotated about it. Glyph size
// belongs to the surface, not the sticker.
func (s *Sticker) Render(surface Surface) {
	surface.Glyph(s.Glyph, s.Position, s.Rotation)
}

func normalizeDegrees(deg float64) float64 {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return 0
	}
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}

// ToolPreview shows the marker footprint under an idle pointer. It is never
// committed to a Document.
type ToolPreview struct {
	Thickness float64
	Position  Point
	Color     color.NRGBA
}

func NewToolPreview(thickness float64, pos Point, c color.NRGBA) *ToolPreview {
	return &ToolPreview{Thickness: thickness, Position: pos, Color: c}
}

func (t *ToolPreview) MoveTo(p Point)                 { t.Position = p }
func (t *ToolPreview) SetThickness(thickness float64) { t.Thickness = thickness }
func (t *ToolPreview) SetColor(c color.NRGBA)         { t.Color = c }

// Render draws a one pixel outline circle whose diameter is the marker thickness.
func (t *ToolPreview) Render(surface Surface) {
	c := t.Color
	if c == (color.NRGBA{}) {
		c = PreviewGray
	}
	surface.Circle(t.Position, t.Thickness, 1, c)
}
