// Package render paints session state onto rasters. Every redraw repaints the
// whole surface from a state.Frame; nothing is patched incrementally.
package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"

	"github.com/gogpu/gg"

	"Splonchpad/internal/state"
)

// Options configures a Raster.
type Options struct {
	Background  color.NRGBA
	StickerSize float64
	Glyphs      *Glyphs
}

func (o Options) withDefaults() Options {
	if o.Background == (color.NRGBA{}) {
		o.Background = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	if o.StickerSize <= 0 {
		o.StickerSize = 32
	}
	return o
}

// Raster is a state.Surface backed by a gg software context. Coordinates,
// widths and the sticker size are multiplied by the integer scale, so a
// Raster built with scale 4 paints a frame at four times its native size.
type Raster struct {
	ctx    *gg.Context
	width  int
	height int
	scale  float64
	opts   Options
	err    error
}

var _ state.Surface = (*Raster)(nil)

// NewRaster creates a raster for a native width×height surface. The pixel
// size is width*scale × height*scale.
func NewRaster(width, height, scale int, opts Options) (*Raster, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("raster size %dx%d", width, height)
	}
	if scale < 1 {
		return nil, fmt.Errorf("raster scale %d", scale)
	}
	opts = opts.withDefaults()
	if opts.Glyphs == nil {
		g, err := LoadGlyphs("")
		if err != nil {
			return nil, err
		}
		opts.Glyphs = g
	}
	r := &Raster{
		ctx:    gg.NewContext(width*scale, height*scale),
		width:  width * scale,
		height: height * scale,
		scale:  float64(scale),
		opts:   opts,
	}
	r.Clear()
	return r, nil
}

func (r *Raster) Width() int  { return r.width }
func (r *Raster) Height() int { return r.height }

// Clear fills the surface with the background colour.
func (r *Raster) Clear() {
	r.ctx.ClearWithColor(gg.FromColor(r.opts.Background))
}

func (r *Raster) Polyline(points []state.Point, width float64, c color.Color) {
	if len(points) < 2 {
		return
	}
	r.ctx.SetColor(c)
	r.ctx.SetLineWidth(width * r.scale)
	r.ctx.SetLineCap(gg.LineCapRound)
	r.ctx.SetLineJoin(gg.LineJoinRound)
	r.ctx.MoveTo(points[0].X*r.scale, points[0].Y*r.scale)
	for _, p := range points[1:] {
		r.ctx.LineTo(p.X*r.scale, p.Y*r.scale)
	}
	r.keep(r.ctx.Stroke())
}

func (r *Raster) Circle(center state.Point, diameter, width float64, c color.Color) {
	if diameter <= 0 {
		return
	}
	r.ctx.SetColor(c)
	r.ctx.SetLineWidth(width * r.scale)
	r.ctx.DrawCircle(center.X*r.scale, center.Y*r.scale, diameter/2*r.scale)
	r.keep(r.ctx.Stroke())
}

// Glyph draws a rotated glyph tile centred on center. Tiles that fall
// entirely outside the surface are skipped.
func (r *Raster) Glyph(s string, center state.Point, degrees float64) {
	if s == "" {
		return
	}
	tile := r.opts.Glyphs.Tile(s, r.opts.StickerSize*r.scale, degrees)
	side := float64(tile.Bounds().Dx())
	x := center.X*r.scale - side/2
	y := center.Y*r.scale - side/2
	if x+side < 0 || y+side < 0 || x > float64(r.width) || y > float64(r.height) {
		return
	}
	r.ctx.DrawImage(gg.ImageBufFromImage(tile), x, y)
}

func (r *Raster) keep(err error) {
	if err != nil && r.err == nil {
		r.err = err
	}
}

// Err returns and resets the first painting error since the last call.
func (r *Raster) Err() error {
	err := r.err
	r.err = nil
	return err
}

// Image returns a copy of the current pixels.
func (r *Raster) Image() *image.RGBA {
	r.keep(r.ctx.FlushGPU())
	src := r.ctx.Image()
	if img, ok := src.(*image.RGBA); ok {
		return img
	}
	img := image.NewRGBA(src.Bounds())
	draw.Draw(img, img.Bounds(), src, src.Bounds().Min, draw.Src)
	return img
}

// Pixels returns a copy of the raw RGBA bytes.
func (r *Raster) Pixels() []byte {
	return append([]byte(nil), r.Image().Pix...)
}

// EncodePNG writes the current pixels as PNG.
func (r *Raster) EncodePNG(w io.Writer) error {
	r.keep(r.ctx.FlushGPU())
	if err := r.ctx.EncodePNG(w); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// Close releases the gg context.
func (r *Raster) Close() error {
	return errors.Join(r.Err(), r.ctx.Close())
}
