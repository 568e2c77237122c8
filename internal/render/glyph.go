package render

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"sync"

	"github.com/gogpu/gg/text"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/f64"
)

// maxTiles bounds the glyph tile cache; it is dropped wholesale when full.
const maxTiles = 256

var glyphInk = color.Black

type tileKey struct {
	text    string
	size    float64
	degrees float64
}

// Glyphs rasterises sticker glyphs into rotated tiles. It is safe for
// concurrent use so interactive redraws and exports can share one.
type Glyphs struct {
	src *text.FontSource

	mu    sync.Mutex
	tiles map[tileKey]*image.RGBA
}

// LoadGlyphs loads the font at path, or the bundled Go Regular when path is empty.
func LoadGlyphs(path string) (*Glyphs, error) {
	var (
		src *text.FontSource
		err error
	)
	if path == "" {
		src, err = text.NewFontSource(goregular.TTF)
	} else {
		src, err = text.NewFontSourceFromFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("load sticker font: %w", err)
	}
	return &Glyphs{src: src, tiles: make(map[tileKey]*image.RGBA)}, nil
}

// Tile returns the glyph drawn at size pixels and rotated clockwise by
// degrees about its centre. The tile is square and the glyph centre is the
// tile centre. Callers must not modify it.
func (g *Glyphs) Tile(s string, size, degrees float64) *image.RGBA {
	key := tileKey{text: s, size: size, degrees: degrees}

	g.mu.Lock()
	defer g.mu.Unlock()
	if t, ok := g.tiles[key]; ok {
		return t
	}
	if len(g.tiles) >= maxTiles {
		clear(g.tiles)
	}
	t := rotate(g.flat(s, size), degrees)
	g.tiles[key] = t
	return t
}

// flat draws the glyph unrotated with a one pixel margin.
func (g *Glyphs) flat(s string, size float64) *image.RGBA {
	face := g.src.Face(size)
	m := face.Metrics()
	w := int(math.Ceil(face.Advance(s))) + 2
	h := int(math.Ceil(m.Ascent+m.Descent)) + 2
	tile := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	text.Draw(tile, s, face, 1, 1+m.Ascent, glyphInk)
	return tile
}

func rotate(src *image.RGBA, degrees float64) *image.RGBA {
	sw, sh := float64(src.Bounds().Dx()), float64(src.Bounds().Dy())
	side := int(math.Ceil(math.Hypot(sw, sh)))
	dst := image.NewRGBA(image.Rect(0, 0, side, side))

	rad := degrees * math.Pi / 180
	sin, cos := math.Sincos(rad)
	scx, scy := sw/2, sh/2
	dcx, dcy := float64(side)/2, float64(side)/2

	// maps source pixels onto destination pixels
	m := f64.Aff3{
		cos, -sin, dcx - (cos*scx - sin*scy),
		sin, cos, dcy - (sin*scx + cos*scy),
	}
	draw.BiLinear.Transform(dst, m, src, src.Bounds(), draw.Over, nil)
	return dst
}
