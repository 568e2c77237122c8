package state

import (
	"image/color"
	"slices"
	"strings"
)

// ToolKind distinguishes markers from stickers.
type ToolKind string

const (
	ToolMarker  ToolKind = "marker"
	ToolSticker ToolKind = "sticker"
)

// Tool is the active tool selection.
type Tool struct {
	Kind      ToolKind    `json:"kind"`
	Thickness float64     `json:"thickness,omitempty"`
	Color     color.NRGBA `json:"color"`
	Glyph     string      `json:"glyph,omitempty"`
	Rotation  float64     `json:"rotation,omitempty"`
}

// Palette lists the presets a UI offers: two marker widths, colour swatches
// and sticker glyphs. Custom stickers are appended to Stickers.
type Palette struct {
	Thin     float64       `json:"thin"`
	Thick    float64       `json:"thick"`
	Colors   []color.NRGBA `json:"colors"`
	Stickers []string      `json:"stickers"`
}

// DefaultPalette matches the defaults shipped in the config package.
func DefaultPalette() Palette {
	return Palette{
		Thin:  3,
		Thick: 8,
		Colors: []color.NRGBA{
			{A: 255},
			{R: 230, G: 57, B: 70, A: 255},
			{R: 42, G: 157, B: 143, A: 255},
			{R: 38, G: 70, B: 173, A: 255},
			{R: 244, G: 162, B: 97, A: 255},
		},
		Stickers: []string{"🎉", "⭐", "🐸"},
	}
}

func (p Palette) clone() Palette {
	p.Colors = slices.Clone(p.Colors)
	p.Stickers = slices.Clone(p.Stickers)
	return p
}

// addSticker appends glyph unless it is blank or already present.
func (p *Palette) addSticker(text string) (string, bool) {
	glyph := strings.TrimSpace(text)
	if glyph == "" {
		return "", false
	}
	if !slices.Contains(p.Stickers, glyph) {
		p.Stickers = append(p.Stickers, glyph)
	}
	return glyph, true
}

// defaultMarker is the tool a fresh session starts with.
func (p Palette) defaultMarker() Tool {
	t := Tool{Kind: ToolMarker, Thickness: p.Thin}
	if len(p.Colors) > 0 {
		t.Color = p.Colors[0]
	} else {
		t.Color = color.NRGBA{A: 255}
	}
	return t
}
