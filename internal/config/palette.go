package config

import (
	"image/color"

	"Splonchpad/internal/state"
)

// Palette converts the tools section. Colours are validated by Load, so bad
// entries are only skipped here.
func (c *Config) Palette() state.Palette {
	p := state.Palette{
		Thin:     c.Tools.Thin,
		Thick:    c.Tools.Thick,
		Stickers: append([]string(nil), c.Tools.Stickers...),
	}
	for _, s := range c.Tools.Colors {
		if col, err := ParseColor(s); err == nil {
			p.Colors = append(p.Colors, col)
		}
	}
	return p
}

// BackgroundColor is the surface fill, white when unparsable.
func (c CanvasConfig) BackgroundColor() color.NRGBA {
	col, err := ParseColor(c.Background)
	if err != nil {
		return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	}
	return col
}
