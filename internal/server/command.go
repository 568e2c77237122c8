package server

import (
	"errors"
	"fmt"

	"Splonchpad/internal/config"
	"Splonchpad/internal/state"
)

var ErrUnknownCommand = errors.New("unknown command")

// Command is one input event sent by a browser peer. Fields not used by a
// command type are ignored.
type Command struct {
	Type      string  `json:"type"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	Thickness float64 `json:"thickness"`
	Color     string  `json:"color"`
	Glyph     string  `json:"glyph"`
	Rotation  float64 `json:"rotation"`
	Text      string  `json:"text"`
}

// Apply forwards c to s. Malformed colours and unknown types are reported;
// everything else is left to the session, which ignores what it cannot use.
func (c Command) Apply(s *state.Session) error {
	p := state.Pt(c.X, c.Y)
	switch c.Type {
	case "pointerdown":
		s.PointerDown(p)
	case "pointermove":
		s.PointerMove(p)
	case "pointerup":
		s.PointerUp()
	case "pointerleave":
		s.PointerLeave()
	case "marker":
		if c.Color == "" {
			s.SelectThickness(c.Thickness)
			return nil
		}
		col, err := config.ParseColor(c.Color)
		if err != nil {
			return err
		}
		s.SelectMarker(c.Thickness, col)
	case "color":
		col, err := config.ParseColor(c.Color)
		if err != nil {
			return err
		}
		s.SelectColor(col)
	case "sticker":
		s.ArmSticker(c.Glyph, c.Rotation)
	case "custom-sticker":
		s.AddCustomSticker(c.Text, c.Rotation)
	case "undo":
		s.Undo()
	case "redo":
		s.Redo()
	case "clear":
		s.Clear()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, c.Type)
	}
	return nil
}
