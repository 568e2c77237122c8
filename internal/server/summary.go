package server

import (
	"Splonchpad/internal/config"
	"Splonchpad/internal/state"
)

type summary struct {
	ID          string       `json:"id"`
	Width       int          `json:"width"`
	Height      int          `json:"height"`
	ExportScale int          `json:"export_scale"`
	Mode        string       `json:"mode"`
	Tool        toolView     `json:"tool"`
	Palette     paletteView  `json:"palette"`
	Entities    []entityView `json:"entities"`
	Undoable    int          `json:"undoable"`
	RedoDepth   int          `json:"redo_depth"`
	Frames      uint64       `json:"frames"`
	Peers       int          `json:"peers"`
}

type toolView struct {
	Kind      state.ToolKind `json:"kind"`
	Thickness float64        `json:"thickness,omitempty"`
	Color     string         `json:"color,omitempty"`
	Glyph     string         `json:"glyph,omitempty"`
	Rotation  float64        `json:"rotation,omitempty"`
}

type paletteView struct {
	Thin     float64  `json:"thin"`
	Thick    float64  `json:"thick"`
	Colors   []string `json:"colors"`
	Stickers []string `json:"stickers"`
}

type entityView struct {
	ID     string     `json:"id"`
	Seq    uint64     `json:"seq"`
	Kind   state.Kind `json:"kind"`
	Points int        `json:"points,omitempty"`
	Glyph  string     `json:"glyph,omitempty"`
}

func (r *room) summary() summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.session
	tool := s.Tool()
	tv := toolView{Kind: tool.Kind, Glyph: tool.Glyph, Rotation: tool.Rotation}
	if tool.Kind == state.ToolMarker {
		tv.Thickness = tool.Thickness
		tv.Color = config.FormatColor(tool.Color)
	}

	p := s.Palette()
	pv := paletteView{Thin: p.Thin, Thick: p.Thick, Colors: []string{}, Stickers: p.Stickers}
	for _, c := range p.Colors {
		pv.Colors = append(pv.Colors, config.FormatColor(c))
	}

	entities := []entityView{}
	for _, e := range s.Document().Entities() {
		v := entityView{ID: e.ID, Seq: e.Seq, Kind: e.Kind}
		switch e.Kind {
		case state.KindStroke:
			v.Points = len(e.Stroke.Points)
		case state.KindSticker:
			v.Glyph = e.Sticker.Glyph
		}
		entities = append(entities, v)
	}

	return summary{
		ID:          r.id,
		Width:       r.width,
		Height:      r.height,
		ExportScale: r.scale,
		Mode:        s.Mode().String(),
		Tool:        tv,
		Palette:     pv,
		Entities:    entities,
		Undoable:    s.Document().Strokes(),
		RedoDepth:   s.Document().RedoDepth(),
		Frames:      r.pipeline.Frames(),
		Peers:       r.peers.Len(),
	}
}
