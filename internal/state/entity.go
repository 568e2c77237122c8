package state

// Kind tags the variant held by an Entity.
type Kind string

const (
	KindStroke  Kind = "stroke"
	KindSticker Kind = "sticker"
)

// Entity is one committed drawable. Exactly one of Stroke and Sticker is set,
// matching Kind.
type Entity struct {
	ID      string   `json:"id"`
	Seq     uint64   `json:"seq"`
	Kind    Kind     `json:"kind"`
	Stroke  *Stroke  `json:"stroke,omitempty"`
	Sticker *Sticker `json:"sticker,omitempty"`
}

func (e Entity) Render(surface Surface) {
	switch e.Kind {
	case KindStroke:
		if e.Stroke != nil {
			e.Stroke.Render(surface)
		}
	case KindSticker:
		if e.Sticker != nil {
			e.Sticker.Render(surface)
		}
	}
}
