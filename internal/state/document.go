package state

// removed is a stroke taken off the Document by Undo, with the slot it
// occupied and the last commit number at the time.
type removed struct {
	entity Entity
	index  int
	seq    uint64
}

// Document is the ordered list of committed strokes and stickers plus the
// redo stack. Draw order is commit order.
//
// Undo only ever reverts strokes. Stickers stay where they were placed, and
// placing one leaves the redo stack alone; committing a stroke or clearing
// empties it.
type Document struct {
	entities []Entity
	redo     []removed
	seq      sequence
}

func NewDocument() *Document {
	return &Document{}
}

// CommitStroke appends s and empties the redo stack. Nil or zero-point
// strokes are ignored and false is returned.
func (d *Document) CommitStroke(s *Stroke) bool {
	if s == nil || len(s.Points) == 0 {
		return false
	}
	d.entities = append(d.entities, Entity{
		ID:     newEntityID(),
		Seq:    d.seq.next(),
		Kind:   KindStroke,
		Stroke: s,
	})
	d.redo = nil
	return true
}

// CommitSticker appends s. The redo stack is kept.
func (d *Document) CommitSticker(s *Sticker) bool {
	if s == nil {
		return false
	}
	d.entities = append(d.entities, Entity{
		ID:      newEntityID(),
		Seq:     d.seq.next(),
		Kind:    KindSticker,
		Sticker: s,
	})
	return true
}

// Undo removes the most recently committed stroke and pushes it on the redo
// stack. Stickers committed after it are left in place. Reports whether
// anything was removed.
func (d *Document) Undo() bool {
	for i := len(d.entities) - 1; i >= 0; i-- {
		if d.entities[i].Kind != KindStroke {
			continue
		}
		e := d.entities[i]
		d.entities = append(d.entities[:i:i], d.entities[i+1:]...)
		d.redo = append(d.redo, removed{entity: e, index: i, seq: d.seq.last})
		return true
	}
	return false
}

// Redo restores the most recently undone stroke. With nothing committed
// since its undo it goes back into the slot it came from; otherwise it is
// appended so it draws above the newer entities.
func (d *Document) Redo() bool {
	if len(d.redo) == 0 {
		return false
	}
	r := d.redo[len(d.redo)-1]
	d.redo = d.redo[:len(d.redo)-1]

	if r.seq != d.seq.last {
		d.entities = append(d.entities, r.entity)
		return true
	}
	i := min(r.index, len(d.entities))
	d.entities = append(d.entities, Entity{})
	copy(d.entities[i+1:], d.entities[i:])
	d.entities[i] = r.entity
	return true
}

// Clear empties both the entity list and the redo stack.
func (d *Document) Clear() {
	d.entities = nil
	d.redo = nil
	d.seq.reset()
}

// Entities returns a copy of the committed entities in draw order. The
// entities themselves are immutable once committed.
func (d *Document) Entities() []Entity {
	out := make([]Entity, len(d.entities))
	copy(out, d.entities)
	return out
}

func (d *Document) Len() int { return len(d.entities) }

func (d *Document) RedoDepth() int { return len(d.redo) }

// Strokes returns the number of committed strokes, i.e. how many Undo calls
// can succeed.
func (d *Document) Strokes() int {
	n := 0
	for _, e := range d.entities {
		if e.Kind == KindStroke {
			n++
		}
	}
	return n
}

// Redoable returns the undone strokes, oldest first.
func (d *Document) Redoable() []Entity {
	out := make([]Entity, len(d.redo))
	for i, r := range d.redo {
		out[i] = r.entity
	}
	return out
}
