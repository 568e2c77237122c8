package state

import "github.com/google/uuid"

// sequence stamps committed entities with a per-document commit number.
// Documents are mutated from one goroutine at a time, so no atomics.
type sequence struct {
	last uint64
}

func (s *sequence) next() uint64 {
	s.last++
	return s.last
}

func (s *sequence) reset() {
	s.last = 0
}

func newEntityID() string {
	return uuid.NewString()
}
