package state

// idSet is an insertion-ordered set of computation IDs.
// Removal leaves a zero tombstone that is compacted lazily, so iteration
// order stays stable for subscribers that keep their edge across runs.
type idSet struct {
	ids   []uint64
	index map[uint64]int
	holes int
}

func (s *idSet) add(id uint64) bool {
	if s.index == nil {
		s.index = make(map[uint64]int)
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	return true
}

func (s *idSet) remove(id uint64) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	delete(s.index, id)
	s.ids[i] = 0
	s.holes++
	if s.holes > 16 && s.holes*2 > len(s.ids) {
		s.compact()
	}
	return true
}

func (s *idSet) compact() {
	n := 0
	for _, id := range s.ids {
		if id == 0 {
			continue
		}
		s.ids[n] = id
		s.index[id] = n
		n++
	}
	clear(s.ids[n:])
	s.ids = s.ids[:n]
	s.holes = 0
}

func (s *idSet) has(id uint64) bool {
	_, ok := s.index[id]
	return ok
}

func (s *idSet) len() int {
	return len(s.index)
}

// snapshot copies the live IDs in insertion order. Callers iterate the copy
// because notifying a subscriber can change the set.
func (s *idSet) snapshot() []uint64 {
	if len(s.index) == 0 {
		return nil
	}
	out := make([]uint64, 0, len(s.index))
	for _, id := range s.ids {
		if id != 0 {
			out = append(out, id)
		}
	}
	return out
}

// source is the type-erased readable half of a Signal or Memo.
// It records subscribers by computation ID only; the Runtime arena resolves
// IDs back to live computations, so a source never keeps one alive.
type source struct {
	id   uint64
	rt   *Runtime
	subs idSet

	// node is the memo computation producing this source, nil for signals.
	node *computation
}

func newSource(rt *Runtime) *source {
	return &source{id: nextID(), rt: rt}
}
