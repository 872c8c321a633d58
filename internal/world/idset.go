package world

// IDSet is a set of entity ids that remembers insertion order.
type IDSet struct {
	ids   []string
	index map[string]int
}

// Add inserts id and reports whether it was new.
func (s *IDSet) Add(id string) bool {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = len(s.ids)
	s.ids = append(s.ids, id)
	return true
}

// Remove deletes id and reports whether it was present.
func (s *IDSet) Remove(id string) bool {
	i, ok := s.index[id]
	if !ok {
		return false
	}
	delete(s.index, id)
	s.ids = append(s.ids[:i], s.ids[i+1:]...)
	for j := i; j < len(s.ids); j++ {
		s.index[s.ids[j]] = j
	}
	return true
}

func (s *IDSet) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *IDSet) Len() int {
	return len(s.ids)
}

// IDs returns a copy, safe to iterate while the set changes.
func (s *IDSet) IDs() []string {
	return append([]string(nil), s.ids...)
}

func (s *IDSet) Clear() {
	s.ids = nil
	s.index = nil
}
