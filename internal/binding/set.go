package binding

// Set is an insertion-ordered set of bindings. Adding a binding that is
// already present does nothing.
type Set struct {
	items []*Binding
	index map[*Binding]struct{}
}

// NewSet returns a set holding bs.
func NewSet(bs ...*Binding) *Set {
	s := &Set{index: make(map[*Binding]struct{}, len(bs))}
	for _, b := range bs {
		s.Add(b)
	}
	return s
}

// Add inserts b and reports whether it was new.
func (s *Set) Add(b *Binding) bool {
	if b == nil {
		return false
	}
	if s.index == nil {
		s.index = make(map[*Binding]struct{})
	}
	if _, ok := s.index[b]; ok {
		return false
	}
	s.index[b] = struct{}{}
	s.items = append(s.items, b)
	return true
}

// AddAll inserts every binding of other in its order.
func (s *Set) AddAll(other *Set) {
	if other == nil {
		return
	}
	for _, b := range other.items {
		s.Add(b)
	}
}

// Has reports whether b is in the set.
func (s *Set) Has(b *Binding) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[b]
	return ok
}

// Len returns the number of bindings.
func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// All returns the bindings in insertion order.
func (s *Set) All() []*Binding {
	if s == nil {
		return nil
	}
	return append([]*Binding(nil), s.items...)
}

// Union returns a new set with the bindings of every set, first set first.
func Union(sets ...*Set) *Set {
	out := NewSet()
	for _, s := range sets {
		out.AddAll(s)
	}
	return out
}
