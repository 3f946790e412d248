package output

// KeySet is the set of active variant keys for one render.
// A nil KeySet is empty.
type KeySet map[any]struct{}

// NewKeySet returns a set holding keys.
func NewKeySet(keys ...any) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Add marks key active.
func (s KeySet) Add(key any) {
	s[key] = struct{}{}
}

// Has reports whether key is active.
func (s KeySet) Has(key any) bool {
	_, ok := s[key]
	return ok
}
