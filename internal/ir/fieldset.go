package ir

import (
	"math/bits"
	"strconv"
	"strings"
)

// FieldSet is a bit vector over the field indexes of an entity Tuple.
// It describes which fields changed or which fields carry a loaded value.
//
// The zero value is an empty set. FieldSet values are immutable once
// handed to a Task; use Clone before mutating a shared set.
type FieldSet struct {
	words []uint64
}

// NewFieldSet returns a set with the given indexes marked.
func NewFieldSet(indexes ...int) FieldSet {
	var s FieldSet
	for _, i := range indexes {
		s.Set(i)
	}
	return s
}

// FieldRange returns a set with indexes [0, n) marked.
func FieldRange(n int) FieldSet {
	var s FieldSet
	for i := 0; i < n; i++ {
		s.Set(i)
	}
	return s
}

// Set marks index i. Negative indexes are ignored.
func (s *FieldSet) Set(i int) {
	if i < 0 {
		return
	}
	w := i / 64
	for len(s.words) <= w {
		s.words = append(s.words, 0)
	}
	s.words[w] |= 1 << (uint(i) % 64)
}

// Has reports whether index i is marked.
func (s FieldSet) Has(i int) bool {
	if i < 0 {
		return false
	}
	w := i / 64
	if w >= len(s.words) {
		return false
	}
	return s.words[w]&(1<<(uint(i)%64)) != 0
}

// Count returns the number of marked indexes.
func (s FieldSet) Count() int {
	n := 0
	for _, w := range s.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Indexes returns the marked indexes in ascending order.
func (s FieldSet) Indexes() []int {
	var out []int
	for wi, w := range s.words {
		for w != 0 {
			b := bits.TrailingZeros64(w)
			out = append(out, wi*64+b)
			w &^= 1 << uint(b)
		}
	}
	return out
}

// Equal reports whether both sets mark exactly the same indexes.
// Trailing zero words do not affect equality.
func (s FieldSet) Equal(other FieldSet) bool {
	a, b := s.trimmed(), other.trimmed()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Low32 returns the first 32 bits of the vector (indexes 0..31).
func (s FieldSet) Low32() uint32 {
	if len(s.words) == 0 {
		return 0
	}
	return uint32(s.words[0])
}

// Clone returns an independent copy.
func (s FieldSet) Clone() FieldSet {
	return FieldSet{words: append([]uint64(nil), s.trimmed()...)}
}

// String renders the set as "{0,2,5}".
func (s FieldSet) String() string {
	idx := s.Indexes()
	parts := make([]string, len(idx))
	for i, v := range idx {
		parts[i] = strconv.Itoa(v)
	}
	return "{" + strings.Join(parts, ",") + "}"
}

func (s FieldSet) trimmed() []uint64 {
	w := s.words
	for len(w) > 0 && w[len(w)-1] == 0 {
		w = w[:len(w)-1]
	}
	return w
}
