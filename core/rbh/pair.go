// core/rbh/pair.go
package rbh

import (
	"cmp"
	"slices"
	"sync"

	"rbh-core/hit"
)

// PairKey is the unordered identity of a pair: Lo <= Hi lexicographically.
// It is comparable and can key a map directly.
type PairKey struct {
	Lo, Hi string
}

// KeyOf builds the symmetric key for two accessions.
func KeyOf(x, y string) PairKey {
	if y < x {
		x, y = y, x
	}
	return PairKey{Lo: x, Hi: y}
}

// Pair is an accepted ortholog pair. IDA comes from the A set, IDB from the B
// set; Forward is the A->B supporting hit, Reverse the B->A one.
type Pair struct {
	IDA     string
	IDB     string
	Forward hit.Record
	Reverse hit.Record
}

// Key returns the pair's symmetric identity.
func (p Pair) Key() PairKey { return KeyOf(p.IDA, p.IDB) }

// Equal reports symmetric equality: {x,y} equals {y,x}.
func (p Pair) Equal(o Pair) bool { return p.Key() == o.Key() }

// better reports whether p carries stronger evidence than o for the same key.
func (p Pair) better(o Pair) bool {
	if c := hit.Compare(p.Forward, o.Forward); c != 0 {
		return c < 0
	}
	if c := hit.Compare(p.Reverse, o.Reverse); c != 0 {
		return c < 0
	}
	if p.Forward.Seq != o.Forward.Seq {
		return p.Forward.Seq < o.Forward.Seq
	}
	return p.Reverse.Seq < o.Reverse.Seq
}

// ComparePairs orders pairs by (IDA, IDB).
func ComparePairs(a, b Pair) int {
	if c := cmp.Compare(a.IDA, b.IDA); c != 0 {
		return c
	}
	return cmp.Compare(a.IDB, b.IDB)
}

// PairSet accumulates pairs keyed by symmetric identity. It is safe for
// concurrent use. When a key is added twice the stronger evidence is kept, so
// the final content does not depend on insertion order.
type PairSet struct {
	mu sync.Mutex
	m  map[PairKey]Pair
}

// NewPairSet returns an empty set.
func NewPairSet() *PairSet { return &PairSet{m: make(map[PairKey]Pair)} }

// Add inserts p and reports whether its key was new.
func (s *PairSet) Add(p Pair) bool {
	k := p.Key()
	s.mu.Lock()
	defer s.mu.Unlock()
	old, dup := s.m[k]
	if !dup || p.better(old) {
		s.m[k] = p
	}
	return !dup
}

// Get returns the pair stored under the key of x and y, in either order.
func (s *PairSet) Get(x, y string) (Pair, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[KeyOf(x, y)]
	return p, ok
}

// Len is the number of distinct pairs.
func (s *PairSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.m)
}

// Sorted returns the pairs ordered by (IDA, IDB).
func (s *PairSet) Sorted() []Pair {
	s.mu.Lock()
	out := make([]Pair, 0, len(s.m))
	for _, p := range s.m {
		out = append(out, p)
	}
	s.mu.Unlock()
	slices.SortFunc(out, ComparePairs)
	return out
}
