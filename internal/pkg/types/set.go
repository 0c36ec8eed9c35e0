// Package types holds small generic containers shared by the adapters and
// the indexer.
package types

import (
	"iter"
	"maps"
)

// Set is a hash set of comparable values. The zero value is not usable; build
// one with NewSet.
type Set[T comparable] map[T]struct{}

// NewSet returns a set holding data.
func NewSet[T comparable](data ...T) Set[T] {
	set := make(Set[T], len(data))
	for _, d := range data {
		set[d] = struct{}{}
	}
	return set
}

func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Insert adds v and reports whether it was absent, which lets a single call
// both test and record a value while deduplicating an ordered sequence.
func (s Set[T]) Insert(v T) bool {
	if s.Has(v) {
		return false
	}

	s[v] = struct{}{}
	return true
}

// All iterates the set in no particular order.
func (s Set[T]) All() iter.Seq[T] {
	return maps.Keys(s)
}
