// Package cull selects the occupied blocks that can contribute geometry:
// a block is exposed when at least one of its six face neighbours is not
// occupied. Fully enclosed blocks are dropped before meshing.
//
// The filter does not report which faces are exposed and knows nothing about
// the camera; it is a conservative, geometry-independent pre-pass.
package cull

import (
	"github.com/OCharnyshevich/blockcull/pkg/blockpos"
)

// Set is a collection of occupied block positions keyed by their packed word.
type Set map[blockpos.BlockPos]struct{}

// NewSet builds a set from ps. Duplicates collapse.
func NewSet(ps ...blockpos.BlockPos) Set {
	s := make(Set, len(ps))
	for _, p := range ps {
		s[p] = struct{}{}
	}
	return s
}

// Add inserts p.
func (s Set) Add(p blockpos.BlockPos) { s[p] = struct{}{} }

// Remove deletes p.
func (s Set) Remove(p blockpos.BlockPos) { delete(s, p) }

// Contains reports whether p is occupied.
func (s Set) Contains(p blockpos.BlockPos) bool {
	_, ok := s[p]
	return ok
}

// Len returns the number of occupied positions.
func (s Set) Len() int { return len(s) }

// Slice returns the members in unspecified order.
func (s Set) Slice() []blockpos.BlockPos {
	out := make([]blockpos.BlockPos, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	return out
}

// IsExposed reports whether p has at least one face neighbour missing from s.
// A neighbour outside the coordinate domain counts as missing, so blocks at
// the world edge are always exposed on that side.
func IsExposed(s Set, p blockpos.BlockPos) bool {
	for _, d := range blockpos.Directions {
		n, err := p.Neighbor(d)
		if err != nil {
			return true
		}
		if _, ok := s[n]; !ok {
			return true
		}
	}
	return false
}

// Exposed returns the members of s that are exposed, in unspecified order.
func (s Set) Exposed() []blockpos.BlockPos {
	out := make([]blockpos.BlockPos, 0)
	for p := range s {
		if IsExposed(s, p) {
			out = append(out, p)
		}
	}
	return out
}

// Exposed returns the exposed subset of occupied. The result is a new slice
// holding each exposed position once, in the order of its first occurrence in
// occupied; occupied itself is not modified.
func Exposed(occupied []blockpos.BlockPos) []blockpos.BlockPos {
	s := NewSet(occupied...)

	// Only track emitted positions when the input actually had duplicates.
	var emitted Set
	if len(s) != len(occupied) {
		emitted = make(Set, len(s))
	}

	out := make([]blockpos.BlockPos, 0)
	for _, p := range occupied {
		if emitted != nil {
			if emitted.Contains(p) {
				continue
			}
			emitted.Add(p)
		}
		if IsExposed(s, p) {
			out = append(out, p)
		}
	}
	return out
}

// Partition splits s into exposed and interior members.
// Every interior member has all six neighbours in-domain and present in s.
func Partition(s Set) (exposed, interior []blockpos.BlockPos) {
	for p := range s {
		if IsExposed(s, p) {
			exposed = append(exposed, p)
		} else {
			interior = append(interior, p)
		}
	}
	return exposed, interior
}
