package kumi

import (
	"github.com/rotisserie/eris"
)

// storage is the entity array of one chain. With the chain g0 ⊊ g1 ⊊ … ⊊ gk-1,
// cursors[i] is the number of leading entities that satisfy gi:
//
//	|<- satisfy gk-1 ->|     …     |<- satisfy g0 only ->|<- satisfy none ->|
//	0          cursors[k-1]  …  cursors[1]         cursors[0]       len(entities)
//
// so cursors[k-1] <= … <= cursors[0] <= len(entities). The level of an entity
// is the number of chain groups it satisfies; the groups it satisfies are
// always a prefix of the chain.
type storage struct {
	groups   []Group
	entities []Entity
	cursors  []int
	sparse   []int // entity ID -> position+1, 0 when absent
	version  uint64
}

func newStorage(groups []Group, capacity int) *storage {
	return &storage{
		groups:   groups,
		entities: make([]Entity, 0, capacity),
		cursors:  make([]int, len(groups)),
		sparse:   make([]int, capacity),
	}
}

// position returns the index of the entity with the given ID, or -1.
func (s *storage) position(id uint32) int {
	if int(id) >= len(s.sparse) {
		return -1
	}
	return s.sparse[id] - 1
}

// level derives the level of the entity at pos from the cursors.
func (s *storage) level(pos int) int {
	l := 0
	for l < len(s.cursors) && pos < s.cursors[l] {
		l++
	}
	return l
}

// target returns the number of chain groups satisfied by tags.
func (s *storage) target(tags TagSet) int {
	l := 0
	for l < len(s.groups) && tags.Contains(s.groups[l].Tags) {
		l++
	}
	return l
}

func (s *storage) swap(i, j int) {
	if i == j {
		return
	}
	a, b := s.entities[i], s.entities[j]
	s.entities[i], s.entities[j] = b, a
	s.sparse[a.ID] = j + 1
	s.sparse[b.ID] = i + 1
}

// push appends e behind every cursor. e is at level 0 afterwards.
func (s *storage) push(e Entity) {
	if int(e.ID) >= len(s.sparse) {
		s.sparse = extendSlice(s.sparse, int(e.ID)+1-len(s.sparse))
	}
	s.entities = append(s.entities, e)
	s.sparse[e.ID] = len(s.entities)
	s.version++
}

// move relocates the entity at pos to level to, one swap and one cursor move
// per group crossed, and returns its previous level.
//
// On gain the groups are crossed smallest first: the smallest group's cursor is
// the one furthest back, so the entity walks towards the front. On loss the
// largest group is left first for the same reason.
func (s *storage) move(pos, to int) int {
	from := s.level(pos)
	if from == to {
		return from
	}
	for l := from; l < to; l++ {
		b := s.cursors[l]
		s.swap(pos, b)
		pos = b
		s.cursors[l]++
	}
	for l := from - 1; l >= to; l-- {
		b := s.cursors[l] - 1
		s.swap(pos, b)
		pos = b
		s.cursors[l]--
	}
	s.version++
	return from
}

// remove drops the entity at pos, which must be at level 0, by swapping it with
// the tail.
func (s *storage) remove(pos int) {
	last := len(s.entities) - 1
	s.swap(pos, last)
	id := s.entities[last].ID
	s.entities = s.entities[:last]
	s.sparse[id] = 0
	s.version++
}

// view returns the entities satisfying the group at position. The capacity is
// clipped so an append by the caller reallocates instead of writing into the
// storage.
func (s *storage) view(position int) []Entity {
	n := s.cursors[position]
	return s.entities[:n:n]
}

// check verifies the structural invariants. It does not know the entities' tags;
// membership is verified by callers that do.
func (s *storage) check() error {
	prev := len(s.entities)
	for i, c := range s.cursors {
		if c < 0 || c > prev {
			return eris.Wrapf(ErrCorruptedStorage, "cursor %d of group %s at %d, bound %d", i, s.groups[i].Tags, c, prev)
		}
		prev = c
	}
	for pos, e := range s.entities {
		if s.position(e.ID) != pos {
			return eris.Wrapf(ErrCorruptedStorage, "entity %d at %d indexed at %d", e.ID, pos, s.position(e.ID))
		}
	}
	// with the sparse index consistent, a duplicate ID would have failed above
	live := 0
	for _, p := range s.sparse {
		if p != 0 {
			live++
		}
	}
	if live != len(s.entities) {
		return eris.Wrapf(ErrCorruptedStorage, "%d indexed entities for %d stored", live, len(s.entities))
	}
	return nil
}
