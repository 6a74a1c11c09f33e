package kumi

import (
	"slices"

	"github.com/rotisserie/eris"
)

// RegisterBatch registers every entity of ents with the same tag set. The batch
// is validated first: if any entity is already registered, or an ID repeats
// within the batch, nothing is registered.
//
// Each storage grows once for the whole batch; entities satisfying groups are
// then pulled across the cursors one by one.
//
// Parameters:
//   - ents: the entities to add; IDs must be distinct and not live.
//   - tags: the tag set every entity of the batch starts with.
//
// Returns:
//   - ErrEntityAlreadyRegistered if the batch is rejected, nil otherwise.
func (x *Index) RegisterBatch(ents []Entity, tags TagSet) error {
	if len(ents) == 0 {
		return nil
	}
	maxID := uint32(0)
	seen := make(map[uint32]struct{}, len(ents))
	for _, e := range ents {
		if x.idLive(e.ID) {
			return eris.Wrapf(ErrEntityAlreadyRegistered, "entity %d", e.ID)
		}
		if _, dup := seen[e.ID]; dup {
			return eris.Wrapf(ErrEntityAlreadyRegistered, "entity %d appears twice in the batch", e.ID)
		}
		seen[e.ID] = struct{}{}
		maxID = max(maxID, e.ID)
	}
	for _, e := range ents {
		x.track(e)
	}
	for i, s := range x.storages {
		if int(maxID) >= len(s.sparse) {
			s.sparse = extendSlice(s.sparse, int(maxID)+1-len(s.sparse))
		}
		s.entities = slices.Grow(s.entities, len(ents))
		to := s.target(tags)
		for _, e := range ents {
			s.push(e)
			x.relocate(i, e, to)
		}
	}
	x.checkInvariants()
	return nil
}

// UnregisterBatch unregisters every entity of ents. If any of them is not
// registered, nothing is removed.
//
// Returns:
//   - ErrEntityNotRegistered if an entity is unknown, stale or repeated, nil otherwise.
func (x *Index) UnregisterBatch(ents []Entity) error {
	seen := make(map[uint32]struct{}, len(ents))
	for _, e := range ents {
		if !x.Contains(e) {
			return eris.Wrapf(ErrEntityNotRegistered, "entity %d (version %d)", e.ID, e.Version)
		}
		if _, dup := seen[e.ID]; dup {
			return eris.Wrapf(ErrEntityNotRegistered, "entity %d appears twice in the batch", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	for i, s := range x.storages {
		for _, e := range ents {
			x.relocate(i, e, 0)
			s.remove(s.position(e.ID))
		}
	}
	for _, e := range ents {
		x.untrack(e)
	}
	x.checkInvariants()
	return nil
}
