package kumi

import (
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// indexMeta records whether an entity ID is registered and under which version.
type indexMeta struct {
	version uint32
	live    bool
}

// Index keeps every registered entity sorted inside one storage per chain of a
// Mapping, so that the entities of any declared group are a contiguous prefix of
// its storage.
//
// An Index is not synchronized. Register, Unregister, OnTagAdded, OnTagRemoved,
// Sync and Rebuild must be serialized by the caller, and slices returned by
// Query are only valid until the next mutation.
type Index struct {
	mapping  *Mapping
	storages []*storage
	metas    []indexMeta
	count    int
	log      Logger
	bus      *EventBus
	capacity int
	verify   bool
}

// NewIndex creates an index for the chains of m. A nil mapping is treated as a
// mapping without groups: entities can be registered but every query fails with
// ErrUnknownGroup.
func NewIndex(m *Mapping, opts ...Option) *Index {
	o := newOptions(opts)
	if m == nil {
		m, _ = BuildMapping()
	}
	logger := o.logger
	x := &Index{
		mapping:  m,
		metas:    make([]indexMeta, o.capacity),
		log:      Logger{Logger: &logger},
		bus:      o.bus,
		capacity: o.capacity,
		verify:   o.verify,
	}
	x.storages = x.newStorages(m)
	x.log.LogMapping(m, zerolog.DebugLevel)
	return x
}

func (x *Index) newStorages(m *Mapping) []*storage {
	storages := make([]*storage, m.Len())
	for i, chain := range m.Chains() {
		storages[i] = newStorage(chain, x.capacity)
	}
	return storages
}

// Mapping returns the mapping the index currently sorts by.
func (x *Index) Mapping() *Mapping {
	return x.mapping
}

// Len returns the number of registered entities.
func (x *Index) Len() int {
	return x.count
}

// Contains reports whether e is registered under its current version.
func (x *Index) Contains(e Entity) bool {
	if int(e.ID) >= len(x.metas) {
		return false
	}
	meta := x.metas[e.ID]
	return meta.live && meta.version == e.Version
}

func (x *Index) idLive(id uint32) bool {
	return int(id) < len(x.metas) && x.metas[id].live
}

func (x *Index) track(e Entity) {
	if int(e.ID) >= len(x.metas) {
		x.metas = extendSlice(x.metas, int(e.ID)+1-len(x.metas))
	}
	x.metas[e.ID] = indexMeta{version: e.Version, live: true}
	x.count++
}

func (x *Index) untrack(e Entity) {
	x.metas[e.ID] = indexMeta{}
	x.count--
}

// Register adds e with an empty tag set. It lands behind every cursor, except in
// chains that start with the empty group, which every entity satisfies.
//
// Parameters:
//   - e: the entity to add. Its ID must not be live under any version.
//
// Returns:
//   - ErrEntityAlreadyRegistered if the ID is live, nil otherwise.
func (x *Index) Register(e Entity) error {
	return x.RegisterWith(e, TagSet{})
}

// RegisterWith adds e and places it according to tags in one step.
func (x *Index) RegisterWith(e Entity, tags TagSet) error {
	if x.idLive(e.ID) {
		return eris.Wrapf(ErrEntityAlreadyRegistered, "entity %d", e.ID)
	}
	x.track(e)
	for i, s := range x.storages {
		s.push(e)
		x.relocate(i, e, s.target(tags))
	}
	x.checkInvariants()
	return nil
}

// OnTagAdded updates the placement of e after it gained tag. Only storages with
// a group mentioning tag are visited; adding a tag that changes no membership
// moves nothing.
//
// Parameters:
//   - e: a registered entity.
//   - tags: the entity's tag set, taken either before or after the change.
//   - tag: the tag that was added.
//
// Returns:
//   - ErrEntityNotRegistered for unknown or stale entities, nil otherwise.
func (x *Index) OnTagAdded(e Entity, tags TagSet, tag Tag) error {
	if !x.Contains(e) {
		return eris.Wrapf(ErrEntityNotRegistered, "entity %d (version %d) gained tag %d", e.ID, e.Version, tag)
	}
	x.update(e, tags.With(tag), x.mapping.chainsWithTag(tag))
	return nil
}

// OnTagRemoved updates the placement of e after it lost tag.
//
// Parameters:
//   - e: a registered entity.
//   - tags: the entity's tag set, taken either before or after the change.
//   - tag: the tag that was removed.
//
// Returns:
//   - ErrEntityNotRegistered for unknown or stale entities, nil otherwise.
func (x *Index) OnTagRemoved(e Entity, tags TagSet, tag Tag) error {
	if !x.Contains(e) {
		return eris.Wrapf(ErrEntityNotRegistered, "entity %d (version %d) lost tag %d", e.ID, e.Version, tag)
	}
	x.update(e, tags.Without(tag), x.mapping.chainsWithTag(tag))
	return nil
}

// Sync places e according to its full tag set in every storage. It is the slow
// path for callers that changed several tags at once.
func (x *Index) Sync(e Entity, tags TagSet) error {
	if !x.Contains(e) {
		return eris.Wrapf(ErrEntityNotRegistered, "entity %d (version %d)", e.ID, e.Version)
	}
	for i, s := range x.storages {
		x.relocate(i, e, s.target(tags))
	}
	x.checkInvariants()
	return nil
}

func (x *Index) update(e Entity, tags TagSet, storages []int) {
	for _, i := range storages {
		x.relocate(i, e, x.storages[i].target(tags))
	}
	x.checkInvariants()
}

// relocate moves e to level to in storage i and publishes the groups it crossed.
func (x *Index) relocate(i int, e Entity, to int) {
	s := x.storages[i]
	from := s.move(s.position(e.ID), to)
	if x.bus == nil || from == to {
		return
	}
	for l := from; l < to; l++ {
		Publish(x.bus, GroupEntered{Entity: e, Group: s.groups[l]})
	}
	for l := from - 1; l >= to; l-- {
		Publish(x.bus, GroupExited{Entity: e, Group: s.groups[l]})
	}
}

// Unregister removes e from every storage: it leaves every group it is in, is
// swapped with the tail and the tail slot is dropped.
//
// Parameters:
//   - e: a registered entity, under its current version.
//
// Returns:
//   - ErrEntityNotRegistered for unknown or stale entities, nil otherwise.
func (x *Index) Unregister(e Entity) error {
	if !x.Contains(e) {
		return eris.Wrapf(ErrEntityNotRegistered, "entity %d (version %d)", e.ID, e.Version)
	}
	for i, s := range x.storages {
		x.relocate(i, e, 0)
		s.remove(s.position(e.ID))
	}
	x.untrack(e)
	x.checkInvariants()
	return nil
}

// Query returns the entities satisfying the group declared over exactly tags, in
// O(1). The slice aliases the storage: it must not be kept across a mutation of
// the index, and its contents must not be modified. Use View for iteration that
// detects such misuse.
//
// Returns:
//   - The entities, or ErrUnknownGroup if tags was never declared.
func (x *Index) Query(tags TagSet) ([]Entity, error) {
	slot, err := x.mapping.Lookup(tags)
	if err != nil {
		x.log.Warn().Stringer("group", tags).Msg("query for a group that was not declared")
		return nil, err
	}
	return x.storages[slot.Storage].view(slot.Position), nil
}

// QueryGroup is Query by group identifier.
func (x *Index) QueryGroup(id GroupID) ([]Entity, error) {
	slot, err := x.mapping.LookupID(id)
	if err != nil {
		x.log.Warn().Uint64("group_id", uint64(id)).Msg("query for a group that was not declared")
		return nil, err
	}
	return x.storages[slot.Storage].view(slot.Position), nil
}

// Rebuild re-sorts every registered entity for a new mapping. The new storages
// are filled off to the side and swapped in at the end; tagsOf must return the
// current tag set of each registered entity. Views over the old storages are
// invalidated. No membership events are published.
//
// Parameters:
//   - m: the new mapping. nil means a mapping without groups.
//   - tagsOf: returns the current tag set of a registered entity.
func (x *Index) Rebuild(m *Mapping, tagsOf func(Entity) TagSet) {
	if m == nil {
		m, _ = BuildMapping()
	}
	storages := x.newStorages(m)
	for id, meta := range x.metas {
		if !meta.live {
			continue
		}
		e := Entity{ID: uint32(id), Version: meta.version}
		tags := tagsOf(e)
		for _, s := range storages {
			s.push(e)
			s.move(s.position(e.ID), s.target(tags))
		}
	}
	for _, s := range x.storages {
		s.version++
	}
	x.mapping, x.storages = m, storages
	x.log.Debug().Int("entities", x.count).Msg("index rebuilt")
	x.log.LogMapping(m, zerolog.DebugLevel)
	x.checkInvariants()
}

// placement returns the position and level of e in storage i.
func (x *Index) placement(i int, e Entity) (pos, level int) {
	s := x.storages[i]
	pos = s.position(e.ID)
	return pos, s.level(pos)
}

func (x *Index) checkInvariants() {
	if !x.verify {
		return
	}
	for i, s := range x.storages {
		if err := s.check(); err != nil {
			panic(eris.Wrapf(err, "storage %d", i))
		}
		if len(s.entities) != x.count {
			panic(eris.Wrapf(ErrCorruptedStorage, "storage %d holds %d of %d entities", i, len(s.entities), x.count))
		}
	}
}
