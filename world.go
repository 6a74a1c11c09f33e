package kumi

import (
	"github.com/rotisserie/eris"
)

// Entity represents a unique identifier for an object in the World. It combines
// a 32-bit ID with a 32-bit version to ensure that recycled IDs are not confused
// with new entities.
type Entity struct {
	// ID is the unique, recyclable identifier for the entity.
	ID uint32
	// Version is a generation counter to protect against stale entity references.
	// It is incremented each time an entity ID is reused.
	Version uint32
}

// entityMeta holds the authoritative tag set of a live entity.
type entityMeta struct {
	tags    TagSet
	version uint32 // current version, 0 if the entity is dead
}

// entityRegistry allocates entity IDs and recycles them under a new version.
type entityRegistry struct {
	freeIDs         []uint32     // stack of recycled entity IDs
	metas           []entityMeta // indexed by entity ID
	capacity        int          // current maximum number of entities
	initialCapacity int
	nextEntityVer   uint32 // version for the next created entity
}

// World owns entity lifetimes and the tag set of every entity, and keeps an
// Index in step with them. It is the reference collaborator of the Index: every
// tag change goes through World, which forwards it to the index.
//
// A World is not safe for concurrent use.
type World struct {
	index    *Index
	entities entityRegistry
}

// NewWorld creates a World whose index is built for the declared groups.
//
// Parameters:
//   - groups: the tag combinations that must be queryable.
//   - opts: index options; WithInitialCapacity also presizes the entity registry.
//
// Returns:
//   - The World, or ErrDuplicateGroup / ErrGroupIDCollision from the mapping.
func NewWorld(groups []Group, opts ...Option) (*World, error) {
	m, err := BuildMapping(groups...)
	if err != nil {
		return nil, err
	}
	capacity := newOptions(opts).capacity
	w := &World{
		index: NewIndex(m, opts...),
		entities: entityRegistry{
			capacity:        capacity,
			initialCapacity: capacity,
			freeIDs:         make([]uint32, capacity),
			metas:           make([]entityMeta, capacity),
			nextEntityVer:   1,
		},
	}
	for i := range w.entities.freeIDs {
		w.entities.freeIDs[i] = uint32(capacity - 1 - i)
	}
	return w, nil
}

// Index returns the index maintained by the world. Mutating it directly bypasses
// the world's tag bookkeeping.
func (w *World) Index() *Index {
	return w.index
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return w.index.Len()
}

// IsValid checks if the entity is currently alive in the world. An entity is
// valid if its ID is within bounds and its version matches the world's current
// version for that ID.
func (w *World) IsValid(e Entity) bool {
	if int(e.ID) >= len(w.entities.metas) {
		return false
	}
	meta := w.entities.metas[e.ID]
	return meta.version != 0 && meta.version == e.Version
}

// expand increases capacity when the free list runs dry.
func (w *World) expand(additional int) {
	oldCap := w.entities.capacity
	newCap := max(oldCap*2, oldCap+additional, 1)
	delta := newCap - oldCap
	w.entities.metas = extendSlice(w.entities.metas, delta)
	newFree := make([]uint32, delta)
	for i := range delta {
		newFree[i] = uint32(newCap - 1 - i)
	}
	// fresh IDs go below the recycled ones so recycled IDs are reused first
	w.entities.freeIDs = append(newFree, w.entities.freeIDs...)
	w.entities.capacity = newCap
}

func (w *World) allocate() Entity {
	if len(w.entities.freeIDs) == 0 {
		w.expand(1)
	}
	last := len(w.entities.freeIDs) - 1
	id := w.entities.freeIDs[last]
	w.entities.freeIDs = w.entities.freeIDs[:last]
	meta := &w.entities.metas[id]
	meta.version = w.entities.nextEntityVer
	meta.tags = TagSet{}
	w.entities.nextEntityVer++
	return Entity{ID: id, Version: meta.version}
}

func (w *World) release(e Entity) {
	w.entities.metas[e.ID] = entityMeta{}
	w.entities.freeIDs = append(w.entities.freeIDs, e.ID)
}

// CreateEntity creates a new entity without tags.
func (w *World) CreateEntity() Entity {
	e := w.allocate()
	if err := w.index.Register(e); err != nil {
		// the ID came off the free list, so the index cannot know it
		panic(err)
	}
	return e
}

// CreateEntities creates count entities holding the given tags.
func (w *World) CreateEntities(count int, tags ...Tag) []Entity {
	if count <= 0 {
		return nil
	}
	if len(w.entities.freeIDs) < count {
		w.expand(count - len(w.entities.freeIDs))
	}
	set := NewTagSet(tags...)
	ents := make([]Entity, count)
	for i := range ents {
		ents[i] = w.allocate()
		w.entities.metas[ents[i].ID].tags = set
	}
	if err := w.index.RegisterBatch(ents, set); err != nil {
		panic(err)
	}
	return ents
}

// RemoveEntity removes e from the world and the index and recycles its ID.
func (w *World) RemoveEntity(e Entity) error {
	if !w.IsValid(e) {
		return eris.Wrapf(ErrInvalidEntity, "entity %d (version %d)", e.ID, e.Version)
	}
	if err := w.index.Unregister(e); err != nil {
		return err
	}
	w.release(e)
	return nil
}

// RemoveEntities removes a batch of entities. If any of them is not alive,
// nothing is removed.
func (w *World) RemoveEntities(ents []Entity) error {
	for _, e := range ents {
		if !w.IsValid(e) {
			return eris.Wrapf(ErrInvalidEntity, "entity %d (version %d)", e.ID, e.Version)
		}
	}
	if err := w.index.UnregisterBatch(ents); err != nil {
		return err
	}
	for _, e := range ents {
		w.release(e)
	}
	return nil
}

// ClearEntities removes every live entity.
func (w *World) ClearEntities() {
	var live []Entity
	for id, meta := range w.entities.metas {
		if meta.version != 0 {
			live = append(live, Entity{ID: uint32(id), Version: meta.version})
		}
	}
	if err := w.RemoveEntities(live); err != nil {
		panic(err)
	}
}

// Tags returns the tag set of e.
func (w *World) Tags(e Entity) (TagSet, bool) {
	if !w.IsValid(e) {
		return TagSet{}, false
	}
	return w.entities.metas[e.ID].tags, true
}

// HasTag reports whether e is alive and holds tag.
func (w *World) HasTag(e Entity, tag Tag) bool {
	tags, ok := w.Tags(e)
	return ok && tags.Has(tag)
}

// AddTag gives tag to e. Adding a tag e already holds changes nothing.
func (w *World) AddTag(e Entity, tag Tag) error {
	if !w.IsValid(e) {
		return eris.Wrapf(ErrInvalidEntity, "entity %d (version %d)", e.ID, e.Version)
	}
	meta := &w.entities.metas[e.ID]
	if meta.tags.Has(tag) {
		return nil
	}
	meta.tags = meta.tags.With(tag)
	return w.index.OnTagAdded(e, meta.tags, tag)
}

// RemoveTag takes tag away from e. Removing a tag e does not hold changes nothing.
func (w *World) RemoveTag(e Entity, tag Tag) error {
	if !w.IsValid(e) {
		return eris.Wrapf(ErrInvalidEntity, "entity %d (version %d)", e.ID, e.Version)
	}
	meta := &w.entities.metas[e.ID]
	if !meta.tags.Has(tag) {
		return nil
	}
	meta.tags = meta.tags.Without(tag)
	return w.index.OnTagRemoved(e, meta.tags, tag)
}

// AddComponent tags e with the component type T, registering T if needed.
func AddComponent[T any](w *World, e Entity) error {
	return w.AddTag(e, RegisterComponent[T]())
}

// RemoveComponent removes the tag of component type T from e.
func RemoveComponent[T any](w *World, e Entity) error {
	tag, ok := TryTagOf[T]()
	if !ok {
		if !w.IsValid(e) {
			return eris.Wrapf(ErrInvalidEntity, "entity %d (version %d)", e.ID, e.Version)
		}
		return nil
	}
	return w.RemoveTag(e, tag)
}

// HasComponent reports whether e holds the tag of component type T.
func HasComponent[T any](w *World, e Entity) bool {
	tag, ok := TryTagOf[T]()
	return ok && w.HasTag(e, tag)
}

// Query returns the entities of the group declared over exactly tags. See
// Index.Query for the lifetime of the returned slice.
func (w *World) Query(tags ...Tag) ([]Entity, error) {
	return w.index.Query(NewTagSet(tags...))
}

// View returns an iterator over the group declared over exactly tags.
func (w *World) View(tags ...Tag) (*View, error) {
	return w.index.View(NewTagSet(tags...))
}

// Regroup replaces the declared groups. The new mapping is computed first; on
// error the world keeps its current groups.
func (w *World) Regroup(groups ...Group) error {
	m, err := BuildMapping(groups...)
	if err != nil {
		return eris.Wrap(err, "failed to regroup")
	}
	w.index.Rebuild(m, func(e Entity) TagSet {
		return w.entities.metas[e.ID].tags
	})
	return nil
}
