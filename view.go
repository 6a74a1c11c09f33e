package kumi

// View iterates over the entities of one declared group. Unlike the slice
// returned by Query, a View notices when its storage is mutated while it is in
// use and panics with ErrViewInvalidated instead of yielding displaced entities.
//
// Example:
//
//	view, err := index.View(kumi.NewTagSet(pos, vel))
//	if err != nil {
//	    return err
//	}
//	for view.Next() {
//	    e := view.Entity()
//	    // ... read component pools for e; do not mutate the index here
//	}
type View struct {
	x        *Index
	s        *storage
	entities []Entity
	group    Group
	version  uint64
	curIdx   int
	curEnt   Entity
}

// View returns an iterator over the group declared over exactly tags.
func (x *Index) View(tags TagSet) (*View, error) {
	slot, err := x.mapping.Lookup(tags)
	if err != nil {
		x.log.Warn().Stringer("group", tags).Msg("view of a group that was not declared")
		return nil, err
	}
	v := &View{
		x:     x,
		group: x.mapping.Chain(slot.Storage)[slot.Position],
	}
	v.Reset()
	return v, nil
}

// Reset rewinds the view and picks up the current contents of the group. A view
// invalidated by a mutation can be used again after Reset. After Index.Rebuild
// the view follows the group to its new storage, or becomes empty if the new
// mapping no longer declares it.
func (v *View) Reset() {
	v.curIdx = -1
	slot, err := v.x.mapping.LookupID(v.group.ID)
	if err != nil {
		v.s, v.entities = nil, nil
		return
	}
	v.s = v.x.storages[slot.Storage]
	v.version = v.s.version
	v.entities = v.s.view(slot.Position)
}

// Next advances to the next entity and reports whether there was one.
func (v *View) Next() bool {
	if v.s != nil && v.s.version != v.version {
		panic(ErrViewInvalidated)
	}
	v.curIdx++
	if v.curIdx < len(v.entities) {
		v.curEnt = v.entities[v.curIdx]
		return true
	}
	return false
}

// Entity returns the current entity. It is only meaningful after Next returned true.
func (v *View) Entity() Entity {
	return v.curEnt
}

// Len returns the number of entities in the group as of the last Reset.
func (v *View) Len() int {
	return len(v.entities)
}

// Group returns the group the view iterates over.
func (v *View) Group() Group {
	return v.group
}

// Entities copies the entities of the group as of the last Reset.
func (v *View) Entities() []Entity {
	out := make([]Entity, len(v.entities))
	copy(out, v.entities)
	return out
}
