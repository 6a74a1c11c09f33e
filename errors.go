package kumi

import (
	"github.com/rotisserie/eris"
)

var (
	// ErrDuplicateGroup is returned when two declared groups normalize to the same tag set.
	ErrDuplicateGroup = eris.New("duplicate group declaration")
	// ErrGroupIDCollision is returned when two different tag sets hash to the same GroupID.
	ErrGroupIDCollision = eris.New("group identifier collision")
	// ErrUnknownGroup is returned when a lookup or query names a tag set that was never declared.
	ErrUnknownGroup = eris.New("unknown group")

	// ErrEntityNotRegistered is returned when an index is handed an unknown or stale entity.
	ErrEntityNotRegistered = eris.New("entity is not registered")
	// ErrEntityAlreadyRegistered is returned when an entity ID is registered while still live.
	ErrEntityAlreadyRegistered = eris.New("entity is already registered")
	// ErrInvalidEntity is returned by World for handles of removed or recycled entities.
	ErrInvalidEntity = eris.New("entity is not alive in this world")

	// ErrViewInvalidated is the panic payload of a View whose storage changed during iteration.
	ErrViewInvalidated = eris.New("view invalidated by a mutation of its storage")
	// ErrCorruptedStorage is the panic payload of a failed internal invariant check.
	ErrCorruptedStorage = eris.New("group storage invariant violated")
)
