package kumi

import "reflect"

// MaxEventTypes defines the maximum number of unique event types that can be
// registered in the EventBus.
const MaxEventTypes = 256

// GroupEntered is published when an entity starts satisfying a declared group.
type GroupEntered struct {
	Entity Entity
	Group  Group
}

// GroupExited is published when an entity stops satisfying a declared group,
// including when it is unregistered.
type GroupExited struct {
	Entity Entity
	Group  Group
}

// EventBus is a synchronous, type-indexed publish/subscribe hub. An Index given
// a bus through WithEventBus publishes GroupEntered and GroupExited on it;
// applications may publish their own event types on the same bus.
//
// Handlers run inside the mutation that triggered them and must not mutate the
// publishing Index.
type EventBus struct {
	eventTypeMap    map[reflect.Type]uint8
	handlers        [MaxEventTypes][]any
	nextEventTypeID uint16
}

// Subscribe registers handler for events of type T. Handlers are called in the
// order they were subscribed.
func Subscribe[T any](bus *EventBus, handler func(T)) {
	id := bus.getEventTypeID(reflect.TypeFor[T]())
	if cap(bus.handlers[id]) == 0 {
		bus.handlers[id] = make([]any, 0, 4)
	}
	bus.handlers[id] = append(bus.handlers[id], handler)
}

// Publish sends event to every handler subscribed to T.
func Publish[T any](bus *EventBus, event T) {
	if id, ok := bus.eventTypeMap[reflect.TypeFor[T]()]; ok {
		for _, h := range bus.handlers[id] {
			h.(func(T))(event)
		}
	}
}

// HasSubscribers reports whether any handler listens for T.
func HasSubscribers[T any](bus *EventBus) bool {
	id, ok := bus.eventTypeMap[reflect.TypeFor[T]()]
	return ok && len(bus.handlers[id]) > 0
}

func (bus *EventBus) getEventTypeID(t reflect.Type) uint8 {
	if bus.eventTypeMap == nil {
		bus.eventTypeMap = make(map[reflect.Type]uint8)
	}
	if id, ok := bus.eventTypeMap[t]; ok {
		return id
	}
	if bus.nextEventTypeID >= MaxEventTypes {
		panic("kumi: too many event types")
	}
	id := uint8(bus.nextEventTypeID)
	bus.nextEventTypeID++
	bus.eventTypeMap[t] = id
	return id
}
