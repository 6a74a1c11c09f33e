package kumi

import (
	"fmt"
	"reflect"
)

var (
	nextTag   Tag
	typeToTag = make(map[reflect.Type]Tag, 64)
	tagToType = make(map[Tag]reflect.Type, 64)
)

// ResetRegistry clears the global component registry.
// This is useful for tests or applications that need to re-initialize tag assignment.
func ResetRegistry() {
	nextTag = 0
	typeToTag = make(map[reflect.Type]Tag, 64)
	tagToType = make(map[Tag]reflect.Type, 64)
}

// RegisterComponent assigns a Tag to the component type T and returns it.
// If T is already registered, it returns the existing Tag.
func RegisterComponent[T any]() Tag {
	t := reflect.TypeFor[T]()
	if tag, ok := typeToTag[t]; ok {
		return tag
	}
	tag := nextTag
	typeToTag[t] = tag
	tagToType[tag] = t
	nextTag++
	return tag
}

// TagOf returns the Tag of component type T.
// It panics if the component type has not been registered.
func TagOf[T any]() Tag {
	t := reflect.TypeFor[T]()
	tag, ok := typeToTag[t]
	if !ok {
		panic(fmt.Sprintf("component type %s not registered", t))
	}
	return tag
}

// TryTagOf returns the Tag of component type T and whether it was registered.
func TryTagOf[T any]() (Tag, bool) {
	tag, ok := typeToTag[reflect.TypeFor[T]()]
	return tag, ok
}

// TypeOf returns the component type registered under tag, or nil.
func TypeOf(tag Tag) reflect.Type {
	return tagToType[tag]
}
