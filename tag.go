package kumi

import (
	"encoding/binary"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/bits-and-blooms/bitset"
	"github.com/cespare/xxhash/v2"
)

// Tag identifies a component type. Tags are opaque to the index; they only need
// to be stable for the lifetime of the process.
type Tag uint32

// GroupID is the stable identifier of a normalized tag set.
type GroupID uint64

// tagBits assigns every tag seen by the process a dense bit position, so a set
// costs one bit per distinct tag in use rather than one bit per tag value.
// Positions are never reclaimed.
var tagBits = struct {
	sync.RWMutex
	pos  map[Tag]uint
	tags []Tag // bit position -> tag
}{pos: make(map[Tag]uint, 64)}

// bitOf returns the position of tag, assigning the next free one if needed.
func bitOf(tag Tag) uint {
	tagBits.RLock()
	b, ok := tagBits.pos[tag]
	tagBits.RUnlock()
	if ok {
		return b
	}
	tagBits.Lock()
	defer tagBits.Unlock()
	if b, ok = tagBits.pos[tag]; ok {
		return b
	}
	b = uint(len(tagBits.tags))
	tagBits.pos[tag] = b
	tagBits.tags = append(tagBits.tags, tag)
	return b
}

// lookupBit returns the position of tag without assigning one.
func lookupBit(tag Tag) (uint, bool) {
	tagBits.RLock()
	defer tagBits.RUnlock()
	b, ok := tagBits.pos[tag]
	return b, ok
}

// TagSet is an unordered, deduplicated set of tags. A TagSet is immutable: With
// and Without return modified copies, so a set can be shared freely between an
// entity record, a Group and a caller. Tags are opaque: any uint32, including a
// hash of a type name, costs the same.
//
// The zero value is the empty set.
type TagSet struct {
	bits *bitset.BitSet
}

// NewTagSet builds a set from the given tags. Repeated tags are collapsed.
func NewTagSet(tags ...Tag) TagSet {
	b := bitset.New(0)
	for _, t := range tags {
		b.Set(bitOf(t))
	}
	return TagSet{bits: b}
}

// Has reports whether tag is in the set.
func (s TagSet) Has(tag Tag) bool {
	if s.bits == nil {
		return false
	}
	b, ok := lookupBit(tag)
	return ok && s.bits.Test(b)
}

// Len returns the number of tags in the set.
func (s TagSet) Len() int {
	if s.bits == nil {
		return 0
	}
	return int(s.bits.Count())
}

// Tags returns the tags in ascending order.
func (s TagSet) Tags() []Tag {
	if s.bits == nil {
		return nil
	}
	out := make([]Tag, 0, s.bits.Count())
	tagBits.RLock()
	for i, ok := s.bits.NextSet(0); ok; i, ok = s.bits.NextSet(i + 1) {
		out = append(out, tagBits.tags[i])
	}
	tagBits.RUnlock()
	slices.Sort(out)
	return out
}

// With returns a copy of the set that also holds tag.
func (s TagSet) With(tag Tag) TagSet {
	if s.Has(tag) {
		return s
	}
	b := s.clone()
	b.Set(bitOf(tag))
	return TagSet{bits: b}
}

// Without returns a copy of the set that does not hold tag.
func (s TagSet) Without(tag Tag) TagSet {
	if !s.Has(tag) {
		return s
	}
	pos, _ := lookupBit(tag)
	b := s.clone()
	b.Clear(pos)
	return TagSet{bits: b}
}

// Contains reports whether every tag of sub is also in s (s ⊇ sub). This is the
// membership test of an entity holding s against a group declared as sub.
func (s TagSet) Contains(sub TagSet) bool {
	if sub.Len() == 0 {
		return true
	}
	if s.bits == nil {
		return false
	}
	return s.bits.IsSuperSet(sub.bits)
}

// StrictlyContains reports whether s ⊋ sub.
func (s TagSet) StrictlyContains(sub TagSet) bool {
	return s.Len() > sub.Len() && s.Contains(sub)
}

// Equal reports whether both sets hold the same tags. Bitset lengths are ignored.
func (s TagSet) Equal(other TagSet) bool {
	return s.Len() == other.Len() && s.Contains(other)
}

// ID hashes the ascending tag list, so sets with the same tags get the same ID
// whatever order they were declared in.
func (s TagSet) ID() GroupID {
	d := xxhash.New()
	var buf [4]byte
	for _, t := range s.Tags() {
		binary.LittleEndian.PutUint32(buf[:], uint32(t))
		_, _ = d.Write(buf[:])
	}
	return GroupID(d.Sum64())
}

func (s TagSet) String() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, t := range s.Tags() {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(t), 10))
	}
	sb.WriteByte('}')
	return sb.String()
}

func (s TagSet) clone() *bitset.BitSet {
	if s.bits == nil {
		return bitset.New(0)
	}
	return s.bits.Clone()
}

// lessTags orders sets by size, then by their ascending tag lists.
func lessTags(a, b TagSet) bool {
	if a.Len() != b.Len() {
		return a.Len() < b.Len()
	}
	at, bt := a.Tags(), b.Tags()
	for i := range at {
		if at[i] != bt[i] {
			return at[i] < bt[i]
		}
	}
	return false
}

// Group is a declared tag combination the application wants contiguous access to.
type Group struct {
	Tags TagSet
	ID   GroupID
}

// NewGroup declares a group over the given tags.
func NewGroup(tags ...Tag) Group {
	s := NewTagSet(tags...)
	return Group{Tags: s, ID: s.ID()}
}

// GroupOf declares a group over an existing tag set.
func GroupOf(tags TagSet) Group {
	return Group{Tags: tags, ID: tags.ID()}
}

func (g Group) String() string {
	return g.Tags.String()
}
