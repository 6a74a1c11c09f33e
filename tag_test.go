package kumi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -run ^TestTagSet$ . -count 1
func TestTagSet(t *testing.T) {
	s := NewTagSet(3, 1, 3, 200)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []Tag{1, 3, 200}, s.Tags())
	assert.True(t, s.Has(200))
	assert.False(t, s.Has(2))
	assert.Equal(t, "{1,3,200}", s.String())

	t.Run("ZeroValue", func(t *testing.T) {
		var empty TagSet
		assert.Equal(t, 0, empty.Len())
		assert.Nil(t, empty.Tags())
		assert.False(t, empty.Has(0))
		assert.True(t, empty.Equal(NewTagSet()))
		assert.True(t, s.Contains(empty))
		assert.False(t, empty.Contains(s))
		assert.Equal(t, NewTagSet().ID(), empty.ID())
	})

	t.Run("WithWithoutCopy", func(t *testing.T) {
		grown := s.With(7)
		assert.True(t, grown.Has(7))
		assert.False(t, s.Has(7), "With must not modify the receiver")

		shrunk := grown.Without(1)
		assert.False(t, shrunk.Has(1))
		assert.True(t, grown.Has(1), "Without must not modify the receiver")

		assert.True(t, s.With(3).Equal(s))
		assert.True(t, s.Without(9).Equal(s))
	})
}

// go test -run ^TestTagSetInclusion$ . -count 1
func TestTagSetInclusion(t *testing.T) {
	small := NewTagSet(1)
	big := NewTagSet(1, 500)
	other := NewTagSet(2)

	assert.True(t, big.Contains(small))
	assert.True(t, big.StrictlyContains(small))
	assert.False(t, small.Contains(big))
	assert.True(t, small.Contains(small))
	assert.False(t, small.StrictlyContains(small))
	assert.False(t, big.Contains(other))

	// bitsets of different lengths holding the same tags are equal
	wide := NewTagSet(1, 500).Without(500)
	assert.True(t, wide.Equal(small))
	assert.True(t, small.Equal(wide))
}

// go test -run ^TestGroupID$ . -count 1
func TestGroupID(t *testing.T) {
	a := NewGroup(4, 2, 9)
	b := NewGroup(9, 4, 2, 4)
	c := NewGroup(2, 4)
	assert.Equal(t, a.ID, b.ID)
	assert.NotEqual(t, a.ID, c.ID)
	assert.Equal(t, GroupOf(NewTagSet(2, 4)).ID, c.ID)
	assert.Equal(t, "{2,4,9}", a.String())
}

// go test -run ^TestComponentRegistry$ . -count 1
func TestComponentRegistry(t *testing.T) {
	ResetRegistry()
	t.Cleanup(ResetRegistry)

	type position struct{ X, Y float32 }
	type velocity struct{ X, Y float32 }

	p := RegisterComponent[position]()
	v := RegisterComponent[velocity]()
	require.NotEqual(t, p, v)
	assert.Equal(t, p, RegisterComponent[position]())
	assert.Equal(t, v, TagOf[velocity]())

	_, ok := TryTagOf[struct{ Z int }]()
	assert.False(t, ok)
	assert.Panics(t, func() { TagOf[struct{ Z int }]() })
	assert.Equal(t, "position", TypeOf(p).Name())
}

// go test -run ^TestTagSetSparseTags$ . -count 1
func TestTagSetSparseTags(t *testing.T) {
	huge := Tag(1 << 31)
	s := NewTagSet(huge).With(3)
	assert.Equal(t, []Tag{3, huge}, s.Tags())
	assert.True(t, s.Has(huge))
	assert.False(t, s.Has(huge-1))

	// one bit per distinct tag in use, not per tag value
	tagBits.RLock()
	inUse := uint(len(tagBits.tags))
	tagBits.RUnlock()
	assert.LessOrEqual(t, s.bits.Len(), inUse)

	shrunk := s.Without(huge)
	assert.Equal(t, []Tag{3}, shrunk.Tags())
	assert.True(t, shrunk.Equal(NewTagSet(3)))
	assert.Equal(t, NewTagSet(huge, 3).ID(), s.ID())
	assert.Equal(t, "{3,2147483648}", NewTagSet(3, huge).String())
	assert.True(t, s.Contains(NewTagSet(huge)))
	assert.False(t, NewTagSet(3).Contains(NewTagSet(huge)))
}

// go test -run ^TestIndexWithHashedTags$ . -count 1
func TestIndexWithHashedTags(t *testing.T) {
	pos := Tag(0x9e3779b9)
	vel := Tag(0xdeadbeef)
	m, err := BuildMapping(NewGroup(pos), NewGroup(pos, vel))
	require.NoError(t, err)
	x := NewIndex(m, WithInvariantChecks())
	e := Entity{ID: 0, Version: 1}
	require.NoError(t, x.Register(e))
	require.NoError(t, x.OnTagAdded(e, NewTagSet(pos), pos))
	require.NoError(t, x.OnTagAdded(e, NewTagSet(pos, vel), vel))

	got, err := x.Query(NewTagSet(vel, pos))
	require.NoError(t, err)
	assert.Equal(t, []Entity{e}, got)
	for _, s := range x.storages {
		for _, g := range s.groups {
			assert.LessOrEqual(t, g.Tags.bits.Len(), uint(64), "group %s", g)
		}
	}
}
