package kumi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -run ^TestView$ . -count 1
func TestView(t *testing.T) {
	h := newHarness(t, scenarioGroups())
	for i := uint32(0); i < 6; i++ {
		e := Entity{ID: i, Version: 1}
		h.register(e)
		if i%2 == 0 {
			h.add(e, tagB)
		}
	}

	view, err := h.x.View(NewTagSet(tagB))
	require.NoError(t, err)
	assert.Equal(t, NewGroup(tagB).ID, view.Group().ID)
	assert.Equal(t, 3, view.Len())

	var got []Entity
	for view.Next() {
		got = append(got, view.Entity())
	}
	assert.ElementsMatch(t, []Entity{{ID: 0, Version: 1}, {ID: 2, Version: 1}, {ID: 4, Version: 1}}, got)
	assert.False(t, view.Next(), "an exhausted view stays exhausted")

	view.Reset()
	assert.ElementsMatch(t, got, view.Entities())

	_, err = h.x.View(NewTagSet(9))
	assert.Error(t, err)
}

// go test -run ^TestViewInvalidated$ . -count 1
func TestViewInvalidated(t *testing.T) {
	h := newHarness(t, scenarioGroups())
	for i := uint32(0); i < 4; i++ {
		e := Entity{ID: i, Version: 1}
		h.register(e)
		h.add(e, tagA)
	}

	view, err := h.x.View(NewTagSet(tagA))
	require.NoError(t, err)
	require.True(t, view.Next())

	// removing the current entity from the group shifts the prefix under the view
	h.remove(view.Entity(), tagA)
	assert.PanicsWithValue(t, ErrViewInvalidated, func() { view.Next() })

	view.Reset()
	assert.Equal(t, 3, view.Len())
	n := 0
	for view.Next() {
		n++
	}
	assert.Equal(t, 3, n)
}

// go test -run ^TestViewUnrelatedMutation$ . -count 1
func TestViewUnrelatedMutation(t *testing.T) {
	h := newHarness(t, []Group{NewGroup(tagA), NewGroup(tagC)})
	e := Entity{ID: 0, Version: 1}
	h.register(e)
	h.add(e, tagA)

	view, err := h.x.View(NewTagSet(tagA))
	require.NoError(t, err)
	// tagC lives in a different storage
	h.add(e, tagC)
	assert.NotPanics(t, func() {
		for view.Next() {
		}
	})
}

// go test -run ^TestViewAfterRebuild$ . -count 1
func TestViewAfterRebuild(t *testing.T) {
	h := newHarness(t, scenarioGroups())
	e := Entity{ID: 0, Version: 1}
	h.register(e)
	h.add(e, tagA)
	h.add(e, tagB)

	kept, err := h.x.View(NewTagSet(tagA, tagB))
	require.NoError(t, err)
	dropped, err := h.x.View(NewTagSet(tagC))
	require.NoError(t, err)

	m, err := BuildMapping(NewGroup(tagA, tagB))
	require.NoError(t, err)
	h.x.Rebuild(m, func(Entity) TagSet { return h.tags[e] })

	assert.PanicsWithValue(t, ErrViewInvalidated, func() { kept.Next() })
	kept.Reset()
	require.True(t, kept.Next())
	assert.Equal(t, e, kept.Entity())

	dropped.Reset()
	assert.Equal(t, 0, dropped.Len())
	assert.False(t, dropped.Next())
}
