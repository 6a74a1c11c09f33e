package kumi

import (
	"slices"

	"github.com/rotisserie/eris"
)

// GroupGraph is the strict-inclusion order over a set of declared groups. Node i
// has an edge to node j whenever the tags of i are a strict subset of the tags of
// j, so every path in the graph is a candidate chain of nested storages.
//
// Only declared groups are nodes; intermediate subsets are never materialized.
type GroupGraph struct {
	groups []Group
	succ   [][]int
	edges  int
}

// NewGroupGraph orders the groups by size (ties broken by their ascending tag
// lists) and records every strict inclusion between them.
//
// It returns ErrDuplicateGroup if two groups hold the same tags, and
// ErrGroupIDCollision if two different sets share an identifier.
func NewGroupGraph(groups []Group) (*GroupGraph, error) {
	nodes := make([]Group, len(groups))
	for i, g := range groups {
		// normalize: callers may build Group literals by hand
		nodes[i] = GroupOf(g.Tags)
	}
	slices.SortStableFunc(nodes, func(a, b Group) int {
		switch {
		case lessTags(a.Tags, b.Tags):
			return -1
		case lessTags(b.Tags, a.Tags):
			return 1
		}
		return 0
	})

	if err := checkUnique(nodes); err != nil {
		return nil, err
	}

	gg := &GroupGraph{
		groups: nodes,
		succ:   make([][]int, len(nodes)),
	}
	// sorted by size, so a strict superset of i can only sit after i
	for i := range nodes {
		for j := i + 1; j < len(nodes); j++ {
			if nodes[j].Tags.StrictlyContains(nodes[i].Tags) {
				gg.succ[i] = append(gg.succ[i], j)
				gg.edges++
			}
		}
	}
	return gg, nil
}

// checkUnique rejects two groups over the same tags, and two different tag sets
// sharing an identifier.
func checkUnique(groups []Group) error {
	seen := make(map[GroupID]TagSet, len(groups))
	for _, g := range groups {
		prev, ok := seen[g.ID]
		if !ok {
			seen[g.ID] = g.Tags
			continue
		}
		if prev.Equal(g.Tags) {
			return eris.Wrapf(ErrDuplicateGroup, "group %s declared more than once", g.Tags)
		}
		return eris.Wrapf(ErrGroupIDCollision, "groups %s and %s", prev, g.Tags)
	}
	return nil
}

// Len returns the number of groups in the graph.
func (gg *GroupGraph) Len() int {
	return len(gg.groups)
}

// Group returns node i.
func (gg *GroupGraph) Group(i int) Group {
	return gg.groups[i]
}

// Successors returns the nodes whose tag sets strictly contain node i's.
// The returned slice must not be modified.
func (gg *GroupGraph) Successors(i int) []int {
	return gg.succ[i]
}

// Edges returns the number of inclusion edges.
func (gg *GroupGraph) Edges() int {
	return gg.edges
}
