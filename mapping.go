package kumi

import (
	"github.com/rotisserie/eris"
)

// Slot locates a group: the storage holding its chain and the group's position
// in that chain. Position 0 is the chain's smallest tag set.
type Slot struct {
	Storage  int
	Position int
}

// Mapping assigns every declared group to a slot in a minimum number of chains.
// A chain is a sequence of groups g1 ⊊ g2 ⊊ … ⊊ gk and maps one to one to a
// physical storage in the Index.
//
// A Mapping is immutable once built. Changing the declared groups means building
// a new Mapping and handing it to Index.Rebuild.
type Mapping struct {
	chains    [][]Group
	slots     map[GroupID]Slot
	tagChains map[Tag][]int // storages with at least one group mentioning the tag
	groups    int
	edges     int
}

// BuildMapping computes a minimum chain partition of the groups under strict
// inclusion. It builds the bipartite graph with one left and one right copy of
// every group, an edge u→v whenever u ⊊ v, and runs Hopcroft-Karp on it. Every
// matched edge puts v right after u in a chain, so the number of chains is the
// number of groups minus the matching size, which equals the size of the
// largest antichain.
//
// Which maximum matching is found is arbitrary; only the number of chains is fixed.
//
// Parameters:
//   - groups: the declared groups. Zero groups yields an empty mapping.
//
// Returns:
//   - The mapping, or ErrDuplicateGroup / ErrGroupIDCollision.
func BuildMapping(groups ...Group) (*Mapping, error) {
	gg, err := NewGroupGraph(groups)
	if err != nil {
		return nil, err
	}
	n := gg.Len()
	adj := make([][]int, n)
	for i := range adj {
		adj[i] = gg.Successors(i)
	}
	next, prev, _ := maximumMatching(n, adj)

	m := &Mapping{
		slots:     make(map[GroupID]Slot, n),
		tagChains: make(map[Tag][]int),
		groups:    n,
		edges:     gg.Edges(),
	}
	// nodes are in size order, so chain heads come out smallest first
	for head := 0; head < n; head++ {
		if prev[head] != unmatched {
			continue
		}
		storage := len(m.chains)
		var chain []Group
		for u := head; u != unmatched; u = next[u] {
			g := gg.Group(u)
			m.slots[g.ID] = Slot{Storage: storage, Position: len(chain)}
			chain = append(chain, g)
		}
		m.chains = append(m.chains, chain)
		m.indexChain(storage, chain)
	}
	if len(m.slots) != n {
		return nil, eris.Errorf("mapped %d of %d groups", len(m.slots), n)
	}
	return m, nil
}

func (m *Mapping) indexChain(storage int, chain []Group) {
	seen := make(map[Tag]struct{})
	for _, g := range chain {
		for _, t := range g.Tags.Tags() {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			m.tagChains[t] = append(m.tagChains[t], storage)
		}
	}
}

// Lookup returns the slot of the group declared over exactly tags.
func (m *Mapping) Lookup(tags TagSet) (Slot, error) {
	slot, ok := m.slots[tags.ID()]
	if !ok || !m.chains[slot.Storage][slot.Position].Tags.Equal(tags) {
		return Slot{}, eris.Wrapf(ErrUnknownGroup, "group %s", tags)
	}
	return slot, nil
}

// LookupID returns the slot of a declared group by identifier.
func (m *Mapping) LookupID(id GroupID) (Slot, error) {
	slot, ok := m.slots[id]
	if !ok {
		return Slot{}, eris.Wrapf(ErrUnknownGroup, "group id %d", id)
	}
	return slot, nil
}

// Chains returns every chain, smallest group first. The result must not be modified.
func (m *Mapping) Chains() [][]Group {
	return m.chains
}

// Chain returns the chain held by storage i.
func (m *Mapping) Chain(i int) []Group {
	return m.chains[i]
}

// Len returns the number of chains, i.e. the number of storages an Index needs.
func (m *Mapping) Len() int {
	return len(m.chains)
}

// Groups returns the number of declared groups.
func (m *Mapping) Groups() int {
	return m.groups
}

// Edges returns the number of strict inclusions between declared groups.
func (m *Mapping) Edges() int {
	return m.edges
}

func (m *Mapping) chainsWithTag(tag Tag) []int {
	return m.tagChains[tag]
}
