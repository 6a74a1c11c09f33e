package kumi

import "math"

const (
	unmatched = -1
	unreached = math.MaxInt
)

// bipartiteMatching is a Hopcroft-Karp maximum matching between a left and a
// right copy of the same n vertices. adj[u] lists the right vertices reachable
// from left vertex u.
type bipartiteMatching struct {
	adj   [][]int
	left  []int // left[u] = right partner of u, or unmatched
	right []int // right[v] = left partner of v, or unmatched
	dist  []int
	queue []int
	size  int
}

// maximumMatching runs Hopcroft-Karp and returns the left and right partner
// arrays together with the matching size. It runs in O(E·√V).
func maximumMatching(n int, adj [][]int) (left, right []int, size int) {
	m := &bipartiteMatching{
		adj:   adj,
		left:  make([]int, n),
		right: make([]int, n),
		dist:  make([]int, n),
		queue: make([]int, 0, n),
	}
	for i := 0; i < n; i++ {
		m.left[i] = unmatched
		m.right[i] = unmatched
	}
	for m.layer() {
		for u := 0; u < n; u++ {
			if m.left[u] == unmatched && m.augment(u) {
				m.size++
			}
		}
	}
	return m.left, m.right, m.size
}

// layer is the BFS phase: it computes distances from the free left vertices
// along alternating paths and reports whether a free right vertex is reachable.
func (m *bipartiteMatching) layer() bool {
	m.queue = m.queue[:0]
	for u := range m.left {
		if m.left[u] == unmatched {
			m.dist[u] = 0
			m.queue = append(m.queue, u)
		} else {
			m.dist[u] = unreached
		}
	}
	found := false
	for head := 0; head < len(m.queue); head++ {
		u := m.queue[head]
		for _, v := range m.adj[u] {
			w := m.right[v]
			if w == unmatched {
				found = true
				continue
			}
			if m.dist[w] == unreached {
				m.dist[w] = m.dist[u] + 1
				m.queue = append(m.queue, w)
			}
		}
	}
	return found
}

// augment is the DFS phase: it follows the BFS layers from u looking for a free
// right vertex and flips the matching along the path it finds.
func (m *bipartiteMatching) augment(u int) bool {
	for _, v := range m.adj[u] {
		w := m.right[v]
		if w == unmatched || (m.dist[w] == m.dist[u]+1 && m.augment(w)) {
			m.left[u] = v
			m.right[v] = u
			return true
		}
	}
	// dead end for this phase
	m.dist[u] = unreached
	return false
}
