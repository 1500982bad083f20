// Package collapse implements the Collapse Engine: cluster detection over
// the unstable set, precomputed collapse trajectories, and the
// static->dynamic conversion pipeline under a frame budget (spec.md §4.G).
package collapse

import "deepvoxel/internal/building"

// unionFind is a standard disjoint-set structure over building.PieceID,
// path-compressed and union-by-rank — spec.md §4.G prescribes union-find
// directly ("group pieces into clusters via union-find").
type unionFind struct {
	parent map[building.PieceID]building.PieceID
	rank   map[building.PieceID]int
}

func newUnionFind(ids []building.PieceID) *unionFind {
	uf := &unionFind{
		parent: make(map[building.PieceID]building.PieceID, len(ids)),
		rank:   make(map[building.PieceID]int, len(ids)),
	}
	for _, id := range ids {
		uf.parent[id] = id
	}
	return uf
}

func (uf *unionFind) find(id building.PieceID) building.PieceID {
	root := id
	for uf.parent[root] != root {
		root = uf.parent[root]
	}
	for uf.parent[id] != root {
		id, uf.parent[id] = uf.parent[id], root
	}
	return root
}

func (uf *unionFind) union(a, b building.PieceID) {
	ra, rb := uf.find(a), uf.find(b)
	if ra == rb {
		return
	}
	if uf.rank[ra] < uf.rank[rb] {
		ra, rb = rb, ra
	}
	uf.parent[rb] = ra
	if uf.rank[ra] == uf.rank[rb] {
		uf.rank[ra]++
	}
}

// EdgeLookup reports whether a support-graph edge exists between two
// pieces in either direction, restricted to the unstable subgraph per
// spec.md §4.G ("union-find over support-graph edges restricted to
// unstable endpoints"). Implemented as an interface rather than a direct
// *stability.Graph dependency so collapse tests don't need the stability
// package's Engine wiring, just its edge shape.
type EdgeLookup interface {
	ISupport(id building.PieceID) []building.PieceID
	SupportsMe(id building.PieceID) []building.PieceID
}

// DetectClusters groups the unstable set into connected components under
// the support graph restricted to unstable endpoints. Each cluster is
// processed by the engine as a single unit.
func DetectClusters(unstable []building.PieceID, graph EdgeLookup) [][]building.PieceID {
	if len(unstable) == 0 {
		return nil
	}
	isUnstable := make(map[building.PieceID]bool, len(unstable))
	for _, id := range unstable {
		isUnstable[id] = true
	}

	uf := newUnionFind(unstable)
	for _, id := range unstable {
		for _, other := range graph.ISupport(id) {
			if isUnstable[other] {
				uf.union(id, other)
			}
		}
		for _, other := range graph.SupportsMe(id) {
			if isUnstable[other] {
				uf.union(id, other)
			}
		}
	}

	groups := make(map[building.PieceID][]building.PieceID)
	for _, id := range unstable {
		root := uf.find(id)
		groups[root] = append(groups[root], id)
	}
	out := make([][]building.PieceID, 0, len(groups))
	for _, members := range groups {
		out = append(out, members)
	}
	return out
}
