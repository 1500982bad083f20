package stability

import "testing"

import "deepvoxel/internal/building"

// I4 — graph consistency: for every edge (u->v), v is in u.i_support and
// u is in v.supports_me.
func TestGraphConsistency(t *testing.T) {
	g := NewGraph()
	u, v := building.PieceID(1), building.PieceID(2)
	id, ok := g.AddEdge(u, v, Vertical)
	if !ok {
		t.Fatal("AddEdge rejected a valid edge")
	}

	iSupport := g.ISupport(u)
	if len(iSupport) != 1 || iSupport[0] != v {
		t.Fatalf("ISupport(u) = %v, want [%v]", iSupport, v)
	}
	supportsMe := g.SupportsMe(v)
	if len(supportsMe) != 1 || supportsMe[0] != u {
		t.Fatalf("SupportsMe(v) = %v, want [%v]", supportsMe, u)
	}

	g.RemoveEdge(id)
	if len(g.ISupport(u)) != 0 || len(g.SupportsMe(v)) != 0 {
		t.Fatal("edge still referenced after RemoveEdge")
	}
}

func TestGraphRejectsSelfEdge(t *testing.T) {
	g := NewGraph()
	if _, ok := g.AddEdge(5, 5, Horizontal); ok {
		t.Fatal("AddEdge accepted a self-edge")
	}
}

func TestRemovePieceDropsBothDirections(t *testing.T) {
	g := NewGraph()
	a, b, c := building.PieceID(1), building.PieceID(2), building.PieceID(3)
	g.AddEdge(a, b, Vertical)
	g.AddEdge(b, c, Vertical)

	g.RemovePiece(b)

	if len(g.ISupport(a)) != 0 {
		t.Fatal("RemovePiece left a dangling outgoing edge on a's side")
	}
	if len(g.SupportsMe(c)) != 0 {
		t.Fatal("RemovePiece left a dangling incoming edge on c's side")
	}
}
