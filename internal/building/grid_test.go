package building

import "testing"

func TestGridOccupyAndIsFree(t *testing.T) {
	g := NewGrid()
	cells := []GridCell{{0, 0, 0}, {1, 0, 0}}
	if !g.IsFree(cells) {
		t.Fatalf("fresh grid should be free everywhere")
	}
	g.Occupy(1, cells)
	if g.IsFree(cells) {
		t.Fatalf("occupied cells should not report free")
	}
	if occ, ok := g.Occupant(GridCell{0, 0, 0}); !ok || occ != 1 {
		t.Fatalf("expected occupant 1, got %v %v", occ, ok)
	}
	g.Vacate(cells)
	if !g.IsFree(cells) {
		t.Fatalf("vacated cells should be free again")
	}
}

func TestArenaAllocReuseAfterFree(t *testing.T) {
	a := NewArena()
	id1 := a.Alloc()
	id2 := a.Alloc()
	if id1 == id2 {
		t.Fatalf("distinct allocations should get distinct ids")
	}
	a.Free(id1)
	id3 := a.Alloc()
	if id3 != id1 {
		t.Fatalf("expected freed slot %d to be recycled, got %d", id1, id3)
	}
	if a.Get(id1) == nil {
		t.Fatalf("recycled id should be live")
	}
}
