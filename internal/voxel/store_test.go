package voxel

import (
	"errors"
	"testing"

	"deepvoxel/internal/engine"
)

func TestStoreGetNotLoaded(t *testing.T) {
	s := NewStore()
	_, err := s.Get(0, 0, 0)
	if !errors.Is(err, engine.NotLoaded) {
		t.Fatalf("expected NotLoaded, got %v", err)
	}
}

func TestStoreSetThenGet(t *testing.T) {
	s := NewStore()
	stone := Cell{Density: -10, Material: MaterialStone}
	s.Set(5, 10, 5, stone)
	got, err := s.Get(5, 10, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != stone {
		t.Fatalf("expected %+v, got %+v", stone, got)
	}
}

func TestStoreSetMarksOwningSectionDirty(t *testing.T) {
	s := NewStore()
	s.Set(5, 5, 5, Cell{Density: -1, Material: MaterialStone})
	dirty := s.DrainDirty()
	if len(dirty) != 1 {
		t.Fatalf("expected exactly 1 dirty section, got %d: %v", len(dirty), dirty)
	}
	if dirty[0] != (SectionID{X: 0, Y: 0, Z: 0}) {
		t.Fatalf("unexpected dirty section: %+v", dirty[0])
	}
	if len(s.DrainDirty()) != 0 {
		t.Fatalf("dirty set should be empty after drain")
	}
}

func TestStoreBoundaryWriteDirtiesNeighbor(t *testing.T) {
	s := NewStore()
	// Seed the neighbor section so it's loaded and eligible to be marked dirty.
	s.Set(16, 0, 0, Cell{Density: -1, Material: MaterialStone})
	s.DrainDirty()

	// x=15 is the last local cell of section (0,0,0) — on the boundary
	// shared with section (1,0,0).
	s.Set(15, 0, 0, Cell{Density: -1, Material: MaterialDirt})
	dirty := s.DrainDirty()

	found := map[SectionID]bool{}
	for _, id := range dirty {
		found[id] = true
	}
	if !found[(SectionID{X: 0, Y: 0, Z: 0})] {
		t.Fatalf("expected owning section dirty, got %v", dirty)
	}
	if !found[(SectionID{X: 1, Y: 0, Z: 0})] {
		t.Fatalf("expected boundary neighbor dirty, got %v", dirty)
	}
}

func TestStorePaddedViewIncompleteWithoutNeighbors(t *testing.T) {
	s := NewStore()
	s.Set(0, 0, 0, Cell{Density: -1, Material: MaterialStone})
	_, err := s.PaddedView(SectionID{X: 0, Y: 0, Z: 0})
	if !errors.Is(err, engine.InputIncomplete) {
		t.Fatalf("expected InputIncomplete without neighbor columns loaded, got %v", err)
	}
}

func TestStorePaddedViewCompleteWithNeighbors(t *testing.T) {
	s := NewStore()
	for dx := -1; dx <= 1; dx++ {
		for dz := -1; dz <= 1; dz++ {
			for dy := -1; dy <= 1; dy++ {
				s.Set(dx*SectionSize, dy*SectionSize, dz*SectionSize, Cell{Density: -1, Material: MaterialStone})
			}
		}
	}
	view, err := s.PaddedView(SectionID{X: 0, Y: 0, Z: 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if view[0].Material != MaterialStone && view[0] != Air {
		t.Fatalf("unexpected padded corner cell: %+v", view[0])
	}
}
