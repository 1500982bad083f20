package persistence

import (
	"bytes"
	"testing"

	"deepvoxel/internal/building"
	"deepvoxel/internal/registry"
	"deepvoxel/internal/stability"
	"deepvoxel/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

func TestColumnRoundTrip(t *testing.T) {
	store := voxel.NewStore()
	id := voxel.ColumnID{X: 2, Z: -3}

	for wy := 0; wy < voxel.ColumnHeight; wy++ {
		mat := uint8(0)
		density := int16(32767)
		if wy < 10 {
			mat = 3
			density = -100
		}
		store.Set(id.X*voxel.SectionSize+4, wy, id.Z*voxel.SectionSize+7, voxel.Cell{Density: density, Material: mat})
	}

	encoded, err := EncodeColumn(store, id)
	if err != nil {
		t.Fatalf("EncodeColumn: %v", err)
	}

	restored := voxel.NewStore()
	if err := DecodeColumn(restored, id, encoded); err != nil {
		t.Fatalf("DecodeColumn: %v", err)
	}

	for wy := 0; wy < voxel.ColumnHeight; wy++ {
		want, err := store.Get(id.X*voxel.SectionSize+4, wy, id.Z*voxel.SectionSize+7)
		if err != nil {
			t.Fatalf("Get original: %v", err)
		}
		got, err := restored.Get(id.X*voxel.SectionSize+4, wy, id.Z*voxel.SectionSize+7)
		if err != nil {
			t.Fatalf("Get restored: %v", err)
		}
		if got != want {
			t.Fatalf("y=%d: got %+v want %+v", wy, got, want)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	registry.ClearMaterials()
	registry.InitDefaultMaterials()
	t.Cleanup(registry.ClearMaterials)

	store := voxel.NewStore()
	colID := voxel.ColumnID{X: 0, Z: 0}
	store.Set(0, 0, 0, voxel.Cell{Density: -500, Material: 3})

	arena := building.NewArena()
	graph := stability.NewGraph()

	foundation := arena.Alloc()
	*arena.Get(foundation) = building.Piece{ID: foundation, Material: 3, Position: mgl32.Vec3{0, 0, 0}, Stability: 100, Static: true}
	wall := arena.Alloc()
	*arena.Get(wall) = building.Piece{ID: wall, Material: 1, Position: mgl32.Vec3{0, 2, 0}, Stability: 50, Static: true}
	graph.AddEdge(foundation, wall, stability.EdgeKindFor(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 2, 0}))
	graph.MarkGrounded(foundation)

	worldID := uuid.New()
	var buf bytes.Buffer
	if err := Save(&buf, store, arena, graph, []voxel.ColumnID{colID}, worldID, 42); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loadedStore := voxel.NewStore()
	loadedArena := building.NewArena()
	loadedGraph := stability.NewGraph()
	gotID, gotSeed, err := Load(&buf, loadedStore, loadedArena, loadedGraph)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if gotID != worldID {
		t.Fatalf("world id mismatch: got %v want %v", gotID, worldID)
	}
	if gotSeed != 42 {
		t.Fatalf("seed mismatch: got %d want 42", gotSeed)
	}

	cell, err := loadedStore.Get(0, 0, 0)
	if err != nil {
		t.Fatalf("loaded store Get: %v", err)
	}
	if cell.Density != -500 || cell.Material != 3 {
		t.Fatalf("cell mismatch: %+v", cell)
	}

	p := loadedArena.Get(wall)
	if p == nil {
		t.Fatalf("wall piece missing after load")
	}
	if p.Material != 1 || p.Stability != 50 {
		t.Fatalf("wall piece mismatch: %+v", p)
	}

	if got := loadedGraph.ISupport(foundation); len(got) != 1 || got[0] != wall {
		t.Fatalf("support edge not restored: %v", got)
	}
}
