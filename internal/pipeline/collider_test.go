package pipeline

import (
	"testing"
	"time"

	"deepvoxel/internal/config"
	"deepvoxel/internal/meshing"
	"deepvoxel/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPublishColliderDebouncesRapidRemesh(t *testing.T) {
	config.SetColliderDebounceMillis(500)
	defer config.SetColliderDebounceMillis(150)

	store := voxel.NewStore()
	gen := voxel.NewGenerator(1)
	p := New(store, gen, 1, 4)
	defer p.Shutdown()

	id := voxel.SectionID{X: 0, Y: 0, Z: 0}
	mesh1 := meshing.Mesh{Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}}
	p.publishCollider(id, mesh1)
	first, _ := p.Collider(id)

	mesh2 := meshing.Mesh{Positions: []mgl32.Vec3{{10, 10, 10}, {11, 10, 10}, {10, 11, 10}}}
	p.publishCollider(id, mesh2)
	second, _ := p.Collider(id)

	if second.swappedAt != first.swappedAt {
		t.Fatalf("a remesh within the debounce window should not swap the collider")
	}
}

func TestPublishColliderEmptyMeshFallsBackToPlaceholder(t *testing.T) {
	store := voxel.NewStore()
	gen := voxel.NewGenerator(1)
	p := New(store, gen, 1, 4)
	defer p.Shutdown()

	id := voxel.SectionID{X: 2, Y: 0, Z: 2}
	p.publishCollider(id, meshing.Mesh{})
	c, ok := p.Collider(id)
	if !ok {
		t.Fatalf("expected a collider even for an empty mesh (I3)")
	}
	if c.Kind != ColliderPlaceholder {
		t.Fatalf("expected placeholder collider for empty mesh, got %v", c.Kind)
	}
	_ = time.Now()
}
