package pipeline

import (
	"testing"
	"time"

	"deepvoxel/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

func TestPipelineGenerateThenMeshThenCollider(t *testing.T) {
	store := voxel.NewStore()
	gen := voxel.NewGenerator(99)
	p := New(store, gen, 4, 64)
	defer p.Shutdown()

	id := voxel.SectionID{X: 0, Y: 0, Z: 0}
	p.EnqueueGenerate(id)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		p.Tick(mgl32.Vec3{}, nil)
		if _, ok := p.Mesh(id); ok {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, ok := p.Mesh(id); !ok {
		t.Fatalf("expected a mesh to be published for %+v within the deadline", id)
	}
	c, ok := p.Collider(id)
	if !ok {
		t.Fatalf("expected a collider to exist for %+v (invariant I3)", id)
	}
	_ = c
}

func TestPipelineAlwaysHasAColliderOnceLoaded(t *testing.T) {
	store := voxel.NewStore()
	gen := voxel.NewGenerator(1)
	p := New(store, gen, 2, 16)
	defer p.Shutdown()

	id := voxel.SectionID{X: 5, Y: 0, Z: 5}
	p.EnqueueGenerate(id)

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		p.Tick(mgl32.Vec3{}, nil)
		p.mu.Lock()
		_, loaded := p.loaded[id]
		p.mu.Unlock()
		if loaded {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if _, ok := p.Collider(id); !ok {
		t.Fatalf("a loaded section must have a collider immediately (I3), even before its first mesh lands")
	}
}
