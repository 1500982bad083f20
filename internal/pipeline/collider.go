package pipeline

import (
	"time"

	"deepvoxel/internal/config"
	"deepvoxel/internal/meshing"
	"deepvoxel/internal/physics"
	"deepvoxel/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// ColliderKind distinguishes the cheap placeholder box from the real
// trimesh built from a section's Surface Nets output.
type ColliderKind int

const (
	ColliderPlaceholder ColliderKind = iota
	ColliderTrimesh
)

// Collider is a section's physics representation. Exactly one Collider
// exists per loaded section at any time (invariant I3: no gap between
// load and first trimesh where a player could fall through) — a fresh
// section gets a placeholder cuboid immediately, swapped atomically for a
// trimesh once the first mesh publishes.
type Collider struct {
	Kind      ColliderKind
	Bounds    physics.AABB
	Positions []mgl32.Vec3
	Indices   []uint32
	swappedAt time.Time
}

// placeholderCollider returns a section-sized cuboid collider: the
// section's full 16^3 AABB in world space.
func placeholderCollider(id voxel.SectionID) *Collider {
	min := mgl32.Vec3{float32(id.X * voxel.SectionSize), float32(id.Y * voxel.SectionSize), float32(id.Z * voxel.SectionSize)}
	max := mgl32.Vec3{float32((id.X + 1) * voxel.SectionSize), float32((id.Y + 1) * voxel.SectionSize), float32((id.Z + 1) * voxel.SectionSize)}
	return &Collider{Kind: ColliderPlaceholder, Bounds: physics.AABB{Min: min, Max: max}}
}

// publishCollider swaps a section's collider for the trimesh derived from
// its latest mesh, debounced: a section remeshed more often than the
// debounce window keeps its previous trimesh (or placeholder) until the
// window elapses, so a rapid string of edits doesn't thrash physics with
// a new trimesh every tick.
func (p *Pipeline) publishCollider(id voxel.SectionID, mesh meshing.Mesh) {
	debounce := time.Duration(config.GetColliderDebounceMillis()) * time.Millisecond
	prev, had := p.colliders[id]
	if had && prev.Kind == ColliderTrimesh && time.Since(prev.swappedAt) < debounce {
		return
	}
	if len(mesh.Positions) == 0 {
		// No surface left in this section — it still needs *a* collider
		// (I3), so fall back to the placeholder rather than leaving a gap.
		p.colliders[id] = placeholderCollider(id)
		return
	}
	p.colliders[id] = &Collider{
		Kind:      ColliderTrimesh,
		Bounds:    boundsOf(mesh),
		Positions: mesh.Positions,
		Indices:   mesh.Indices,
		swappedAt: time.Now(),
	}
}

func boundsOf(mesh meshing.Mesh) physics.AABB {
	min := mesh.Positions[0]
	max := mesh.Positions[0]
	for _, p := range mesh.Positions[1:] {
		for axis := 0; axis < 3; axis++ {
			if p[axis] < min[axis] {
				min[axis] = p[axis]
			}
			if p[axis] > max[axis] {
				max[axis] = p[axis]
			}
		}
	}
	return physics.AABB{Min: min, Max: max}
}
