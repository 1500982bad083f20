// Package physics holds the shared collision geometry the Chunk Pipeline's
// placeholder/trimesh colliders and the Collapse Engine's debris bodies
// both need. It generalizes the teacher's internal/physics/collision.go
// (player-AABB-vs-block-grid tests) away from a fixed player width/height
// into reusable AABB/AABB and ray/AABB primitives.
package physics

import (
	"math"

	"deepvoxel/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

// AABB is an axis-aligned bounding box in world space.
type AABB struct {
	Min, Max mgl32.Vec3
}

// NewAABBFromCenter builds an AABB from a center point and half-extents,
// the shape the teacher's Collides used inline for the player box.
func NewAABBFromCenter(center, halfExtents mgl32.Vec3) AABB {
	return AABB{Min: center.Sub(halfExtents), Max: center.Add(halfExtents)}
}

// Intersects reports whether two AABBs overlap on every axis.
func (a AABB) Intersects(b AABB) bool {
	defer profiling.Track("physics.AABB.Intersects")()
	return a.Min.X() < b.Max.X() && a.Max.X() > b.Min.X() &&
		a.Min.Y() < b.Max.Y() && a.Max.Y() > b.Min.Y() &&
		a.Min.Z() < b.Max.Z() && a.Max.Z() > b.Min.Z()
}

// Contains reports whether a point lies within the AABB.
func (a AABB) Contains(p mgl32.Vec3) bool {
	return p.X() >= a.Min.X() && p.X() <= a.Max.X() &&
		p.Y() >= a.Min.Y() && p.Y() <= a.Max.Y() &&
		p.Z() >= a.Min.Z() && p.Z() <= a.Max.Z()
}

// Union returns the smallest AABB containing both inputs.
func (a AABB) Union(b AABB) AABB {
	return AABB{
		Min: mgl32.Vec3{minF(a.Min.X(), b.Min.X()), minF(a.Min.Y(), b.Min.Y()), minF(a.Min.Z(), b.Min.Z())},
		Max: mgl32.Vec3{maxF(a.Max.X(), b.Max.X()), maxF(a.Max.Y(), b.Max.Y()), maxF(a.Max.Z(), b.Max.Z())},
	}
}

// Center returns the AABB's midpoint.
func (a AABB) Center() mgl32.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// HalfExtents returns half the AABB's size along each axis.
func (a AABB) HalfExtents() mgl32.Vec3 {
	return a.Max.Sub(a.Min).Mul(0.5)
}

// RayIntersect performs a slab-method ray/AABB test, returning the entry
// distance t along the ray and whether it hit within [0, maxDist].
func (a AABB) RayIntersect(origin, dir mgl32.Vec3, maxDist float32) (t float32, hit bool) {
	tmin, tmax := float32(0), maxDist
	for axis := 0; axis < 3; axis++ {
		o, d := origin[axis], dir[axis]
		lo, hi := a.Min[axis], a.Max[axis]
		if d == 0 {
			if o < lo || o > hi {
				return 0, false
			}
			continue
		}
		inv := 1 / d
		t1 := (lo - o) * inv
		t2 := (hi - o) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = maxF32(tmin, t1)
		tmax = minF32(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

func minF(a, b float32) float32 {
	return float32(math.Min(float64(a), float64(b)))
}
func maxF(a, b float32) float32 {
	return float32(math.Max(float64(a), float64(b)))
}
func minF32(a, b float32) float32 {
	if a < b {
		return a
	}
	return b
}
func maxF32(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
