package entity

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// DroppedItem is spec.md §4.G's "despawn resolved... by deletion plus
// item-drop" stand-in: when a debris cluster is too far from the viewer
// to be worth simulating, it's deleted and replaced with one of these per
// piece instead. Adapted from the teacher's ItemEntity (gravity/drag/
// ground-collision physics, age-based despawn, pickup delay), stripped of
// inventory stacking/merging — this engine has no hotbar to stack into.
const (
	dropGravity     = float32(18.0)
	dropDrag        = float32(0.98)
	dropGroundFrict = float32(0.6)
	dropDespawnAge  = 300.0 // seconds
	dropRadius      = 0.125
)

// GroundSampler reports whether the cell at (x,y,z) is solid, so a
// dropped item can rest on terrain instead of sinking through it. Callers
// wire this to voxel.Store.Get/IsSolid.
type GroundSampler func(x, y, z int) bool

// DroppedItem is one piece-type/material pair dropped into the world,
// physically simulated with simple gravity+drag until it settles or
// despawns.
type DroppedItem struct {
	PieceType   uint16
	Material    uint8
	Pos         mgl32.Vec3
	Vel         mgl32.Vec3
	Age         float64
	PickupDelay float64
	NoDespawn   bool
	Ground      GroundSampler
	onGround    bool
	dead        bool
}

// NewDroppedItem places a dropped item at pos with a small outward pop,
// matching the teacher's randomized initial velocity for item drops.
func NewDroppedItem(pieceType uint16, material uint8, pos mgl32.Vec3, jitter mgl32.Vec3) *DroppedItem {
	return &DroppedItem{
		PieceType:   pieceType,
		Material:    material,
		Pos:         pos,
		Vel:         mgl32.Vec3{jitter.X(), 0.4, jitter.Z()},
		PickupDelay: 0.5,
	}
}

// Tick advances gravity/drag/ground-collision physics by dt seconds and
// ages the item toward its despawn timeout.
func (d *DroppedItem) Tick(dt float32) {
	if d.dead {
		return
	}
	d.Age += float64(dt)
	if d.PickupDelay > 0 {
		d.PickupDelay -= float64(dt)
	}
	if !d.NoDespawn && d.Age >= dropDespawnAge {
		d.dead = true
		return
	}

	d.Vel = d.Vel.Sub(mgl32.Vec3{0, dropGravity * dt, 0})
	dragFactor := float32(math.Pow(float64(dropDrag), float64(dt)*20))
	d.Vel = d.Vel.Mul(dragFactor)

	delta := d.Vel.Mul(dt)
	if d.solidAt(d.Pos.X()+delta.X(), d.Pos.Y(), d.Pos.Z()) {
		d.Vel = mgl32.Vec3{0, d.Vel.Y(), d.Vel.Z()}
	} else {
		d.Pos = mgl32.Vec3{d.Pos.X() + delta.X(), d.Pos.Y(), d.Pos.Z()}
	}
	if d.solidAt(d.Pos.X(), d.Pos.Y()+delta.Y(), d.Pos.Z()) {
		if d.Vel.Y() < 0 {
			d.onGround = true
		}
		d.Vel = mgl32.Vec3{d.Vel.X(), 0, d.Vel.Z()}
	} else {
		d.Pos = mgl32.Vec3{d.Pos.X(), d.Pos.Y() + delta.Y(), d.Pos.Z()}
		d.onGround = false
	}
	if d.solidAt(d.Pos.X(), d.Pos.Y(), d.Pos.Z()+delta.Z()) {
		d.Vel = mgl32.Vec3{d.Vel.X(), d.Vel.Y(), 0}
	} else {
		d.Pos = mgl32.Vec3{d.Pos.X(), d.Pos.Y(), d.Pos.Z() + delta.Z()}
	}

	if d.onGround {
		frictionFactor := float32(math.Pow(float64(dropGroundFrict), float64(dt)*20))
		d.Vel = mgl32.Vec3{d.Vel.X() * frictionFactor, d.Vel.Y(), d.Vel.Z() * frictionFactor}
	}
}

func (d *DroppedItem) solidAt(x, y, z float32) bool {
	if d.Ground == nil {
		return false
	}
	minX, maxX := int(math.Floor(float64(x-dropRadius))), int(math.Floor(float64(x+dropRadius)))
	minZ, maxZ := int(math.Floor(float64(z-dropRadius))), int(math.Floor(float64(z+dropRadius)))
	minY, maxY := int(math.Floor(float64(y))), int(math.Floor(float64(y+0.2)))
	for bx := minX; bx <= maxX; bx++ {
		for by := minY; by <= maxY; by++ {
			for bz := minZ; bz <= maxZ; bz++ {
				if d.Ground(bx, by, bz) {
					return true
				}
			}
		}
	}
	return false
}

// Position satisfies Entity.
func (d *DroppedItem) Position() mgl32.Vec3 { return d.Pos }

// Dead satisfies Entity.
func (d *DroppedItem) Dead() bool { return d.dead }

// Pickup marks the item consumed, e.g. when a player walks over it past
// PickupDelay. Free since it has no inventory target in this engine.
func (d *DroppedItem) Pickup() { d.dead = true }
