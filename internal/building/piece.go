// Package building implements the Building Grid, Snap Index, and ordered
// placement validation pipeline.
package building

import "github.com/go-gl/mathgl/mgl32"

// PieceID indexes into the Arena. Zero is never a valid allocated id so a
// zero-valued PieceID reliably means "no piece" in maps/edges.
type PieceID uint32

// Piece is one placed building piece.
type Piece struct {
	ID         PieceID
	Type       uint16 // PieceDefinition id, see internal/registry
	Material   uint8  // MaterialDefinition id
	Position   mgl32.Vec3
	Rotation   mgl32.Quat
	Cells      []GridCell // grid cells this piece occupies, for Grid.Vacate on removal
	SnapPoints []mgl32.Vec3 // world-space, post-rotation
	Stability  float32
	Static     bool // false once promoted to a dynamic debris body
}

// Arena is a dense piece store with a free list, avoiding per-placement
// heap churn — grounded on the integer-id allocation in
// SoftbearStudios-mk48/server/world/entity_id.go and the dense-row +
// recycle-list shape of Gekko3D-gekko/ecs.go's archetype, generalized
// from "entity ids in an ECS" to "building piece ids in an arena".
type Arena struct {
	pieces []Piece
	free   []PieceID
	inUse  []bool
}

// NewArena returns an empty arena. Index 0 is reserved/unused so PieceID 0
// can serve as a sentinel "no piece" value.
func NewArena() *Arena {
	return &Arena{pieces: make([]Piece, 1), inUse: make([]bool, 1)}
}

// Alloc reserves a slot and returns its id, recycling a freed slot if one exists.
func (a *Arena) Alloc() PieceID {
	if n := len(a.free); n > 0 {
		id := a.free[n-1]
		a.free = a.free[:n-1]
		a.inUse[id] = true
		return id
	}
	id := PieceID(len(a.pieces))
	a.pieces = append(a.pieces, Piece{})
	a.inUse = append(a.inUse, true)
	return id
}

// Get returns a pointer to the piece for id, or nil if id is unallocated.
func (a *Arena) Get(id PieceID) *Piece {
	if int(id) <= 0 || int(id) >= len(a.pieces) || !a.inUse[id] {
		return nil
	}
	return &a.pieces[id]
}

// Free releases id back to the pool.
func (a *Arena) Free(id PieceID) {
	if int(id) <= 0 || int(id) >= len(a.pieces) || !a.inUse[id] {
		return
	}
	a.inUse[id] = false
	a.pieces[id] = Piece{}
	a.free = append(a.free, id)
}

// Len reports how many slots (including unused ones pending reuse) the
// arena has allocated — callers iterating want inUse checks, not this.
func (a *Arena) Len() int { return len(a.pieces) }
