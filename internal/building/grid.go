package building

import (
	"sync"

	"deepvoxel/internal/config"

	"github.com/go-gl/mathgl/mgl32"
)

// GridCell identifies one cell of the building grid.
type GridCell struct {
	X, Y, Z int
}

// CellOf converts a world position to the grid cell containing it, using
// the live config.GetCellSize() tunable.
func CellOf(pos mgl32.Vec3) GridCell {
	size := config.GetCellSize()
	return GridCell{
		X: floorDiv(pos.X(), size),
		Y: floorDiv(pos.Y(), size),
		Z: floorDiv(pos.Z(), size),
	}
}

func floorDiv(v, size float32) int {
	q := v / size
	f := int(q)
	if q < 0 && float32(f) != q {
		f--
	}
	return f
}

// Grid is the sparse cell -> piece-handle map, the same
// map+sync.RWMutex+double-checked-locking shape as the teacher's
// internal/world/chunk_store.go ChunkStore, specialized to building cells.
type Grid struct {
	mu    sync.RWMutex
	cells map[GridCell]PieceID
}

// NewGrid returns an empty building grid.
func NewGrid() *Grid {
	return &Grid{cells: make(map[GridCell]PieceID)}
}

// Occupant returns the piece occupying a cell, if any.
func (g *Grid) Occupant(cell GridCell) (PieceID, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	id, ok := g.cells[cell]
	return id, ok
}

// IsFree reports whether every cell in a set is unoccupied.
func (g *Grid) IsFree(cells []GridCell) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, c := range cells {
		if _, occupied := g.cells[c]; occupied {
			return false
		}
	}
	return true
}

// Occupy claims a set of cells for a piece. Caller must have already
// validated IsFree — Occupy itself doesn't re-check, matching the
// ordered-validation-then-commit pipeline in placement.go.
func (g *Grid) Occupy(id PieceID, cells []GridCell) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range cells {
		g.cells[c] = id
	}
}

// Vacate releases a piece's cells, e.g. on removal or collapse promotion.
func (g *Grid) Vacate(cells []GridCell) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, c := range cells {
		delete(g.cells, c)
	}
}
