package building

import (
	"deepvoxel/internal/engine"
	"deepvoxel/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// PlacementRequest describes a candidate piece placement before it's
// committed to the Grid/SnapIndex.
type PlacementRequest struct {
	Piece         Piece
	Cells         []GridCell
	LowerCorners  []mgl32.Vec3 // world-space corners of the piece's lower face, for terrain-clearance sampling
	SnapPoints    []mgl32.Vec3
	SnapNormals   []mgl32.Vec3
	FreePlacement bool // piece type may place without any snap pairing (e.g. foundations)
}

// minGroundedCorners is spec.md §4.E rule 3's "at least two corners"
// terrain-clearance threshold.
const minGroundedCorners = 2

// BuildZone reports whether a world position is inside the area placement
// is permitted in. The concrete zone shape (a region, a distance-from-spawn
// rule, etc.) is caller-supplied — the Building Grid itself is zone-agnostic.
type BuildZone func(pos mgl32.Vec3) bool

// Match is a resolved snap pairing: the requesting piece connects to an
// existing piece's snap point.
type Match struct {
	Own   int // index into req.SnapPoints
	Other SnapPoint
}

// Validate runs the ordered placement pipeline spec.md §4.E prescribes:
// build-zone containment, grid-cell overlap, terrain clearance, then snap
// pairing. Ordering is normative — Validate returns on the *first*
// matching failure. Snap matches are computed once, ahead of the
// terrain-clearance check, because clearance's own rule ("require at
// least two corners with density <= 0 *or the existence of a connecting
// snap*") can be satisfied by a snap pairing alone (e.g. a wall bolted to
// an already-grounded neighbor with no terrain under it at all).
func Validate(req PlacementRequest, grid *Grid, snaps *SnapIndex, store *voxel.Store, zone BuildZone) ([]Match, error) {
	if zone != nil && !zone(req.Piece.Position) {
		return nil, engine.New(engine.PlacementInvalid, "outside build zone")
	}

	if !grid.IsFree(req.Cells) {
		return nil, engine.New(engine.PlacementInvalid, "overlaps an existing piece")
	}

	matches := matchSnaps(req, snaps)

	grounded, err := groundedCornerCount(req.LowerCorners, store)
	if err != nil {
		return nil, err // propagate NotLoaded/InputIncomplete as-is for the caller to retry
	}
	if grounded < minGroundedCorners && len(matches) == 0 {
		return nil, engine.New(engine.PlacementInvalid, "no terrain clearance: fewer than two grounded corners and no connecting snap")
	}

	if len(matches) == 0 && !req.FreePlacement {
		return nil, engine.New(engine.PlacementInvalid, "no snap pairing available for a piece type that requires one")
	}
	return matches, nil
}

// cornerEpsilon nudges a lower-face corner's Y coordinate down before
// flooring to a cell index. A piece resting flush on top of solid ground
// has its lower face exactly on the integer boundary between the solid
// cell below and the air cell it occupies; without the nudge, truncation
// would sample the air cell above the surface instead of the ground the
// piece actually rests on.
const cornerEpsilon = 1e-3

func groundedCornerCount(corners []mgl32.Vec3, store *voxel.Store) (int, error) {
	count := 0
	for _, corner := range corners {
		cell, err := store.Get(floorInt(corner.X()), floorInt(corner.Y()-cornerEpsilon), floorInt(corner.Z()))
		if err != nil {
			return 0, err
		}
		if cell.Density <= 0 {
			count++
		}
	}
	return count, nil
}

// floorInt converts a world coordinate to a cell index by flooring rather
// than truncating, so negative coordinates (below Y=0, or west/south of
// the origin) resolve to the correct cell instead of rounding toward zero.
func floorInt(v float32) int {
	i := int(v)
	if v < float32(i) {
		i--
	}
	return i
}

func matchSnaps(req PlacementRequest, snaps *SnapIndex) []Match {
	var matches []Match
	for i, p := range req.SnapPoints {
		var n mgl32.Vec3
		if i < len(req.SnapNormals) {
			n = req.SnapNormals[i]
		}
		if best, ok := snaps.BestMatch(p, n); ok {
			matches = append(matches, Match{Own: i, Other: best})
		}
	}
	return matches
}

// Commit applies a validated placement: allocates the piece, occupies its
// grid cells, and registers its snap points. Call only after Validate
// returns a nil error.
func Commit(arena *Arena, grid *Grid, snaps *SnapIndex, req PlacementRequest) PieceID {
	id := arena.Alloc()
	piece := req.Piece
	piece.ID = id
	piece.Cells = req.Cells
	piece.SnapPoints = req.SnapPoints
	*arena.Get(id) = piece

	grid.Occupy(id, req.Cells)
	snaps.Add(id, req.SnapPoints, req.SnapNormals)
	return id
}
