package building

import (
	"errors"
	"strings"
	"testing"

	"deepvoxel/internal/config"
	"deepvoxel/internal/engine"
	"deepvoxel/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// groundedRequest builds a request whose lower-face corners sit exactly on
// the integer boundary between cell row y=0 and y=1 (at x,z in {0,1}, all
// inside column (0,0)), matching groundedCornerCount's
// epsilon-nudge-then-floor sampling.
func groundedRequest(freePlacement bool) PlacementRequest {
	return PlacementRequest{
		Piece:         Piece{Type: 0, Material: 1, Position: mgl32.Vec3{0, 1, 0}},
		Cells:         []GridCell{{0, 0, 0}},
		LowerCorners:  []mgl32.Vec3{{0, 1, 0}, {1, 1, 0}, {0, 1, 1}, {1, 1, 1}},
		FreePlacement: freePlacement,
	}
}

// groundedFootprintCells are the four (x,0,z) cells groundedCornerCount
// samples for groundedRequest's corners.
var groundedFootprintCells = []struct{ x, y, z int }{{0, 0, 0}, {1, 0, 0}, {0, 0, 1}, {1, 0, 1}}

func TestValidateFailsOutsideZone(t *testing.T) {
	store := voxel.NewStore()
	grid := NewGrid()
	snaps := NewSnapIndex()
	zone := func(mgl32.Vec3) bool { return false }

	_, err := Validate(groundedRequest(true), grid, snaps, store, zone)
	assertPlacementInvalid(t, err, "outside build zone")
}

func TestValidateFailsOnOverlap(t *testing.T) {
	store := voxel.NewStore()
	grid := NewGrid()
	snaps := NewSnapIndex()
	grid.Occupy(99, []GridCell{{0, 0, 0}})

	_, err := Validate(groundedRequest(true), grid, snaps, store, nil)
	assertPlacementInvalid(t, err, "overlaps")
}

func TestValidateFailsWithoutTerrainOrSnap(t *testing.T) {
	store := voxel.NewStore()
	store.EnsureColumn(voxel.ColumnID{X: 0, Z: 0}) // loaded, but nothing generated: every corner reads Air
	grid := NewGrid()
	snaps := NewSnapIndex()

	req := groundedRequest(false)
	_, err := Validate(req, grid, snaps, store, nil)
	assertPlacementInvalid(t, err, "terrain clearance")
}

func TestValidateSucceedsOnGroundedTerrain(t *testing.T) {
	store := voxel.NewStore()
	for _, c := range groundedFootprintCells {
		store.Set(c.x, c.y, c.z, voxel.Cell{Density: -1, Material: 3})
	}
	grid := NewGrid()
	snaps := NewSnapIndex()

	matches, err := Validate(groundedRequest(true), grid, snaps, store, nil)
	if err != nil {
		t.Fatalf("expected grounded placement to succeed, got %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no snap matches for a terrain-only placement, got %d", len(matches))
	}
}

func TestValidateSucceedsViaSnapWithNoTerrain(t *testing.T) {
	config.SetSnapRadius(1.0)
	store := voxel.NewStore()
	store.EnsureColumn(voxel.ColumnID{X: 0, Z: 0}) // loaded, but no terrain anywhere
	grid := NewGrid()
	snaps := NewSnapIndex()
	snaps.Add(5, []mgl32.Vec3{{0, 0, 0}}, []mgl32.Vec3{{0, 1, 0}})

	req := groundedRequest(false)
	req.SnapPoints = []mgl32.Vec3{{0, 0, 0}}
	req.SnapNormals = []mgl32.Vec3{{0, -1, 0}}

	matches, err := Validate(req, grid, snaps, store, nil)
	if err != nil {
		t.Fatalf("expected snap-supported placement to succeed despite no terrain, got %v", err)
	}
	if len(matches) != 1 || matches[0].Other.Piece != 5 {
		t.Fatalf("expected a match against piece 5, got %v", matches)
	}
}

func TestValidateRequiresSnapForNonFreePlacementPiece(t *testing.T) {
	store := voxel.NewStore()
	for _, c := range groundedFootprintCells {
		store.Set(c.x, c.y, c.z, voxel.Cell{Density: -1, Material: 3})
	}
	grid := NewGrid()
	snaps := NewSnapIndex() // no pieces placed yet, so nothing to snap to

	req := groundedRequest(false) // not free-placement, and requests no snap points at all
	_, err := Validate(req, grid, snaps, store, nil)
	assertPlacementInvalid(t, err, "no snap pairing")
}

func assertPlacementInvalid(t *testing.T, err error, want string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error, got nil")
	}
	var e *engine.Error
	if !errors.As(err, &e) {
		t.Fatalf("expected an *engine.Error, got %T (%v)", err, err)
	}
	if e.Kind != engine.PlacementInvalid {
		t.Fatalf("expected Kind=PlacementInvalid, got %v", e.Kind)
	}
	if !strings.Contains(e.Reason, want) {
		t.Fatalf("expected reason to mention %q, got %q", want, e.Reason)
	}
}
