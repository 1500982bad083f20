// Command voxelengine is a headless driver over the deep voxel world
// engine: it brings up a world, streams terrain around a viewer position,
// places a vertical pillar of building pieces to exercise the Support
// Graph/Stability Engine/Collapse Engine chain, edits terrain to show
// dirty-region remeshing, round-trips a save, then tears everything down.
// There is no window and no GPU here — rendering and physics are external
// collaborators per spec.md §1, so this entry point only drives the core.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"time"

	"deepvoxel/internal/building"
	"deepvoxel/internal/lifecycle"
	"deepvoxel/internal/persistence"
	"deepvoxel/internal/pipeline"
	"deepvoxel/internal/registry"
	"deepvoxel/internal/stability"
	"deepvoxel/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

func main() {
	seed := flag.Int64("seed", 1337, "world seed")
	workers := flag.Int("workers", 4, "background generation/meshing worker count")
	queue := flag.Int("queue", 256, "background job queue depth")
	streamTicks := flag.Int("stream-ticks", 30, "ticks to run the chunk streamer before building")
	pillarHeight := flag.Int("pillar-walls", 24, "wood walls to stack before stopping")
	flag.Parse()

	lc := lifecycle.Init(*seed, *workers, *queue)
	defer lc.Teardown()

	fmt.Printf("world %s seed=%d workers=%d\n", lc.WorldID, lc.Seed, *workers)

	runStreaming(lc, *streamTicks)
	editAndRemesh(lc)
	runPillarScenario(lc, *pillarHeight)
	runPersistenceRoundTrip(lc)

	fmt.Println("done")
}

// runStreaming ticks the Chunk Pipeline with a stationary viewer at the
// origin for the given number of ticks, then prints once how many of the
// visible sections have swapped their placeholder collider for a trimesh
// and how many still hold the placeholder (spec.md I3: every visible chunk
// has exactly one collider, always).
func runStreaming(lc *lifecycle.Lifecycle, ticks int) {
	camera := mgl32.Vec3{0, 40, 0}
	frustum := pipeline.NewFrustum(mgl32.Ident4())

	placeholders, trimeshes := 0, 0
	for i := 0; i < ticks; i++ {
		visible := lc.Tick(1.0/20.0, camera, frustum)
		if i == ticks-1 {
			placeholders, trimeshes = 0, 0
			for _, id := range visible {
				c, ok := lc.Pipeline.Collider(id)
				if !ok {
					continue
				}
				if c.Kind == pipeline.ColliderTrimesh {
					trimeshes++
				} else {
					placeholders++
				}
			}
		}
		time.Sleep(time.Millisecond)
	}
	fmt.Printf("streaming: %d trimesh colliders, %d placeholder colliders still pending\n", trimeshes, placeholders)
}

// editAndRemesh writes one cell at the shared boundary between two
// sections, which dirties both section (0,*,0) and its (1,*,0) neighbor
// (spec.md §4.A's boundary-write invariant), then lets one Tick drain and
// remesh both — scenario 3 (chunk edit propagation) from spec.md §8.
func editAndRemesh(lc *lifecycle.Lifecycle) {
	boundaryX := voxel.SectionSize - 1 // last cell of section (0,*,0), shared with section (1,*,0)
	lc.Store.Set(boundaryX, 20, 4, voxel.Cell{Density: -1, Material: 3})
	fmt.Println("terrain edit at section boundary: own section and its (1,*,0) neighbor both marked dirty")

	camera := mgl32.Vec3{0, 40, 0}
	frustum := pipeline.NewFrustum(mgl32.Ident4())
	lc.Tick(1.0/20.0, camera, frustum)
}

// runPillarScenario carves a small stone platform far from the streamed
// terrain (so the background streamer never contends with it), then
// stacks up to maxWalls wood walls on a wood foundation, stopping early
// only if a wall fails to place or snap, and reports the first wall whose
// stability dropped below wood's min_support — spec.md §8 scenario 1 and
// invariants I4-I7.
func runPillarScenario(lc *lifecycle.Lifecycle, maxWalls int) {
	const (
		platformX = 4096
		platformZ = 4096
		groundY   = 10
	)
	for dx := -2; dx <= 2; dx++ {
		for dz := -2; dz <= 2; dz++ {
			lc.Store.Set(platformX+dx, groundY-1, platformZ+dz, voxel.Cell{Density: -1, Material: voxel.MaterialStone})
		}
	}

	cellSize := float32(2.0)
	base := mgl32.Vec3{float32(platformX), groundY + cellSize/2, float32(platformZ)}

	foundationDef := registry.Pieces[registry.PieceNames["foundation"]]
	wallDef := registry.Pieces[registry.PieceNames["wall"]]
	woodMat := registry.MaterialNames["wood"]

	foundationReq := pieceRequest(foundationDef, woodMat, base, cellSize)
	foundationID, _, err := lc.PlaceAndWire(foundationReq, true)
	if err != nil {
		fmt.Printf("pillar: foundation placement failed: %v\n", err)
		return
	}
	fmt.Printf("pillar: foundation %d grounded at %.0f,%.0f,%.0f\n", foundationID, base.X(), base.Y(), base.Z())

	prevPos := base
	firstUnstable := -1
	for i := 1; i <= maxWalls; i++ {
		pos := prevPos.Add(mgl32.Vec3{0, cellSize, 0})
		req := pieceRequest(wallDef, woodMat, pos, cellSize)
		id, matches, err := lc.PlaceAndWire(req, false)
		if err != nil {
			fmt.Printf("pillar: wall %d placement failed: %v\n", i, err)
			break
		}
		if len(matches) == 0 {
			fmt.Printf("pillar: wall %d found no snap match, stopping\n", i)
			break
		}

		for j := 0; j < 4 && lc.Stability.Pending() > 0; j++ {
			lc.Stability.Tick()
		}

		piece := lc.Arena.Get(id)
		stable := piece.Stability >= registry.Materials[woodMat].MinSupport
		fmt.Printf("pillar: wall %d (piece %d) stability=%.2f stable=%v\n", i, id, piece.Stability, stable)
		if !stable && firstUnstable < 0 {
			firstUnstable = i
		}
		prevPos = pos
	}

	unstable := lc.Stability.DrainUnstable()
	lc.Collapse.ProcessUnstable(unstable)
	for tick := 0; tick < 600 && lc.Collapse.PendingClusters() > 0; tick++ {
		lc.Collapse.Tick(1.0/20.0, mgl32.Vec3{float32(platformX), groundY, float32(platformZ)})
	}
	fmt.Printf("pillar: first unstable wall=%d, %d piece(s) converted to debris\n", firstUnstable, lc.Collapse.ActiveDynamicCount())
}

// pieceRequest builds a building.PlacementRequest for a single-cell piece
// centered at worldPos, translating the piece type's local snap points
// (already expressed in world-unit offsets from the piece's anchor, per
// registry.SnapPointDef's doc comment) to world space.
func pieceRequest(def *registry.PieceDefinition, material uint8, worldPos mgl32.Vec3, cellSize float32) building.PlacementRequest {
	half := cellSize / 2
	lowerY := worldPos.Y() - half
	lowerCorners := []mgl32.Vec3{
		{worldPos.X() - half, lowerY, worldPos.Z() - half},
		{worldPos.X() + half, lowerY, worldPos.Z() - half},
		{worldPos.X() - half, lowerY, worldPos.Z() + half},
		{worldPos.X() + half, lowerY, worldPos.Z() + half},
	}

	snapPoints := make([]mgl32.Vec3, len(def.SnapPoints))
	snapNormals := make([]mgl32.Vec3, len(def.SnapPoints))
	for i, sp := range def.SnapPoints {
		snapPoints[i] = worldPos.Add(sp.Offset)
		snapNormals[i] = sp.Direction
	}

	return building.PlacementRequest{
		Piece: building.Piece{
			Type:     def.ID,
			Material: material,
			Position: worldPos,
			Rotation: mgl32.QuatIdent(),
		},
		Cells:         []building.GridCell{building.CellOf(worldPos)},
		LowerCorners:  lowerCorners,
		SnapPoints:    snapPoints,
		SnapNormals:   snapNormals,
		FreePlacement: def.FreePlacement,
	}
}

// runPersistenceRoundTrip saves the current world state into an in-memory
// buffer and loads it back into a fresh store/arena/graph, confirming the
// round-trip law from spec.md §8 holds without touching disk.
func runPersistenceRoundTrip(lc *lifecycle.Lifecycle) {
	var buf bytes.Buffer
	modified := lc.Store.LoadedColumns()
	if err := persistence.Save(&buf, lc.Store, lc.Arena, lc.Graph, modified, lc.WorldID, lc.Seed); err != nil {
		fmt.Printf("save failed: %v\n", err)
		return
	}

	freshStore := voxel.NewStore()
	freshArena := building.NewArena()
	freshGraph := stability.NewGraph()

	worldID, seed, err := persistence.Load(bytes.NewReader(buf.Bytes()), freshStore, freshArena, freshGraph)
	if err != nil {
		fmt.Printf("load failed: %v\n", err)
		return
	}
	fmt.Printf("persistence round-trip: %d bytes, world=%s seed=%d, %d column(s) restored\n",
		buf.Len(), worldID, seed, len(modified))
}
