// Package lifecycle wires every subsystem spec.md §9 calls "global state"
// into one Init/Teardown pair: the Voxel Store, World Generator, Chunk
// Pipeline, Building Grid, Snap Index, Support Graph, Stability Engine,
// Collapse Engine, and the data-driven registry tables. Grounded on the
// teacher's cmd/mini-mc/main.go construction order (config -> registry ->
// store -> generator -> pipeline -> entity manager), generalized from one
// flat main() into a reusable struct so both cmd/voxelengine and tests can
// stand up (and tear down) a full engine instance.
package lifecycle

import (
	"deepvoxel/internal/building"
	"deepvoxel/internal/collapse"
	"deepvoxel/internal/config"
	"deepvoxel/internal/entity"
	"deepvoxel/internal/pipeline"
	"deepvoxel/internal/registry"
	"deepvoxel/internal/stability"
	"deepvoxel/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Lifecycle owns every piece of global state for one running world. Only
// its own Init and Teardown touch it concurrently from outside the
// main-thread tick loop; everything else follows the same single-writer
// rule as the Voxel Store.
type Lifecycle struct {
	WorldID uuid.UUID
	Seed    int64

	Store     *voxel.Store
	Generator *voxel.Generator
	Pipeline  *pipeline.Pipeline

	Arena *building.Arena
	Grid  *building.Grid
	Snaps *building.SnapIndex

	Graph     *stability.Graph
	Stability *stability.Engine
	Collapse  *collapse.Engine
	Entities  *entity.Manager

	Zone building.BuildZone
}

// Init brings up a fresh world: seeds the global config, loads the
// default material/piece tables, and constructs the store/generator/
// pipeline/building/stability/collapse stack around it. workers and
// queueSize size the shared generation+meshing worker pool (spec.md §4.D).
func Init(seed int64, workers, queueSize int) *Lifecycle {
	config.Init(seed)
	registry.InitDefaultMaterials()
	registry.InitDefaultPieces()

	store := voxel.NewStore()
	gen := voxel.NewGenerator(seed)
	pipe := pipeline.New(store, gen, workers, queueSize)

	arena := building.NewArena()
	grid := building.NewGrid()
	snaps := building.NewSnapIndex()

	graph := stability.NewGraph()
	stabEngine := stability.NewEngine(graph, arena)
	entities := entity.NewManager()
	groundSampler := func(x, y, z int) bool {
		cell, err := store.Get(x, y, z)
		return err == nil && cell.IsSolid()
	}
	collapseEngine := collapse.NewEngine(graph, arena, grid, snaps, entities, groundSampler)

	return &Lifecycle{
		WorldID:   uuid.New(),
		Seed:      seed,
		Store:     store,
		Generator: gen,
		Pipeline:  pipe,
		Arena:     arena,
		Grid:      grid,
		Snaps:     snaps,
		Graph:     graph,
		Stability: stabEngine,
		Collapse:  collapseEngine,
		Entities:  entities,
	}
}

// Teardown releases the worker pool and clears the process-wide registry
// and config singletons, so a later Init (another world, or the next test)
// starts clean rather than inheriting stale tables.
func (l *Lifecycle) Teardown() {
	l.Pipeline.Shutdown()
	config.Teardown()
	registry.ClearMaterials()
	registry.ClearPieces()
}

// PlaceAndWire runs the Building Grid's ordered validation pipeline,
// commits the piece on success, and wires it into the Support Graph: a
// snap match becomes a directed edge from the matched (existing) piece to
// the new one, and grounded reports direct terrain contact so the
// Stability Engine seeds it at its material's max_support instead of
// propagating from neighbors. This is the one place spec.md's Building
// Grid and Stability Engine components actually meet.
func (l *Lifecycle) PlaceAndWire(req building.PlacementRequest, grounded bool) (building.PieceID, []building.Match, error) {
	matches, err := building.Validate(req, l.Grid, l.Snaps, l.Store, l.Zone)
	if err != nil {
		return 0, nil, err
	}
	id := building.Commit(l.Arena, l.Grid, l.Snaps, req)

	for _, m := range matches {
		kind := stability.EdgeKindFor(m.Other.Position, req.Piece.Position)
		l.Graph.AddEdge(m.Other.Piece, id, kind)
	}
	if grounded {
		l.Stability.Ground(id)
	} else {
		l.Stability.MarkDirty(id)
	}
	return id, matches, nil
}

// Tick advances one frame: the Chunk Pipeline's generation/meshing
// drain-and-schedule pass, then the Stability Engine's budgeted
// propagation, then the Collapse Engine's cluster/physics pass over
// whatever the Stability Engine just reported unstable. Order matches
// spec.md §4's component list: terrain streaming feeds building, building
// feeds stability, stability feeds collapse.
func (l *Lifecycle) Tick(dt float32, cameraPos mgl32.Vec3, frustum *pipeline.Frustum) []voxel.SectionID {
	visible := l.Pipeline.Tick(cameraPos, frustum)
	l.Stability.Tick()
	l.Collapse.ProcessUnstable(l.Stability.DrainUnstable())
	l.Collapse.Tick(dt, cameraPos)
	return visible
}
