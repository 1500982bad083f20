package stability

import (
	"math"
	"testing"

	"deepvoxel/internal/building"
	"deepvoxel/internal/config"
	"deepvoxel/internal/registry"

	"github.com/go-gl/mathgl/mgl32"
)

func setupMaterials(t *testing.T) {
	t.Helper()
	registry.ClearMaterials()
	registry.InitDefaultMaterials()
	t.Cleanup(registry.ClearMaterials)
}

func place(arena *building.Arena, material uint8, y float32) building.PieceID {
	id := arena.Alloc()
	*arena.Get(id) = building.Piece{ID: id, Material: material, Position: mgl32.Vec3{0, y, 0}, Static: true}
	return id
}

const woodMaterial = 1
const stoneMaterial = 3

func runToFixpoint(e *Engine) {
	for i := 0; i < 10000 && e.Pending() > 0; i++ {
		e.Tick()
	}
}

// Scenario 1 — single pillar: a grounded wood foundation with a chain of
// wood walls stacked on top. Stability must decay monotonically down the
// chain (I5, within the propagation pass) and every piece whose value
// falls below wood's min_support must be reported unstable.
func TestSinglePillarChainDecaysAndReportsUnstable(t *testing.T) {
	setupMaterials(t)
	graph := NewGraph()
	arena := building.NewArena()
	engine := NewEngine(graph, arena)

	const chainLen = 20
	ids := make([]building.PieceID, chainLen+1)
	ids[0] = place(arena, woodMaterial, 0)
	engine.Ground(ids[0])
	for i := 1; i <= chainLen; i++ {
		ids[i] = place(arena, woodMaterial, float32(i))
		graph.AddEdge(ids[i-1], ids[i], Vertical)
		engine.MarkDirty(ids[i])
	}

	runToFixpoint(engine)

	wood := registry.Materials[woodMaterial]
	expect := wood.MaxSupport
	for i := 1; i <= chainLen; i++ {
		expect *= 1 - wood.VerticalLoss
		got := arena.Get(ids[i]).Stability
		if math.Abs(float64(got-expect)) > 1e-3 {
			t.Fatalf("level %d: stability = %v, want %v", i, got, expect)
		}
	}

	unstable := make(map[building.PieceID]bool)
	for _, id := range engine.DrainUnstable() {
		unstable[id] = true
	}
	for i := 1; i <= chainLen; i++ {
		want := arena.Get(ids[i]).Stability < wood.MinSupport
		if unstable[ids[i]] != want {
			t.Fatalf("level %d: unstable = %v, want %v (stability %v, min %v)",
				i, unstable[ids[i]], want, arena.Get(ids[i]).Stability, wood.MinSupport)
		}
	}
	// spec.md §8 scenario 1's literal boundary: wall 16 of the 20-tall
	// chain is stable, wall 17 is the first to fall below min_support.
	if unstable[ids[16]] {
		t.Fatalf("wall 16 stability %v fell below min_support %v, want stable", arena.Get(ids[16]).Stability, wood.MinSupport)
	}
	if !unstable[ids[17]] {
		t.Fatalf("wall 17 stability %v, want below min_support %v", arena.Get(ids[17]).Stability, wood.MinSupport)
	}
}

// Scenario 2 / I7 — hierarchy reset: a wood wall placed on a stone
// foundation gets wood's own max_support, not the propagated
// stone-minus-loss value (which would be far higher).
func TestHierarchyResetOnWeakerOverStronger(t *testing.T) {
	setupMaterials(t)
	graph := NewGraph()
	arena := building.NewArena()
	engine := NewEngine(graph, arena)

	foundation := place(arena, stoneMaterial, 0)
	engine.Ground(foundation)
	wall := place(arena, woodMaterial, 1)
	graph.AddEdge(foundation, wall, Vertical)
	engine.MarkDirty(wall)

	runToFixpoint(engine)

	wood := registry.Materials[woodMaterial]
	got := arena.Get(wall).Stability
	if math.Abs(float64(got-wood.MaxSupport)) > 1e-3 {
		t.Fatalf("wood-on-stone stability = %v, want wood.MaxSupport = %v", got, wood.MaxSupport)
	}
}

// The converse: a stone piece placed on a wood foundation does NOT get
// hierarchy-reset — it propagates normally through wood's loss factor,
// per spec.md "stone on wood does not [reset]".
func TestNoHierarchyResetOnStrongerOverWeaker(t *testing.T) {
	setupMaterials(t)
	graph := NewGraph()
	arena := building.NewArena()
	engine := NewEngine(graph, arena)

	foundation := place(arena, woodMaterial, 0)
	engine.Ground(foundation)
	stonePiece := place(arena, stoneMaterial, 1)
	graph.AddEdge(foundation, stonePiece, Vertical)
	engine.MarkDirty(stonePiece)

	runToFixpoint(engine)

	wood := registry.Materials[woodMaterial]
	want := wood.MaxSupport * (1 - wood.VerticalLoss)
	got := arena.Get(stonePiece).Stability
	if math.Abs(float64(got-want)) > 1e-3 {
		t.Fatalf("stone-on-wood stability = %v, want propagated value %v (not reset)", got, want)
	}
	stone := registry.Materials[stoneMaterial]
	if got == stone.MaxSupport {
		t.Fatal("stone-on-wood incorrectly hierarchy-reset to its own max_support")
	}
}

// Removing a support must lower downstream stability, not just fail to
// raise it — MarkDirty's reset-then-recompute path is what makes a
// decrease visible at all under the monotonic-max propagation rule.
func TestMarkDirtyPropagatesADecrease(t *testing.T) {
	setupMaterials(t)
	graph := NewGraph()
	arena := building.NewArena()
	engine := NewEngine(graph, arena)

	foundation := place(arena, stoneMaterial, 0)
	engine.Ground(foundation)
	wall := place(arena, stoneMaterial, 1)
	graph.AddEdge(foundation, wall, Vertical)
	engine.MarkDirty(wall)
	runToFixpoint(engine)

	before := arena.Get(wall).Stability
	if before == 0 {
		t.Fatal("expected the wall to be supported before ungrounding the foundation")
	}

	engine.Unground(foundation)
	runToFixpoint(engine)

	after := arena.Get(wall).Stability
	if after != 0 {
		t.Fatalf("stability after losing all support = %v, want 0", after)
	}
}

// Per-tick throttling: Tick() never processes more than the configured
// budget in one call, even with a large pending frontier.
func TestTickRespectsBudget(t *testing.T) {
	setupMaterials(t)
	graph := NewGraph()
	arena := building.NewArena()
	engine := NewEngine(graph, arena)

	root := place(arena, woodMaterial, 0)
	engine.Ground(root)
	for i := 1; i <= 500; i++ {
		id := place(arena, woodMaterial, float32(i))
		graph.AddEdge(root, id, Horizontal)
		engine.MarkDirty(id)
	}

	processed := engine.Tick()
	if budget := config.GetBudgetPiecesPerTick(); processed > budget {
		t.Fatalf("Tick processed %d pieces in one call, want <= budget %d", processed, budget)
	}
	if engine.Pending() == 0 {
		t.Fatal("expected pieces still queued after a single budgeted Tick with 500+ dirty pieces")
	}
}
