package stability

import (
	"deepvoxel/internal/building"
	"deepvoxel/internal/config"
	"deepvoxel/internal/registry"

	"github.com/go-gl/mathgl/mgl32"
)

// EdgeKindFor decides an edge's geometric kind from the two pieces'
// anchors at creation time: vertical if the supported piece sits above
// the supporter, horizontal otherwise (spec.md §4.F "Edge kind").
func EdgeKindFor(supporterPos, supportedPos mgl32.Vec3) EdgeKind {
	if supportedPos.Y() > supporterPos.Y() {
		return Vertical
	}
	return Horizontal
}

// Engine runs the budgeted BFS stability propagation over a Graph/Arena
// pair. It is main-thread-only per spec.md §5's ownership rules, so it
// carries no locking of its own — callers serialize access the same way
// the Chunk Pipeline's Tick is the only writer of voxel dirty state.
type Engine struct {
	graph *Graph
	arena *building.Arena

	frontier  []building.PieceID
	queued    map[building.PieceID]bool
	unstable  map[building.PieceID]bool // reported, not yet drained
	processed int                       // lifetime counter, for tests/metrics
}

// NewEngine builds a Stability Engine over an existing graph/arena pair.
func NewEngine(graph *Graph, arena *building.Arena) *Engine {
	return &Engine{
		graph:    graph,
		arena:    arena,
		queued:   make(map[building.PieceID]bool),
		unstable: make(map[building.PieceID]bool),
	}
}

func (e *Engine) enqueue(id building.PieceID) {
	if e.queued[id] {
		return
	}
	e.queued[id] = true
	e.frontier = append(e.frontier, id)
}

// Ground marks a piece as directly grounded (terrain contact), sets its
// stability to its material's max_support, and schedules its supported
// children for recomputation.
func (e *Engine) Ground(id building.PieceID) {
	e.graph.MarkGrounded(id)
	e.MarkDirty(id)
}

// Unground removes direct-grounded status (e.g. the terrain under a
// foundation was dug away) and forces a recompute from its remaining
// incoming edges, if any.
func (e *Engine) Unground(id building.PieceID) {
	e.graph.UnmarkGrounded(id)
	e.MarkDirty(id)
}

// MarkDirty schedules id (and, transitively, everything it supports) for
// recomputation. It resets id's own stability to zero first so a support
// removal correctly propagates a *decrease* — the monotonic-max rule
// inside Tick only ever pushes values up within one pass, so a drop has
// to start from a clean slate rather than rely on Tick ever lowering a
// settled value. This is the "dirty recomputation" spec.md's component
// table calls out for the Stability Engine.
func (e *Engine) MarkDirty(id building.PieceID) {
	e.resetSubtree(id, make(map[building.PieceID]bool))
	e.enqueue(id)
}

func (e *Engine) resetSubtree(id building.PieceID, visited map[building.PieceID]bool) {
	if visited[id] {
		return
	}
	visited[id] = true
	if p := e.arena.Get(id); p != nil && !e.graph.IsGrounded(id) {
		p.Stability = 0
	}
	for _, child := range e.graph.ISupport(id) {
		e.enqueue(child)
		e.resetSubtree(child, visited)
	}
}

// candidate computes the stability value piece id would take from one
// incoming edge, per spec.md's propagation formula: support_value(u) *
// (1 - loss(edge_kind)), where the loss factor is the supporter's own
// material (the thing actually transmitting the load).
func candidate(supporter *building.Piece, kind EdgeKind) float32 {
	mat := registry.Materials[supporter.Material]
	if mat == nil {
		return 0
	}
	return supporter.Stability * (1 - mat.LossFor(kind == Vertical))
}

// hierarchyReset reports whether piece id should be treated as grounded
// regardless of incoming propagation because it rests on a
// strictly-lower-tier supporter — spec.md §4.F's "Wood placed on stone
// resets; stone on wood does not." Tiers are resolved (DESIGN.md) so that
// a numerically *higher* tier is the sturdier material (thatch=0 ..
// metal=4); the reset fires when id's own tier is weaker than any direct
// supporter's, so flimsy-on-sturdy regrounds but sturdy-on-flimsy doesn't
// get an undeserved boost — it propagates normally and typically fails.
func hierarchyReset(selfMat *registry.MaterialDefinition, incoming []Edge, arena *building.Arena) bool {
	if selfMat == nil {
		return false
	}
	for _, edge := range incoming {
		supporter := arena.Get(edge.From)
		if supporter == nil {
			continue
		}
		supMat := registry.Materials[supporter.Material]
		if supMat == nil {
			continue
		}
		if selfMat.Tier < supMat.Tier {
			return true
		}
	}
	return false
}

// Tick processes up to config.GetBudgetPiecesPerTick() pending pieces from
// the frontier, in FIFO order, matching spec.md §4.F's throttling rule.
// Any remainder stays queued for the next call. Returns the number of
// pieces actually processed.
func (e *Engine) Tick() int {
	budget := config.GetBudgetPiecesPerTick()
	n := 0
	for n < budget && len(e.frontier) > 0 {
		id := e.frontier[0]
		e.frontier = e.frontier[1:]
		delete(e.queued, id)
		e.visit(id)
		n++
	}
	e.processed += n
	return n
}

func (e *Engine) visit(id building.PieceID) {
	piece := e.arena.Get(id)
	if piece == nil {
		e.graph.RemovePiece(id)
		delete(e.unstable, id)
		return
	}

	var newVal float32
	if e.graph.IsGrounded(id) {
		mat := registry.Materials[piece.Material]
		if mat != nil {
			newVal = mat.MaxSupport
		}
	} else {
		incoming := e.graph.IncomingEdges(id)
		selfMat := registry.Materials[piece.Material]
		if hierarchyReset(selfMat, incoming, e.arena) && selfMat != nil {
			newVal = selfMat.MaxSupport
		} else {
			for _, edge := range incoming {
				supporter := e.arena.Get(edge.From)
				if supporter == nil {
					continue
				}
				if v := candidate(supporter, edge.Kind); v > newVal {
					newVal = v
				}
			}
		}
	}

	// Monotonic max within this pass: only commit and propagate forward
	// if the piece's value actually improved, per spec.md I5 and the
	// termination argument in §4.F. The piece.Stability == 0 branch lets
	// a value settle once after MarkDirty reset it, even if the first
	// recomputed value happens to also be zero (fully unsupported).
	if newVal > piece.Stability || piece.Stability == 0 {
		piece.Stability = newVal
		for _, child := range e.graph.ISupport(id) {
			e.enqueue(child)
		}
	}

	mat := registry.Materials[piece.Material]
	minSupport := float32(0)
	if mat != nil {
		minSupport = mat.MinSupport
	}
	if piece.Stability < minSupport {
		e.unstable[id] = true
	} else {
		delete(e.unstable, id)
	}
}

// DrainUnstable returns every piece currently below its material's
// min_support and clears the reported set, for the Collapse Engine to
// cluster and convert (spec.md §4.F "Outputs").
func (e *Engine) DrainUnstable() []building.PieceID {
	out := make([]building.PieceID, 0, len(e.unstable))
	for id := range e.unstable {
		out = append(out, id)
	}
	e.unstable = make(map[building.PieceID]bool)
	return out
}

// Pending reports how many pieces remain queued for a future Tick.
func (e *Engine) Pending() int { return len(e.frontier) }

// Graph exposes the underlying support graph, e.g. for the Collapse
// Engine's union-find cluster detection.
func (e *Engine) Graph() *Graph { return e.graph }
