package collapse

import (
	"deepvoxel/internal/building"
	"deepvoxel/internal/config"
	"deepvoxel/internal/entity"
	"deepvoxel/internal/registry"
	"deepvoxel/internal/stability"

	"github.com/go-gl/mathgl/mgl32"
)

// decayRate is the stability-units-per-second rate collapse trajectories
// use to estimate time-to-collapse (spec.md §4.G). Not one of spec.md
// §6's named tunables, so it's a package constant rather than a
// config-exposed setting.
const decayRate = float32(15.0)

var upAxis = mgl32.Vec3{0, 1, 0}

// ClusterState is the precomputed collapse trajectory for one union-find
// cluster, stored before conversion so "clients or late observers can
// reproduce the trajectory" (spec.md §4.G "Precomputation").
type ClusterState struct {
	Pieces                 []building.PieceID
	CenterOfMass           mgl32.Vec3
	InitialAngularVelocity mgl32.Vec3
	TimeToCollapse         float32
	Elapsed                float32
}

// DebrisBody couples one promoted piece to its RigidBody simulation state
// and satisfies entity.Entity so it can be driven by the same
// Ticker/EntityManager machinery the teacher used for mobs and item
// pickups (spec.md §9, DESIGN.md).
type DebrisBody struct {
	PieceID building.PieceID
	arena   *building.Arena
	Body    *RigidBody
	dead    bool
}

// Tick integrates physics for one frame and reports the body settled
// (dead, in Entity terms) once its RigidBody falls asleep.
func (d *DebrisBody) Tick(dt float32) {
	if d.dead {
		return
	}
	p := d.arena.Get(d.PieceID)
	if p == nil {
		d.dead = true
		return
	}
	d.Body.Integrate(dt, &p.Position, &p.Rotation)
	if d.Body.Sleeping {
		d.dead = true
	}
}

// Position satisfies entity.Entity.
func (d *DebrisBody) Position() mgl32.Vec3 {
	if p := d.arena.Get(d.PieceID); p != nil {
		return p.Position
	}
	return mgl32.Vec3{}
}

// Dead satisfies entity.Entity.
func (d *DebrisBody) Dead() bool { return d.dead }

func (d *DebrisBody) forceKill() { d.dead = true }

// Engine is the Collapse Engine: it clusters the Stability Engine's
// reported unstable set, precomputes a trajectory per cluster, and
// promotes clusters to dynamic physics under the
// MAX_SIMULTANEOUS_DYNAMIC_PIECES budget (spec.md §4.G).
type Engine struct {
	graph   *stability.Graph
	arena   *building.Arena
	grid    *building.Grid
	snaps   *building.SnapIndex
	manager *entity.Manager
	ground  entity.GroundSampler

	pending      []*ClusterState
	debris       map[building.PieceID]*DebrisBody
	dynamicCount int
}

// NewEngine builds a Collapse Engine over the shared support graph and
// piece arena, driving its debris through manager and sampling terrain
// for dropped-item physics via ground. grid and snaps are the same
// Building Grid / Snap Index placement populates, so promotion and
// despawn can release a piece's cells and snap points back to them.
func NewEngine(graph *stability.Graph, arena *building.Arena, grid *building.Grid, snaps *building.SnapIndex, manager *entity.Manager, ground entity.GroundSampler) *Engine {
	return &Engine{
		graph:   graph,
		arena:   arena,
		grid:    grid,
		snaps:   snaps,
		manager: manager,
		ground:  ground,
		debris:  make(map[building.PieceID]*DebrisBody),
	}
}

// ProcessUnstable ingests the Stability Engine's latest unstable-piece
// report, clusters it, and precomputes a trajectory for any cluster not
// already pending or already converted.
func (e *Engine) ProcessUnstable(unstable []building.PieceID) {
	if len(unstable) == 0 {
		return
	}
	filtered := unstable[:0:0]
	for _, id := range unstable {
		if _, already := e.debris[id]; already {
			continue
		}
		filtered = append(filtered, id)
	}
	for _, members := range DetectClusters(filtered, e.graph) {
		if e.alreadyPending(members) {
			continue
		}
		e.pending = append(e.pending, precompute(members, e.arena, e.graph))
	}
}

func (e *Engine) alreadyPending(members []building.PieceID) bool {
	member := make(map[building.PieceID]bool, len(members))
	for _, id := range members {
		member[id] = true
	}
	for _, cs := range e.pending {
		for _, id := range cs.Pieces {
			if member[id] {
				return true
			}
		}
	}
	return false
}

// precompute computes a cluster's center of mass, initial angular
// velocity, and estimated time-to-collapse, per spec.md §4.G.
func precompute(members []building.PieceID, arena *building.Arena, graph *stability.Graph) *ClusterState {
	var com mgl32.Vec3
	n := float32(0)
	for _, id := range members {
		if p := arena.Get(id); p != nil {
			com = com.Add(p.Position)
			n++
		}
	}
	if n > 0 {
		com = com.Mul(1 / n)
	}

	supportDir := remainingSupportDirection(members, arena, graph, com)
	angularVelocity := supportDir.Cross(upAxis).Mul(2.0)

	ttc := minTimeToCollapse(members, arena)

	return &ClusterState{
		Pieces:                 members,
		CenterOfMass:           com,
		InitialAngularVelocity: angularVelocity,
		TimeToCollapse:         ttc,
	}
}

// remainingSupportDirection points from whatever still-standing support
// remains toward the cluster's center of mass, the vector spec.md's
// angular-velocity formula crosses with the up axis. When no support
// remains at all (scenario 5: both pillars of a bridge removed at once),
// it falls back to an outward vector from the CoM toward an arbitrary
// cluster member, so the cluster still tips rather than spinning in place.
func remainingSupportDirection(members []building.PieceID, arena *building.Arena, graph *stability.Graph, com mgl32.Vec3) mgl32.Vec3 {
	member := make(map[building.PieceID]bool, len(members))
	for _, id := range members {
		member[id] = true
	}

	var supportPos mgl32.Vec3
	supportN := float32(0)
	for _, id := range members {
		for _, supporter := range graph.SupportsMe(id) {
			if member[supporter] {
				continue // internal to the cluster, not "remaining" support
			}
			if p := arena.Get(supporter); p != nil {
				supportPos = supportPos.Add(p.Position)
				supportN++
			}
		}
	}

	if supportN > 0 {
		supportPos = supportPos.Mul(1 / supportN)
		dir := com.Sub(supportPos)
		if dir.Len() > 1e-6 {
			return dir.Normalize()
		}
	}

	if p := arena.Get(members[0]); p != nil {
		dir := p.Position.Sub(com)
		if dir.Len() > 1e-6 {
			return dir.Normalize()
		}
	}
	return mgl32.Vec3{1, 0, 0}
}

func minTimeToCollapse(members []building.PieceID, arena *building.Arena) float32 {
	best := float32(-1)
	for _, id := range members {
		p := arena.Get(id)
		if p == nil {
			continue
		}
		mat := registry.Materials[p.Material]
		if mat == nil {
			continue
		}
		ttc := (p.Stability - mat.MinSupport) / decayRate
		if ttc < 0 {
			ttc = 0
		}
		if best < 0 || ttc < best {
			best = ttc
		}
	}
	if best < 0 {
		return 0
	}
	return best
}

// Tick advances debris physics, reaps settled/despawned debris, and
// promotes or discards pending clusters, all under the cap on
// simultaneously active dynamic bodies. Call once per main-thread tick
// after the Stability
// Engine's pass for this frame.
func (e *Engine) Tick(dt float32, viewerPos mgl32.Vec3) {
	e.manager.Tick(dt)
	despawnDist := config.GetDespawnDistance()
	for id, db := range e.debris {
		if db.Dead() {
			delete(e.debris, id)
			e.dynamicCount--
			continue
		}
		if db.Position().Sub(viewerPos).Len() > despawnDist {
			e.despawnPiece(id)
			db.forceKill()
			delete(e.debris, id)
			e.dynamicCount--
		}
	}
	e.processPending(dt, viewerPos)
}

func (e *Engine) processPending(dt float32, viewerPos mgl32.Vec3) {
	despawnDist := config.GetDespawnDistance()
	maxDynamic := config.GetMaxSimultaneousDynamicPieces()

	remaining := e.pending[:0]
	for _, cs := range e.pending {
		cs.Elapsed += dt
		if cs.Elapsed < cs.TimeToCollapse {
			remaining = append(remaining, cs)
			continue
		}
		if cs.CenterOfMass.Sub(viewerPos).Len() > despawnDist {
			for _, id := range cs.Pieces {
				e.despawnPiece(id)
			}
			continue
		}
		if e.dynamicCount+len(cs.Pieces) > maxDynamic {
			remaining = append(remaining, cs) // shed-load: surplus clusters wait
			continue
		}
		e.promote(cs)
	}
	e.pending = remaining
}

// promote converts every piece of a cluster from static to dynamic,
// applying the precomputed trajectory and severing its support-graph
// edges — I6 requires no edge of the remaining graph reference a
// promoted piece. Its grid cells and snap points are released too: a
// piece falling under physics no longer statically occupies its cells
// or offers a stable place to snap against.
func (e *Engine) promote(cs *ClusterState) {
	for _, id := range cs.Pieces {
		p := e.arena.Get(id)
		if p == nil {
			continue
		}
		p.Static = false
		rb := NewRigidBody(1)
		rb.AngularVelocity = cs.InitialAngularVelocity
		db := &DebrisBody{PieceID: id, arena: e.arena, Body: rb}
		e.debris[id] = db
		e.manager.Spawn(db)
		e.graph.RemovePiece(id)
		e.grid.Vacate(p.Cells)
		e.snaps.Remove(id)
	}
	e.dynamicCount += len(cs.Pieces)
}

// despawnPiece resolves a piece immediately by deletion plus item-drop,
// skipping physics entirely, per spec.md §4.G's DESPAWN_DISTANCE rule.
// Its grid cells and snap points are released before the arena slot is
// freed, or rebuilding at that location would stay blocked forever.
func (e *Engine) despawnPiece(id building.PieceID) {
	p := e.arena.Get(id)
	if p == nil {
		return
	}
	jitter := mgl32.Vec3{0.1, 0, -0.1}
	drop := entity.NewDroppedItem(p.Type, p.Material, p.Position, jitter)
	drop.Ground = e.ground
	e.manager.Spawn(drop)
	e.graph.RemovePiece(id)
	e.grid.Vacate(p.Cells)
	e.snaps.Remove(id)
	e.arena.Free(id)
}

// ActiveDynamicCount reports how many pieces are currently simulated as
// dynamic debris, for tests and metrics.
func (e *Engine) ActiveDynamicCount() int { return e.dynamicCount }

// PendingClusters reports how many clusters are waiting on the dynamic-
// body budget or their collapse timer.
func (e *Engine) PendingClusters() int { return len(e.pending) }
