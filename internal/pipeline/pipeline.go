// Package pipeline implements the Chunk Pipeline: two background pools
// (generation and meshing, sharing the meshing.WorkerPool) feeding a
// single main-thread Tick with strict ordering, plus collider lifecycle
// and frustum culling. Tick phase order is adapted from
// cmd/mini-mc/game_loop.go's tick(): drain completions -> publish ->
// drain dirty -> enqueue -> cull.
package pipeline

import (
	"errors"
	"sync"

	"deepvoxel/internal/config"
	"deepvoxel/internal/engine"
	"deepvoxel/internal/meshing"
	"deepvoxel/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// Pipeline owns the generation/meshing job lifecycle for every loaded
// section and the placeholder/trimesh colliders derived from them.
type Pipeline struct {
	Store     *voxel.Store
	Generator *voxel.Generator
	pool      *meshing.WorkerPool

	mu        sync.Mutex
	pending   map[voxel.SectionID]*meshing.CancelToken
	loaded    map[voxel.SectionID]bool
	meshes    map[voxel.SectionID]meshing.Mesh
	colliders map[voxel.SectionID]*Collider

	results chan meshing.Result

	streamer *Streamer
}

// New builds a Pipeline around a store/generator pair and a shared worker pool.
func New(store *voxel.Store, gen *voxel.Generator, workers, queueSize int) *Pipeline {
	p := &Pipeline{
		Store:     store,
		Generator: gen,
		pool:      meshing.NewWorkerPool(workers, queueSize),
		pending:   make(map[voxel.SectionID]*meshing.CancelToken),
		loaded:    make(map[voxel.SectionID]bool),
		meshes:    make(map[voxel.SectionID]meshing.Mesh),
		colliders: make(map[voxel.SectionID]*Collider),
		results:   make(chan meshing.Result, queueSize),
	}
	p.streamer = NewStreamer(p)
	return p
}

// Shutdown drains the worker pool. Call once at world teardown.
func (p *Pipeline) Shutdown() { p.pool.Shutdown() }

// Mesh returns the last published mesh for a section, if any.
func (p *Pipeline) Mesh(id voxel.SectionID) (meshing.Mesh, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.meshes[id]
	return m, ok
}

// Collider returns the current collider for a section, if any.
func (p *Pipeline) Collider(id voxel.SectionID) (*Collider, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.colliders[id]
	return c, ok
}

// EnqueueGenerate schedules generation of a section, no-op if it's already
// loaded or already in flight.
func (p *Pipeline) EnqueueGenerate(id voxel.SectionID) {
	p.mu.Lock()
	if p.loaded[id] {
		p.mu.Unlock()
		return
	}
	if _, inFlight := p.pending[id]; inFlight {
		p.mu.Unlock()
		return
	}
	token := meshing.NewCancelToken()
	p.pending[id] = token
	p.mu.Unlock()

	waterLevel := config.GetWaterLevel()
	caves := config.GetCaves()
	cheese, spag := config.GetCaveThresholds()

	p.pool.SubmitJobBlocking(meshing.Job{
		Kind:       meshing.JobGenerate,
		Section:    id,
		Generator:  p.Generator,
		Store:      p.Store,
		WaterLevel: waterLevel,
		Caves:      caves,
		CaveCheese: cheese,
		CaveSpag:   spag,
		Token:      token,
		ResultChan: p.results,
	})
}

// enqueueMesh schedules a remesh of an already-loaded section, cancelling
// any outstanding mesh task for it first — stale results are discarded
// cooperatively via the cancel token (advisory cancellation, per spec.md).
func (p *Pipeline) enqueueMesh(id voxel.SectionID) {
	p.mu.Lock()
	if prev, ok := p.pending[id]; ok {
		prev.Cancel()
	}
	token := meshing.NewCancelToken()
	p.pending[id] = token
	p.mu.Unlock()

	p.pool.SubmitJobBlocking(meshing.Job{
		Kind:       meshing.JobMesh,
		Section:    id,
		Store:      p.Store,
		Token:      token,
		ResultChan: p.results,
	})
}

// Tick runs exactly one pass of the pipeline's phases. Order matches
// spec.md §4.D: drain completions, publish meshes/schedule colliders,
// drain dirty sections, enqueue mesh tasks for them, then cull.
func (p *Pipeline) Tick(cameraPos mgl32.Vec3, frustum *Frustum) []voxel.SectionID {
	p.drainCompleted()
	dirty := p.Store.DrainDirty()
	for _, id := range dirty {
		p.enqueueMesh(id)
	}
	p.streamer.Tick(cameraPos)
	return p.cullVisible(frustum)
}

func (p *Pipeline) drainCompleted() {
	var freshlyLoaded []voxel.SectionID
	for {
		select {
		case res := <-p.results:
			if id, ok := p.applyResult(res); ok {
				freshlyLoaded = append(freshlyLoaded, id)
			}
		default:
			for _, id := range freshlyLoaded {
				p.enqueueMesh(id)
			}
			return
		}
	}
}

// applyResult folds one completed job into pipeline state. It returns a
// section id and true when that section needs a mesh job: a generation
// result just finished, or a mesh job for a still-loaded section failed
// with engine.InputIncomplete because a neighbor has not loaded yet. The
// caller schedules that mesh after releasing the lock
// (enqueueMesh takes the same lock, so it must never be called from here).
func (p *Pipeline) applyResult(res meshing.Result) (voxel.SectionID, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pending, res.Section)

	switch res.Kind {
	case meshing.JobGenerate:
		if res.Error != nil || res.Generated == nil {
			return voxel.SectionID{}, false
		}
		mergeGeneratedSection(p.Store, res.Generated)
		p.loaded[res.Section] = true
		if _, hasCollider := p.colliders[res.Section]; !hasCollider {
			p.colliders[res.Section] = placeholderCollider(res.Section)
		}
		return res.Section, true
	case meshing.JobMesh:
		if res.Error != nil {
			return res.Section, errors.Is(res.Error, engine.InputIncomplete) && p.loaded[res.Section]
		}
		p.meshes[res.Section] = res.Mesh
		p.publishCollider(res.Section, res.Mesh)
	}
	return voxel.SectionID{}, false
}

// mergeGeneratedSection copies a standalone generated section's cells into
// the store via the normal write path, so dirty-bit bookkeeping and
// boundary propagation apply uniformly whether a write came from
// generation or a gameplay edit.
func mergeGeneratedSection(store *voxel.Store, sec *voxel.Section) {
	if sec.IsConstant() {
		c := sec.Get(0, 0, 0)
		if c == voxel.Air {
			return // nothing to write; store already reads Air for untouched cells
		}
	}
	baseX, baseY, baseZ := sec.ID().X*voxel.SectionSize, sec.ID().Y*voxel.SectionSize, sec.ID().Z*voxel.SectionSize
	for lz := 0; lz < voxel.SectionSize; lz++ {
		for ly := 0; ly < voxel.SectionSize; ly++ {
			for lx := 0; lx < voxel.SectionSize; lx++ {
				c := sec.Get(lx, ly, lz)
				if c == voxel.Air {
					continue
				}
				store.Set(baseX+lx, baseY+ly, baseZ+lz, c)
			}
		}
	}
	store.DrainDirty() // generation shouldn't itself trigger a remesh storm; the Tick's explicit enqueueMesh for this section below handles the first mesh.
}
