package pipeline

import (
	"deepvoxel/internal/config"
	"deepvoxel/internal/profiling"
	"deepvoxel/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// Streamer schedules section generation in spiral order around a center
// column and evicts sections beyond the unload distance, adapted from
// internal/world/chunk_streamer.go's StreamChunksAroundAsync/EvictFarChunks
// (spiral ring enqueue, per-call job cap) — generalized from a 2D chunk
// column to a 3D section id, since this engine's sections stack only
// SectionsPerColumn deep instead of spanning a fixed world height.
type Streamer struct {
	pipeline       *Pipeline
	maxJobsPerTick int
}

// NewStreamer builds a Streamer bound to a Pipeline.
func NewStreamer(p *Pipeline) *Streamer {
	return &Streamer{pipeline: p, maxJobsPerTick: 64}
}

// Tick enqueues generation for unloaded sections within the LOD distance
// of cameraPos, spiral-ordered from the center outward, and evicts
// sections beyond the unload distance.
func (s *Streamer) Tick(cameraPos mgl32.Vec3) {
	defer profiling.Track("pipeline.Streamer.Tick")()
	cx := floorDivInt(int(cameraPos.X()), voxel.SectionSize)
	cz := floorDivInt(int(cameraPos.Z()), voxel.SectionSize)
	radius := config.GetLODDistance()

	jobsPushed := 0
	enqueueColumn := func(x, z int) {
		if jobsPushed >= s.maxJobsPerTick {
			return
		}
		for sy := 0; sy < voxel.SectionsPerColumn; sy++ {
			if jobsPushed >= s.maxJobsPerTick {
				return
			}
			id := voxel.SectionID{X: x, Y: sy, Z: z}
			if s.pipeline.isLoadedOrPending(id) {
				continue
			}
			s.pipeline.EnqueueGenerate(id)
			jobsPushed++
		}
	}

	enqueueColumn(cx, cz)
	for r := 1; r <= radius && jobsPushed < s.maxJobsPerTick; r++ {
		x0, x1 := cx-r, cx+r
		z0, z1 := cz-r, cz+r
		for x := x0; x <= x1 && jobsPushed < s.maxJobsPerTick; x++ {
			enqueueColumn(x, z0)
		}
		for z := z0 + 1; z <= z1-1 && jobsPushed < s.maxJobsPerTick; z++ {
			enqueueColumn(x1, z)
		}
		for x := x1; x >= x0 && jobsPushed < s.maxJobsPerTick; x-- {
			enqueueColumn(x, z1)
		}
		for z := z1 - 1; z >= z0+1 && jobsPushed < s.maxJobsPerTick; z-- {
			enqueueColumn(x0, z)
		}
	}

	s.pipeline.evictBeyond(cx, cz, config.GetUnloadDistance())
}

func floorDivInt(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func (p *Pipeline) isLoadedOrPending(id voxel.SectionID) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.loaded[id] {
		return true
	}
	_, pending := p.pending[id]
	return pending
}

// evictBeyond drops sections whose column lies outside radius (chunk
// distance) from (cx,cz), unloading them from both the store and the
// pipeline's mesh/collider caches.
func (p *Pipeline) evictBeyond(cx, cz, radius int) {
	p.mu.Lock()
	var toEvict []voxel.SectionID
	for id := range p.loaded {
		dx, dz := id.X-cx, id.Z-cz
		if dx*dx+dz*dz > radius*radius {
			toEvict = append(toEvict, id)
		}
	}
	for _, id := range toEvict {
		delete(p.loaded, id)
		delete(p.meshes, id)
		delete(p.colliders, id)
	}
	p.mu.Unlock()

	for _, id := range toEvict {
		p.Store.Unload(id.Column())
	}
}
