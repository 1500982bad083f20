package voxel

import (
	"math"

	"deepvoxel/internal/profiling"
)

// Generator is the World Generator: given a section id and a seed it
// returns bit-identical cells on every call, from any goroutine — no
// generator call reads or writes anything but its own noise fields (which
// are read-only after construction) and the arguments, matching the
// determinism contract spec.md requires.
//
// Algorithm shape is carried from the teacher's generator.go/density.go
// (height-gradient + octave noise), sampled per cell rather than filled
// in from a coarse grid, with the
// noise backend swapped to aquilax/go-perlin per SPEC_FULL.md's noise
// plan, and cave carving / bedrock / water passes added.
type Generator struct {
	seed        int64
	heightHi    *noiseField
	heightLo    *noiseField
	cheese      *noiseField
	spaghetti   *noiseField
	baseHeight  float64
	heightScale float64
}

// NewGenerator builds a Generator for a seed. Construction is the only
// place the noise fields are built; Generate itself never allocates a
// new noiseField, which is what keeps concurrent calls to Generate safe.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		seed:        seed,
		heightHi:    newNoiseField(seed, 2, 2, 4),
		heightLo:    newNoiseField(seed+1, 2, 2, 2),
		cheese:      newNoiseField(seed+2, 2, 2, 3),
		spaghetti:   newNoiseField(seed+3, 2, 2, 2),
		baseHeight:  64,
		heightScale: 28,
	}
}

// HeightAt returns the terrain surface height at a world (x,z) column.
// Pure function of the generator's noise fields and the coordinates.
func (g *Generator) HeightAt(x, z int) float64 {
	fx, fz := float64(x)/96.0, float64(z)/96.0
	hi := g.heightHi.sample2D(fx, fz)
	lo := g.heightLo.sample2D(fx/3.0, fz/3.0)
	return g.baseHeight + lo*g.heightScale*0.6 + hi*g.heightScale*0.4
}

// waterCaveBuffer is spec.md §4.B's floor on cave carving relative to the
// water table: caves never carve at or below WATER_LEVEL+waterCaveBuffer,
// in addition to the y>5 bedrock buffer.
const waterCaveBuffer = 8

// caveCarved reports whether (x,y,z) falls inside a cave cavity: either a
// "cheese" cavern pocket or a "spaghetti" tunnel, per two independently
// thresholded 3D noise masks. Gated on both the bedrock buffer (y>5) and
// the water-level buffer above, so carving never reaches below
// WATER_LEVEL+waterCaveBuffer.
func (g *Generator) caveCarved(x, y, z, waterLevel int, cheeseThresh, spaghettiThresh float32) bool {
	if y <= 5 || y <= waterLevel+waterCaveBuffer {
		return false
	}
	fx, fy, fz := float64(x)/24.0, float64(y)/24.0, float64(z)/24.0
	cheese := g.cheese.sample3D(fx, fy, fz)
	if cheese > float64(cheeseThresh) {
		return true
	}
	sx, sy, sz := float64(x)/12.0, float64(y)/12.0, float64(z)/12.0
	spag := math.Abs(g.spaghetti.sample3D(sx, sy, sz))
	return spag < float64(spaghettiThresh)
}

// solidAt is classify's solid/non-solid test in isolation, with no
// dependency on stored section data — purely a function of the
// coordinates and the generator's noise fields. reachesSurface uses it to
// probe cells outside the section currently being generated (which may
// not exist as a Section yet) without ever touching the Store.
func (g *Generator) solidAt(x, y, z, waterLevel int, cavesEnabled bool, cheeseThresh, spaghettiThresh float32) bool {
	if y <= 4 {
		p := 1.0 - float64(y)/5.0
		if bedrockHash(g.seed, x, y, z) < p {
			return true
		}
	}
	solid := float64(y) < g.HeightAt(x, z)
	if solid && cavesEnabled && g.caveCarved(x, y, z, waterLevel, cheeseThresh, spaghettiThresh) {
		solid = false
	}
	return solid
}

// neighborOffsets is the 6-connected neighborhood reachesSurface floods
// through.
var neighborOffsets = [6][3]int{
	{1, 0, 0}, {-1, 0, 0},
	{0, 1, 0}, {0, -1, 0},
	{0, 0, 1}, {0, 0, -1},
}

// reachesSurface is spec.md §4.B's "reachable to the surface" test for
// water marking: a bounded breadth-first flood fill from (x,y,z) through
// non-solid neighbors, succeeding as soon as it breaks above the local
// terrain height into open air. The search box reaches PaddedSize/2 cells
// from the seed cell along each axis (a 19^3 box); it may extend past the
// current section, where solidAt evaluates cells from noise alone. A
// pocket that doesn't break out within that box is treated as sealed, not
// as water.
func (g *Generator) reachesSurface(x, y, z, waterLevel int, cavesEnabled bool, cheeseThresh, spaghettiThresh float32) bool {
	type coord struct{ x, y, z int }
	start := coord{x, y, z}

	half := PaddedSize / 2
	minX, maxX := x-half, x+half
	minY, maxY := y-half, y+half
	minZ, maxZ := z-half, z+half

	visited := map[coord]bool{start: true}
	queue := []coord{start}

	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]

		if float64(c.y) > g.HeightAt(c.x, c.z) {
			return true
		}

		for _, d := range neighborOffsets {
			n := coord{c.x + d[0], c.y + d[1], c.z + d[2]}
			if n.x < minX || n.x > maxX || n.y < minY || n.y > maxY || n.z < minZ || n.z > maxZ {
				continue
			}
			if visited[n] {
				continue
			}
			visited[n] = true
			if g.solidAt(n.x, n.y, n.z, waterLevel, cavesEnabled, cheeseThresh, spaghettiThresh) {
				continue
			}
			queue = append(queue, n)
		}
	}
	return false
}

// Generate fills one section deterministically. waterLevel, cavesEnabled
// and the cave thresholds are passed explicitly (rather than read from
// internal/config directly) so Generate has no hidden global dependency —
// callers read config once and pass the snapshot down.
func (g *Generator) Generate(id SectionID, waterLevel int, cavesEnabled bool, cheeseThresh, spaghettiThresh float32) *Section {
	defer profiling.Track("voxel.Generate")()
	sec := NewSection(id)

	baseX := id.X * SectionSize
	baseY := id.Y * SectionSize
	baseZ := id.Z * SectionSize

	for lx := 0; lx < SectionSize; lx++ {
		wx := baseX + lx
		for lz := 0; lz < SectionSize; lz++ {
			wz := baseZ + lz
			height := g.HeightAt(wx, wz)
			for ly := 0; ly < SectionSize; ly++ {
				wy := baseY + ly
				cell := g.classify(wx, wy, wz, height, waterLevel, cavesEnabled, cheeseThresh, spaghettiThresh)
				if cell != Air {
					sec.Set(lx, ly, lz, cell)
				}
			}
		}
	}
	sec.SetClean()
	return sec
}

func (g *Generator) classify(x, y, z int, height float64, waterLevel int, cavesEnabled bool, cheeseThresh, spaghettiThresh float32) Cell {
	density := int16(clampDensity((height - float64(y)) * 256))
	solid := density < 0

	if y <= 4 {
		// Probabilistic bedrock ramp: certainty at y=0, fading out by y=4.
		p := 1.0 - float64(y)/5.0
		if bedrockHash(g.seed, x, y, z) < p {
			return Cell{Density: -1, Material: MaterialBedrock}
		}
	}

	if solid && cavesEnabled && g.caveCarved(x, y, z, waterLevel, cheeseThresh, spaghettiThresh) {
		solid = false
		density = int16(clampDensity(float64(y) - height + 1))
		if density < 0 {
			density = 1
		}
	}

	if !solid {
		if y <= waterLevel && g.reachesSurface(x, y, z, waterLevel, cavesEnabled, cheeseThresh, spaghettiThresh) {
			return Cell{Density: density, Material: MaterialWater}
		}
		return Cell{Density: density, Material: MaterialAir}
	}

	mat := MaterialStone
	if float64(y) >= height-1 && float64(y) <= height {
		mat = MaterialGrass
	} else if float64(y) >= height-4 {
		mat = MaterialDirt
	}
	return Cell{Density: density, Material: mat}
}

func clampDensity(v float64) float64 {
	if v > 32767 {
		return 32767
	}
	if v < -32768 {
		return -32768
	}
	return v
}
