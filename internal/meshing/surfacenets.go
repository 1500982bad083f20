package meshing

import (
	"deepvoxel/internal/profiling"
	"deepvoxel/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is the Mesh Extractor's output for one section: one surface vertex
// per sign-changing 2x2x2 cube (Surface Nets), gradient normals, a
// material-weight vector per vertex for color blending, and a scalar
// atlas-index UV channel — triplanar mapping itself happens in a shader,
// out of this engine's scope, per spec.md's non-goals.
type Mesh struct {
	Positions []mgl32.Vec3
	Normals   []mgl32.Vec3
	Weights   [][]MaterialWeight
	AtlasIdx  []float32
	Indices   []uint32
}

// MaterialWeight is one entry of a vertex's material-blend vector.
type MaterialWeight struct {
	Material uint8
	Weight   float32
}

const maxBlendMaterials = 8

// padded12Edges lists the 12 edges of a unit cube as corner-index pairs,
// with corners numbered the standard 0..7 binary order (bit0=x,bit1=y,bit2=z).
var padded12Edges = [12][2]int{
	{0, 1}, {2, 3}, {4, 5}, {6, 7}, // edges along x
	{0, 2}, {1, 3}, {4, 6}, {5, 7}, // edges along y
	{0, 4}, {1, 5}, {2, 6}, {3, 7}, // edges along z
}

func cornerOffset(i int) (dx, dy, dz int) {
	return i & 1, (i >> 1) & 1, (i >> 2) & 1
}

// paddedAt reads a cell from a flat padded grid using the same (y,z,x)
// flattening voxel.Store.PaddedView produces.
func paddedAt(grid []voxel.Cell, x, y, z int) voxel.Cell {
	return grid[(y*voxel.PaddedSize+z)*voxel.PaddedSize+x]
}

// Extract runs Surface Nets over one section's padded 18^3 sampling grid,
// grounded on the hasSurfaceVertex/calculateSurfaceVertex/
// calculateSurfaceNormal/generateSurfaceQuads shape in
// other_examples' gopher3D voxel_core.go, extended with the
// material-weight and atlas-index outputs spec.md's Mesh Extractor
// requires (not present in that sketch).
func Extract(grid []voxel.Cell) Mesh {
	defer profiling.Track("meshing.Extract")()

	var mesh Mesh
	vertexAt := make(map[[3]int]int, voxel.SectionSize*voxel.SectionSize)

	for lz := 0; lz < voxel.SectionSize; lz++ {
		for ly := 0; ly < voxel.SectionSize; ly++ {
			for lx := 0; lx < voxel.SectionSize; lx++ {
				px, py, pz := lx+1, ly+1, lz+1 // padded index of this cube's min corner
				if !hasSurfaceVertex(grid, px, py, pz) {
					continue
				}
				pos := calculateSurfaceVertex(grid, px, py, pz)
				normal := calculateSurfaceNormal(grid, px, py, pz)
				weights := calculateMaterialWeights(grid, px, py, pz)

				idx := len(mesh.Positions)
				mesh.Positions = append(mesh.Positions, mgl32.Vec3{float32(lx), float32(ly), float32(lz)}.Add(pos))
				mesh.Normals = append(mesh.Normals, normal)
				mesh.Weights = append(mesh.Weights, weights)
				mesh.AtlasIdx = append(mesh.AtlasIdx, float32(dominantMaterial(weights)))
				vertexAt[[3]int{lx, ly, lz}] = idx
			}
		}
	}

	generateSurfaceQuads(grid, vertexAt, &mesh)
	return mesh
}

func densityAt(grid []voxel.Cell, x, y, z int) float32 {
	return float32(paddedAt(grid, x, y, z).Density)
}

// hasSurfaceVertex reports whether the 8 corners of the cube whose min
// corner is the padded index (x,y,z) straddle the zero-density surface.
func hasSurfaceVertex(grid []voxel.Cell, x, y, z int) bool {
	neg, pos := false, false
	for i := 0; i < 8; i++ {
		dx, dy, dz := cornerOffset(i)
		if densityAt(grid, x+dx, y+dy, z+dz) < 0 {
			neg = true
		} else {
			pos = true
		}
	}
	return neg && pos
}

// calculateSurfaceVertex places the cube's surface point at the mean of
// every sign-changing edge's zero-crossing, in local [0,1]^3 cube space.
func calculateSurfaceVertex(grid []voxel.Cell, x, y, z int) mgl32.Vec3 {
	var sum mgl32.Vec3
	count := 0
	for _, e := range padded12Edges {
		dx0, dy0, dz0 := cornerOffset(e[0])
		dx1, dy1, dz1 := cornerOffset(e[1])
		d0 := densityAt(grid, x+dx0, y+dy0, z+dz0)
		d1 := densityAt(grid, x+dx1, y+dy1, z+dz1)
		if (d0 < 0) == (d1 < 0) {
			continue
		}
		t := d0 / (d0 - d1)
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		p0 := mgl32.Vec3{float32(dx0), float32(dy0), float32(dz0)}
		p1 := mgl32.Vec3{float32(dx1), float32(dy1), float32(dz1)}
		sum = sum.Add(p0.Add(p1.Sub(p0).Mul(t)))
		count++
	}
	if count == 0 {
		return mgl32.Vec3{0.5, 0.5, 0.5}
	}
	return sum.Mul(1.0 / float32(count))
}

// calculateSurfaceNormal uses a central-difference gradient of the density
// field at the cube's min corner, falling back to +Y when the gradient is
// degenerate (a flat or fully-enclosed region).
func calculateSurfaceNormal(grid []voxel.Cell, x, y, z int) mgl32.Vec3 {
	gx := densityAt(grid, x+1, y, z) - densityAt(grid, x-1, y, z)
	gy := densityAt(grid, x, y+1, z) - densityAt(grid, x, y-1, z)
	gz := densityAt(grid, x, y, z+1) - densityAt(grid, x, y, z-1)
	n := mgl32.Vec3{gx, gy, gz}
	if n.Len() < 1e-6 {
		return mgl32.Vec3{0, 1, 0}
	}
	return n.Normalize()
}

// calculateMaterialWeights accumulates the materials of every solid corner
// of the cube, weighted by how negative (how deep inside the surface)
// their density is, normalized to sum to 1 and capped to the 8 strongest
// contributors per spec.md's vertex-color blending rule.
func calculateMaterialWeights(grid []voxel.Cell, x, y, z int) []MaterialWeight {
	acc := map[uint8]float32{}
	for i := 0; i < 8; i++ {
		dx, dy, dz := cornerOffset(i)
		c := paddedAt(grid, x+dx, y+dy, z+dz)
		if c.Density >= 0 {
			continue
		}
		acc[c.Material] += float32(-c.Density)
	}
	if len(acc) == 0 {
		return nil
	}
	weights := make([]MaterialWeight, 0, len(acc))
	var total float32
	for m, w := range acc {
		weights = append(weights, MaterialWeight{Material: m, Weight: w})
		total += w
	}
	sortWeightsDesc(weights)
	if len(weights) > maxBlendMaterials {
		weights = weights[:maxBlendMaterials]
		total = 0
		for _, w := range weights {
			total += w.Weight
		}
	}
	if total > 0 {
		for i := range weights {
			weights[i].Weight /= total
		}
	}
	return weights
}

func sortWeightsDesc(w []MaterialWeight) {
	for i := 1; i < len(w); i++ {
		for j := i; j > 0 && w[j].Weight > w[j-1].Weight; j-- {
			w[j], w[j-1] = w[j-1], w[j]
		}
	}
}

func dominantMaterial(weights []MaterialWeight) uint8 {
	if len(weights) == 0 {
		return 0
	}
	return weights[0].Material
}

// generateSurfaceQuads connects adjacent surface-vertex cubes into quads,
// checking the forward x/y/z neighbor of each cube the way gopher3D's
// generateSurfaceQuads does, oriented by the sign-change direction of the
// shared edge so winding is consistent regardless of which side of the
// surface is solid.
func generateSurfaceQuads(grid []voxel.Cell, vertexAt map[[3]int]int, mesh *Mesh) {
	for key, v0 := range vertexAt {
		lx, ly, lz := key[0], key[1], key[2]
		px, py, pz := lx+1, ly+1, lz+1

		tryQuad(grid, vertexAt, mesh, v0, lx, ly, lz, px, py, pz, 1, 0, 0)
		tryQuad(grid, vertexAt, mesh, v0, lx, ly, lz, px, py, pz, 0, 1, 0)
		tryQuad(grid, vertexAt, mesh, v0, lx, ly, lz, px, py, pz, 0, 0, 1)
	}
}

// tryQuad emits the quad sharing the edge that advances by (ax,ay,az) from
// (px,py,pz), using the 4 cubes surrounding that edge: the current cube
// and its neighbors in the two axes orthogonal to (ax,ay,az).
func tryQuad(grid []voxel.Cell, vertexAt map[[3]int]int, mesh *Mesh, v0 int, lx, ly, lz, px, py, pz, ax, ay, az int) {
	d0 := densityAt(grid, px, py, pz)
	d1 := densityAt(grid, px+ax, py+ay, pz+az)
	if (d0 < 0) == (d1 < 0) {
		return // edge along this axis doesn't cross the surface
	}

	var ox, oy, oz [2]int
	if ax == 1 {
		ox = [2]int{0, 0}
		oy = [2]int{-1, 0}
		oz = [2]int{0, -1}
	} else if ay == 1 {
		ox = [2]int{0, -1}
		oy = [2]int{0, 0}
		oz = [2]int{-1, 0}
	} else {
		ox = [2]int{-1, 0}
		oy = [2]int{0, -1}
		oz = [2]int{0, 0}
	}

	var quad [4]int
	quad[0] = v0
	for i, dOff := range [][3]int{{ox[0], oy[0], oz[0]}, {ox[1], oy[1], oz[1]}} {
		n, ok := vertexAt[[3]int{lx + dOff[0], ly + dOff[1], lz + dOff[2]}]
		if !ok {
			return
		}
		quad[i+1] = n
	}
	n, ok := vertexAt[[3]int{lx + ox[0] + ox[1], ly + oy[0] + oy[1], lz + oz[0] + oz[1]}]
	if !ok {
		return
	}
	quad[3] = n

	if d0 < 0 {
		mesh.Indices = append(mesh.Indices,
			uint32(quad[0]), uint32(quad[1]), uint32(quad[2]),
			uint32(quad[2]), uint32(quad[1]), uint32(quad[3]))
	} else {
		mesh.Indices = append(mesh.Indices,
			uint32(quad[0]), uint32(quad[2]), uint32(quad[1]),
			uint32(quad[2]), uint32(quad[3]), uint32(quad[1]))
	}
}
