package pipeline

import (
	"math"

	"deepvoxel/internal/physics"
	"deepvoxel/internal/voxel"

	"github.com/go-gl/mathgl/mgl32"
)

// plane is ax+by+cz+d=0, normalized so (a,b,c) is unit length.
type plane struct{ a, b, c, d float32 }

// Frustum is 6 planes extracted from a combined projection*view matrix,
// adapted from internal/graphics/renderables/blocks/frustum.go's
// extractFrustumPlanes/aabbIntersectsFrustumPlanes, generalized from
// per-block AABBs to per-section AABBs.
type Frustum struct {
	planes [6]plane
}

// NewFrustum extracts a Frustum from a combined clip-space matrix.
func NewFrustum(clip mgl32.Mat4) *Frustum {
	m00, m01, m02, m03 := clip[0], clip[4], clip[8], clip[12]
	m10, m11, m12, m13 := clip[1], clip[5], clip[9], clip[13]
	m20, m21, m22, m23 := clip[2], clip[6], clip[10], clip[14]
	m30, m31, m32, m33 := clip[3], clip[7], clip[11], clip[15]

	f := &Frustum{}
	f.planes[0] = normalizePlane(plane{m30 + m00, m31 + m01, m32 + m02, m33 + m03}) // left
	f.planes[1] = normalizePlane(plane{m30 - m00, m31 - m01, m32 - m02, m33 - m03}) // right
	f.planes[2] = normalizePlane(plane{m30 + m10, m31 + m11, m32 + m12, m33 + m13}) // bottom
	f.planes[3] = normalizePlane(plane{m30 - m10, m31 - m11, m32 - m12, m33 - m13}) // top
	f.planes[4] = normalizePlane(plane{m30 + m20, m31 + m21, m32 + m22, m33 + m23}) // near
	f.planes[5] = normalizePlane(plane{m30 - m20, m31 - m21, m32 - m22, m33 - m23}) // far
	return f
}

func normalizePlane(p plane) plane {
	l := float32(math.Sqrt(float64(p.a*p.a + p.b*p.b + p.c*p.c)))
	if l == 0 {
		return p
	}
	return plane{p.a / l, p.b / l, p.c / l, p.d / l}
}

// Intersects reports whether an AABB is at least partly inside the frustum.
func (f *Frustum) Intersects(box physics.AABB) bool {
	for _, p := range f.planes {
		px := box.Max.X()
		if p.a < 0 {
			px = box.Min.X()
		}
		py := box.Max.Y()
		if p.b < 0 {
			py = box.Min.Y()
		}
		pz := box.Max.Z()
		if p.c < 0 {
			pz = box.Min.Z()
		}
		if p.a*px+p.b*py+p.c*pz+p.d < 0 {
			return false
		}
	}
	return true
}

// cullVisible returns every loaded section whose AABB survives the
// frustum test. A nil frustum (headless/no-camera callers) is treated as
// "everything visible".
func (p *Pipeline) cullVisible(frustum *Frustum) []voxel.SectionID {
	p.mu.Lock()
	defer p.mu.Unlock()
	visible := make([]voxel.SectionID, 0, len(p.loaded))
	for id := range p.loaded {
		if frustum == nil {
			visible = append(visible, id)
			continue
		}
		min := mgl32.Vec3{float32(id.X * voxel.SectionSize), float32(id.Y * voxel.SectionSize), float32(id.Z * voxel.SectionSize)}
		max := mgl32.Vec3{float32((id.X + 1) * voxel.SectionSize), float32((id.Y + 1) * voxel.SectionSize), float32((id.Z + 1) * voxel.SectionSize)}
		if frustum.Intersects(physics.AABB{Min: min, Max: max}) {
			visible = append(visible, id)
		}
	}
	return visible
}
