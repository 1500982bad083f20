package building

import (
	"sync"

	"deepvoxel/internal/config"

	"github.com/go-gl/mathgl/mgl32"
)

// SnapPoint is one candidate connection point on a placed piece.
type SnapPoint struct {
	Piece    PieceID
	Index    int
	Position mgl32.Vec3
	Normal   mgl32.Vec3
}

// SnapIndex is a spatial hash of every placed piece's snap points, bucketed
// by the snap radius so a query only has to scan a handful of buckets
// instead of every piece — the same map+RWMutex store shape as Grid,
// bucketed on a finer cell than the building grid itself (snap radius 0.5
// against a 2.0 grid cell by default).
type SnapIndex struct {
	mu      sync.RWMutex
	buckets map[[3]int][]SnapPoint
}

// NewSnapIndex returns an empty snap index.
func NewSnapIndex() *SnapIndex {
	return &SnapIndex{buckets: make(map[[3]int][]SnapPoint)}
}

func (s *SnapIndex) bucketOf(p mgl32.Vec3) [3]int {
	r := config.GetSnapRadius()
	if r <= 0 {
		r = 0.35
	}
	return [3]int{
		int(floorDiv(p.X(), r)),
		int(floorDiv(p.Y(), r)),
		int(floorDiv(p.Z(), r)),
	}
}

// Add registers every snap point of a piece.
func (s *SnapIndex) Add(piece PieceID, points, normals []mgl32.Vec3) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, p := range points {
		var n mgl32.Vec3
		if i < len(normals) {
			n = normals[i]
		}
		b := s.bucketOf(p)
		s.buckets[b] = append(s.buckets[b], SnapPoint{Piece: piece, Index: i, Position: p, Normal: n})
	}
}

// Remove drops every snap point belonging to a piece.
func (s *SnapIndex) Remove(piece PieceID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for b, pts := range s.buckets {
		kept := pts[:0]
		for _, p := range pts {
			if p.Piece != piece {
				kept = append(kept, p)
			}
		}
		if len(kept) == 0 {
			delete(s.buckets, b)
		} else {
			s.buckets[b] = kept
		}
	}
}

// candidatesNear returns every snap point within one bucket ring of pos.
func (s *SnapIndex) candidatesNear(pos mgl32.Vec3) []SnapPoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	center := s.bucketOf(pos)
	var out []SnapPoint
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			for dz := -1; dz <= 1; dz++ {
				b := [3]int{center[0] + dx, center[1] + dy, center[2] + dz}
				out = append(out, s.buckets[b]...)
			}
		}
	}
	return out
}

// snapScoreThreshold is the minimum score a candidate must clear to be
// accepted at all — spec.md §4.E: "the highest-scoring candidate above a
// threshold wins." Below this, two pieces are considered not to connect
// (free placement or outright rejection, depending on the piece type).
const snapScoreThreshold = 0.15

// BestMatch finds the highest-scoring existing snap point within snap
// radius of (pos, normal), breaking ties by lowest piece id for
// determinism. normal is this piece's own outward snap direction.
// Returns ok=false if nothing scores above snapScoreThreshold.
//
// score = 0.6*alignment + 0.4*distance_score, per spec.md's formula:
//   - alignment = max(0, dot(-dir_mine, dir_theirs)) — snap points whose
//     normals point toward each other (opposing) score up to 1; anything
//     that doesn't oppose at all scores 0, never negative.
//   - distance_score = 1 - min(1, dist/radius).
func (s *SnapIndex) BestMatch(pos, normal mgl32.Vec3) (SnapPoint, bool) {
	radius := config.GetSnapRadius()
	var best SnapPoint
	bestScore := float32(-1)
	found := false

	for _, c := range s.candidatesNear(pos) {
		dist := pos.Sub(c.Position).Len()
		if dist > radius {
			continue
		}
		alignment := -normal.Dot(c.Normal)
		if alignment < 0 {
			alignment = 0
		}
		distRatio := dist / radius
		if distRatio > 1 {
			distRatio = 1
		}
		distScore := 1 - distRatio
		score := 0.6*alignment + 0.4*distScore
		if score < snapScoreThreshold {
			continue
		}

		if !found || score > bestScore || (score == bestScore && c.Piece < best.Piece) {
			best = c
			bestScore = score
			found = true
		}
	}
	return best, found
}
