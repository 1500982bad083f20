package building

import (
	"testing"

	"deepvoxel/internal/config"

	"github.com/go-gl/mathgl/mgl32"
)

func TestSnapIndexBestMatchPrefersOpposingNormals(t *testing.T) {
	config.SetSnapRadius(1.0)
	idx := NewSnapIndex()
	idx.Add(1, []mgl32.Vec3{{0.05, 0, 0}}, []mgl32.Vec3{{1, 0, 0}}) // faces +X
	idx.Add(2, []mgl32.Vec3{{0, 0, 0}}, []mgl32.Vec3{{-1, 0, 0}})   // faces -X, same as ours (bad pairing)

	// Our piece's snap point faces -X, so it should prefer piece 1's
	// opposing normal over piece 2's same-direction one, even though 2 is
	// marginally closer.
	match, ok := idx.BestMatch(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{-1, 0, 0})
	if !ok {
		t.Fatalf("expected a match within radius")
	}
	if match.Piece != 1 {
		t.Fatalf("expected piece 1 (opposing normal) to win, got %d", match.Piece)
	}
}

func TestSnapIndexBestMatchOutOfRange(t *testing.T) {
	config.SetSnapRadius(0.2)
	idx := NewSnapIndex()
	idx.Add(1, []mgl32.Vec3{{5, 5, 5}}, []mgl32.Vec3{{0, 1, 0}})
	_, ok := idx.BestMatch(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	if ok {
		t.Fatalf("expected no match outside the snap radius")
	}
}

func TestSnapIndexRemove(t *testing.T) {
	config.SetSnapRadius(1.0)
	idx := NewSnapIndex()
	idx.Add(7, []mgl32.Vec3{{0, 0, 0}}, []mgl32.Vec3{{0, 1, 0}})
	idx.Remove(7)
	_, ok := idx.BestMatch(mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	if ok {
		t.Fatalf("expected no match after removal")
	}
}
