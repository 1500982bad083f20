package meshing

import (
	"testing"
	"time"

	"deepvoxel/internal/voxel"
)

func TestWorkerPoolGeneratesSection(t *testing.T) {
	pool := NewWorkerPool(2, 8)
	defer pool.Shutdown()

	gen := voxel.NewGenerator(1)
	store := voxel.NewStore()
	result := make(chan Result, 1)

	pool.SubmitJobBlocking(Job{
		Kind:       JobGenerate,
		Section:    voxel.SectionID{X: 0, Y: 0, Z: 0},
		Generator:  gen,
		Store:      store,
		WaterLevel: 62,
		Caves:      true,
		CaveCheese: 0.62,
		CaveSpag:   0.08,
		Token:      NewCancelToken(),
		ResultChan: result,
	})

	select {
	case res := <-result:
		if res.Error != nil {
			t.Fatalf("unexpected error: %v", res.Error)
		}
		if res.Generated == nil {
			t.Fatalf("expected a generated section")
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for generation result")
	}
}

func TestWorkerPoolCancelledJobIsDropped(t *testing.T) {
	pool := NewWorkerPool(1, 8)
	defer pool.Shutdown()

	token := NewCancelToken()
	token.Cancel()

	gen := voxel.NewGenerator(1)
	store := voxel.NewStore()
	result := make(chan Result, 1)

	pool.SubmitJobBlocking(Job{
		Kind:       JobGenerate,
		Section:    voxel.SectionID{X: 1, Y: 0, Z: 0},
		Generator:  gen,
		Store:      store,
		Token:      token,
		ResultChan: result,
	})

	select {
	case <-result:
		t.Fatalf("cancelled job should not have produced a result")
	case <-time.After(150 * time.Millisecond):
		// expected: nothing arrives
	}
}
