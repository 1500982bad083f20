package voxel

import (
	"sync"
	"testing"
)

func TestGenerateIsDeterministic(t *testing.T) {
	g := NewGenerator(1234)
	id := SectionID{X: 2, Y: 1, Z: -3}

	a := g.Generate(id, 62, true, 0.62, 0.08)
	b := g.Generate(id, 62, true, 0.62, 0.08)

	for ly := 0; ly < SectionSize; ly++ {
		for lz := 0; lz < SectionSize; lz++ {
			for lx := 0; lx < SectionSize; lx++ {
				if a.Get(lx, ly, lz) != b.Get(lx, ly, lz) {
					t.Fatalf("non-deterministic cell at (%d,%d,%d)", lx, ly, lz)
				}
			}
		}
	}
}

func TestGenerateIsDeterministicAcrossGoroutines(t *testing.T) {
	g := NewGenerator(42)
	ids := []SectionID{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {-1, 2, 3}}

	baseline := make([]*Section, len(ids))
	for i, id := range ids {
		baseline[i] = g.Generate(id, 62, true, 0.62, 0.08)
	}

	var wg sync.WaitGroup
	mismatches := make([]bool, len(ids))
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id SectionID) {
			defer wg.Done()
			got := g.Generate(id, 62, true, 0.62, 0.08)
			for ly := 0; ly < SectionSize; ly++ {
				for lz := 0; lz < SectionSize; lz++ {
					for lx := 0; lx < SectionSize; lx++ {
						if got.Get(lx, ly, lz) != baseline[i].Get(lx, ly, lz) {
							mismatches[i] = true
						}
					}
				}
			}
		}(i, id)
	}
	wg.Wait()
	for i, bad := range mismatches {
		if bad {
			t.Fatalf("section %d generated differently across goroutines", i)
		}
	}
}

func TestBedrockAtYZeroIsAlwaysSolid(t *testing.T) {
	g := NewGenerator(7)
	sec := g.Generate(SectionID{X: 0, Y: 0, Z: 0}, 62, true, 0.62, 0.08)
	for lx := 0; lx < SectionSize; lx++ {
		for lz := 0; lz < SectionSize; lz++ {
			c := sec.Get(lx, 0, lz)
			if !c.IsSolid() {
				t.Fatalf("expected solid bedrock-or-stone at y=0, (%d,_,%d) got %+v", lx, lz, c)
			}
		}
	}
}
