package voxel

import "github.com/aquilax/go-perlin"

// Material ids the World Generator emits. The full per-material table
// (tiers, support losses) lives in internal/registry; these are just the
// handful of ids terrain generation itself assigns.
const (
	MaterialAir     uint8 = 0
	MaterialStone   uint8 = 1
	MaterialDirt    uint8 = 2
	MaterialGrass   uint8 = 3
	MaterialBedrock uint8 = 4
	MaterialWater   uint8 = 5
)

// noiseField wraps one aquilax/go-perlin generator, the same library
// SoftbearStudios-mk48/server/terrain/noise/noise.go uses for its
// land/water heightmap layers (perlin.NewPerlin(alpha, beta, n, seed)).
type noiseField struct {
	p *perlin.Perlin
}

func newNoiseField(seed int64, alpha, beta float64, octaves int32) *noiseField {
	return &noiseField{p: perlin.NewPerlin(alpha, beta, octaves, seed)}
}

func (nf *noiseField) sample2D(x, z float64) float64 {
	return nf.p.Noise2D(x, z)
}

func (nf *noiseField) sample3D(x, y, z float64) float64 {
	return nf.p.Noise3D(x, y, z)
}

// splitmix64 gives the bedrock ramp a cheap, deterministic per-cell hash
// without a shared global RNG — the same discipline the teacher's noise.go
// lattice hash (hash2) used, just keyed on three integer coordinates plus
// the seed instead of two.
func splitmix64(x uint64) uint64 {
	x += 0x9e3779b97f4a7c15
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

func bedrockHash(seed int64, x, y, z int) float64 {
	h := uint64(seed)
	h = splitmix64(h ^ uint64(int64(x))*0x2545F4914F6CDD1D)
	h = splitmix64(h ^ uint64(int64(y))*0x9E3779B185EBCA87)
	h = splitmix64(h ^ uint64(int64(z))*0xC2B2AE3D27D4EB4F)
	return float64(h%1_000_000) / 1_000_000.0
}
