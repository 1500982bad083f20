// Package registry holds the data-driven tables spec.md §9 calls for:
// "piece behavior is a plain table... loaded at startup from data files.
// Material behavior is likewise a table." Grounded on the teacher's
// internal/registry/blocks.go RegisterBlock + global-map pattern, with
// the literal struct table replaced by a gopkg.in/yaml.v3-loaded file per
// firestar-voxel-world's central/internal/config/blocks.go.
package registry

// MaterialTier orders materials for the Stability Engine's hierarchy-reset
// rule: placing a piece whose tier is strictly lower than its supporter's
// resets it to grounded (spec.md §4.F, I7). Resolved open question (see
// DESIGN.md): thatch < wood < hardwood < stone < metal.
type MaterialTier int

const (
	TierThatch MaterialTier = iota
	TierWood
	TierHardwood
	TierStone
	TierMetal
)

// MaterialDefinition is one entry of the material table: the stability
// constants spec.md §4.F's propagation rule reads, plus the tier used by
// the hierarchy-reset rule and the mesh/UI-facing display name.
type MaterialDefinition struct {
	ID             uint8        `yaml:"id"`
	Name           string       `yaml:"name"`
	Tier           MaterialTier `yaml:"tier"`
	MaxSupport     float32      `yaml:"max_support"`
	MinSupport     float32      `yaml:"min_support"`
	VerticalLoss   float32      `yaml:"vertical_loss"`
	HorizontalLoss float32      `yaml:"horizontal_loss"`
}

// Materials is the global material table, keyed by MaterialDefinition.ID.
// Populated by InitDefaultMaterials or LoadMaterials at engine Init.
var Materials = make(map[uint8]*MaterialDefinition)

// MaterialNames resolves a material's name back to its id, for data files
// and save/load that reference materials by name rather than raw id.
var MaterialNames = make(map[string]uint8)

// RegisterMaterial adds a material definition to the global table,
// indexing it by both id and name the way the teacher's RegisterBlock
// indexes blocks by both world.BlockType and name.
func RegisterMaterial(def *MaterialDefinition) {
	Materials[def.ID] = def
	MaterialNames[def.Name] = def.ID
}

// ClearMaterials empties the table. Called by Teardown so a second Init
// (e.g. in tests) starts from a clean registry instead of accumulating
// stale entries across world lifetimes.
func ClearMaterials() {
	Materials = make(map[uint8]*MaterialDefinition)
	MaterialNames = make(map[string]uint8)
}

// InitDefaultMaterials registers the engine's built-in material table,
// used when no data file is supplied to LoadMaterials. Tier ordering is
// the resolved Open Question from spec.md §9 (see DESIGN.md): thatch is
// the flimsiest roofing material, below wood.
//
// wood.VerticalLoss is tuned to spec.md §8 scenario 1: a grounded wood
// foundation with a 20-wall chain of wood walls stacked on top of it
// (100*(1-loss)^n) must keep wall 16 stable (>= min_support 20) while
// wall 17 and above are not.
const woodVerticalLoss = 0.095
func InitDefaultMaterials() {
	RegisterMaterial(&MaterialDefinition{ID: 0, Name: "thatch", Tier: TierThatch, MaxSupport: 40, MinSupport: 10, VerticalLoss: 0.45, HorizontalLoss: 0.60})
	RegisterMaterial(&MaterialDefinition{ID: 1, Name: "wood", Tier: TierWood, MaxSupport: 100, MinSupport: 20, VerticalLoss: woodVerticalLoss, HorizontalLoss: 0.50})
	RegisterMaterial(&MaterialDefinition{ID: 2, Name: "hardwood", Tier: TierHardwood, MaxSupport: 160, MinSupport: 30, VerticalLoss: 0.22, HorizontalLoss: 0.40})
	RegisterMaterial(&MaterialDefinition{ID: 3, Name: "stone", Tier: TierStone, MaxSupport: 260, MinSupport: 40, VerticalLoss: 0.15, HorizontalLoss: 0.30})
	RegisterMaterial(&MaterialDefinition{ID: 4, Name: "metal", Tier: TierMetal, MaxSupport: 400, MinSupport: 60, VerticalLoss: 0.08, HorizontalLoss: 0.18})
}

// LossFor returns the loss factor a material applies to an outgoing
// support edge of the given kind.
func (m *MaterialDefinition) LossFor(vertical bool) float32 {
	if vertical {
		return m.VerticalLoss
	}
	return m.HorizontalLoss
}
