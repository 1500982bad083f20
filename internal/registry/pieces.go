package registry

import "github.com/go-gl/mathgl/mgl32"

// SnapGroup is the equivalence class a snap point belongs to (Floor, Wall,
// Roof, ...), per spec.md's "Snap-point record" data model. Groups are
// carried in the piece table only: building.SnapIndex.BestMatch pairs
// snap points by distance and normal alignment and does not compare them.
type SnapGroup string

// SnapPointDef is one of a piece type's local, pre-rotation snap points.
type SnapPointDef struct {
	Offset    mgl32.Vec3 `yaml:"offset"`    // local offset from the piece's grid anchor
	Direction mgl32.Vec3 `yaml:"direction"` // local outward direction
	Group     SnapGroup  `yaml:"group"`
	Accepts   []uint16   `yaml:"accepts"` // piece-type ids listed as partners; not consulted by snap matching
}

// PieceDefinition is one entry of the piece-type table: dimensions (in
// grid cells), local snap points, allowed materials, and whether the
// piece may free-place without a snap pairing — spec.md §9's "dynamic
// dispatch... is a plain table: piece-type -> PieceDefinition{dimensions,
// snap_points, material_options, base_stability}".
type PieceDefinition struct {
	ID              uint16         `yaml:"id"`
	Name            string         `yaml:"name"`
	DimensionsCells [3]int         `yaml:"dimensions_cells"`
	SnapPoints      []SnapPointDef `yaml:"snap_points"`
	MaterialOptions []uint8        `yaml:"material_options"`
	BaseStability   float32        `yaml:"base_stability"`
	FreePlacement   bool           `yaml:"free_placement"` // allowed without any snap pairing
}

// Pieces is the global piece-type table, keyed by PieceDefinition.ID.
var Pieces = make(map[uint16]*PieceDefinition)

// PieceNames resolves a piece type's name back to its id.
var PieceNames = make(map[string]uint16)

// RegisterPiece adds a piece-type definition to the global table.
func RegisterPiece(def *PieceDefinition) {
	Pieces[def.ID] = def
	PieceNames[def.Name] = def.ID
}

// ClearPieces empties the table, mirroring ClearMaterials for Teardown.
func ClearPieces() {
	Pieces = make(map[uint16]*PieceDefinition)
	PieceNames = make(map[string]uint16)
}

const (
	pieceFoundation uint16 = 0
	pieceWall       uint16 = 1
	pieceFloor      uint16 = 2
	pieceRoof       uint16 = 3
)

// InitDefaultPieces registers the engine's built-in piece-type table.
// Foundations free-place against terrain; everything else needs a snap
// pairing to an already-placed piece, matching spec.md §4.E's "snap-point
// pairing exists, or free placement is allowed for this piece type".
func InitDefaultPieces() {
	RegisterPiece(&PieceDefinition{
		ID: pieceFoundation, Name: "foundation", DimensionsCells: [3]int{1, 1, 1},
		MaterialOptions: []uint8{1, 2, 3, 4}, BaseStability: 0, FreePlacement: true,
		SnapPoints: []SnapPointDef{
			{Offset: mgl32.Vec3{0, 1, 0}, Direction: mgl32.Vec3{0, 1, 0}, Group: "Floor", Accepts: []uint16{pieceWall, pieceFloor}},
		},
	})
	RegisterPiece(&PieceDefinition{
		ID: pieceWall, Name: "wall", DimensionsCells: [3]int{1, 1, 1},
		MaterialOptions: []uint8{0, 1, 2, 3, 4}, BaseStability: 0, FreePlacement: false,
		SnapPoints: []SnapPointDef{
			{Offset: mgl32.Vec3{0, -1, 0}, Direction: mgl32.Vec3{0, -1, 0}, Group: "Floor", Accepts: []uint16{pieceFoundation, pieceWall, pieceFloor}},
			{Offset: mgl32.Vec3{0, 1, 0}, Direction: mgl32.Vec3{0, 1, 0}, Group: "Floor", Accepts: []uint16{pieceWall, pieceFloor, pieceRoof}},
		},
	})
	RegisterPiece(&PieceDefinition{
		ID: pieceFloor, Name: "floor", DimensionsCells: [3]int{1, 1, 1},
		MaterialOptions: []uint8{1, 2, 3, 4}, BaseStability: 0, FreePlacement: false,
		SnapPoints: []SnapPointDef{
			{Offset: mgl32.Vec3{0, -1, 0}, Direction: mgl32.Vec3{0, -1, 0}, Group: "Floor", Accepts: []uint16{pieceFoundation, pieceWall}},
		},
	})
	RegisterPiece(&PieceDefinition{
		ID: pieceRoof, Name: "roof", DimensionsCells: [3]int{1, 1, 1},
		MaterialOptions: []uint8{0, 1, 2, 3}, BaseStability: 0, FreePlacement: false,
		SnapPoints: []SnapPointDef{
			{Offset: mgl32.Vec3{0, -1, 0}, Direction: mgl32.Vec3{0, -1, 0}, Group: "Roof", Accepts: []uint16{pieceWall}},
		},
	})
}
