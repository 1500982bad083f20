// Package voxel implements the Voxel Store and World Generator: a
// palette-compressed, vertically-stacked chunked storage of signed-density
// cells, and the deterministic generator that populates it.
package voxel

const (
	// SectionSize is the edge length of one section, in cells.
	SectionSize = 16
	// CellsPerSection is the total cell count of one section.
	CellsPerSection = SectionSize * SectionSize * SectionSize
	// SectionsPerColumn is how many sections are stacked to form one column.
	SectionsPerColumn = 4
	// ColumnHeight is the total cell height of a column.
	ColumnHeight = SectionsPerColumn * SectionSize
	// PaddedSize is the sampling size (section + 1-cell neighbor overlap
	// on all 6 faces) meshing needs for seamless boundary output.
	PaddedSize = SectionSize + 2
)

// Cell is one voxel: a signed density (negative = interior/solid, positive
// = exterior/air, by spec convention) and a material id naming what fills
// the interior.
type Cell struct {
	Density  int16
	Material uint8
}

// Air is the canonical empty cell: maximal positive density, material 0.
var Air = Cell{Density: 32767, Material: 0}

// IsSolid reports whether a cell is on the interior side of the surface.
func (c Cell) IsSolid() bool { return c.Density < 0 }

// SectionID identifies one section within a column: X/Z are world-space
// column coordinates, Y is the section's vertical slot (0..SectionsPerColumn-1).
type SectionID struct {
	X, Y, Z int
}

// ColumnID identifies a column (X/Z only — a column spans all Y slots).
type ColumnID struct {
	X, Z int
}

func (s SectionID) Column() ColumnID { return ColumnID{X: s.X, Z: s.Z} }
