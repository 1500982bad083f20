package registry

import (
	"os"

	"gopkg.in/yaml.v3"
)

// materialFile/pieceFile are the on-disk shapes LoadMaterials/LoadPieces
// decode, a thin wrapper so the YAML document reads as a named list
// rather than a bare array.
type materialFile struct {
	Materials []MaterialDefinition `yaml:"materials"`
}

type pieceFile struct {
	Pieces []PieceDefinition `yaml:"pieces"`
}

// LoadMaterials reads a material table from a YAML data file and
// registers every entry, replacing InitDefaultMaterials for deployments
// that want data-driven tuning without a rebuild — spec.md §9's "loaded
// at startup from data files".
func LoadMaterials(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc materialFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	ClearMaterials()
	for i := range doc.Materials {
		RegisterMaterial(&doc.Materials[i])
	}
	return nil
}

// LoadPieces reads a piece-type table from a YAML data file and registers
// every entry, replacing InitDefaultPieces.
func LoadPieces(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc pieceFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return err
	}
	ClearPieces()
	for i := range doc.Pieces {
		RegisterPiece(&doc.Pieces[i])
	}
	return nil
}
