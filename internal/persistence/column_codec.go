package persistence

import (
	"bytes"
	"encoding/binary"

	"deepvoxel/internal/voxel"
)

// columnRun is one run-length-encoded span of identical cells along Y,
// the encoding unit SoftbearStudios-mk48/server/terrain/compressed/chunk.go
// uses for its per-column height runs, generalized here from a single
// height value to a full (density, material) cell.
type columnRun struct {
	density int16
	length  uint16
	mat     uint8
}

// EncodeColumn serializes every loaded cell of column id as an RLE stream:
// one run list per (x,z) line through the column, an identical-cell run
// costing 5 bytes regardless of its length. Only chunks the caller has
// already determined are modified should be passed here — unmodified
// chunks aren't persisted at all, since they regenerate deterministically.
func EncodeColumn(store *voxel.Store, id voxel.ColumnID) ([]byte, error) {
	var buf bytes.Buffer
	for lz := 0; lz < voxel.SectionSize; lz++ {
		for lx := 0; lx < voxel.SectionSize; lx++ {
			runs, err := buildColumnRuns(store, id, lx, lz)
			if err != nil {
				return nil, err
			}
			if err := binary.Write(&buf, binary.LittleEndian, uint16(len(runs))); err != nil {
				return nil, err
			}
			for _, r := range runs {
				buf.WriteByte(r.mat)
				if err := binary.Write(&buf, binary.LittleEndian, r.density); err != nil {
					return nil, err
				}
				if err := binary.Write(&buf, binary.LittleEndian, r.length); err != nil {
					return nil, err
				}
			}
		}
	}
	return buf.Bytes(), nil
}

func buildColumnRuns(store *voxel.Store, id voxel.ColumnID, lx, lz int) ([]columnRun, error) {
	wx := id.X*voxel.SectionSize + lx
	wz := id.Z*voxel.SectionSize + lz

	var runs []columnRun
	for wy := 0; wy < voxel.ColumnHeight; wy++ {
		cell, err := store.Get(wx, wy, wz)
		if err != nil {
			return nil, err
		}
		if n := len(runs); n > 0 && runs[n-1].density == cell.Density && runs[n-1].mat == cell.Material && runs[n-1].length < 0xffff {
			runs[n-1].length++
			continue
		}
		runs = append(runs, columnRun{density: cell.Density, mat: cell.Material, length: 1})
	}
	return runs, nil
}

// DecodeColumn reverses EncodeColumn, writing every decoded cell back into
// store at id's world position via Store.Set, which lazily creates the
// column and its sections exactly as live gameplay writes would.
func DecodeColumn(store *voxel.Store, id voxel.ColumnID, data []byte) error {
	r := bytes.NewReader(data)
	for lz := 0; lz < voxel.SectionSize; lz++ {
		for lx := 0; lx < voxel.SectionSize; lx++ {
			wx := id.X*voxel.SectionSize + lx
			wz := id.Z*voxel.SectionSize + lz

			var runCount uint16
			if err := binary.Read(r, binary.LittleEndian, &runCount); err != nil {
				return err
			}
			wy := 0
			for i := uint16(0); i < runCount; i++ {
				mat, err := r.ReadByte()
				if err != nil {
					return err
				}
				var density int16
				if err := binary.Read(r, binary.LittleEndian, &density); err != nil {
					return err
				}
				var length uint16
				if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
					return err
				}
				cell := voxel.Cell{Density: density, Material: mat}
				for j := uint16(0); j < length; j++ {
					store.Set(wx, wy, wz, cell)
					wy++
				}
			}
		}
	}
	return nil
}
