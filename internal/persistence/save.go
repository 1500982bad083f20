package persistence

import (
	"encoding/binary"
	"io"

	"deepvoxel/internal/building"
	"deepvoxel/internal/engine"
	"deepvoxel/internal/stability"
	"deepvoxel/internal/voxel"

	"github.com/google/uuid"
)

// Save writes a full save file: header, the RLE-encoded modified columns,
// then every allocated building piece with its outgoing support links.
// Unmodified columns are never written — they regenerate deterministically
// from (section_id, seed) per spec.md §6.
func Save(w io.Writer, store *voxel.Store, arena *building.Arena, graph *stability.Graph, modified []voxel.ColumnID, worldID uuid.UUID, seed int64) error {
	if err := WriteHeader(w, Header{Version: FormatVersion, Seed: seed, WorldID: worldID}); err != nil {
		return err
	}

	var present []voxel.ColumnID
	for _, id := range modified {
		if store.HasColumn(id) {
			present = append(present, id)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(present))); err != nil {
		return err
	}
	for _, id := range present {
		payload, err := EncodeColumn(store, id)
		if err != nil {
			return engine.Wrap(engine.Corrupt, err)
		}
		if err := binary.Write(w, binary.LittleEndian, int32(id.X)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, int32(id.Z)); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, uint32(len(payload))); err != nil {
			return err
		}
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}

	var ids []building.PieceID
	for id := building.PieceID(1); int(id) < arena.Len(); id++ {
		if arena.Get(id) != nil {
			ids = append(ids, id)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(ids))); err != nil {
		return err
	}
	for _, id := range ids {
		p := arena.Get(id)
		payload := EncodePiece(p, graph.ISupport(id))
		if err := binary.Write(w, binary.LittleEndian, uint32(len(payload))); err != nil {
			return err
		}
		if _, err := w.Write(payload); err != nil {
			return err
		}
	}
	return nil
}
