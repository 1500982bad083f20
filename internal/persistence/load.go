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

// Load reads a save file written by Save into store, arena and graph.
// Every decoded piece gets a freshly allocated id from arena; support
// links are remapped from the saved ids to those new ids, and a link
// whose target piece was not restored is dropped.
//
// A single column failing to decode is Corrupt but not fatal to the rest
// of the load — spec.md §6 treats a bad chunk as isolated damage, not a
// reason to abandon every other chunk or the piece set.
func Load(r io.Reader, store *voxel.Store, arena *building.Arena, graph *stability.Graph) (uuid.UUID, int64, error) {
	header, err := ReadHeader(r)
	if err != nil {
		return uuid.UUID{}, 0, err
	}

	var columnCount uint32
	if err := binary.Read(r, binary.LittleEndian, &columnCount); err != nil {
		return header.WorldID, header.Seed, engine.Wrap(engine.Corrupt, err)
	}

	var failed int
	for i := uint32(0); i < columnCount; i++ {
		var x, z int32
		if err := binary.Read(r, binary.LittleEndian, &x); err != nil {
			return header.WorldID, header.Seed, engine.Wrap(engine.Corrupt, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &z); err != nil {
			return header.WorldID, header.Seed, engine.Wrap(engine.Corrupt, err)
		}
		var length uint32
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return header.WorldID, header.Seed, engine.Wrap(engine.Corrupt, err)
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return header.WorldID, header.Seed, engine.Wrap(engine.Corrupt, err)
		}
		id := voxel.ColumnID{X: int(x), Z: int(z)}
		if err := DecodeColumn(store, id, payload); err != nil {
			failed++
			continue
		}
	}

	var pieceCount uint32
	if err := binary.Read(r, binary.LittleEndian, &pieceCount); err != nil {
		return header.WorldID, header.Seed, engine.Wrap(engine.Corrupt, err)
	}

	type pending struct {
		id          building.PieceID
		connectedTo []building.PieceID
	}
	var links []pending
	idMap := make(map[building.PieceID]building.PieceID)
	for i := uint32(0); i < pieceCount; i++ {
		var length uint32
		if err := binary.Read(r, binary.LittleEndian, &length); err != nil {
			return header.WorldID, header.Seed, engine.Wrap(engine.Corrupt, err)
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(r, payload); err != nil {
			return header.WorldID, header.Seed, engine.Wrap(engine.Corrupt, err)
		}
		rec, err := DecodePiece(payload)
		if err != nil {
			failed++
			continue
		}
		newID := arena.Alloc()
		p := arena.Get(newID)
		*p = rec.Piece
		p.ID = newID
		idMap[rec.ID] = newID
		links = append(links, pending{id: newID, connectedTo: rec.ConnectedTo})
	}

	for _, l := range links {
		from := arena.Get(l.id)
		if from == nil {
			continue
		}
		for _, savedTo := range l.connectedTo {
			to, ok := idMap[savedTo]
			if !ok {
				continue
			}
			target := arena.Get(to)
			if target == nil {
				continue
			}
			kind := stability.EdgeKindFor(from.Position, target.Position)
			graph.AddEdge(l.id, to, kind)
		}
	}

	if failed > 0 {
		return header.WorldID, header.Seed, engine.New(engine.Corrupt, "%d entries failed to decode", failed)
	}
	return header.WorldID, header.Seed, nil
}
