package persistence

import (
	"bytes"
	"encoding/binary"

	"deepvoxel/internal/building"

	"github.com/go-gl/mathgl/mgl32"
)

// EncodePiece serializes one placement tuple: (piece_type, material,
// position, rotation, stability, connected_to[]), per spec.md §6's
// persistence requirement. connectedTo is the set of pieces p directly
// supports (its i_support list) — the caller re-derives supports_me on
// load by re-adding each edge from both ends, so only one direction needs
// to be stored.
func EncodePiece(p *building.Piece, connectedTo []building.PieceID) []byte {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(p.ID))
	binary.Write(&buf, binary.LittleEndian, p.Type)
	buf.WriteByte(p.Material)
	binary.Write(&buf, binary.LittleEndian, p.Position)
	binary.Write(&buf, binary.LittleEndian, p.Rotation.V)
	binary.Write(&buf, binary.LittleEndian, p.Rotation.W)
	binary.Write(&buf, binary.LittleEndian, p.Stability)
	var static byte
	if p.Static {
		static = 1
	}
	buf.WriteByte(static)

	binary.Write(&buf, binary.LittleEndian, uint32(len(connectedTo)))
	for _, id := range connectedTo {
		binary.Write(&buf, binary.LittleEndian, uint32(id))
	}
	return buf.Bytes()
}

// PieceRecord is one decoded piece placement plus its outgoing support
// links, ready to be re-inserted into an Arena and a Graph.
type PieceRecord struct {
	ID          building.PieceID
	Piece       building.Piece
	ConnectedTo []building.PieceID
}

// DecodePiece reverses EncodePiece.
func DecodePiece(data []byte) (PieceRecord, error) {
	r := bytes.NewReader(data)
	var rec PieceRecord
	var id uint32
	if err := binary.Read(r, binary.LittleEndian, &id); err != nil {
		return rec, err
	}
	rec.ID = building.PieceID(id)
	rec.Piece.ID = rec.ID

	if err := binary.Read(r, binary.LittleEndian, &rec.Piece.Type); err != nil {
		return rec, err
	}
	mat, err := r.ReadByte()
	if err != nil {
		return rec, err
	}
	rec.Piece.Material = mat

	var pos mgl32.Vec3
	if err := binary.Read(r, binary.LittleEndian, &pos); err != nil {
		return rec, err
	}
	rec.Piece.Position = pos

	var v mgl32.Vec3
	var w float32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return rec, err
	}
	if err := binary.Read(r, binary.LittleEndian, &w); err != nil {
		return rec, err
	}
	rec.Piece.Rotation = mgl32.Quat{V: v, W: w}

	if err := binary.Read(r, binary.LittleEndian, &rec.Piece.Stability); err != nil {
		return rec, err
	}
	static, err := r.ReadByte()
	if err != nil {
		return rec, err
	}
	rec.Piece.Static = static != 0

	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return rec, err
	}
	rec.ConnectedTo = make([]building.PieceID, n)
	for i := range rec.ConnectedTo {
		var cid uint32
		if err := binary.Read(r, binary.LittleEndian, &cid); err != nil {
			return rec, err
		}
		rec.ConnectedTo[i] = building.PieceID(cid)
	}
	return rec, nil
}
