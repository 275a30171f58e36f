package tables

import (
	"github.com/setavenger/blindbit-chainstore/internal/memory"
	"github.com/setavenger/blindbit-chainstore/internal/primitives"
)

// [parent][flags][height][mtp][version][timestamp][bits][nonce][merkle root]
const headerPayload = SizeLink + 7*SizeU32 + SizeHash

// Header is a record hashmap of block headers keyed by block hash.
type Header struct {
	*primitives.HashMap
}

func NewHeader(head, body memory.Storage, buckets Link) *Header {
	return &Header{primitives.NewRecordMap(head, body, buckets, SizeHash, headerPayload)}
}

type HeaderRecord struct {
	ParentFK   Link
	Flags      uint32
	Height     uint32
	MTP        uint32
	Version    uint32
	Timestamp  uint32
	Bits       uint32
	Nonce      uint32
	MerkleRoot [SizeHash]byte
}

func (h *HeaderRecord) Count() Link {
	return 1
}

func (h *HeaderRecord) ToData(w *primitives.Writer) bool {
	w.WriteLink(h.ParentFK)
	w.WriteUint32(h.Flags)
	w.WriteUint32(h.Height)
	w.WriteUint32(h.MTP)
	w.WriteUint32(h.Version)
	w.WriteUint32(h.Timestamp)
	w.WriteUint32(h.Bits)
	w.WriteUint32(h.Nonce)
	w.WriteBytes(h.MerkleRoot[:])
	return w.Valid()
}

func (h *HeaderRecord) FromData(r *primitives.Reader) bool {
	h.ParentFK = r.ReadLink()
	h.Flags = r.ReadUint32()
	h.Height = r.ReadUint32()
	h.MTP = r.ReadUint32()
	h.Version = r.ReadUint32()
	h.Timestamp = r.ReadUint32()
	h.Bits = r.ReadUint32()
	h.Nonce = r.ReadUint32()
	r.ReadInto(h.MerkleRoot[:])
	return r.Valid()
}

// HeaderContext reads only the rule context of a header.
type HeaderContext struct {
	Flags  uint32
	Height uint32
	MTP    uint32
}

func (h *HeaderContext) FromData(r *primitives.Reader) bool {
	r.Skip(SizeLink)
	h.Flags = r.ReadUint32()
	h.Height = r.ReadUint32()
	h.MTP = r.ReadUint32()
	return r.Valid()
}

type HeaderHeight struct {
	Height uint32
}

func (h *HeaderHeight) FromData(r *primitives.Reader) bool {
	r.Skip(SizeLink + SizeU32)
	h.Height = r.ReadUint32()
	return r.Valid()
}

type HeaderParent struct {
	ParentFK Link
}

func (h *HeaderParent) FromData(r *primitives.Reader) bool {
	h.ParentFK = r.ReadLink()
	return r.Valid()
}
