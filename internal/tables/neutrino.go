package tables

import (
	"github.com/setavenger/blindbit-chainstore/internal/memory"
	"github.com/setavenger/blindbit-chainstore/internal/primitives"
)

// Neutrino is an optional slab hashmap of BIP158 basic filters keyed by
// header link: [filter header][filter size][filter].
type Neutrino struct {
	*primitives.HashMap
}

func NewNeutrino(head, body memory.Storage, buckets Link) *Neutrino {
	return &Neutrino{primitives.NewSlabMap(head, body, buckets, SizeLink)}
}

type NeutrinoRecord struct {
	FilterHeader [SizeHash]byte
	Filter       []byte
}

func (n *NeutrinoRecord) Count() Link {
	return Link(SizeHash + SizeU32 + len(n.Filter))
}

func (n *NeutrinoRecord) ToData(w *primitives.Writer) bool {
	w.WriteBytes(n.FilterHeader[:])
	w.WriteUint32(uint32(len(n.Filter)))
	w.WriteBytes(n.Filter)
	return w.Valid()
}

func (n *NeutrinoRecord) FromData(r *primitives.Reader) bool {
	r.ReadInto(n.FilterHeader[:])
	n.Filter = r.ReadBytes(int(r.ReadUint32()))
	return r.Valid()
}

// NeutrinoHeader reads the filter header only.
type NeutrinoHeader struct {
	FilterHeader [SizeHash]byte
}

func (n *NeutrinoHeader) FromData(r *primitives.Reader) bool {
	r.ReadInto(n.FilterHeader[:])
	return r.Valid()
}
