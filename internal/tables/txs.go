package tables

import (
	"github.com/setavenger/blindbit-chainstore/internal/memory"
	"github.com/setavenger/blindbit-chainstore/internal/primitives"
)

// Txs is a slab hashmap of the ordered tx links of a block keyed by header
// link: [count][wire size][tx fk]... with the coinbase first.
type Txs struct {
	*primitives.HashMap
}

func NewTxs(head, body memory.Storage, buckets Link) *Txs {
	return &Txs{primitives.NewSlabMap(head, body, buckets, SizeLink)}
}

type TxsRecord struct {
	Wire  uint32
	TxFKs []Link
}

func (t *TxsRecord) Count() Link {
	return Link(SizeU32 + SizeU32 + SizeLink*len(t.TxFKs))
}

func (t *TxsRecord) ToData(w *primitives.Writer) bool {
	w.WriteUint32(uint32(len(t.TxFKs)))
	w.WriteUint32(t.Wire)
	for _, fk := range t.TxFKs {
		w.WriteLink(fk)
	}
	return w.Valid()
}

func (t *TxsRecord) FromData(r *primitives.Reader) bool {
	count := r.ReadUint32()
	t.Wire = r.ReadUint32()
	if !r.Valid() || int(count)*SizeLink > r.Remaining() {
		r.Invalidate()
		return false
	}
	t.TxFKs = make([]Link, count)
	for i := range t.TxFKs {
		t.TxFKs[i] = r.ReadLink()
	}
	return r.Valid()
}

// TxsCoinbase reads the first tx link, invalid on an empty list.
type TxsCoinbase struct {
	CoinbaseFK Link
}

func (t *TxsCoinbase) FromData(r *primitives.Reader) bool {
	count := r.ReadUint32()
	r.Skip(SizeU32)
	if count == 0 {
		r.Invalidate()
		return false
	}
	t.CoinbaseFK = r.ReadLink()
	return r.Valid()
}

// TxsPosition finds the ordinal of TxFK within the block.
type TxsPosition struct {
	TxFK     Link
	Position uint32
}

func (t *TxsPosition) FromData(r *primitives.Reader) bool {
	count := r.ReadUint32()
	r.Skip(SizeU32)
	for t.Position = 0; t.Position < count && r.Valid(); t.Position++ {
		if r.ReadLink() == t.TxFK {
			return r.Valid()
		}
	}
	r.Invalidate()
	return false
}

type TxsQuantity struct {
	Quantity uint32
}

func (t *TxsQuantity) FromData(r *primitives.Reader) bool {
	t.Quantity = r.ReadUint32()
	return r.Valid()
}

type TxsWire struct {
	Wire uint32
}

func (t *TxsWire) FromData(r *primitives.Reader) bool {
	r.Skip(SizeU32)
	t.Wire = r.ReadUint32()
	return r.Valid()
}
