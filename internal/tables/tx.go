package tables

import (
	"github.com/setavenger/blindbit-chainstore/internal/memory"
	"github.com/setavenger/blindbit-chainstore/internal/primitives"
)

// [coinbase][light][heavy][locktime][version][ins][outs][puts fk]
const txPayload = SizeFlag + 6*SizeU32 + SizeLink

// Tx is a record hashmap of transactions keyed by tx hash. Instances may
// share a hash (duplicate coinbases), each is its own slot.
type Tx struct {
	*primitives.HashMap
}

func NewTx(head, body memory.Storage, buckets Link) *Tx {
	return &Tx{primitives.NewRecordMap(head, body, buckets, SizeHash, txPayload)}
}

type TxRecord struct {
	Coinbase  bool
	LightSize uint32
	HeavySize uint32
	Locktime  uint32
	Version   uint32
	InsCount  uint32
	OutsCount uint32

	// PutsFK is the slab offset of InsCount spend links followed by OutsCount output links.
	PutsFK Link
}

func (t *TxRecord) Count() Link {
	return 1
}

func (t *TxRecord) ToData(w *primitives.Writer) bool {
	w.WriteBool(t.Coinbase)
	w.WriteUint32(t.LightSize)
	w.WriteUint32(t.HeavySize)
	w.WriteUint32(t.Locktime)
	w.WriteUint32(t.Version)
	w.WriteUint32(t.InsCount)
	w.WriteUint32(t.OutsCount)
	w.WriteLink(t.PutsFK)
	return w.Valid()
}

func (t *TxRecord) FromData(r *primitives.Reader) bool {
	t.Coinbase = r.ReadBool()
	t.LightSize = r.ReadUint32()
	t.HeavySize = r.ReadUint32()
	t.Locktime = r.ReadUint32()
	t.Version = r.ReadUint32()
	t.InsCount = r.ReadUint32()
	t.OutsCount = r.ReadUint32()
	t.PutsFK = r.ReadLink()
	return r.Valid()
}

type TxCoinbase struct {
	Coinbase bool
}

func (t *TxCoinbase) FromData(r *primitives.Reader) bool {
	t.Coinbase = r.ReadBool()
	return r.Valid()
}

type TxVersion struct {
	Version uint32
}

func (t *TxVersion) FromData(r *primitives.Reader) bool {
	r.Skip(SizeFlag + 3*SizeU32)
	t.Version = r.ReadUint32()
	return r.Valid()
}

// TxPuts reads what is needed to walk the tx's spends and outputs.
type TxPuts struct {
	InsCount  uint32
	OutsCount uint32
	PutsFK    Link
}

func (t *TxPuts) FromData(r *primitives.Reader) bool {
	r.Skip(SizeFlag + 4*SizeU32)
	t.InsCount = r.ReadUint32()
	t.OutsCount = r.ReadUint32()
	t.PutsFK = r.ReadLink()
	return r.Valid()
}
