package tables

import (
	"github.com/setavenger/blindbit-chainstore/internal/memory"
	"github.com/setavenger/blindbit-chainstore/internal/primitives"
)

const (
	validatedBkPayload = SizeCode + SizeValue
	validatedTxPayload = 3*SizeU32 + SizeCode + SizeValue + SizeU32
)

// ValidatedBk caches block verdicts keyed by header link.
type ValidatedBk struct {
	*primitives.HashMap
}

func NewValidatedBk(head, body memory.Storage, buckets Link) *ValidatedBk {
	return &ValidatedBk{primitives.NewRecordMap(head, body, buckets, SizeLink, validatedBkPayload)}
}

type ValidatedBkRecord struct {
	Code uint8
	Fees uint64
}

func (v *ValidatedBkRecord) Count() Link {
	return 1
}

func (v *ValidatedBkRecord) ToData(w *primitives.Writer) bool {
	w.WriteUint8(v.Code)
	w.WriteUint64(v.Fees)
	return w.Valid()
}

func (v *ValidatedBkRecord) FromData(r *primitives.Reader) bool {
	v.Code = r.ReadUint8()
	v.Fees = r.ReadUint64()
	return r.Valid()
}

// ValidatedTx caches tx verdicts keyed by tx link, one record per rule context.
type ValidatedTx struct {
	*primitives.HashMap
}

func NewValidatedTx(head, body memory.Storage, buckets Link) *ValidatedTx {
	return &ValidatedTx{primitives.NewRecordMap(head, body, buckets, SizeLink, validatedTxPayload)}
}

type ValidatedTxRecord struct {
	Flags  uint32
	Height uint32
	MTP    uint32
	Code   uint8
	Fee    uint64
	Sigops uint32
}

func (v *ValidatedTxRecord) Count() Link {
	return 1
}

func (v *ValidatedTxRecord) ToData(w *primitives.Writer) bool {
	w.WriteUint32(v.Flags)
	w.WriteUint32(v.Height)
	w.WriteUint32(v.MTP)
	w.WriteUint8(v.Code)
	w.WriteUint64(v.Fee)
	w.WriteUint32(v.Sigops)
	return w.Valid()
}

func (v *ValidatedTxRecord) FromData(r *primitives.Reader) bool {
	v.Flags = r.ReadUint32()
	v.Height = r.ReadUint32()
	v.MTP = r.ReadUint32()
	v.Code = r.ReadUint8()
	v.Fee = r.ReadUint64()
	v.Sigops = r.ReadUint32()
	return r.Valid()
}
