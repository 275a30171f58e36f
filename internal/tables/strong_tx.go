package tables

import (
	"github.com/setavenger/blindbit-chainstore/internal/memory"
	"github.com/setavenger/blindbit-chainstore/internal/primitives"
)

const strongTxPayload = SizeLink + SizeFlag

// StrongTx associates a tx with the block it was set strong (or unstrong) by.
// Keyed by tx link, the most recent record per header is that header's
// current association.
type StrongTx struct {
	*primitives.HashMap
}

func NewStrongTx(head, body memory.Storage, buckets Link) *StrongTx {
	return &StrongTx{primitives.NewRecordMap(head, body, buckets, SizeLink, strongTxPayload)}
}

type StrongTxRecord struct {
	HeaderFK Link
	Positive bool
}

func (s *StrongTxRecord) Count() Link {
	return 1
}

func (s *StrongTxRecord) ToData(w *primitives.Writer) bool {
	w.WriteLink(s.HeaderFK)
	w.WriteBool(s.Positive)
	return w.Valid()
}

func (s *StrongTxRecord) FromData(r *primitives.Reader) bool {
	s.HeaderFK = r.ReadLink()
	s.Positive = r.ReadBool()
	return r.Valid()
}
