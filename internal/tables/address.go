package tables

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/setavenger/blindbit-chainstore/internal/memory"
	"github.com/setavenger/blindbit-chainstore/internal/primitives"
)

// Address is an optional record multimap of outputs keyed by the sha256 of
// their script, every output paying a script shares its chain.
type Address struct {
	*primitives.HashMap
}

func NewAddress(head, body memory.Storage, buckets Link) *Address {
	return &Address{primitives.NewRecordMap(head, body, buckets, SizeHash, SizeLink)}
}

func AddressKey(script []byte) []byte {
	return chainhash.HashB(script)
}

type AddressRecord struct {
	OutputFK Link
}

func (a *AddressRecord) Count() Link {
	return 1
}

func (a *AddressRecord) ToData(w *primitives.Writer) bool {
	w.WriteLink(a.OutputFK)
	return w.Valid()
}

func (a *AddressRecord) FromData(r *primitives.Reader) bool {
	a.OutputFK = r.ReadLink()
	return r.Valid()
}
