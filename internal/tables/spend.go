package tables

import (
	"encoding/binary"

	"github.com/setavenger/blindbit-chainstore/internal/memory"
	"github.com/setavenger/blindbit-chainstore/internal/primitives"
)

const (
	sizeSpendKey = SizeLink + SizeIndex
	spendPayload = SizeLink + SizeU32
)

// Spend is a record hashmap of inputs keyed by the point they consume, so
// all spends of one point share a chain.
type Spend struct {
	*primitives.HashMap
}

func NewSpend(head, body memory.Storage, buckets Link) *Spend {
	return &Spend{primitives.NewRecordMap(head, body, buckets, sizeSpendKey, spendPayload)}
}

func SpendKey(pointFK Link, index uint32) []byte {
	k := make([]byte, sizeSpendKey)
	binary.LittleEndian.PutUint32(k[:SizeLink], uint32(pointFK))
	binary.LittleEndian.PutUint32(k[SizeLink:], index)
	return k
}

func DecodeSpendKey(key []byte) (pointFK Link, index uint32, ok bool) {
	if len(key) != sizeSpendKey {
		return primitives.Terminal, 0, false
	}
	pointFK = Link(binary.LittleEndian.Uint32(key[:SizeLink]))
	index = binary.LittleEndian.Uint32(key[SizeLink:])
	return pointFK, index, true
}

type SpendRecord struct {
	ParentFK Link
	Sequence uint32
}

func (s *SpendRecord) Count() Link {
	return 1
}

func (s *SpendRecord) ToData(w *primitives.Writer) bool {
	w.WriteLink(s.ParentFK)
	w.WriteUint32(s.Sequence)
	return w.Valid()
}

func (s *SpendRecord) FromData(r *primitives.Reader) bool {
	s.ParentFK = r.ReadLink()
	s.Sequence = r.ReadUint32()
	return r.Valid()
}
