package tables

import (
	"github.com/setavenger/blindbit-chainstore/internal/memory"
	"github.com/setavenger/blindbit-chainstore/internal/primitives"
)

// Output is a slab array of [parent][value][script size][script].
type Output struct {
	*primitives.ArrayMap
}

func NewOutput(body memory.Storage) *Output {
	return &Output{primitives.NewSlabArray(body)}
}

type OutputRecord struct {
	ParentFK Link
	Value    uint64
	Script   []byte
}

func (o *OutputRecord) Count() Link {
	return Link(SizeLink + SizeValue + SizeU32 + len(o.Script))
}

func (o *OutputRecord) ToData(w *primitives.Writer) bool {
	w.WriteLink(o.ParentFK)
	w.WriteUint64(o.Value)
	w.WriteUint32(uint32(len(o.Script)))
	w.WriteBytes(o.Script)
	return w.Valid()
}

func (o *OutputRecord) FromData(r *primitives.Reader) bool {
	o.ParentFK = r.ReadLink()
	o.Value = r.ReadUint64()
	o.Script = r.ReadBytes(int(r.ReadUint32()))
	return r.Valid()
}

type OutputParent struct {
	ParentFK Link
}

func (o *OutputParent) FromData(r *primitives.Reader) bool {
	o.ParentFK = r.ReadLink()
	return r.Valid()
}
