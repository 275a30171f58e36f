package tables

import (
	"github.com/setavenger/blindbit-chainstore/internal/memory"
	"github.com/setavenger/blindbit-chainstore/internal/primitives"
)

// Input is a slab hashmap of the input scripts and witnesses of a tx keyed
// by tx link: [count] then per input [script size][script][item count]
// followed by [item size][item] for every witness item.
type Input struct {
	*primitives.HashMap
}

func NewInput(head, body memory.Storage, buckets Link) *Input {
	return &Input{primitives.NewSlabMap(head, body, buckets, SizeLink)}
}

type InputRecord struct {
	Scripts   [][]byte
	Witnesses [][][]byte
}

func (in *InputRecord) Count() Link {
	size := SizeU32
	for i, script := range in.Scripts {
		size += SizeU32 + len(script) + SizeU32
		for _, item := range in.witness(i) {
			size += SizeU32 + len(item)
		}
	}
	return Link(size)
}

// witness tolerates a record built without witnesses.
func (in *InputRecord) witness(index int) [][]byte {
	if index < len(in.Witnesses) {
		return in.Witnesses[index]
	}
	return nil
}

func (in *InputRecord) ToData(w *primitives.Writer) bool {
	w.WriteUint32(uint32(len(in.Scripts)))
	for i, script := range in.Scripts {
		w.WriteUint32(uint32(len(script)))
		w.WriteBytes(script)
		items := in.witness(i)
		w.WriteUint32(uint32(len(items)))
		for _, item := range items {
			w.WriteUint32(uint32(len(item)))
			w.WriteBytes(item)
		}
	}
	return w.Valid()
}

func (in *InputRecord) FromData(r *primitives.Reader) bool {
	count := r.ReadUint32()
	if !r.Valid() || int(count)*2*SizeU32 > r.Remaining() {
		r.Invalidate()
		return false
	}
	in.Scripts = make([][]byte, count)
	in.Witnesses = make([][][]byte, count)
	for i := range in.Scripts {
		in.Scripts[i], in.Witnesses[i] = readInput(r)
		if !r.Valid() {
			return false
		}
	}
	return r.Valid()
}

func readInput(r *primitives.Reader) ([]byte, [][]byte) {
	script := r.ReadBytes(int(r.ReadUint32()))
	items := r.ReadUint32()
	if !r.Valid() || int(items)*SizeU32 > r.Remaining() {
		r.Invalidate()
		return nil, nil
	}
	var witness [][]byte
	if items > 0 {
		witness = make([][]byte, items)
		for i := range witness {
			witness[i] = r.ReadBytes(int(r.ReadUint32()))
		}
	}
	return script, witness
}

func skipInput(r *primitives.Reader) {
	r.Skip(int(r.ReadUint32()))
	items := r.ReadUint32()
	for i := uint32(0); i < items && r.Valid(); i++ {
		r.Skip(int(r.ReadUint32()))
	}
}

// InputAt reads the script and witness of the input at Index only.
type InputAt struct {
	Index   uint32
	Script  []byte
	Witness [][]byte
}

func (in *InputAt) FromData(r *primitives.Reader) bool {
	count := r.ReadUint32()
	if !r.Valid() || in.Index >= count {
		r.Invalidate()
		return false
	}
	for i := uint32(0); i < in.Index && r.Valid(); i++ {
		skipInput(r)
	}
	in.Script, in.Witness = readInput(r)
	return r.Valid()
}
