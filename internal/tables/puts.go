package tables

import (
	"github.com/setavenger/blindbit-chainstore/internal/memory"
	"github.com/setavenger/blindbit-chainstore/internal/primitives"
)

// Puts is a slab array of the spend and output links of each tx, in order.
type Puts struct {
	*primitives.ArrayMap
}

func NewPuts(body memory.Storage) *Puts {
	return &Puts{primitives.NewSlabArray(body)}
}

type PutsRecord struct {
	SpendFKs  []Link
	OutputFKs []Link
}

func (p *PutsRecord) Count() Link {
	return Link(SizeLink * (len(p.SpendFKs) + len(p.OutputFKs)))
}

func (p *PutsRecord) ToData(w *primitives.Writer) bool {
	for _, fk := range p.SpendFKs {
		w.WriteLink(fk)
	}
	for _, fk := range p.OutputFKs {
		w.WriteLink(fk)
	}
	return w.Valid()
}

// PutsLink reads the single link at a slab position.
type PutsLink struct {
	FK Link
}

func (p *PutsLink) FromData(r *primitives.Reader) bool {
	p.FK = r.ReadLink()
	return r.Valid()
}

// At is the link stored at ordinal position within the puts starting at putsFK.
func (p *Puts) At(putsFK Link, position uint32) Link {
	if putsFK.IsTerminal() {
		return primitives.Terminal
	}
	var fk PutsLink
	if !p.Get(putsFK+Link(SizeLink*position), &fk) {
		return primitives.Terminal
	}
	return fk.FK
}
