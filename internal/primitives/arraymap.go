package primitives

import "github.com/setavenger/blindbit-chainstore/internal/memory"

// ArrayMap is a table addressed purely by position, there is no key and no
// chain. Readers and writers hold the body remap lock until closed.
type ArrayMap struct {
	body *Manager
	size int
}

func NewRecordArray(body memory.Storage, size int) *ArrayMap {
	return &ArrayMap{body: NewManager(body, size), size: size}
}

func NewSlabArray(body memory.Storage) *ArrayMap {
	return &ArrayMap{body: NewManager(body, 0)}
}

func (a *ArrayMap) Count() Link {
	return a.body.Count()
}

func (a *ArrayMap) Truncate(count Link) bool {
	return a.body.Truncate(count)
}

func (a *ArrayMap) Get(link Link, rec Decoder) bool {
	acc := a.body.Get(link)
	if acc == nil {
		return false
	}
	limit := a.size
	if a.body.IsSlab() {
		limit = -1
	}
	r := newReader(acc, 0, limit)
	defer r.Close()
	return rec.FromData(r) && r.Valid()
}

func (a *ArrayMap) Put(rec Record) bool {
	return !a.PutLink(rec).IsTerminal()
}

// PutLink appends rec and returns the position it was written at.
func (a *ArrayMap) PutLink(rec Record) Link {
	count := rec.Count()
	link := a.body.Allocate(count)
	if link.IsTerminal() {
		return Terminal
	}

	acc := a.body.Get(link)
	if acc == nil {
		return Terminal
	}
	limit := int(count)
	if !a.body.IsSlab() {
		limit *= a.size
	}
	w := newWriter(acc, limit)
	defer w.Close()

	if !rec.ToData(w) || !w.Valid() {
		return Terminal
	}
	return link
}
