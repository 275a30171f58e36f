package tables

import (
	"github.com/setavenger/blindbit-chainstore/internal/memory"
	"github.com/setavenger/blindbit-chainstore/internal/primitives"
)

// Height is a dense array of header links indexed by height, used for both
// the candidate and the confirmed chain.
type Height struct {
	*primitives.ArrayMap
}

func NewHeight(body memory.Storage) *Height {
	return &Height{primitives.NewRecordArray(body, SizeLink)}
}

type HeightRecord struct {
	HeaderFK Link
}

func (h *HeightRecord) Count() Link {
	return 1
}

func (h *HeightRecord) ToData(w *primitives.Writer) bool {
	w.WriteLink(h.HeaderFK)
	return w.Valid()
}

func (h *HeightRecord) FromData(r *primitives.Reader) bool {
	h.HeaderFK = r.ReadLink()
	return r.Valid()
}

// At is the header link at height, terminal above the top.
func (h *Height) At(height uint32) Link {
	var rec HeightRecord
	if !h.Get(Link(height), &rec) {
		return primitives.Terminal
	}
	return rec.HeaderFK
}
