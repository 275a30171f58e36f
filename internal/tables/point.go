package tables

import (
	"github.com/setavenger/blindbit-chainstore/internal/memory"
	"github.com/setavenger/blindbit-chainstore/internal/primitives"
)

// Point interns previous output tx hashes so spends can be keyed by a link.
// The null point of a coinbase input is never interned, it is terminal.
type Point struct {
	*primitives.HashMap
}

func NewPoint(head, body memory.Storage, buckets Link) *Point {
	return &Point{primitives.NewRecordMap(head, body, buckets, SizeHash, 0)}
}

type PointRecord struct{}

func (p *PointRecord) Count() Link {
	return 1
}

func (p *PointRecord) ToData(w *primitives.Writer) bool {
	return w.Valid()
}
