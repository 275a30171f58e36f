// primitives implements the link addressed tables the store is built from:
// a slot manager over a byte region, a chained hash index and a positional map.
package primitives

import "math"

// Link addresses a record (by index) or a slab (by byte offset).
type Link uint32

const (
	LinkSize = 4

	// Terminal is eof for managers and the end of every bucket chain.
	Terminal Link = math.MaxUint32
)

func (l Link) IsTerminal() bool {
	return l == Terminal
}
