// memory defines the byte region contract the slot managers allocate from.
package memory

// EOF is returned by Allocate when the region cannot grow.
const EOF = -1

// Storage is a growable byte region. Offsets are stable for the life of the
// region, the backing memory is not (growth remaps), so bytes are only ever
// reached through an Accessor.
type Storage interface {
	// Capacity is the current size of the backing memory.
	Capacity() int

	// Size is the logical size, always <= Capacity.
	Size() int

	// Resize sets the logical size, false if size exceeds capacity.
	Resize(size int) bool

	// Allocate reserves chunk bytes and returns the offset of the first one (or EOF).
	Allocate(chunk int) int

	// Get returns read/write access from offset to the logical end (nil if out of range).
	// The accessor blocks growth until released.
	Get(offset int) *Accessor
}

// Accessor is a short lived view over a region. It holds the remap lock
// shared, a caller must Release it before doing anything that may allocate.
type Accessor struct {
	data    []byte
	release func()
}

func newAccessor(data []byte, release func()) *Accessor {
	return &Accessor{data: data, release: release}
}

// Data is the view from the accessor's offset to the logical end at the time of access.
func (a *Accessor) Data() []byte {
	return a.data
}

func (a *Accessor) Release() {
	if a.release != nil {
		a.release()
		a.release = nil
	}
	a.data = nil
}
