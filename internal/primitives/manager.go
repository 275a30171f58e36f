package primitives

import (
	"math"

	"github.com/setavenger/blindbit-chainstore/internal/memory"
)

// Manager hands out slots from a byte region. With a zero size it manages a
// slab and links/counts are bytes, otherwise they are records of size bytes.
type Manager struct {
	file memory.Storage
	size int
}

func NewManager(file memory.Storage, size int) *Manager {
	return &Manager{file: file, size: size}
}

func (m *Manager) IsSlab() bool {
	return m.size == 0
}

// Count is the logical record count or slab size.
func (m *Manager) Count() Link {
	return m.positionToLink(m.file.Size())
}

// Truncate reduces the count, false if count is not less than the current.
func (m *Manager) Truncate(count Link) bool {
	if count >= m.Count() {
		return false
	}
	position, ok := m.linkToPosition(count)
	if !ok {
		return false
	}
	return m.file.Resize(position)
}

// Allocate reserves count records (or bytes) and returns the first link.
// Terminal means the region is exhausted or the link space would overflow,
// in both cases nothing was allocated.
func (m *Manager) Allocate(count Link) Link {
	if count.IsTerminal() {
		return Terminal
	}
	if uint64(m.Count())+uint64(count) >= uint64(Terminal) {
		return Terminal
	}

	bytes, ok := m.linkToPosition(count)
	if !ok {
		return Terminal
	}

	offset := m.file.Allocate(bytes)
	if offset == memory.EOF {
		return Terminal
	}
	return m.positionToLink(offset)
}

// Get returns a view at link, nil when terminal or beyond the allocated slots.
// The view must be released before anything else allocates from this manager.
func (m *Manager) Get(link Link) *memory.Accessor {
	if link.IsTerminal() {
		return nil
	}
	position, ok := m.linkToPosition(link)
	if !ok {
		return nil
	}

	acc := m.file.Get(position)
	if acc == nil {
		return nil
	}
	if len(acc.Data()) < max(m.size, 1) {
		acc.Release()
		return nil
	}
	return acc
}

func (m *Manager) linkToPosition(link Link) (int, bool) {
	if m.IsSlab() {
		return int(link), true
	}
	position := uint64(link) * uint64(m.size)
	if position > math.MaxInt {
		return 0, false
	}
	return int(position), true
}

func (m *Manager) positionToLink(position int) Link {
	if !m.IsSlab() {
		position /= m.size
	}
	if uint64(position) >= uint64(Terminal) {
		return Terminal
	}
	return Link(position)
}
