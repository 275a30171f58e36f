package memory

import (
	"math"
	"sync"
	"sync/atomic"
	"unsafe"
)

const DefaultExpansion = 50

// Map is an in-memory Storage. Capacity grows by expansion percent over the
// requested size, limit (if non-zero) caps the capacity which is how disk
// exhaustion surfaces to the managers.
type Map struct {
	// field guards size, remap guards buffer. Lock order is field then remap.
	field sync.Mutex
	remap sync.RWMutex

	buffer    []byte
	size      int
	expansion int
	limit     int

	// full is set when an allocation was refused by limit
	full atomic.Bool
}

func NewMap(expansion, limit int) *Map {
	if expansion < 0 {
		expansion = DefaultExpansion
	}
	return &Map{expansion: expansion, limit: limit}
}

// NewMapFrom creates a map holding a copy of data as its logical content.
func NewMapFrom(data []byte, expansion, limit int) *Map {
	m := NewMap(expansion, limit)
	m.Load(data)
	return m
}

func (m *Map) Capacity() int {
	m.remap.RLock()
	defer m.remap.RUnlock()
	return len(m.buffer)
}

// IsFull reports whether an allocation was refused since the last ClearFull.
func (m *Map) IsFull() bool {
	return m.full.Load()
}

func (m *Map) ClearFull() {
	m.full.Store(false)
}

func (m *Map) Size() int {
	m.field.Lock()
	defer m.field.Unlock()
	return m.size
}

func (m *Map) Resize(size int) bool {
	m.field.Lock()
	defer m.field.Unlock()

	if size < 0 || size > m.capacity() {
		return false
	}
	m.size = size
	return true
}

func (m *Map) Allocate(chunk int) int {
	m.field.Lock()
	defer m.field.Unlock()

	if chunk < 0 || chunk > math.MaxInt-m.size {
		return EOF
	}

	offset := m.size
	end := m.size + chunk
	if end > m.capacity() {
		if !m.grow(end) {
			return EOF
		}
	}

	m.size = end
	return offset
}

func (m *Map) Get(offset int) *Accessor {
	m.field.Lock()
	size := m.size
	m.field.Unlock()

	if offset < 0 || offset > size {
		return nil
	}

	m.remap.RLock()
	return newAccessor(m.buffer[offset:size], m.remap.RUnlock)
}

// Snapshot copies the logical content.
func (m *Map) Snapshot() []byte {
	m.field.Lock()
	defer m.field.Unlock()
	m.remap.RLock()
	defer m.remap.RUnlock()

	out := make([]byte, m.size)
	copy(out, m.buffer[:m.size])
	return out
}

// Load replaces the content with a copy of data.
func (m *Map) Load(data []byte) {
	m.field.Lock()
	defer m.field.Unlock()
	m.remap.Lock()
	defer m.remap.Unlock()

	m.buffer = aligned(len(data))
	copy(m.buffer, data)
	m.size = len(data)
}

// capacity requires field to be held.
func (m *Map) capacity() int {
	m.remap.RLock()
	defer m.remap.RUnlock()
	return len(m.buffer)
}

// grow requires field to be held, it blocks until all accessors are released.
func (m *Map) grow(required int) bool {
	target := required
	if growth := required/100*m.expansion + required%100*m.expansion/100; growth <= math.MaxInt-required {
		target = required + growth
	}
	if m.limit > 0 {
		if required > m.limit {
			m.full.Store(true)
			return false
		}
		target = min(target, m.limit)
	}

	m.remap.Lock()
	defer m.remap.Unlock()

	buffer := aligned(target)
	copy(buffer, m.buffer)
	m.buffer = buffer
	return true
}

// aligned allocates n bytes on an 8 byte boundary so link fields at aligned
// offsets can be accessed atomically.
func aligned(n int) []byte {
	if n == 0 {
		return []byte{}
	}
	words := make([]uint64, (n+7)/8)
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(words))), n)
}
