package primitives

import (
	"bytes"

	"github.com/setavenger/blindbit-chainstore/internal/memory"
)

// HashMap is a bucket table over a head region plus chained slots in a body
// region. Every slot is [next][key][payload] and next points at whatever
// headed the bucket when the slot was published, so chains are LIFO and
// duplicate keys are iterated most recent first.
type HashMap struct {
	head    *Head
	body    *Manager
	keySize int

	// payload size of record maps, zero for slab maps.
	size int
	slab bool
}

// NewRecordMap creates a map of fixed slots, size is the payload size.
func NewRecordMap(head, body memory.Storage, buckets Link, keySize, size int) *HashMap {
	return &HashMap{
		head:    NewHead(head, buckets),
		body:    NewManager(body, LinkSize+keySize+size),
		keySize: keySize,
		size:    size,
	}
}

// NewSlabMap creates a map of variable length slots addressed by byte offset.
func NewSlabMap(head, body memory.Storage, buckets Link, keySize int) *HashMap {
	return &HashMap{
		head:    NewHead(head, buckets),
		body:    NewManager(body, 0),
		keySize: keySize,
		slab:    true,
	}
}

func (m *HashMap) KeySize() int {
	return m.keySize
}

func (m *HashMap) Buckets() Link {
	return m.head.Buckets()
}

// Count is the body record count (or slab byte size).
func (m *HashMap) Count() Link {
	return m.body.Count()
}

// Create initialises the bucket table, only valid on a new store.
func (m *HashMap) Create() bool {
	return m.head.Create(m.body.Count()) && m.Verify()
}

// Verify checks the head was closed against the same body it is opened with.
func (m *HashMap) Verify() bool {
	return m.head.Verify(m.body.Count())
}

// Snap records the current body count in the head, called before the head is persisted.
func (m *HashMap) Snap() bool {
	return m.head.SetBodyCount(m.body.Count())
}

func (m *HashMap) Exists(key []byte) bool {
	return !m.First(key).IsTerminal()
}

// First is the most recently published slot with key.
func (m *HashMap) First(key []byte) Link {
	return m.It(key).Self()
}

// It iterates every slot with key, most recent first.
func (m *HashMap) It(key []byte) *Iterator {
	return newIterator(m, m.head.Top(key), key)
}

// ItFrom iterates from link, which is kept only if it carries key.
func (m *HashMap) ItFrom(link Link, key []byte) *Iterator {
	return newIterator(m, link, key)
}

// Find decodes the most recent slot with key.
func (m *HashMap) Find(key []byte, rec Decoder) bool {
	return m.Get(m.First(key), rec)
}

// Get decodes the payload of the slot at link.
func (m *HashMap) Get(link Link, rec Decoder) bool {
	r := m.payloadReader(link)
	if r == nil {
		return false
	}
	defer r.Close()
	return rec.FromData(r) && r.Valid()
}

// GetKey returns a copy of the key stored at link.
func (m *HashMap) GetKey(link Link) []byte {
	acc := m.body.Get(link)
	if acc == nil {
		return nil
	}
	r := newReader(acc, LinkSize, m.keySize)
	defer r.Close()
	key := r.ReadBytes(m.keySize)
	if !r.Valid() {
		return nil
	}
	return key
}

// Put writes and publishes rec under key.
func (m *HashMap) Put(key []byte, rec Record) bool {
	return !m.PutLink(key, rec).IsTerminal()
}

// PutLink writes and publishes rec under key, returning its link or terminal.
// A failure after allocation leaves an unreachable slot behind, never a
// partially linked one.
func (m *HashMap) PutLink(key []byte, rec Record) Link {
	link := m.Allocate(m.slots(rec))
	if link.IsTerminal() {
		return Terminal
	}
	if !m.Set(link, key, rec) || !m.Commit(link, key) {
		return Terminal
	}
	return link
}

// Allocate reserves body space without writing or publishing anything.
func (m *HashMap) Allocate(count Link) Link {
	return m.body.Allocate(count)
}

// Truncate drops body slots from count upward. Only slots that were never
// committed may be dropped, a published slot is still referenced by its bucket.
func (m *HashMap) Truncate(count Link) bool {
	return m.body.Truncate(count)
}

// slots is what Allocate needs for rec (records for record maps, bytes for slabs).
func (m *HashMap) slots(rec Record) Link {
	if m.slab {
		return Link(LinkSize+m.keySize) + rec.Count()
	}
	return rec.Count()
}

// Set writes an allocated slot with a terminal next. The slot is invisible
// until Commit.
func (m *HashMap) Set(link Link, key []byte, rec Record) bool {
	if len(key) != m.keySize {
		return false
	}
	acc := m.body.Get(link)
	if acc == nil {
		return false
	}

	limit := LinkSize + m.keySize + m.size
	if m.slab {
		limit = LinkSize + m.keySize + int(rec.Count())
	}
	w := newWriter(acc, limit)
	defer w.Close()

	w.WriteLink(Terminal)
	w.WriteBytes(key)
	return rec.ToData(w) && w.Valid()
}

// Commit publishes a written slot as the head of its bucket. This is the
// only point at which the slot becomes reachable.
func (m *HashMap) Commit(link Link, key []byte) bool {
	index := m.head.Index(key)

	m.head.publish.Lock()
	defer m.head.publish.Unlock()

	if !m.setNext(link, m.head.top(index)) {
		return false
	}
	return m.head.setTop(index, link)
}

// Next returns the link following link in its chain.
func (m *HashMap) Next(link Link) Link {
	acc := m.body.Get(link)
	if acc == nil {
		return Terminal
	}
	r := newReader(acc, 0, LinkSize)
	defer r.Close()
	return r.ReadLink()
}

func (m *HashMap) setNext(link, next Link) bool {
	acc := m.body.Get(link)
	if acc == nil {
		return false
	}
	w := newWriter(acc, LinkSize)
	defer w.Close()
	w.WriteLink(next)
	return w.Valid()
}

func (m *HashMap) isMatch(link Link, key []byte) bool {
	acc := m.body.Get(link)
	if acc == nil {
		return false
	}
	defer acc.Release()
	data := acc.Data()
	if len(data) < LinkSize+m.keySize {
		return false
	}
	return bytes.Equal(data[LinkSize:LinkSize+m.keySize], key)
}

// payloadReader is positioned after the key and bounded to the payload.
func (m *HashMap) payloadReader(link Link) *Reader {
	acc := m.body.Get(link)
	if acc == nil {
		return nil
	}
	limit := m.size
	if m.slab {
		limit = -1
	}
	return newReader(acc, LinkSize+m.keySize, limit)
}
