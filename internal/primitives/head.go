package primitives

import (
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/setavenger/blindbit-chainstore/internal/memory"
)

// Head is the bucket table of a hash map, laid out as
// [body count][bucket 0]...[bucket n-1], one link each.
type Head struct {
	file    memory.Storage
	buckets Link

	// publish serialises bucket updates so a push reads and replaces a bucket atomically.
	publish sync.Mutex
}

func NewHead(file memory.Storage, buckets Link) *Head {
	if buckets == 0 {
		buckets = 1
	}
	return &Head{file: file, buckets: buckets}
}

func (h *Head) Buckets() Link {
	return h.buckets
}

func (h *Head) size() int {
	return LinkSize * (1 + int(h.buckets))
}

// Create allocates the table with every bucket terminal, the region must be empty.
func (h *Head) Create(bodyCount Link) bool {
	if h.file.Size() != 0 {
		return false
	}
	if h.file.Allocate(h.size()) == memory.EOF {
		return false
	}

	acc := h.file.Get(0)
	if acc == nil {
		return false
	}
	w := newWriter(acc, h.size())
	defer w.Close()

	w.WriteLink(bodyCount)
	for i := Link(0); i < h.buckets; i++ {
		w.WriteLink(Terminal)
	}
	return w.Valid()
}

// Verify checks the table is complete and agrees with the body count.
func (h *Head) Verify(bodyCount Link) bool {
	if h.file.Size() != h.size() {
		return false
	}
	count, ok := h.GetBodyCount()
	return ok && count == bodyCount
}

func (h *Head) GetBodyCount() (Link, bool) {
	acc := h.file.Get(0)
	if acc == nil {
		return Terminal, false
	}
	r := newReader(acc, 0, LinkSize)
	defer r.Close()
	count := r.ReadLink()
	return count, r.Valid()
}

func (h *Head) SetBodyCount(count Link) bool {
	acc := h.file.Get(0)
	if acc == nil {
		return false
	}
	w := newWriter(acc, LinkSize)
	defer w.Close()
	w.WriteLink(count)
	return w.Valid()
}

// Index maps a key onto its bucket.
func (h *Head) Index(key []byte) Link {
	return Link(xxhash.Sum64(key) % uint64(h.buckets))
}

// Top is the most recently published link for the key's bucket.
func (h *Head) Top(key []byte) Link {
	return h.top(h.Index(key))
}

func (h *Head) top(index Link) Link {
	if index >= h.buckets {
		return Terminal
	}
	acc := h.file.Get(LinkSize * (1 + int(index)))
	if acc == nil {
		return Terminal
	}
	defer acc.Release()
	link, _ := loadLink(acc.Data())
	return link
}

func (h *Head) setTop(index, link Link) bool {
	if index >= h.buckets {
		return false
	}
	acc := h.file.Get(LinkSize * (1 + int(index)))
	if acc == nil {
		return false
	}
	defer acc.Release()
	return storeLink(acc.Data(), link)
}
