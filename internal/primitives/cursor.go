package primitives

import (
	"encoding/binary"

	"github.com/setavenger/blindbit-chainstore/internal/memory"
)

// Reader decodes little-endian fields from a slot. Any overrun invalidates
// the reader and every later read returns zero values.
type Reader struct {
	acc   *memory.Accessor
	data  []byte
	pos   int
	valid bool
}

// newReader bounds the reader to limit bytes after start, a negative limit
// means the rest of the view.
func newReader(acc *memory.Accessor, start, limit int) *Reader {
	r := &Reader{acc: acc, valid: true}
	data := acc.Data()
	if start > len(data) {
		r.valid = false
		return r
	}
	data = data[start:]
	if limit >= 0 {
		if limit > len(data) {
			r.valid = false
			return r
		}
		data = data[:limit]
	}
	r.data = data
	return r
}

// NewReader reads an unmanaged buffer, used by tests and partial decoders.
func NewReader(data []byte) *Reader {
	return &Reader{data: data, valid: true}
}

func (r *Reader) Valid() bool {
	return r.valid
}

func (r *Reader) Invalidate() {
	r.valid = false
}

func (r *Reader) Position() int {
	return r.pos
}

func (r *Reader) Remaining() int {
	if !r.valid {
		return 0
	}
	return len(r.data) - r.pos
}

func (r *Reader) next(n int) []byte {
	if !r.valid || n < 0 || r.pos+n > len(r.data) {
		r.valid = false
		return nil
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *Reader) Skip(n int) {
	r.next(n)
}

func (r *Reader) ReadUint8() uint8 {
	b := r.next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) ReadBool() bool {
	return r.ReadUint8() != 0
}

func (r *Reader) ReadUint16() uint16 {
	b := r.next(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *Reader) ReadUint32() uint32 {
	b := r.next(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) ReadUint64() uint64 {
	b := r.next(8)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *Reader) ReadLink() Link {
	v := r.ReadUint32()
	if !r.valid {
		return Terminal
	}
	return Link(v)
}

// ReadBytes copies n bytes out of the region.
func (r *Reader) ReadBytes(n int) []byte {
	b := r.next(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// ReadInto fills dst, used for fixed size hashes.
func (r *Reader) ReadInto(dst []byte) {
	b := r.next(len(dst))
	if b != nil {
		copy(dst, b)
	}
}

func (r *Reader) Close() {
	if r.acc != nil {
		r.acc.Release()
		r.acc = nil
	}
}

// Writer encodes little-endian fields into a slot.
type Writer struct {
	acc   *memory.Accessor
	data  []byte
	pos   int
	valid bool
}

func newWriter(acc *memory.Accessor, limit int) *Writer {
	w := &Writer{acc: acc, valid: true}
	data := acc.Data()
	if limit > len(data) {
		w.valid = false
		return w
	}
	w.data = data[:limit]
	return w
}

// NewWriter writes into an unmanaged buffer.
func NewWriter(data []byte) *Writer {
	return &Writer{data: data, valid: true}
}

func (w *Writer) Valid() bool {
	return w.valid
}

func (w *Writer) Position() int {
	return w.pos
}

func (w *Writer) next(n int) []byte {
	if !w.valid || n < 0 || w.pos+n > len(w.data) {
		w.valid = false
		return nil
	}
	b := w.data[w.pos : w.pos+n]
	w.pos += n
	return b
}

func (w *Writer) WriteUint8(v uint8) {
	if b := w.next(1); b != nil {
		b[0] = v
	}
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUint8(1)
		return
	}
	w.WriteUint8(0)
}

func (w *Writer) WriteUint16(v uint16) {
	if b := w.next(2); b != nil {
		binary.LittleEndian.PutUint16(b, v)
	}
}

func (w *Writer) WriteUint32(v uint32) {
	if b := w.next(4); b != nil {
		binary.LittleEndian.PutUint32(b, v)
	}
}

func (w *Writer) WriteUint64(v uint64) {
	if b := w.next(8); b != nil {
		binary.LittleEndian.PutUint64(b, v)
	}
}

func (w *Writer) WriteLink(l Link) {
	w.WriteUint32(uint32(l))
}

func (w *Writer) WriteBytes(v []byte) {
	if b := w.next(len(v)); b != nil {
		copy(b, v)
	}
}

func (w *Writer) Close() {
	if w.acc != nil {
		w.acc.Release()
		w.acc = nil
	}
}
