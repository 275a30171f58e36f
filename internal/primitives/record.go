package primitives

// Record is anything that can be written into a newly allocated slot.
type Record interface {
	// Count is the number of slots for record tables or the payload bytes for slab tables.
	Count() Link
	ToData(w *Writer) bool
}

// Decoder reads a payload (or a prefix of it) back out of a slot.
type Decoder interface {
	FromData(r *Reader) bool
}
