package primitives

// Iterator walks one bucket chain yielding the slots that carry its key.
// Each step takes and releases its own view, so the caller is free to do
// other lookups between steps.
type Iterator struct {
	m    *HashMap
	key  []byte
	link Link
}

// newIterator starts at link and advances to the first match when link
// itself does not match.
func newIterator(m *HashMap, link Link, key []byte) *Iterator {
	it := &Iterator{m: m, key: key, link: link}
	if !it.IsMatch() {
		it.Advance()
	}
	return it
}

// Self is the current link, terminal once exhausted.
func (it *Iterator) Self() Link {
	return it.link
}

func (it *Iterator) IsMatch() bool {
	if it.link.IsTerminal() {
		return false
	}
	return it.m.isMatch(it.link, it.key)
}

// Advance moves to the next slot with the same key, false at the end of the chain.
func (it *Iterator) Advance() bool {
	for !it.link.IsTerminal() {
		it.link = it.m.Next(it.link)
		if it.link.IsTerminal() {
			return false
		}
		if it.IsMatch() {
			return true
		}
	}
	return false
}
