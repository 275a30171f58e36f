package store

// Transactor is the commit scope of the single logical writer. Every write
// of a mutating operation happens while one is held, readers never take one.
type Transactor struct {
	release func()
}

// GetTransactor blocks until no other commit scope is open.
func (s *Store) GetTransactor() *Transactor {
	s.transactor.Lock()
	return &Transactor{release: s.transactor.Unlock}
}

func (t *Transactor) Release() {
	if t.release != nil {
		t.release()
		t.release = nil
	}
}
