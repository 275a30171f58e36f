package store

import (
	"errors"

	"github.com/setavenger/blindbit-chainstore/internal/logging"
)

var (
	// ErrFull is raised once any region refused an allocation at its limit.
	ErrFull  = errors.New("store region is full")
	ErrFlush = errors.New("store flush failed")
)

// SetError raises a sticky fault condition.
func (s *Store) SetError(err error) {
	if err == nil {
		return
	}
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	s.faults = append(s.faults, err)
	logging.L.Warn().Err(err).Msg("store fault raised")
}

// GetError reports whether the condition target is raised.
func (s *Store) GetError(target error) bool {
	if errors.Is(target, ErrFull) && s.full() {
		return true
	}
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	for _, err := range s.faults {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Fault is the first raised condition, nil while the store is clean.
func (s *Store) Fault() error {
	if s.full() {
		return ErrFull
	}
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	if len(s.faults) == 0 {
		return nil
	}
	return s.faults[0]
}

// ClearError drops every raised condition, a region still at its limit
// raises ErrFull again on its next refused allocation.
func (s *Store) ClearError() {
	s.faultMu.Lock()
	s.faults = nil
	s.faultMu.Unlock()

	for _, m := range s.regions {
		m.ClearFull()
	}
	logging.L.Info().Msg("store faults cleared")
}

func (s *Store) full() bool {
	for _, m := range s.regions {
		if m.IsFull() {
			return true
		}
	}
	return false
}
