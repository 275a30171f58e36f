package store

import (
	"errors"

	"github.com/setavenger/blindbit-chainstore/internal/logging"
	"github.com/setavenger/blindbit-chainstore/internal/memory/backend"
)

var ErrNoSnapshot = errors.New("no snapshot to restore")

// Snapshot saves the loaded store into to in one batch, it waits for any
// open commit scope. The store's own backend is not touched.
func (s *Store) Snapshot(to backend.Backend) error {
	t := s.GetTransactor()
	defer t.Release()

	if err := s.snapHeads(); err != nil {
		return err
	}
	if err := to.SaveAll(s.dump()); err != nil {
		logging.L.Err(err).Msg("failed to save snapshot")
		return err
	}

	logging.L.Info().
		Str("id", s.ID.String()).
		Uint32("confirmed", uint32(s.Confirmed.Count())).
		Msg("snapshot taken")
	return nil
}

// Restore overwrites the store's backend with the snapshot held by from and
// opens the result. It is used on an unloaded store, usually after Open
// failed with ErrCorrupt.
func (s *Store) Restore(from backend.Backend) error {
	manifest, err := from.Load(manifestRegion)
	if err != nil {
		logging.L.Err(err).Msg("failed to read snapshot manifest")
		return err
	}
	if manifest == nil {
		return ErrNoSnapshot
	}

	regions := make(map[string][]byte, len(s.names)+1)
	regions[manifestRegion] = manifest
	for _, name := range s.names {
		data, err := from.Load(name)
		if err != nil {
			logging.L.Err(err).Str("region", name).Msg("failed to load snapshot region")
			return err
		}
		regions[name] = data
	}

	if err = s.backend.SaveAll(regions); err != nil {
		logging.L.Err(err).Msg("failed to write restored regions")
		return err
	}
	logging.L.Warn().Msg("store restored from snapshot")
	return s.Open()
}
