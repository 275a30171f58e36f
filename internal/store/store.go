// store owns the regions and tables of the chain store and their lifecycle.
package store

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/setavenger/blindbit-chainstore/internal/logging"
	"github.com/setavenger/blindbit-chainstore/internal/memory"
	"github.com/setavenger/blindbit-chainstore/internal/memory/backend"
	"github.com/setavenger/blindbit-chainstore/internal/tables"
)

// Version is written to the manifest, a store of another version is not opened.
const Version uint32 = 1

const manifestRegion = "manifest"

var (
	ErrNotCreated = errors.New("store has not been created")
	ErrExists     = errors.New("store already exists")
	ErrCorrupt    = errors.New("store failed verification")
	ErrVersion    = errors.New("store version mismatch")
)

type hashTable interface {
	Create() bool
	Verify() bool
	Snap() bool
}

type Store struct {
	settings Settings
	backend  backend.Backend

	// region names in a fixed order, heads before bodies
	names   []string
	regions map[string]*memory.Map
	hashes  map[string]hashTable

	ID uuid.UUID

	// Archives
	Header *tables.Header
	Tx     *tables.Tx
	Txs    *tables.Txs
	Puts   *tables.Puts
	Point  *tables.Point
	Spend  *tables.Spend
	Output *tables.Output
	Input  *tables.Input

	// Indexes
	Candidate *tables.Height
	Confirmed *tables.Height
	StrongTx  *tables.StrongTx

	// Caches
	ValidatedBk *tables.ValidatedBk
	ValidatedTx *tables.ValidatedTx

	// Optionals, nil when disabled in the settings
	Address  *tables.Address
	Neutrino *tables.Neutrino

	transactor sync.Mutex

	faultMu sync.Mutex
	faults  []error
}

func New(settings Settings, be backend.Backend) *Store {
	s := &Store{
		settings: settings,
		backend:  be,
		regions:  make(map[string]*memory.Map),
		hashes:   make(map[string]hashTable),
	}

	s.Header = tables.NewHeader(s.head("header"), s.body("header"), settings.HeaderBuckets)
	s.Tx = tables.NewTx(s.head("tx"), s.body("tx"), settings.TxBuckets)
	s.Txs = tables.NewTxs(s.head("txs"), s.body("txs"), settings.TxsBuckets)
	s.Puts = tables.NewPuts(s.body("puts"))
	s.Point = tables.NewPoint(s.head("point"), s.body("point"), settings.PointBuckets)
	s.Spend = tables.NewSpend(s.head("spend"), s.body("spend"), settings.SpendBuckets)
	s.Output = tables.NewOutput(s.body("output"))
	s.Input = tables.NewInput(s.head("input"), s.body("input"), settings.InputBuckets)

	s.Candidate = tables.NewHeight(s.body("candidate"))
	s.Confirmed = tables.NewHeight(s.body("confirmed"))
	s.StrongTx = tables.NewStrongTx(s.head("strong_tx"), s.body("strong_tx"), settings.StrongTxBuckets)

	s.ValidatedBk = tables.NewValidatedBk(s.head("validated_bk"), s.body("validated_bk"), settings.ValidatedBkBuckets)
	s.ValidatedTx = tables.NewValidatedTx(s.head("validated_tx"), s.body("validated_tx"), settings.ValidatedTxBuckets)

	if settings.AddressBuckets > 0 {
		s.Address = tables.NewAddress(s.head("address"), s.body("address"), settings.AddressBuckets)
		s.hashes["address"] = s.Address
	}
	if settings.NeutrinoBuckets > 0 {
		s.Neutrino = tables.NewNeutrino(s.head("neutrino"), s.body("neutrino"), settings.NeutrinoBuckets)
		s.hashes["neutrino"] = s.Neutrino
	}

	s.hashes["header"] = s.Header
	s.hashes["tx"] = s.Tx
	s.hashes["txs"] = s.Txs
	s.hashes["input"] = s.Input
	s.hashes["point"] = s.Point
	s.hashes["spend"] = s.Spend
	s.hashes["strong_tx"] = s.StrongTx
	s.hashes["validated_bk"] = s.ValidatedBk
	s.hashes["validated_tx"] = s.ValidatedTx

	return s
}

func (s *Store) region(name string) *memory.Map {
	m := memory.NewMap(s.settings.Expansion, s.settings.Limit)
	s.names = append(s.names, name)
	s.regions[name] = m
	return m
}

func (s *Store) head(table string) *memory.Map {
	return s.region(table + "_head")
}

func (s *Store) body(table string) *memory.Map {
	return s.region(table + "_body")
}

// Create builds a new empty store, the backend must not hold one already.
func (s *Store) Create() error {
	manifest, err := s.backend.Load(manifestRegion)
	if err != nil {
		logging.L.Err(err).Msg("failed to read manifest")
		return err
	}
	if manifest != nil {
		return ErrExists
	}

	for table, h := range s.hashes {
		if !h.Create() {
			logging.L.Error().Str("table", table).Msg("failed to create table")
			return fmt.Errorf("%w: create %s", ErrCorrupt, table)
		}
	}

	s.ID = uuid.New()
	logging.L.Info().Str("id", s.ID.String()).Msg("created store")
	return s.Flush()
}

// Open loads every region from the backend and verifies each hash table
// against its body.
func (s *Store) Open() error {
	manifest, err := s.backend.Load(manifestRegion)
	if err != nil {
		logging.L.Err(err).Msg("failed to read manifest")
		return err
	}
	if manifest == nil {
		return ErrNotCreated
	}
	if err = s.readManifest(manifest); err != nil {
		return err
	}

	for _, name := range s.names {
		data, err := s.backend.Load(name)
		if err != nil {
			logging.L.Err(err).Str("region", name).Msg("failed to load region")
			return err
		}
		s.regions[name].Load(data)
	}

	for table, h := range s.hashes {
		if !h.Verify() {
			logging.L.Error().Str("table", table).Msg("table failed verification")
			return fmt.Errorf("%w: %s", ErrCorrupt, table)
		}
	}

	logging.L.Info().
		Str("id", s.ID.String()).
		Uint32("headers", uint32(s.Header.Count())).
		Uint32("candidate", uint32(s.Candidate.Count())).
		Uint32("confirmed", uint32(s.Confirmed.Count())).
		Msg("opened store")
	return nil
}

// Flush records body counts in the heads and saves every region together
// with the manifest in one batch. It waits for any open commit scope. A
// failed save raises ErrFlush.
func (s *Store) Flush() error {
	t := s.GetTransactor()
	defer t.Release()

	if err := s.snapHeads(); err != nil {
		return err
	}
	if err := s.backend.SaveAll(s.dump()); err != nil {
		logging.L.Err(err).Msg("failed to save regions")
		s.SetError(fmt.Errorf("%w: %w", ErrFlush, err))
		return err
	}
	return nil
}

func (s *Store) snapHeads() error {
	for table, h := range s.hashes {
		if !h.Snap() {
			logging.L.Error().Str("table", table).Msg("failed to snap head")
			return fmt.Errorf("%w: snap %s", ErrCorrupt, table)
		}
	}
	return nil
}

// dump copies every region and the manifest, the caller holds the
// transactor.
func (s *Store) dump() map[string][]byte {
	out := make(map[string][]byte, len(s.names)+1)
	for _, name := range s.names {
		out[name] = s.regions[name].Snapshot()
	}
	out[manifestRegion] = s.writeManifest()
	return out
}

func (s *Store) Close() error {
	if err := s.Flush(); err != nil {
		return err
	}
	return s.backend.Close()
}

// IsEmpty is true for a created store that holds no headers yet.
func (s *Store) IsEmpty() bool {
	return s.Header.Count() == 0 &&
		s.Candidate.Count() == 0 &&
		s.Confirmed.Count() == 0
}

// Sizes reports the logical byte size of every region.
func (s *Store) Sizes() map[string]int {
	out := make(map[string]int, len(s.names))
	for _, name := range s.names {
		out[name] = s.regions[name].Size()
	}
	return out
}

// [version][uuid]
func (s *Store) writeManifest() []byte {
	out := make([]byte, 4+len(s.ID))
	binary.LittleEndian.PutUint32(out, Version)
	copy(out[4:], s.ID[:])
	return out
}

func (s *Store) readManifest(data []byte) error {
	if len(data) != 4+len(s.ID) {
		return fmt.Errorf("%w: manifest", ErrCorrupt)
	}
	if v := binary.LittleEndian.Uint32(data); v != Version {
		logging.L.Error().Uint32("version", v).Msg("unsupported store version")
		return ErrVersion
	}
	id, err := uuid.FromBytes(data[4:])
	if err != nil {
		return fmt.Errorf("%w: manifest id: %w", ErrCorrupt, err)
	}
	s.ID = id
	return nil
}
