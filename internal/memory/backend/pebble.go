package backend

import (
	"errors"

	"github.com/cockroachdb/pebble"
	"github.com/setavenger/blindbit-chainstore/internal/logging"
)

type Pebble struct {
	DB *pebble.DB
}

func OpenPebble(path string) (*Pebble, error) {
	opts := (&pebble.Options{}).EnsureDefaults()
	opts.Cache = pebble.NewCache(64 << 20)
	defer opts.Cache.Unref()
	opts.BytesPerSync = 1 << 20

	db, err := pebble.Open(path, opts)
	if err != nil {
		logging.L.Err(err).Str("path", path).Msg("failed to open pebble")
		return nil, err
	}
	return &Pebble{DB: db}, nil
}

func (p *Pebble) get(key []byte) ([]byte, bool, error) {
	val, closer, err := p.DB.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer closer.Close()
	out := make([]byte, len(val))
	copy(out, val)
	return out, true, nil
}

func (p *Pebble) Load(name string) ([]byte, error) {
	return load(p, name)
}

func (p *Pebble) Save(name string, data []byte) error {
	return p.SaveAll(map[string][]byte{name: data})
}

func (p *Pebble) SaveAll(regions map[string][]byte) error {
	b := p.DB.NewBatch()
	defer b.Close()

	for name, data := range regions {
		if err := p.stage(b, name, data); err != nil {
			logging.L.Err(err).Str("region", name).Msg("insert failed")
			return err
		}
	}

	if err := b.Commit(pebble.Sync); err != nil {
		logging.L.Err(err).Int("regions", len(regions)).Msg("failed to commit batch")
		return err
	}
	return nil
}

// stage puts the chunks of one region into b and drops the chunks a longer
// previous save left behind.
func (p *Pebble) stage(b *pebble.Batch, name string, data []byte) error {
	previous, err := previousChunks(p, name)
	if err != nil {
		return err
	}

	parts := chunks(data)
	for i, part := range parts {
		if err = b.Set(keyChunk(name, uint32(i)), part, nil); err != nil {
			return err
		}
	}
	for i := uint32(len(parts)); i < previous; i++ {
		if err = b.Delete(keyChunk(name, i), nil); err != nil {
			return err
		}
	}
	return b.Set(keyLength(name), encodeLength(len(data)), nil)
}

func (p *Pebble) Close() error {
	return p.DB.Close()
}
