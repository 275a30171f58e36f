package backend

import (
	"errors"

	"github.com/setavenger/blindbit-chainstore/internal/logging"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

type Level struct {
	DB *leveldb.DB
}

func OpenLevel(path string) (*Level, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		logging.L.Err(err).Str("path", path).Msg("error opening db connection")
		return nil, err
	}
	return &Level{DB: db}, nil
}

func (l *Level) get(key []byte) ([]byte, bool, error) {
	data, err := l.DB.Get(key, nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (l *Level) Load(name string) ([]byte, error) {
	return load(l, name)
}

func (l *Level) Save(name string, data []byte) error {
	return l.SaveAll(map[string][]byte{name: data})
}

func (l *Level) SaveAll(regions map[string][]byte) error {
	batch := new(leveldb.Batch)
	for name, data := range regions {
		previous, err := previousChunks(l, name)
		if err != nil {
			return err
		}

		parts := chunks(data)
		for i, part := range parts {
			batch.Put(keyChunk(name, uint32(i)), part)
		}
		for i := uint32(len(parts)); i < previous; i++ {
			batch.Delete(keyChunk(name, i))
		}
		batch.Put(keyLength(name), encodeLength(len(data)))
	}

	err := l.DB.Write(batch, &opt.WriteOptions{Sync: true})
	if err != nil {
		logging.L.Err(err).Int("regions", len(regions)).Msg("error inserting batch")
		return err
	}
	return nil
}

func (l *Level) Close() error {
	return l.DB.Close()
}
