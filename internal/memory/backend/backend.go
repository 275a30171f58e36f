// backend persists byte regions between runs of the store.
package backend

import (
	"encoding/binary"
	"errors"
)

// ChunkSize is the size of the values a region is split into.
const ChunkSize = 1 << 20

const (
	prefixChunk  = 'r'
	prefixLength = 'n'
)

var ErrCorruptRegion = errors.New("region chunks do not match recorded length")

// Backend loads and saves whole regions by name.
type Backend interface {
	// Load returns nil, nil when the region was never saved.
	Load(name string) ([]byte, error)
	Save(name string, data []byte) error
	// SaveAll writes every region in one atomic batch.
	SaveAll(regions map[string][]byte) error
	Close() error
}

func keyChunk(name string, index uint32) []byte {
	k := make([]byte, 1+len(name)+1+4)
	k[0] = prefixChunk
	copy(k[1:], name)
	k[1+len(name)] = 0x00
	binary.BigEndian.PutUint32(k[2+len(name):], index)
	return k
}

func keyLength(name string) []byte {
	k := make([]byte, 1+len(name))
	k[0] = prefixLength
	copy(k[1:], name)
	return k
}

func encodeLength(length int) []byte {
	v := make([]byte, 8)
	binary.BigEndian.PutUint64(v, uint64(length))
	return v
}

func decodeLength(v []byte) (int, error) {
	if len(v) != 8 {
		return 0, ErrCorruptRegion
	}
	return int(binary.BigEndian.Uint64(v)), nil
}

func chunkCount(length int) uint32 {
	return uint32((length + ChunkSize - 1) / ChunkSize)
}

// chunks splits data into ChunkSize values, the last one may be shorter.
func chunks(data []byte) [][]byte {
	out := make([][]byte, 0, chunkCount(len(data)))
	for start := 0; start < len(data); start += ChunkSize {
		end := min(start+ChunkSize, len(data))
		out = append(out, data[start:end])
	}
	return out
}

// kv is the smallest surface both stores share, it keeps the chunking in one place.
type kv interface {
	get(key []byte) ([]byte, bool, error)
}

func load(db kv, name string) ([]byte, error) {
	v, ok, err := db.get(keyLength(name))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	length, err := decodeLength(v)
	if err != nil {
		return nil, err
	}

	data := make([]byte, 0, length)
	for i := uint32(0); i < chunkCount(length); i++ {
		chunk, ok, err := db.get(keyChunk(name, i))
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrCorruptRegion
		}
		data = append(data, chunk...)
	}
	if len(data) != length {
		return nil, ErrCorruptRegion
	}
	return data, nil
}

// previousChunks returns how many chunks the last save of name wrote.
func previousChunks(db kv, name string) (uint32, error) {
	v, ok, err := db.get(keyLength(name))
	if err != nil || !ok {
		return 0, err
	}
	length, err := decodeLength(v)
	if err != nil {
		return 0, err
	}
	return chunkCount(length), nil
}
