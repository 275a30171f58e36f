package backend

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func exerciseBackend(t *testing.T, be Backend) {
	data, err := be.Load("header_body")
	require.NoError(t, err)
	require.Nil(t, data)

	large := bytes.Repeat([]byte{0xab}, 2*ChunkSize+17)
	require.NoError(t, be.Save("header_body", large))

	data, err = be.Load("header_body")
	require.NoError(t, err)
	require.Equal(t, large, data)

	// shrinking drops the stale chunks
	small := []byte{1, 2, 3}
	require.NoError(t, be.Save("header_body", small))
	data, err = be.Load("header_body")
	require.NoError(t, err)
	require.Equal(t, small, data)

	require.NoError(t, be.Save("empty", nil))
	data, err = be.Load("empty")
	require.NoError(t, err)
	require.Empty(t, data)
}

func TestPebbleBackend(t *testing.T) {
	be, err := OpenPebble(filepath.Join(t.TempDir(), "pebble"))
	require.NoError(t, err)
	defer be.Close()
	exerciseBackend(t, be)
}

func TestLevelBackend(t *testing.T) {
	be, err := OpenLevel(filepath.Join(t.TempDir(), "level"))
	require.NoError(t, err)
	defer be.Close()
	exerciseBackend(t, be)
}

func TestVolatileBackend(t *testing.T) {
	exerciseBackend(t, NewVolatile())
}

func TestChunkKeysDoNotCollide(t *testing.T) {
	// a region name that is a prefix of another must not share chunk keys
	require.NotEqual(t, keyChunk("tx", 0), keyChunk("tx_body", 0)[:len(keyChunk("tx", 0))])
	require.Equal(t, uint32(0), chunkCount(0))
	require.Equal(t, uint32(1), chunkCount(1))
	require.Equal(t, uint32(1), chunkCount(ChunkSize))
	require.Equal(t, uint32(2), chunkCount(ChunkSize+1))
}

func exerciseSaveAll(t *testing.T, be Backend) {
	large := bytes.Repeat([]byte{0xcd}, ChunkSize+5)
	require.NoError(t, be.SaveAll(map[string][]byte{
		"header_body": large,
		"header_head": {1, 2, 3, 4},
		"manifest":    {9},
	}))

	data, err := be.Load("header_body")
	require.NoError(t, err)
	require.Equal(t, large, data)
	data, err = be.Load("header_head")
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, data)

	// shrinking one region leaves the others alone
	require.NoError(t, be.SaveAll(map[string][]byte{"header_body": {7}}))
	data, err = be.Load("header_body")
	require.NoError(t, err)
	require.Equal(t, []byte{7}, data)
	data, err = be.Load("manifest")
	require.NoError(t, err)
	require.Equal(t, []byte{9}, data)
}

func TestSaveAll(t *testing.T) {
	pb, err := OpenPebble(filepath.Join(t.TempDir(), "pebble"))
	require.NoError(t, err)
	defer pb.Close()
	exerciseSaveAll(t, pb)

	lv, err := OpenLevel(filepath.Join(t.TempDir(), "level"))
	require.NoError(t, err)
	defer lv.Close()
	exerciseSaveAll(t, lv)

	exerciseSaveAll(t, NewVolatile())
}
