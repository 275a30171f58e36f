package indexer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/setavenger/blindbit-chainstore/internal/memory/backend"
	"github.com/setavenger/blindbit-chainstore/internal/query"
	"github.com/setavenger/blindbit-chainstore/internal/store"
	"github.com/setavenger/blindbit-chainstore/internal/tables"
	"github.com/stretchr/testify/require"
)

// chainSource serves a slice of blocks indexed by height.
type chainSource struct {
	blocks []*wire.MsgBlock
	err    error
}

func (c *chainSource) GetBlockCount(context.Context) (uint32, error) {
	return uint32(len(c.blocks) - 1), c.err
}

func (c *chainSource) GetBlockHashes(_ context.Context, heights []uint32) ([]*chainhash.Hash, error) {
	hashes := make([]*chainhash.Hash, len(heights))
	for i, height := range heights {
		if int(height) >= len(c.blocks) {
			return nil, fmt.Errorf("height %d out of range", height)
		}
		hash := c.blocks[height].BlockHash()
		hashes[i] = &hash
	}
	return hashes, nil
}

func (c *chainSource) GetBlock(_ context.Context, hash *chainhash.Hash) (*wire.MsgBlock, error) {
	if c.err != nil {
		return nil, c.err
	}
	for _, block := range c.blocks {
		if block.BlockHash() == *hash {
			return block, nil
		}
	}
	return nil, fmt.Errorf("block %s not found", hash)
}

// extend appends n coinbase only blocks, tag separates competing branches.
func (c *chainSource) extend(t *testing.T, n int, tag int64) {
	for range n {
		parent := c.blocks[len(c.blocks)-1]
		height := uint32(len(c.blocks))

		script, err := txscript.NewScriptBuilder().AddInt64(int64(height)).AddInt64(tag).Script()
		require.NoError(t, err)
		coinbase := wire.NewMsgTx(1)
		coinbase.AddTxIn(&wire.TxIn{
			PreviousOutPoint: *wire.NewOutPoint(&chainhash.Hash{}, wire.MaxPrevOutIndex),
			SignatureScript:  script,
			Sequence:         wire.MaxTxInSequenceNum,
		})
		coinbase.AddTxOut(wire.NewTxOut(50e8, []byte{txscript.OP_TRUE}))

		parentHash := parent.BlockHash()
		merkle := coinbase.TxHash()
		header := wire.NewBlockHeader(1, &parentHash, &merkle, parent.Header.Bits, 0)
		header.Timestamp = parent.Header.Timestamp.Add(10 * time.Minute)

		block := wire.NewMsgBlock(header)
		require.NoError(t, block.AddTransaction(coinbase))
		c.blocks = append(c.blocks, block)
	}
}

func newQuery(t *testing.T) *query.Query {
	t.Helper()
	s := store.New(store.TestSettings(), backend.NewVolatile())
	require.NoError(t, s.Create())
	q := query.New(s, &chaincfg.RegressionNetParams)
	require.True(t, q.Initialize(chaincfg.RegressionNetParams.GenesisBlock))
	return q
}

func requireTip(t *testing.T, q *query.Query, source *chainSource) {
	t.Helper()
	top, ok := q.GetTopConfirmed()
	require.True(t, ok)
	require.Equal(t, uint32(len(source.blocks)-1), top)

	hash, ok := q.GetHeaderHash(q.ToConfirmed(top))
	require.True(t, ok)
	require.Equal(t, source.blocks[top].BlockHash(), hash)
}

func TestSync(t *testing.T) {
	source := &chainSource{blocks: []*wire.MsgBlock{chaincfg.RegressionNetParams.GenesisBlock}}
	source.extend(t, 7, 0)

	q := newQuery(t)
	syncer := NewSyncer(q, source, 3, 2)

	n, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, n)
	requireTip(t, q, source)
	for height := uint32(1); height <= 7; height++ {
		require.True(t, q.Store().Neutrino.Exists(tables.LinkKey(q.ToConfirmed(height))))
	}

	// nothing new
	n, err = syncer.Sync(context.Background())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestSyncReorg(t *testing.T) {
	source := &chainSource{blocks: []*wire.MsgBlock{chaincfg.RegressionNetParams.GenesisBlock}}
	source.extend(t, 5, 0)

	q := newQuery(t)
	syncer := NewSyncer(q, source, 10, 4)
	_, err := syncer.Sync(context.Background())
	require.NoError(t, err)

	// replace the top two blocks with a longer branch
	stale := source.blocks[5].BlockHash()
	source.blocks = source.blocks[:4]
	source.extend(t, 3, 1)

	n, err := syncer.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, n)
	requireTip(t, q, source)
	require.NotEqual(t, query.Terminal, q.ToHeader(&stale), "stale block stays archived")
}

func TestSyncSourceError(t *testing.T) {
	source := &chainSource{blocks: []*wire.MsgBlock{chaincfg.RegressionNetParams.GenesisBlock}}
	source.extend(t, 2, 0)

	q := newQuery(t)
	boom := errors.New("node down")
	source.err = boom

	_, err := NewSyncer(q, source, 10, 1).Sync(context.Background())
	require.ErrorIs(t, err, boom)

	top, _ := q.GetTopConfirmed()
	require.Zero(t, top)
}
