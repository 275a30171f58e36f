package query

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/gcs/builder"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/setavenger/blindbit-chainstore/internal/tables"
	"github.com/stretchr/testify/require"
)

func TestBlockFilter(t *testing.T) {
	f := newFixture(t)

	prevScript := f.genesis.Transactions[0].TxOut[0].PkScript
	spend := spendTx(f.genesisCoinbase(), 0, 1000)
	spend.AddTxOut(wire.NewTxOut(0, []byte{txscript.OP_RETURN, 0x01, 0x02}))

	coinbase := coinbaseTx(1, 1)
	header := f.mineWith(coinbase, spend)

	filter, ok := f.q.GetBlockFilter(header)
	require.True(t, ok)

	block := f.tip
	want, err := builder.BuildBasicFilter(block, [][]byte{prevScript})
	require.NoError(t, err)

	got, err := filter.NBytes()
	require.NoError(t, err)
	expected, err := want.NBytes()
	require.NoError(t, err)
	require.Equal(t, expected, got)

	key := builder.DeriveKey(ptr(block.BlockHash()))
	match, err := filter.Match(key, prevScript)
	require.NoError(t, err)
	require.True(t, match)
	match, err = filter.Match(key, anyoneCanSpend)
	require.NoError(t, err)
	require.True(t, match)

	_, ok = f.q.GetBlockFilter(Terminal)
	require.False(t, ok)
}

func TestFilterHeadersStored(t *testing.T) {
	f := newFixture(t)
	f.mineTo(3)
	neutrino := f.q.Store().Neutrino
	require.Zero(t, neutrino.Count())

	// asking for the tip fills every ancestor
	tip := f.q.ToConfirmed(3)
	got, ok := f.q.GetFilterHeader(tip)
	require.True(t, ok)
	size := neutrino.Count()
	for height := uint32(0); height <= 3; height++ {
		require.True(t, neutrino.Exists(tables.LinkKey(f.q.ToConfirmed(height))))
	}

	var want chainhash.Hash
	for height := uint32(0); height <= 3; height++ {
		filter, ok := f.q.buildFilter(f.q.ToConfirmed(height))
		require.True(t, ok)
		next, err := builder.MakeHeaderForFilter(filter, want)
		require.NoError(t, err)
		want = next

		stored, ok := f.q.GetFilterHeader(f.q.ToConfirmed(height))
		require.True(t, ok)
		require.Equal(t, want, stored)
	}
	require.Equal(t, want, got)

	// stored filters are read back, not written again
	filter, ok := f.q.GetBlockFilter(tip)
	require.True(t, ok)
	built, ok := f.q.buildFilter(tip)
	require.True(t, ok)
	a, err := filter.NBytes()
	require.NoError(t, err)
	b, err := built.NBytes()
	require.NoError(t, err)
	require.Equal(t, b, a)
	require.Equal(t, size, neutrino.Count())
}
