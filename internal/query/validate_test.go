package query

import (
	"testing"

	"github.com/setavenger/blindbit-chainstore/internal/chain"
	"github.com/stretchr/testify/require"
)

func TestBlockState(t *testing.T) {
	f := newFixture(t)
	q := f.q

	header, _ := f.archive(coinbaseTx(1, 1))
	require.Equal(t, Unvalidated, q.GetBlockState(header))

	require.True(t, q.SetBlockValid(header, 10))
	require.Equal(t, BlockValid, q.GetBlockState(header))

	require.True(t, q.SetBlockConfirmable(header, 25))
	require.Equal(t, BlockConfirmable, q.GetBlockState(header))
	fees, ok := q.GetBlockFees(header)
	require.True(t, ok)
	require.Equal(t, uint64(25), fees)

	require.True(t, q.SetBlockUnconfirmable(header))
	require.Equal(t, BlockUnconfirmable, q.GetBlockState(header))

	require.True(t, q.SetBlockState(header, 9, 0))
	require.Equal(t, UnknownState, q.GetBlockState(header))
}

func TestTxStateSufficiency(t *testing.T) {
	f := newFixture(t)
	q := f.q
	tx := q.SetTx(spendTx(f.genesisCoinbase(), 0, 1000))

	stored := chain.Context{Flags: testFlags, Height: 10, MTP: 100}
	require.Equal(t, Unvalidated, q.GetTxState(tx, stored))
	require.True(t, q.SetTxConnected(tx, stored, 500, 4))

	code, fee, sigops := q.GetTxValidation(tx, stored)
	require.Equal(t, TxConnected, code)
	require.Equal(t, uint64(500), fee)
	require.Equal(t, uint32(4), sigops)

	require.Equal(t, TxConnected, q.GetTxState(tx, chain.Context{Flags: testFlags, Height: 20, MTP: 200}))
	require.Equal(t, Unvalidated, q.GetTxState(tx, chain.Context{Flags: testFlags, Height: 9, MTP: 100}))
	require.Equal(t, Unvalidated, q.GetTxState(tx, chain.Context{Flags: testFlags, Height: 10, MTP: 99}))
	require.Equal(t, Unvalidated, q.GetTxState(tx, chain.Context{Flags: chain.BIP16, Height: 20, MTP: 200}))

	// the most recent sufficient verdict wins
	require.True(t, q.SetTxDisconnected(tx, chain.Context{Flags: testFlags, Height: 15, MTP: 150}))
	require.Equal(t, TxDisconnected, q.GetTxState(tx, chain.Context{Flags: testFlags, Height: 20, MTP: 200}))
	require.Equal(t, TxConnected, q.GetTxState(tx, chain.Context{Flags: testFlags, Height: 12, MTP: 120}))

	require.True(t, q.SetTxPreconnected(tx, chain.Context{Flags: chain.BIP16}, 0, 0))
	require.Equal(t, TxPreconnected, q.GetTxState(tx, chain.Context{Flags: chain.BIP16, Height: 1}))
}
