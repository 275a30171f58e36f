package query

import (
	"math"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/setavenger/blindbit-chainstore/internal/tables"
	"github.com/stretchr/testify/require"
)

func TestInitializeGenesis(t *testing.T) {
	f := newFixture(t)
	q := f.q

	hash := f.genesis.BlockHash()
	header := q.ToHeader(&hash)
	require.False(t, header.IsTerminal())
	require.True(t, q.ToParent(header).IsTerminal())

	require.Equal(t, header, q.ToCandidate(0))
	require.Equal(t, header, q.ToConfirmed(0))
	require.True(t, q.IsCandidateBlock(header))
	require.True(t, q.IsConfirmedBlock(header))

	coinbase := q.ToCoinbase(header)
	require.True(t, q.IsConfirmedTx(coinbase))
	require.Equal(t, BlockConfirmable, q.GetBlockState(header))

	fees, ok := q.GetBlockFees(header)
	require.True(t, ok)
	require.Zero(t, fees)

	ctx, ok := q.GetContext(header)
	require.True(t, ok)
	require.Equal(t, uint32(0), ctx.Height)
	require.Equal(t, uint32(f.genesis.Header.Timestamp.Unix()), ctx.MTP)
	require.Equal(t, TxConnected, q.GetTxState(coinbase, ctx))

	// only once, on an empty store
	require.False(t, q.Initialize(f.genesis))
}

func TestSetTxDeduplicates(t *testing.T) {
	f := newFixture(t)
	q := f.q

	tx := spendTx(f.genesisCoinbase(), 0, 1000)
	first := q.SetTx(tx)
	require.False(t, first.IsTerminal())
	require.Equal(t, first, q.SetTx(tx))

	// coinbases always get their own instance
	cb := coinbaseTx(1, 1)
	one := q.SetTx(cb)
	two := q.SetTx(cb)
	require.NotEqual(t, one, two)

	hash := cb.TxHash()
	require.Equal(t, two, q.ToTx(&hash))
}

func TestTxNavigation(t *testing.T) {
	f := newFixture(t)
	q := f.q

	tx := spendTx(f.genesisCoinbase(), 0, 1000)
	tx.AddTxOut(tx.TxOut[0])
	link := q.SetTx(tx)

	spend := q.ToSpend(link, 0)
	require.False(t, spend.IsTerminal())
	require.Equal(t, link, q.ToSpendTx(spend))
	require.True(t, q.ToSpend(link, 1).IsTerminal())

	for index := uint32(0); index < 2; index++ {
		output := q.ToOutput(link, index)
		require.False(t, output.IsTerminal())
		require.Equal(t, link, q.ToOutputTx(output))
	}
	require.True(t, q.ToOutput(link, 2).IsTerminal())

	prev := f.genesisCoinbase()
	require.False(t, q.ToPoint(&prev).IsTerminal())

	hash, ok := q.GetTxHash(link)
	require.True(t, ok)
	require.Equal(t, tx.TxHash(), hash)
}

func TestSetBlock(t *testing.T) {
	f := newFixture(t)
	q := f.q

	spend := spendTx(f.genesisCoinbase(), 0, 1000)
	header, block := f.archive(coinbaseTx(1, 1), spend)

	again, code := q.SetBlock(block, f.context(block, 1))
	require.Equal(t, Success, code)
	require.Equal(t, header, again)

	genesisHash := f.genesis.BlockHash()
	require.Equal(t, q.ToHeader(&genesisHash), q.ToParent(header))
	require.True(t, q.IsAssociated(header))

	txs, ok := q.ToTransactions(header)
	require.True(t, ok)
	require.Len(t, txs, 2)
	require.Equal(t, txs[0], q.ToCoinbase(header))

	position, ok := q.GetTxPosition(header, txs[1])
	require.True(t, ok)
	require.Equal(t, uint32(1), position)

	count, ok := q.GetTxCount(header)
	require.True(t, ok)
	require.Equal(t, uint32(2), count)

	size, ok := q.GetBlockWire(header)
	require.True(t, ok)
	require.Equal(t, uint32(block.SerializeSize()), size)

	rebuilt, ok := q.GetHeader(header)
	require.True(t, ok)
	require.Equal(t, block.BlockHash(), rebuilt.BlockHash())

	height, ok := q.GetHeight(header)
	require.True(t, ok)
	require.Equal(t, uint32(1), height)
}

func TestUnassociatedHeader(t *testing.T) {
	f := newFixture(t)
	q := f.q

	block := f.block(f.genesis, 1, coinbaseTx(1, 1))
	header := q.SetHeader(&block.Header, f.context(block, 1))
	require.False(t, header.IsTerminal())

	require.False(t, q.IsAssociated(header))
	require.Equal(t, Unassociated, q.GetBlockState(header))
	require.Equal(t, Unassociated, q.BlockConfirmable(header))
	require.False(t, q.SetStrong(header))

	var unknown chainhash.Hash
	require.True(t, q.ToHeader(&unknown).IsTerminal())
}

func TestCodeStrings(t *testing.T) {
	require.NoError(t, Success.Err())
	require.EqualError(t, ConfirmedDoubleSpend.Err(), "confirmed double spend")
	require.Equal(t, "unknown code", Code(200).String())
}

func TestCoinbaseSpendUnindexed(t *testing.T) {
	f := newFixture(t)
	q := f.q

	one := q.SetTx(coinbaseTx(1, 1))
	two := q.SetTx(coinbaseTx(2, 1))
	null := tables.SpendKey(Terminal, math.MaxUint32)
	require.False(t, q.Store().Spend.Exists(null))

	for _, cb := range []Link{one, two} {
		spend := q.ToSpend(cb, 0)
		require.False(t, spend.IsTerminal())
		require.Equal(t, cb, q.ToSpendTx(spend))
		require.Equal(t, null, q.Store().Spend.GetKey(spend))
	}
}
