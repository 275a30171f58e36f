package query

import (
	"testing"

	"github.com/btcsuite/btcd/wire"
	"github.com/setavenger/blindbit-chainstore/internal/chain"
	"github.com/setavenger/blindbit-chainstore/internal/memory"
	"github.com/setavenger/blindbit-chainstore/internal/store"
	"github.com/setavenger/blindbit-chainstore/internal/tables"
	"github.com/stretchr/testify/require"
)

func TestMedianTimePast(t *testing.T) {
	f := newFixture(t)
	genesis := f.q.ToConfirmed(0)

	mtp, ok := f.q.GetMedianTimePast(genesis)
	require.True(t, ok)
	require.Equal(t, uint32(f.genesis.Header.Timestamp.Unix()), mtp)

	f.mineTo(3)
	mtp, ok = f.q.GetMedianTimePast(f.q.ToConfirmed(3))
	require.True(t, ok)
	require.Equal(t, uint32(f.tip.Header.Timestamp.Unix())-600, mtp)

	_, ok = f.q.GetMedianTimePast(Terminal)
	require.False(t, ok)
}

func TestNextContext(t *testing.T) {
	f := newFixture(t)

	ctx, ok := f.q.NextContext(f.q.ToConfirmed(0))
	require.True(t, ok)
	require.Equal(t, uint32(1), ctx.Height)
	require.Equal(t, chain.FlagsAt(f.q.Params(), 1), ctx.Flags)
}

func TestOrganize(t *testing.T) {
	f := newFixture(t)

	block := f.block(f.tip, 1, coinbaseTx(1, 1))
	header, code := f.q.Organize(block)
	require.Equal(t, Success, code)
	require.Equal(t, header, f.q.ToConfirmed(1))
	require.Equal(t, header, f.q.ToCandidate(1))
	require.Equal(t, BlockConfirmable, f.q.GetBlockState(header))
	require.True(t, f.q.IsConfirmedTx(f.q.ToCoinbase(header)))

	// only extends the confirmed top
	_, code = f.q.Organize(f.block(f.genesis, 1, coinbaseTx(1, 2)))
	require.Equal(t, Unassociated, code)
}

func TestOrganizeRejects(t *testing.T) {
	f := newFixture(t)

	spend := spendTx(f.genesisCoinbase(), 0, 1000)
	block := f.block(f.tip, 1, coinbaseTx(1, 1), spend)
	header, code := f.q.Organize(block)
	require.Equal(t, CoinbaseMaturity, code)

	require.Equal(t, BlockUnconfirmable, f.q.GetBlockState(header))
	require.False(t, f.q.IsStrongTx(f.q.ToTx(ptr(spend.TxHash()))))
	top, _ := f.q.GetTopCandidate()
	require.Zero(t, top)
	top, _ = f.q.GetTopConfirmed()
	require.Zero(t, top)
}

func TestOrganizeFees(t *testing.T) {
	f := newFixture(t)
	f.mineTo(100)

	value := f.genesis.Transactions[0].TxOut[0].Value
	spend := spendTx(f.genesisCoinbase(), 0, value-1000)
	spend.TxIn[0].Sequence = wire.MaxTxInSequenceNum

	header, code := f.q.Organize(f.block(f.tip, 101, coinbaseTx(101, 1), spend))
	require.Equal(t, Success, code)

	fees, ok := f.q.GetBlockFees(header)
	require.True(t, ok)
	require.Equal(t, uint64(1000), fees)

	ctx, _ := f.q.GetContext(header)
	code, fee, _ := f.q.GetTxValidation(f.q.ToTx(ptr(spend.TxHash())), ctx)
	require.Equal(t, TxConnected, code)
	require.Equal(t, uint64(1000), fee)
}

func TestDisorganize(t *testing.T) {
	f := newFixture(t)

	_, ok := f.q.Disorganize()
	require.False(t, ok, "genesis stays")

	block := f.block(f.tip, 1, coinbaseTx(1, 1))
	header, code := f.q.Organize(block)
	require.Equal(t, Success, code)
	coinbase := f.q.ToCoinbase(header)

	retracted, ok := f.q.Disorganize()
	require.True(t, ok)
	require.Equal(t, header, retracted)

	top, _ := f.q.GetTopConfirmed()
	require.Zero(t, top)
	top, _ = f.q.GetTopCandidate()
	require.Zero(t, top)
	require.False(t, f.q.IsStrongTx(coinbase))

	ctx, _ := f.q.GetContext(header)
	require.Equal(t, TxDisconnected, f.q.GetTxState(coinbase, ctx))

	// the archived block organizes again
	again, code := f.q.Organize(block)
	require.Equal(t, Success, code)
	require.Equal(t, header, again)
	require.True(t, f.q.IsConfirmedTx(coinbase))
}

func TestOrganizeRetractsWhenCandidateExhausted(t *testing.T) {
	f := newFixture(t)
	s := f.q.Store()

	// a candidate table that holds genesis and cannot grow
	roomy := s.Candidate
	s.Candidate = tables.NewHeight(memory.NewMap(0, tables.SizeLink))
	require.True(t, s.Candidate.Put(&tables.HeightRecord{HeaderFK: roomy.At(0)}))

	coinbase := coinbaseTx(1, 1)
	block := f.block(f.tip, 1, coinbase)
	header, code := f.q.Organize(block)
	require.Equal(t, Integrity, code)

	hash := coinbase.TxHash()
	require.False(t, f.q.IsStrongTx(f.q.ToCoinbase(header)))
	require.True(t, f.q.ToStrong(hash[:]).Tx.IsTerminal())
	top, _ := f.q.GetTopConfirmed()
	require.Zero(t, top)

	s.Candidate = roomy
	again, code := f.q.Organize(block)
	require.Equal(t, Success, code)
	require.Equal(t, header, again)
	require.True(t, f.q.IsConfirmedTx(f.q.ToCoinbase(header)))
}

func TestOrganizeRefusedWhileFaulted(t *testing.T) {
	f := newFixture(t)
	s := f.q.Store()

	s.SetError(store.ErrFlush)
	block := f.block(f.tip, 1, coinbaseTx(1, 1))
	_, code := f.q.Organize(block)
	require.Equal(t, Integrity, code)
	require.True(t, f.q.ToHeader(ptr(block.BlockHash())).IsTerminal())

	s.ClearError()
	_, code = f.q.Organize(block)
	require.Equal(t, Success, code)
}

func TestDisorganizeUnassociatedTop(t *testing.T) {
	f := newFixture(t)

	// a confirmed header whose txs were never archived cannot be retracted
	block := f.block(f.tip, 1, coinbaseTx(1, 1))
	header := f.q.SetHeader(&block.Header, f.context(block, 1))
	require.False(t, header.IsTerminal())
	require.True(t, f.q.PushConfirmed(header))

	_, ok := f.q.Disorganize()
	require.False(t, ok)
	top, _ := f.q.GetTopConfirmed()
	require.Equal(t, uint32(1), top)
}
