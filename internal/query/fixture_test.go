package query

import (
	"testing"
	"time"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/setavenger/blindbit-chainstore/internal/chain"
	"github.com/setavenger/blindbit-chainstore/internal/memory/backend"
	"github.com/setavenger/blindbit-chainstore/internal/store"
	"github.com/stretchr/testify/require"
)

const testFlags = chain.BIP30 | chain.BIP68

var anyoneCanSpend = []byte{txscript.OP_TRUE}

// fixture is an initialized regtest store with helpers to extend its chain.
type fixture struct {
	t       *testing.T
	q       *Query
	genesis *wire.MsgBlock
	tip     *wire.MsgBlock
	height  uint32
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.New(store.TestSettings(), backend.NewVolatile())
	require.NoError(t, s.Create())

	q := New(s, &chaincfg.RegressionNetParams)
	genesis := chaincfg.RegressionNetParams.GenesisBlock
	require.True(t, q.Initialize(genesis))

	return &fixture{t: t, q: q, genesis: genesis, tip: genesis}
}

func (f *fixture) genesisCoinbase() chainhash.Hash {
	return f.genesis.Transactions[0].TxHash()
}

func coinbaseTx(height uint32, outputs int) *wire.MsgTx {
	script, err := txscript.NewScriptBuilder().AddInt64(int64(height)).Script()
	if err != nil {
		panic(err)
	}
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(&wire.TxIn{
		PreviousOutPoint: *wire.NewOutPoint(&chainhash.Hash{}, wire.MaxPrevOutIndex),
		SignatureScript:  script,
		Sequence:         wire.MaxTxInSequenceNum,
	})
	for i := 0; i < outputs; i++ {
		tx.AddTxOut(wire.NewTxOut(int64(50e8-i), anyoneCanSpend))
	}
	return tx
}

// spendTx spends prev:index, value keeps otherwise identical spends distinct.
func spendTx(prev chainhash.Hash, index uint32, value int64) *wire.MsgTx {
	tx := wire.NewMsgTx(1)
	tx.AddTxIn(wire.NewTxIn(wire.NewOutPoint(&prev, index), nil, nil))
	tx.AddTxOut(wire.NewTxOut(value, anyoneCanSpend))
	return tx
}

func (f *fixture) block(parent *wire.MsgBlock, height uint32, txs ...*wire.MsgTx) *wire.MsgBlock {
	parentHash := parent.BlockHash()
	merkle := txs[0].TxHash()
	header := wire.NewBlockHeader(1, &parentHash, &merkle, f.genesis.Header.Bits, height)
	header.Timestamp = f.genesis.Header.Timestamp.Add(time.Duration(height) * 10 * time.Minute)

	block := wire.NewMsgBlock(header)
	for _, tx := range txs {
		require.NoError(f.t, block.AddTransaction(tx))
	}
	return block
}

func (f *fixture) context(block *wire.MsgBlock, height uint32) chain.Context {
	return chain.Context{Flags: testFlags, Height: height, MTP: uint32(block.Header.Timestamp.Unix())}
}

// archive stores a block on top of the tip without making it strong.
func (f *fixture) archive(coinbase *wire.MsgTx, txs ...*wire.MsgTx) (Link, *wire.MsgBlock) {
	height := f.height + 1
	block := f.block(f.tip, height, append([]*wire.MsgTx{coinbase}, txs...)...)
	header, code := f.q.SetBlock(block, f.context(block, height))
	require.Equal(f.t, Success, code)
	return header, block
}

// mineWith archives a block, sets it strong and pushes it onto both chains.
func (f *fixture) mineWith(coinbase *wire.MsgTx, txs ...*wire.MsgTx) Link {
	header, block := f.archive(coinbase, txs...)
	require.True(f.t, f.q.SetStrong(header))
	require.True(f.t, f.q.PushCandidate(header))
	require.True(f.t, f.q.PushConfirmed(header))
	f.tip = block
	f.height++
	return header
}

func (f *fixture) mine(txs ...*wire.MsgTx) Link {
	return f.mineWith(coinbaseTx(f.height+1, 1), txs...)
}

// mineTo extends the chain with coinbase only blocks up to height.
func (f *fixture) mineTo(height uint32) {
	for f.height < height {
		f.mine()
	}
}
