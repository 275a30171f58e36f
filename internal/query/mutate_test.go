package query

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStrongUnstrong(t *testing.T) {
	f := newFixture(t)
	q := f.q

	header, _ := f.archive(coinbaseTx(1, 1))
	coinbase := q.ToCoinbase(header)
	require.True(t, q.ToBlock(coinbase).IsTerminal())

	require.True(t, q.SetStrong(header))
	require.Equal(t, header, q.ToBlock(coinbase))
	require.True(t, q.IsStrongTx(coinbase))

	// strong alone does not confirm
	require.False(t, q.IsConfirmedTx(coinbase))
	require.True(t, q.PushConfirmed(header))
	require.True(t, q.IsConfirmedTx(coinbase))

	require.True(t, q.SetUnstrong(header))
	require.True(t, q.ToBlock(coinbase).IsTerminal())
	require.False(t, q.IsConfirmedTx(coinbase))

	hash, ok := q.GetTxHash(coinbase)
	require.True(t, ok)
	require.Equal(t, Strong{Block: Terminal, Tx: Terminal}, q.ToStrong(hash[:]))
	require.Empty(t, q.ToStrongs(hash[:]))

	require.True(t, q.SetStrong(header))
	require.Equal(t, Strong{Block: header, Tx: coinbase}, q.ToStrong(hash[:]))
}

func TestConfirmedRequiresOwnHeight(t *testing.T) {
	f := newFixture(t)
	q := f.q

	header, _ := f.archive(coinbaseTx(1, 1))
	require.True(t, q.SetStrong(header))

	// a different header occupies height 1
	other, _ := f.archive(coinbaseTx(2, 1))
	require.True(t, q.PushConfirmed(other))
	require.False(t, q.IsConfirmedBlock(header))
	require.False(t, q.IsConfirmedTx(q.ToCoinbase(header)))
}

func TestPopKeepsGenesis(t *testing.T) {
	f := newFixture(t)
	q := f.q

	require.False(t, q.PopCandidate())
	require.False(t, q.PopConfirmed())

	f.mine()
	top, ok := q.GetTopCandidate()
	require.True(t, ok)
	require.Equal(t, uint32(1), top)

	require.True(t, q.PopCandidate())
	require.True(t, q.PopConfirmed())
	require.False(t, q.PopCandidate())

	top, ok = q.GetTopConfirmed()
	require.True(t, ok)
	require.Zero(t, top)
}

func TestPushTerminal(t *testing.T) {
	f := newFixture(t)
	require.False(t, f.q.PushCandidate(Terminal))
}

func TestGetFork(t *testing.T) {
	f := newFixture(t)
	q := f.q

	f.mine()
	fork, ok := q.GetFork()
	require.True(t, ok)
	require.Equal(t, uint32(1), fork)

	// a competing candidate at height 2
	branch, _ := f.archive(coinbaseTx(2, 2))
	f.mine()
	require.True(t, q.PopCandidate())
	require.True(t, q.PushCandidate(branch))

	fork, ok = q.GetFork()
	require.True(t, ok)
	require.Equal(t, uint32(1), fork)

	require.True(t, q.PopConfirmed())
	fork, ok = q.GetFork()
	require.True(t, ok)
	require.Equal(t, uint32(1), fork)
}
