package query

import (
	"github.com/btcsuite/btcd/wire"
	"github.com/setavenger/blindbit-chainstore/internal/chain"
	"github.com/setavenger/blindbit-chainstore/internal/logging"
	"github.com/setavenger/blindbit-chainstore/internal/tables"
)

// Initialize seeds an empty store with genesis: archived, strong, its tx
// connected, confirmable with no fees and at height zero of both chains.
// It is only valid once, on a freshly created store.
func (q *Query) Initialize(genesis *wire.MsgBlock) bool {
	t := q.store.GetTransactor()
	defer t.Release()

	if !q.store.IsEmpty() {
		logging.L.Error().Msg("cannot initialize a store that is not empty")
		return false
	}

	ctx := chain.Context{
		Flags:  chain.None,
		Height: 0,
		MTP:    uint32(genesis.Header.Timestamp.Unix()),
	}

	header, code := q.setBlock(genesis, ctx)
	if code != Success {
		logging.L.Err(code).Msg("failed to archive genesis")
		return false
	}
	if !q.setStrong(header, true) {
		return false
	}

	txs, ok := q.ToTransactions(header)
	if !ok {
		return false
	}
	for _, tx := range txs {
		if !q.setTxState(tx, ctx, tables.TxConnected, 0, 0) {
			return false
		}
	}

	if !q.setBlockState(header, tables.BlockConfirmable, 0) ||
		!q.push(q.store.Candidate, header) ||
		!q.push(q.store.Confirmed, header) {
		return false
	}

	logging.L.Info().Str("genesis", genesis.BlockHash().String()).Msg("initialized store")
	return true
}
