package dataexport

import (
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/setavenger/blindbit-chainstore/internal/query"
)

// ChainRow is one block of the confirmed chain.
type ChainRow struct {
	Height    uint32
	BlockHash chainhash.Hash
	Wire      uint32
	State     string
	Fees      uint64
	Txids     []chainhash.Hash
}

// CollectConfirmed walks the confirmed chain from genesis to its top.
func CollectConfirmed(q *query.Query) ([]ChainRow, error) {
	top, ok := q.GetTopConfirmed()
	if !ok {
		return nil, nil
	}

	rows := make([]ChainRow, 0, top+1)
	for height := uint32(0); height <= top; height++ {
		row, err := collectRow(q, height)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func collectRow(q *query.Query, height uint32) (ChainRow, error) {
	header := q.ToConfirmed(height)
	hash, ok := q.GetHeaderHash(header)
	if !ok {
		return ChainRow{}, fmt.Errorf("no header at height %d", height)
	}

	row := ChainRow{
		Height:    height,
		BlockHash: hash,
		State:     q.GetBlockState(header).String(),
	}
	row.Wire, _ = q.GetBlockWire(header)
	row.Fees, _ = q.GetBlockFees(header)

	txs, ok := q.ToTransactions(header)
	if !ok {
		return row, nil
	}
	for _, tx := range txs {
		txid, ok := q.GetTxHash(tx)
		if !ok {
			return ChainRow{}, fmt.Errorf("no tx hash for block %s", hash)
		}
		row.Txids = append(row.Txids, txid)
	}
	return row, nil
}
