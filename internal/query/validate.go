package query

import (
	"github.com/setavenger/blindbit-chainstore/internal/chain"
	"github.com/setavenger/blindbit-chainstore/internal/tables"
)

func (q *Query) SetBlockValid(header Link, fees uint64) bool {
	return q.SetBlockState(header, tables.BlockValid, fees)
}

func (q *Query) SetBlockConfirmable(header Link, fees uint64) bool {
	return q.SetBlockState(header, tables.BlockConfirmable, fees)
}

func (q *Query) SetBlockUnconfirmable(header Link) bool {
	return q.SetBlockState(header, tables.BlockUnconfirmable, 0)
}

// SetBlockState appends a verdict, the most recent one is current.
func (q *Query) SetBlockState(header Link, state uint8, fees uint64) bool {
	t := q.store.GetTransactor()
	defer t.Release()
	return q.setBlockState(header, state, fees)
}

func (q *Query) setBlockState(header Link, state uint8, fees uint64) bool {
	rec := &tables.ValidatedBkRecord{Code: state, Fees: fees}
	return q.store.ValidatedBk.Put(tables.LinkKey(header), rec)
}

// GetBlockState is Unassociated until the txs of header are archived and
// Unvalidated until a verdict was recorded.
func (q *Query) GetBlockState(header Link) Code {
	if !q.IsAssociated(header) {
		return Unassociated
	}

	var rec tables.ValidatedBkRecord
	if !q.store.ValidatedBk.Find(tables.LinkKey(header), &rec) {
		return Unvalidated
	}

	switch rec.Code {
	case tables.BlockValid:
		return BlockValid
	case tables.BlockConfirmable:
		return BlockConfirmable
	case tables.BlockUnconfirmable:
		return BlockUnconfirmable
	default:
		return UnknownState
	}
}

func (q *Query) GetBlockFees(header Link) (uint64, bool) {
	var rec tables.ValidatedBkRecord
	if !q.store.ValidatedBk.Find(tables.LinkKey(header), &rec) {
		return 0, false
	}
	return rec.Fees, true
}

func (q *Query) SetTxPreconnected(tx Link, ctx chain.Context, fee uint64, sigops uint32) bool {
	return q.SetTxState(tx, ctx, tables.TxPreconnected, fee, sigops)
}

func (q *Query) SetTxConnected(tx Link, ctx chain.Context, fee uint64, sigops uint32) bool {
	return q.SetTxState(tx, ctx, tables.TxConnected, fee, sigops)
}

func (q *Query) SetTxDisconnected(tx Link, ctx chain.Context) bool {
	return q.SetTxState(tx, ctx, tables.TxDisconnected, 0, 0)
}

// SetTxState appends a verdict for tx under ctx.
func (q *Query) SetTxState(tx Link, ctx chain.Context, state uint8, fee uint64, sigops uint32) bool {
	t := q.store.GetTransactor()
	defer t.Release()
	return q.setTxState(tx, ctx, state, fee, sigops)
}

func (q *Query) setTxState(tx Link, ctx chain.Context, state uint8, fee uint64, sigops uint32) bool {
	rec := &tables.ValidatedTxRecord{
		Flags:  uint32(ctx.Flags),
		Height: ctx.Height,
		MTP:    ctx.MTP,
		Code:   state,
		Fee:    fee,
		Sigops: sigops,
	}
	return q.store.ValidatedTx.Put(tables.LinkKey(tx), rec)
}

// GetTxState is the most recent verdict for tx whose context is sufficient
// for ctx, Unvalidated when there is none.
func (q *Query) GetTxState(tx Link, ctx chain.Context) Code {
	code, _, _ := q.GetTxValidation(tx, ctx)
	return code
}

// GetTxValidation also returns the fee and sigops of the verdict.
func (q *Query) GetTxValidation(tx Link, ctx chain.Context) (Code, uint64, uint32) {
	for it := q.store.ValidatedTx.It(tables.LinkKey(tx)); it.IsMatch(); it.Advance() {
		var rec tables.ValidatedTxRecord
		if !q.store.ValidatedTx.Get(it.Self(), &rec) {
			return Integrity, 0, 0
		}

		stored := chain.Context{Flags: chain.Flags(rec.Flags), Height: rec.Height, MTP: rec.MTP}
		if !chain.IsSufficient(stored, ctx) {
			continue
		}

		switch rec.Code {
		case tables.TxConnected:
			return TxConnected, rec.Fee, rec.Sigops
		case tables.TxPreconnected:
			return TxPreconnected, rec.Fee, rec.Sigops
		case tables.TxDisconnected:
			return TxDisconnected, rec.Fee, rec.Sigops
		default:
			return UnknownState, 0, 0
		}
	}
	return Unvalidated, 0, 0
}
