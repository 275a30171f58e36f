package query

import (
	"slices"

	"github.com/btcsuite/btcd/wire"
	"github.com/setavenger/blindbit-chainstore/internal/chain"
	"github.com/setavenger/blindbit-chainstore/internal/logging"
	"github.com/setavenger/blindbit-chainstore/internal/tables"
)

// medianTimeBlocks is the BIP113 window.
const medianTimeBlocks = 11

// GetMedianTimePast is the median timestamp of header and up to ten of its
// ancestors.
func (q *Query) GetMedianTimePast(header Link) (uint32, bool) {
	times := make([]uint32, 0, medianTimeBlocks)
	for link := header; !link.IsTerminal() && len(times) < medianTimeBlocks; {
		var rec tables.HeaderRecord
		if !q.store.Header.Get(link, &rec) {
			return 0, false
		}
		times = append(times, rec.Timestamp)
		link = rec.ParentFK
	}
	if len(times) == 0 {
		return 0, false
	}
	slices.Sort(times)
	return times[len(times)/2], true
}

// NextContext is the rule context of a block built on parent.
func (q *Query) NextContext(parent Link) (chain.Context, bool) {
	height, ok := q.GetHeight(parent)
	if !ok {
		return chain.Context{}, false
	}
	mtp, ok := q.GetMedianTimePast(parent)
	if !ok {
		return chain.Context{}, false
	}
	return chain.Context{
		Flags:  chain.FlagsAt(q.params, height+1),
		Height: height + 1,
		MTP:    mtp,
	}, true
}

// Organize extends both chains with block when it builds on the confirmed
// top. The block is archived and made strong, then checked. A block that
// is not confirmable is retracted and marked unconfirmable, it stays
// archived. Any other failure retracts whatever association was published.
// Nothing is written while the store carries a fault.
func (q *Query) Organize(block *wire.MsgBlock) (Link, Code) {
	t := q.store.GetTransactor()
	defer t.Release()

	if err := q.store.Fault(); err != nil {
		logging.L.Warn().Err(err).Msg("store faulted, not organizing")
		return Terminal, Integrity
	}

	top, ok := q.GetTopConfirmed()
	if !ok {
		return Terminal, Integrity
	}
	parent := q.store.Header.First(block.Header.PrevBlock[:])
	if parent.IsTerminal() || parent != q.ToConfirmed(top) {
		return Terminal, Unassociated
	}

	ctx, ok := q.NextContext(parent)
	if !ok {
		return Terminal, Integrity
	}
	header, code := q.setBlock(block, ctx)
	if code != Success {
		return Terminal, code
	}

	scope, ok := q.reserveStrong(header)
	if !ok {
		return header, Integrity
	}
	if !scope.associate() || !q.push(q.store.Candidate, header) {
		scope.retract()
		return header, Integrity
	}

	if code = q.BlockConfirmable(header); code != Success {
		if !scope.retract() ||
			!q.pop(q.store.Candidate) ||
			!q.setBlockState(header, tables.BlockUnconfirmable, 0) {
			return header, Integrity
		}
		return header, code
	}

	fees := q.connectTxs(header, ctx)
	if !q.setBlockState(header, tables.BlockConfirmable, fees) ||
		!q.push(q.store.Confirmed, header) {
		scope.retract()
		q.pop(q.store.Candidate)
		return header, Integrity
	}
	if !scope.release() {
		logging.L.Warn().Uint32("header", uint32(header)).Msg("unused strong_tx slots kept")
	}

	logging.L.Info().
		Str("block", block.BlockHash().String()).
		Uint32("height", ctx.Height).
		Uint64("fees", fees).
		Msg("confirmed block")
	return header, Success
}

// Disorganize retracts the confirmed top. Its txs lose their strong
// association and are marked disconnected, the block stays archived and can
// be organized again. Genesis is never retracted.
func (q *Query) Disorganize() (Link, bool) {
	t := q.store.GetTransactor()
	defer t.Release()

	top, ok := q.GetTopConfirmed()
	if !ok || top == 0 {
		return Terminal, false
	}
	header := q.ToConfirmed(top)
	ctx, ok := q.GetContext(header)
	if !ok {
		return Terminal, false
	}
	txs, ok := q.ToTransactions(header)
	if !ok {
		logging.L.Error().Uint32("height", top).Msg("confirmed block without txs")
		return Terminal, false
	}
	if !q.setStrong(header, false) {
		return Terminal, false
	}

	for _, tx := range txs {
		if !q.setTxState(tx, ctx, tables.TxDisconnected, 0, 0) {
			logging.L.Warn().Uint32("tx", uint32(tx)).Msg("failed to mark tx disconnected")
		}
	}

	if !q.pop(q.store.Confirmed) {
		return Terminal, false
	}
	if candidate, ok := q.GetTopCandidate(); ok && candidate == top && q.ToCandidate(top) == header {
		if !q.pop(q.store.Candidate) {
			return Terminal, false
		}
	}

	logging.L.Info().Uint32("height", top).Msg("disorganized block")
	return header, true
}

// connectTxs records every tx of header as connected and returns the total
// fees of the block.
func (q *Query) connectTxs(header Link, ctx chain.Context) uint64 {
	txs, _ := q.ToTransactions(header)

	var total uint64
	for i, tx := range txs {
		var fee uint64
		if i > 0 {
			fee = q.txFee(tx)
		}
		total += fee
		if !q.setTxState(tx, ctx, tables.TxConnected, fee, 0) {
			logging.L.Warn().Uint32("tx", uint32(tx)).Msg("failed to mark tx connected")
		}
	}
	return total
}

// txFee is the value of the strong prevouts of tx less its outputs, zero
// when that cannot be resolved.
func (q *Query) txFee(tx Link) uint64 {
	var puts tables.TxPuts
	if !q.store.Tx.Get(tx, &puts) {
		return 0
	}

	var in, out uint64
	for index := uint32(0); index < puts.InsCount; index++ {
		spend := q.store.Puts.At(puts.PutsFK, index)
		point, prevIndex, ok := tables.DecodeSpendKey(q.store.Spend.GetKey(spend))
		if !ok {
			return 0
		}
		strong := q.ToStrong(q.store.Point.GetKey(point))
		var prev tables.OutputRecord
		if !q.store.Output.Get(q.ToOutput(strong.Tx, prevIndex), &prev) {
			return 0
		}
		in += prev.Value
	}
	for index := uint32(0); index < puts.OutsCount; index++ {
		var rec tables.OutputRecord
		if !q.store.Output.Get(q.store.Puts.At(puts.PutsFK, puts.InsCount+index), &rec) {
			return 0
		}
		out += rec.Value
	}
	if out > in {
		return 0
	}
	return in - out
}
