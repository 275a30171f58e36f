package query

import (
	"github.com/setavenger/blindbit-chainstore/internal/chain"
	"github.com/setavenger/blindbit-chainstore/internal/logging"
	"github.com/setavenger/blindbit-chainstore/internal/tables"
)

// IsCandidateBlock is true when the candidate entry at the header's own
// height is the header.
func (q *Query) IsCandidateBlock(header Link) bool {
	height, ok := q.GetHeight(header)
	return ok && q.store.Candidate.At(height) == header
}

func (q *Query) IsConfirmedBlock(header Link) bool {
	height, ok := q.GetHeight(header)
	return ok && q.store.Confirmed.At(height) == header
}

// IsStrongTx is true while the most recent association of tx is positive.
func (q *Query) IsStrongTx(tx Link) bool {
	return !q.ToBlock(tx).IsTerminal()
}

func (q *Query) IsStrongSpend(spend Link) bool {
	return q.IsStrongTx(q.ToSpendTx(spend))
}

// IsConfirmedTx needs tx to be strong in a block that is itself confirmed.
func (q *Query) IsConfirmedTx(tx Link) bool {
	block := q.ToBlock(tx)
	return !block.IsTerminal() && q.IsConfirmedBlock(block)
}

func (q *Query) IsConfirmedInput(spend Link) bool {
	return q.IsConfirmedTx(q.ToSpendTx(spend))
}

func (q *Query) IsConfirmedOutput(output Link) bool {
	return q.IsConfirmedTx(q.ToOutputTx(output))
}

// IsSpentOutput is true when some spend of the output's point is a
// confirmed input.
func (q *Query) IsSpentOutput(output Link) bool {
	tx := q.ToOutputTx(output)
	hash := q.store.Tx.GetKey(tx)
	if hash == nil {
		return false
	}

	index, ok := q.outputIndex(tx, output)
	if !ok {
		return false
	}
	point := q.store.Point.First(hash)
	if point.IsTerminal() {
		return false
	}

	for it := q.store.Spend.It(tables.SpendKey(point, index)); it.IsMatch(); it.Advance() {
		if q.IsConfirmedInput(it.Self()) {
			return true
		}
	}
	return false
}

// IsSpent is true when any spend of point:index is strong.
func (q *Query) IsSpent(point Link, index uint32) bool {
	return q.SpentPrevout(point, index, Terminal) != Success
}

// IsMature reports whether the prevout of spend is past coinbase maturity
// at height. Unresolvable prevouts are not mature.
func (q *Query) IsMature(spend Link, height uint32) bool {
	prev, code := q.spendPrevout(spend)
	if code != Success {
		return false
	}
	return !q.isImmature(prev, height)
}

// IsLocked reports whether spend is still relative time locked under ctx.
// Unresolvable prevouts are locked.
func (q *Query) IsLocked(spend Link, ctx chain.Context) bool {
	var rec tables.SpendRecord
	if !q.store.Spend.Get(spend, &rec) {
		return true
	}
	var version tables.TxVersion
	if !q.store.Tx.Get(rec.ParentFK, &version) {
		return true
	}
	prev, code := q.spendPrevout(spend)
	if code != Success {
		return true
	}
	return q.isLocked(prev, rec.Sequence, version.Version, ctx)
}

// prevout is the strong owner of a previous output as the rules see it.
type prevout struct {
	Strong
	coinbase bool
	ctx      chain.Context
}

// resolvePrevout finds the strong instance owning hash:index.
func (q *Query) resolvePrevout(hash []byte, index uint32) (prevout, Code) {
	it := q.store.Tx.It(hash)
	if !it.IsMatch() {
		return prevout{}, MissingPreviousOutput
	}

	strong := q.ToStrong(hash)
	if strong.Tx.IsTerminal() {
		return prevout{}, UnconfirmedSpend
	}
	if q.ToOutput(strong.Tx, index).IsTerminal() {
		return prevout{}, MissingPreviousOutput
	}

	var cb tables.TxCoinbase
	if !q.store.Tx.Get(strong.Tx, &cb) {
		return prevout{}, Integrity
	}
	ctx, ok := q.GetContext(strong.Block)
	if !ok {
		return prevout{}, Integrity
	}
	return prevout{Strong: strong, coinbase: cb.Coinbase, ctx: ctx}, Success
}

func (q *Query) spendPrevout(spend Link) (prevout, Code) {
	point, index, ok := tables.DecodeSpendKey(q.store.Spend.GetKey(spend))
	if !ok || point.IsTerminal() {
		return prevout{}, Integrity
	}
	hash := q.store.Point.GetKey(point)
	if hash == nil {
		return prevout{}, Integrity
	}
	return q.resolvePrevout(hash, index)
}

func (q *Query) isImmature(prev prevout, height uint32) bool {
	return prev.coinbase &&
		!chain.IsCoinbaseMature(prev.ctx.Height, height, q.params.CoinbaseMaturity)
}

func (q *Query) isLocked(prev prevout, sequence, version uint32, ctx chain.Context) bool {
	return ctx.IsEnabled(chain.BIP68) &&
		chain.IsRelativeLocktimeApplied(false, version, sequence) &&
		chain.IsRelativeLocked(sequence, ctx.Height, ctx.MTP, prev.ctx.Height, prev.ctx.MTP)
}

// UnspendablePrevout checks that the output hash:index can be spent by an
// input with sequence in a tx of version under ctx.
func (q *Query) UnspendablePrevout(hash []byte, index, sequence, version uint32, ctx chain.Context) Code {
	prev, code := q.resolvePrevout(hash, index)
	if code != Success {
		return code
	}
	if q.isImmature(prev, ctx.Height) {
		return CoinbaseMaturity
	}
	if q.isLocked(prev, sequence, version, ctx) {
		return RelativeTimeLocked
	}
	return Success
}

// SpentPrevout fails when a spend of point:index other than self is strong.
func (q *Query) SpentPrevout(point Link, index uint32, self Link) Code {
	for it := q.store.Spend.It(tables.SpendKey(point, index)); it.IsMatch(); it.Advance() {
		if it.Self() == self {
			continue
		}
		if q.IsStrongSpend(it.Self()) {
			return ConfirmedDoubleSpend
		}
	}
	return Success
}

// UnspentDuplicates applies BIP30 to coinbase. When other strong instances
// share its hash, at most one of their outputs may remain unspent.
func (q *Query) UnspentDuplicates(coinbase Link, ctx chain.Context) Code {
	if !ctx.IsEnabled(chain.BIP30) {
		return Success
	}

	hash := q.store.Tx.GetKey(coinbase)
	if hash == nil {
		return Integrity
	}

	strongs := q.ToStrongs(hash)
	switch len(strongs) {
	case 0:
		return Integrity
	case 1:
		return Success
	}

	point := q.store.Point.First(hash)
	unspent := 0
	for _, s := range strongs {
		if s.Tx == coinbase {
			continue
		}
		var puts tables.TxPuts
		if !q.store.Tx.Get(s.Tx, &puts) {
			return Integrity
		}
		for index := uint32(0); index < puts.OutsCount; index++ {
			if !point.IsTerminal() && q.IsSpent(point, index) {
				continue
			}
			if unspent++; unspent > 1 {
				return UnspentCoinbaseCollision
			}
		}
	}
	return Success
}

// BlockConfirmable proves from stored facts that every spend in header is
// of a strong, mature, unlocked and otherwise unspent output, and that no
// tx of header is still strong in another block. The first failure decides
// the result.
func (q *Query) BlockConfirmable(header Link) Code {
	ctx, ok := q.GetContext(header)
	if !ok {
		return Integrity
	}
	txs, ok := q.ToTransactions(header)
	if !ok {
		return Unassociated
	}
	if len(txs) == 0 {
		return Success
	}

	if code := q.UnspentDuplicates(txs[0], ctx); code != Success {
		q.reject(header, txs[0], code)
		return code
	}

	for _, tx := range txs[1:] {
		if q.isStrongElsewhere(tx, header) {
			q.reject(header, tx, ConfirmedDoubleSpend)
			return ConfirmedDoubleSpend
		}
		if code := q.txConfirmable(tx, ctx); code != Success {
			q.reject(header, tx, code)
			return code
		}
	}
	return Success
}

// isStrongElsewhere is true when tx is still associated with a block other
// than header. A tx archived once is shared by every block that includes it,
// so its spends would otherwise pass as the block's own.
func (q *Query) isStrongElsewhere(tx, header Link) bool {
	for _, block := range q.toBlocks(tx) {
		if block != header {
			return true
		}
	}
	return false
}

func (q *Query) txConfirmable(tx Link, ctx chain.Context) Code {
	var puts tables.TxPuts
	var version tables.TxVersion
	if !q.store.Tx.Get(tx, &puts) || !q.store.Tx.Get(tx, &version) {
		return Integrity
	}

	for index := uint32(0); index < puts.InsCount; index++ {
		spend := q.store.Puts.At(puts.PutsFK, index)

		var rec tables.SpendRecord
		if !q.store.Spend.Get(spend, &rec) {
			return Integrity
		}
		point, prevIndex, ok := tables.DecodeSpendKey(q.store.Spend.GetKey(spend))
		if !ok {
			return Integrity
		}
		hash := q.store.Point.GetKey(point)
		if hash == nil {
			return Integrity
		}

		if code := q.UnspendablePrevout(hash, prevIndex, rec.Sequence, version.Version, ctx); code != Success {
			return code
		}
		if code := q.SpentPrevout(point, prevIndex, spend); code != Success {
			return code
		}
	}
	return Success
}

func (q *Query) reject(header, tx Link, code Code) {
	hash, _ := q.GetHeaderHash(header)
	txid, _ := q.GetTxHash(tx)
	logging.L.Debug().
		Str("block", hash.String()).
		Str("txid", txid.String()).
		Str("code", code.String()).
		Msg("block not confirmable")
}

func (q *Query) outputIndex(tx, output Link) (uint32, bool) {
	var puts tables.TxPuts
	if !q.store.Tx.Get(tx, &puts) {
		return 0, false
	}
	for index := uint32(0); index < puts.OutsCount; index++ {
		if q.store.Puts.At(puts.PutsFK, puts.InsCount+index) == output {
			return index, true
		}
	}
	return 0, false
}
