package query

import (
	"github.com/setavenger/blindbit-chainstore/internal/logging"
	"github.com/setavenger/blindbit-chainstore/internal/tables"
)

// SetStrong associates every tx of header with it.
func (q *Query) SetStrong(header Link) bool {
	t := q.store.GetTransactor()
	defer t.Release()
	return q.setStrong(header, true)
}

// SetUnstrong retracts the associations made by SetStrong.
func (q *Query) SetUnstrong(header Link) bool {
	t := q.store.GetTransactor()
	defer t.Release()
	return q.setStrong(header, false)
}

// setStrong writes one record per tx from a single allocation and only then
// publishes them, so an allocation failure leaves no association visible.
func (q *Query) setStrong(header Link, positive bool) bool {
	txs, ok := q.ToTransactions(header)
	if !ok {
		return false
	}
	if len(txs) == 0 {
		return true
	}

	first := q.store.StrongTx.Allocate(Link(len(txs)))
	if first.IsTerminal() {
		logging.L.Warn().Uint32("header", uint32(header)).Msg("failed to allocate strong_tx")
		return false
	}
	return q.writeStrong(first, header, txs, positive) == len(txs)
}

// writeStrong sets the records of txs into the allocated slots from first,
// then publishes them in order. It returns how many were published.
func (q *Query) writeStrong(first, header Link, txs []Link, positive bool) int {
	rec := &tables.StrongTxRecord{HeaderFK: header, Positive: positive}
	for i, tx := range txs {
		if !q.store.StrongTx.Set(first+Link(i), tables.LinkKey(tx), rec) {
			return 0
		}
	}
	for i, tx := range txs {
		if !q.store.StrongTx.Commit(first+Link(i), tables.LinkKey(tx)) {
			return i
		}
	}
	return len(txs)
}

// strongScope associates the txs of a block from slots reserved together
// with the slots that retract them, so undoing the association never has
// to allocate.
type strongScope struct {
	q         *Query
	header    Link
	txs       []Link
	first     Link
	published int
}

func (q *Query) reserveStrong(header Link) (*strongScope, bool) {
	txs, ok := q.ToTransactions(header)
	if !ok {
		return nil, false
	}
	scope := &strongScope{q: q, header: header, txs: txs, first: Terminal}
	if len(txs) == 0 {
		return scope, true
	}

	scope.first = q.store.StrongTx.Allocate(2 * Link(len(txs)))
	if scope.first.IsTerminal() {
		logging.L.Warn().Uint32("header", uint32(header)).Msg("failed to reserve strong_tx")
		return nil, false
	}
	return scope, true
}

func (s *strongScope) associate() bool {
	if len(s.txs) == 0 {
		return true
	}
	s.published = s.q.writeStrong(s.first, s.header, s.txs, true)
	return s.published == len(s.txs)
}

// retract publishes a negative record for every tx associate published.
func (s *strongScope) retract() bool {
	if s.published == 0 {
		return true
	}
	retracted := s.q.writeStrong(s.first+Link(len(s.txs)), s.header, s.txs[:s.published], false)
	if retracted != s.published {
		logging.L.Error().Uint32("header", uint32(s.header)).Msg("failed to retract strong_tx")
		return false
	}
	s.published = 0
	return true
}

// release drops the unused retraction slots, they sit at the top of the
// body as long as nothing else allocated strong_tx since the reservation.
func (s *strongScope) release() bool {
	if len(s.txs) == 0 {
		return true
	}
	return s.q.store.StrongTx.Truncate(s.first + Link(len(s.txs)))
}

func (q *Query) PushCandidate(header Link) bool {
	t := q.store.GetTransactor()
	defer t.Release()
	return q.push(q.store.Candidate, header)
}

func (q *Query) PushConfirmed(header Link) bool {
	t := q.store.GetTransactor()
	defer t.Release()
	return q.push(q.store.Confirmed, header)
}

// PopCandidate removes the top candidate, never the entry at height zero.
func (q *Query) PopCandidate() bool {
	t := q.store.GetTransactor()
	defer t.Release()
	return q.pop(q.store.Candidate)
}

// PopConfirmed removes the top confirmed block, never the entry at height zero.
func (q *Query) PopConfirmed() bool {
	t := q.store.GetTransactor()
	defer t.Release()
	return q.pop(q.store.Confirmed)
}

func (q *Query) push(table *tables.Height, header Link) bool {
	if header.IsTerminal() {
		return false
	}
	return table.Put(&tables.HeightRecord{HeaderFK: header})
}

func (q *Query) pop(table *tables.Height) bool {
	count := table.Count()
	if count <= 1 {
		return false
	}
	return table.Truncate(count - 1)
}

func (q *Query) GetTopCandidate() (uint32, bool) {
	return top(q.store.Candidate)
}

func (q *Query) GetTopConfirmed() (uint32, bool) {
	return top(q.store.Confirmed)
}

// GetFork is the highest height at which both chains hold the same header.
func (q *Query) GetFork() (uint32, bool) {
	candidate, ok := q.GetTopCandidate()
	if !ok {
		return 0, false
	}
	confirmed, ok := q.GetTopConfirmed()
	if !ok {
		return 0, false
	}

	for height := min(candidate, confirmed); ; height-- {
		if q.ToCandidate(height) == q.ToConfirmed(height) {
			return height, true
		}
		if height == 0 {
			return 0, false
		}
	}
}

func top(table *tables.Height) (uint32, bool) {
	count := table.Count()
	if count == 0 {
		return 0, false
	}
	return uint32(count - 1), true
}
