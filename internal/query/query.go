// query is the confirmation engine over the store. It navigates the links
// between headers, txs, spends, outputs and points and decides from those
// persisted facts alone whether a block can be confirmed.
package query

import (
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/setavenger/blindbit-chainstore/internal/primitives"
	"github.com/setavenger/blindbit-chainstore/internal/store"
	"github.com/setavenger/blindbit-chainstore/internal/tables"
)

type Link = tables.Link

const Terminal = primitives.Terminal

type Query struct {
	store  *store.Store
	params *chaincfg.Params
}

func New(s *store.Store, params *chaincfg.Params) *Query {
	return &Query{store: s, params: params}
}

func (q *Query) Store() *store.Store {
	return q.store
}

func (q *Query) Params() *chaincfg.Params {
	return q.params
}

// Strong pairs a tx instance with the block it is currently strong in.
type Strong struct {
	Block Link
	Tx    Link
}
