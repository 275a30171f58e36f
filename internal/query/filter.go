package query

import (
	"github.com/btcsuite/btcd/btcutil/gcs"
	"github.com/btcsuite/btcd/btcutil/gcs/builder"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/setavenger/blindbit-chainstore/internal/logging"
	"github.com/setavenger/blindbit-chainstore/internal/tables"
)

// GetBlockFilter is the BIP158 basic filter of an archived block. With the
// neutrino table enabled the filter is stored on first use, together with
// the filters of any ancestors that were not stored yet, and read back
// afterwards.
func (q *Query) GetBlockFilter(header Link) (*gcs.Filter, bool) {
	if q.store.Neutrino == nil {
		return q.buildFilter(header)
	}
	if _, ok := q.GetFilterHeader(header); !ok {
		return nil, false
	}

	var rec tables.NeutrinoRecord
	if !q.store.Neutrino.Find(tables.LinkKey(header), &rec) {
		return nil, false
	}
	filter, err := gcs.FromNBytes(builder.DefaultP, builder.DefaultM, rec.Filter)
	if err != nil {
		logging.L.Err(err).Uint32("header", uint32(header)).Msg("stored filter does not decode")
		return nil, false
	}
	return filter, true
}

// GetFilterHeader is the BIP157 filter header of header, chained from the
// zero hash at genesis. Filters missing along the way are built and stored
// oldest first. False when the neutrino table is disabled.
func (q *Query) GetFilterHeader(header Link) (chainhash.Hash, bool) {
	if q.store.Neutrino == nil || header.IsTerminal() {
		return chainhash.Hash{}, false
	}

	var prev chainhash.Hash
	var pending []Link
	for link := header; !link.IsTerminal(); {
		var stored tables.NeutrinoHeader
		if q.store.Neutrino.Find(tables.LinkKey(link), &stored) {
			prev = stored.FilterHeader
			break
		}
		pending = append(pending, link)

		var parent tables.HeaderParent
		if !q.store.Header.Get(link, &parent) {
			return chainhash.Hash{}, false
		}
		link = parent.ParentFK
	}

	// concurrent fills write identical records, the most recent one is read
	for i := len(pending) - 1; i >= 0; i-- {
		filter, ok := q.buildFilter(pending[i])
		if !ok {
			return chainhash.Hash{}, false
		}
		next, err := builder.MakeHeaderForFilter(filter, prev)
		if err != nil {
			logging.L.Err(err).Uint32("header", uint32(pending[i])).Msg("failed to chain filter header")
			return chainhash.Hash{}, false
		}
		data, err := filter.NBytes()
		if err != nil {
			logging.L.Err(err).Uint32("header", uint32(pending[i])).Msg("failed to serialize filter")
			return chainhash.Hash{}, false
		}
		rec := &tables.NeutrinoRecord{FilterHeader: next, Filter: data}
		if !q.store.Neutrino.Put(tables.LinkKey(pending[i]), rec) {
			logging.L.Warn().Uint32("header", uint32(pending[i])).Msg("failed to store filter")
			return chainhash.Hash{}, false
		}
		prev = next
	}
	return prev, true
}

// buildFilter computes the basic filter of an archived block from its output
// scripts and the scripts of the prevouts it spends. Prevouts must be
// archived.
func (q *Query) buildFilter(header Link) (*gcs.Filter, bool) {
	hash, ok := q.GetHeaderHash(header)
	if !ok {
		return nil, false
	}
	txs, ok := q.ToTransactions(header)
	if !ok {
		return nil, false
	}

	entries := make(map[string]struct{})
	add := func(script []byte) {
		if len(script) > 0 {
			entries[string(script)] = struct{}{}
		}
	}

	for position, tx := range txs {
		var puts tables.TxPuts
		if !q.store.Tx.Get(tx, &puts) {
			return nil, false
		}

		if position > 0 {
			for index := uint32(0); index < puts.InsCount; index++ {
				script, ok := q.prevoutScript(q.store.Puts.At(puts.PutsFK, index))
				if !ok {
					return nil, false
				}
				add(script)
			}
		}

		for index := uint32(0); index < puts.OutsCount; index++ {
			var out tables.OutputRecord
			if !q.store.Output.Get(q.store.Puts.At(puts.PutsFK, puts.InsCount+index), &out) {
				return nil, false
			}
			if len(out.Script) > 0 && out.Script[0] == txscript.OP_RETURN {
				continue
			}
			add(out.Script)
		}
	}

	data := make([][]byte, 0, len(entries))
	for entry := range entries {
		data = append(data, []byte(entry))
	}

	key := builder.DeriveKey(&hash)
	filter, err := gcs.BuildGCSFilter(builder.DefaultP, builder.DefaultM, key, data)
	if err != nil {
		logging.L.Err(err).Str("block", hash.String()).Msg("failed to build filter")
		return nil, false
	}
	return filter, true
}

// prevoutScript resolves the script spent by spend through any archived
// instance of the previous tx.
func (q *Query) prevoutScript(spend Link) ([]byte, bool) {
	point, index, ok := tables.DecodeSpendKey(q.store.Spend.GetKey(spend))
	if !ok {
		return nil, false
	}
	prev, ok := toHash(q.store.Point.GetKey(point))
	if !ok {
		return nil, false
	}

	var out tables.OutputRecord
	if !q.store.Output.Get(q.ToOutput(q.ToTx(&prev), index), &out) {
		return nil, false
	}
	return out.Script, true
}
