package query

import (
	"slices"
	"time"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/setavenger/blindbit-chainstore/internal/chain"
	"github.com/setavenger/blindbit-chainstore/internal/tables"
)

func (q *Query) ToHeader(hash *chainhash.Hash) Link {
	return q.store.Header.First(hash[:])
}

// ToTx is the most recent tx instance with hash.
func (q *Query) ToTx(hash *chainhash.Hash) Link {
	return q.store.Tx.First(hash[:])
}

func (q *Query) ToPoint(hash *chainhash.Hash) Link {
	return q.store.Point.First(hash[:])
}

// ToSpend is the spend of input index of tx.
func (q *Query) ToSpend(tx Link, index uint32) Link {
	var puts tables.TxPuts
	if !q.store.Tx.Get(tx, &puts) || index >= puts.InsCount {
		return Terminal
	}
	return q.store.Puts.At(puts.PutsFK, index)
}

// ToOutput is output index of tx.
func (q *Query) ToOutput(tx Link, index uint32) Link {
	var puts tables.TxPuts
	if !q.store.Tx.Get(tx, &puts) || index >= puts.OutsCount {
		return Terminal
	}
	return q.store.Puts.At(puts.PutsFK, puts.InsCount+index)
}

// GetPutCounts is the number of inputs and outputs of tx.
func (q *Query) GetPutCounts(tx Link) (ins, outs uint32, ok bool) {
	var puts tables.TxPuts
	if !q.store.Tx.Get(tx, &puts) {
		return 0, 0, false
	}
	return puts.InsCount, puts.OutsCount, true
}

func (q *Query) ToSpendTx(spend Link) Link {
	var rec tables.SpendRecord
	if !q.store.Spend.Get(spend, &rec) {
		return Terminal
	}
	return rec.ParentFK
}

func (q *Query) ToOutputTx(output Link) Link {
	var rec tables.OutputParent
	if !q.store.Output.Get(output, &rec) {
		return Terminal
	}
	return rec.ParentFK
}

// ToTransactions is the ordered tx list of header, false if not associated.
func (q *Query) ToTransactions(header Link) ([]Link, bool) {
	var rec tables.TxsRecord
	if !q.store.Txs.Find(tables.LinkKey(header), &rec) {
		return nil, false
	}
	return rec.TxFKs, true
}

func (q *Query) ToCoinbase(header Link) Link {
	var rec tables.TxsCoinbase
	if !q.store.Txs.Find(tables.LinkKey(header), &rec) {
		return Terminal
	}
	return rec.CoinbaseFK
}

// ToBlock is the block tx is currently strong in, terminal when every
// association has been retracted or there is none.
func (q *Query) ToBlock(tx Link) Link {
	blocks := q.toBlocks(tx)
	if len(blocks) == 0 {
		return Terminal
	}
	return blocks[0]
}

// toBlocks is every header whose latest record for tx is positive, most
// recently associated first. Retracting tx from one block leaves its
// association with any other block in place.
func (q *Query) toBlocks(tx Link) []Link {
	var strong, retracted []Link
	for it := q.store.StrongTx.It(tables.LinkKey(tx)); it.IsMatch(); it.Advance() {
		var rec tables.StrongTxRecord
		if !q.store.StrongTx.Get(it.Self(), &rec) {
			return nil
		}
		if slices.Contains(strong, rec.HeaderFK) || slices.Contains(retracted, rec.HeaderFK) {
			continue
		}
		if rec.Positive {
			strong = append(strong, rec.HeaderFK)
		} else {
			retracted = append(retracted, rec.HeaderFK)
		}
	}
	return strong
}

// ToStrong is the first instance of hash that is strong in some block.
func (q *Query) ToStrong(hash []byte) Strong {
	for it := q.store.Tx.It(hash); it.IsMatch(); it.Advance() {
		if block := q.ToBlock(it.Self()); !block.IsTerminal() {
			return Strong{Block: block, Tx: it.Self()}
		}
	}
	return Strong{Block: Terminal, Tx: Terminal}
}

// ToStrongs is every distinct strong pairing of the instances of hash, more
// than one only for duplicated coinbases.
func (q *Query) ToStrongs(hash []byte) []Strong {
	var out []Strong
	seen := make(map[Strong]struct{})
	for it := q.store.Tx.It(hash); it.IsMatch(); it.Advance() {
		block := q.ToBlock(it.Self())
		if block.IsTerminal() {
			continue
		}
		s := Strong{Block: block, Tx: it.Self()}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

func (q *Query) ToCandidate(height uint32) Link {
	return q.store.Candidate.At(height)
}

func (q *Query) ToConfirmed(height uint32) Link {
	return q.store.Confirmed.At(height)
}

func (q *Query) ToParent(header Link) Link {
	var rec tables.HeaderParent
	if !q.store.Header.Get(header, &rec) {
		return Terminal
	}
	return rec.ParentFK
}

func (q *Query) GetHeight(header Link) (uint32, bool) {
	var rec tables.HeaderHeight
	if !q.store.Header.Get(header, &rec) {
		return 0, false
	}
	return rec.Height, true
}

func (q *Query) GetContext(header Link) (chain.Context, bool) {
	var rec tables.HeaderContext
	if !q.store.Header.Get(header, &rec) {
		return chain.Context{}, false
	}
	return chain.Context{Flags: chain.Flags(rec.Flags), Height: rec.Height, MTP: rec.MTP}, true
}

func (q *Query) GetHeaderHash(header Link) (chainhash.Hash, bool) {
	return toHash(q.store.Header.GetKey(header))
}

func (q *Query) GetTxHash(tx Link) (chainhash.Hash, bool) {
	return toHash(q.store.Tx.GetKey(tx))
}

// GetHeader rebuilds the wire header of link, the genesis parent is zero.
func (q *Query) GetHeader(header Link) (*wire.BlockHeader, bool) {
	var rec tables.HeaderRecord
	if !q.store.Header.Get(header, &rec) {
		return nil, false
	}

	var prev chainhash.Hash
	if !rec.ParentFK.IsTerminal() {
		var ok bool
		if prev, ok = q.GetHeaderHash(rec.ParentFK); !ok {
			return nil, false
		}
	}

	return &wire.BlockHeader{
		Version:    int32(rec.Version),
		PrevBlock:  prev,
		MerkleRoot: rec.MerkleRoot,
		Timestamp:  time.Unix(int64(rec.Timestamp), 0),
		Bits:       rec.Bits,
		Nonce:      rec.Nonce,
	}, true
}

// GetBlockWire is the serialized size of the block recorded at archival.
func (q *Query) GetBlockWire(header Link) (uint32, bool) {
	var rec tables.TxsWire
	if !q.store.Txs.Find(tables.LinkKey(header), &rec) {
		return 0, false
	}
	return rec.Wire, true
}

func (q *Query) GetTxCount(header Link) (uint32, bool) {
	var rec tables.TxsQuantity
	if !q.store.Txs.Find(tables.LinkKey(header), &rec) {
		return 0, false
	}
	return rec.Quantity, true
}

// GetTxPosition is the ordinal of tx within header.
func (q *Query) GetTxPosition(header, tx Link) (uint32, bool) {
	rec := tables.TxsPosition{TxFK: tx}
	if !q.store.Txs.Find(tables.LinkKey(header), &rec) {
		return 0, false
	}
	return rec.Position, true
}

func toHash(key []byte) (chainhash.Hash, bool) {
	var hash chainhash.Hash
	if len(key) != chainhash.HashSize {
		return hash, false
	}
	copy(hash[:], key)
	return hash, true
}
