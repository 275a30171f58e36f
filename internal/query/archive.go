package query

import (
	"github.com/btcsuite/btcd/blockchain"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/wire"
	"github.com/setavenger/blindbit-chainstore/internal/chain"
	"github.com/setavenger/blindbit-chainstore/internal/logging"
	"github.com/setavenger/blindbit-chainstore/internal/tables"
)

// SetHeader archives header under ctx and returns its link. A header that is
// already archived is not written again.
func (q *Query) SetHeader(header *wire.BlockHeader, ctx chain.Context) Link {
	t := q.store.GetTransactor()
	defer t.Release()
	return q.setHeader(header, ctx)
}

// SetTx archives tx and returns its link. Non-coinbase txs are archived once
// per hash, coinbases always get a new instance so duplicates can coexist.
func (q *Query) SetTx(tx *wire.MsgTx) Link {
	t := q.store.GetTransactor()
	defer t.Release()
	return q.setTx(btcutil.NewTx(tx))
}

// SetBlock archives the txs and header of block and associates them. The
// association is written last, once it exists the block is complete.
func (q *Query) SetBlock(block *wire.MsgBlock, ctx chain.Context) (Link, Code) {
	t := q.store.GetTransactor()
	defer t.Release()
	return q.setBlock(block, ctx)
}

// IsAssociated is true once the tx list of header has been archived.
func (q *Query) IsAssociated(header Link) bool {
	return !header.IsTerminal() && q.store.Txs.Exists(tables.LinkKey(header))
}

func (q *Query) setHeader(header *wire.BlockHeader, ctx chain.Context) Link {
	hash := header.BlockHash()
	if link := q.store.Header.First(hash[:]); !link.IsTerminal() {
		return link
	}

	rec := &tables.HeaderRecord{
		ParentFK:   q.store.Header.First(header.PrevBlock[:]),
		Flags:      uint32(ctx.Flags),
		Height:     ctx.Height,
		MTP:        ctx.MTP,
		Version:    uint32(header.Version),
		Timestamp:  uint32(header.Timestamp.Unix()),
		Bits:       header.Bits,
		Nonce:      header.Nonce,
		MerkleRoot: header.MerkleRoot,
	}
	link := q.store.Header.PutLink(hash[:], rec)
	if link.IsTerminal() {
		logging.L.Warn().Str("block", hash.String()).Msg("failed to allocate header")
	}
	return link
}

func (q *Query) setTx(tx *btcutil.Tx) Link {
	msg := tx.MsgTx()
	hash := tx.Hash()
	coinbase := blockchain.IsCoinBaseTx(msg)

	if !coinbase {
		if link := q.store.Tx.First(hash[:]); !link.IsTerminal() {
			return link
		}
	}

	// the tx slot is reserved first so spends and outputs can point at it
	txFK := q.store.Tx.Allocate(1)
	if txFK.IsTerminal() {
		logging.L.Warn().Str("txid", hash.String()).Msg("failed to allocate tx")
		return Terminal
	}

	spendFKs, keys, ok := q.setSpends(msg, txFK, coinbase)
	if !ok {
		logging.L.Warn().Str("txid", hash.String()).Msg("failed to write spends")
		return Terminal
	}

	outputFKs := make([]Link, len(msg.TxOut))
	for i, out := range msg.TxOut {
		outputFKs[i] = q.store.Output.PutLink(&tables.OutputRecord{
			ParentFK: txFK,
			Value:    uint64(out.Value),
			Script:   out.PkScript,
		})
		if outputFKs[i].IsTerminal() {
			logging.L.Warn().Str("txid", hash.String()).Int("index", i).Msg("failed to write output")
			return Terminal
		}
		if q.store.Address != nil && len(out.PkScript) > 0 {
			rec := &tables.AddressRecord{OutputFK: outputFKs[i]}
			if !q.store.Address.Put(tables.AddressKey(out.PkScript), rec) {
				logging.L.Warn().Str("txid", hash.String()).Int("index", i).Msg("failed to index address")
				return Terminal
			}
		}
	}

	if !q.setInputs(msg, txFK) {
		logging.L.Warn().Str("txid", hash.String()).Msg("failed to write inputs")
		return Terminal
	}

	putsFK := Terminal
	if len(spendFKs)+len(outputFKs) > 0 {
		putsFK = q.store.Puts.PutLink(&tables.PutsRecord{SpendFKs: spendFKs, OutputFKs: outputFKs})
		if putsFK.IsTerminal() {
			logging.L.Warn().Str("txid", hash.String()).Msg("failed to write puts")
			return Terminal
		}
	}

	rec := &tables.TxRecord{
		Coinbase:  coinbase,
		LightSize: uint32(msg.SerializeSizeStripped()),
		HeavySize: uint32(msg.SerializeSize()),
		Locktime:  msg.LockTime,
		Version:   uint32(msg.Version),
		InsCount:  uint32(len(spendFKs)),
		OutsCount: uint32(len(outputFKs)),
		PutsFK:    putsFK,
	}
	if !q.store.Tx.Set(txFK, hash[:], rec) {
		return Terminal
	}

	// spends become reachable only once their parent is written, the null
	// point of a coinbase is never looked up so it stays off the bucket chains
	for i, fk := range spendFKs {
		if coinbase {
			break
		}
		if !q.store.Spend.Commit(fk, keys[i]) {
			return Terminal
		}
	}
	if !q.store.Tx.Commit(txFK, hash[:]) {
		return Terminal
	}
	return txFK
}

// setSpends writes every input of msg into one allocation without
// publishing any of them.
func (q *Query) setSpends(msg *wire.MsgTx, txFK Link, coinbase bool) ([]Link, [][]byte, bool) {
	if len(msg.TxIn) == 0 {
		return nil, nil, true
	}

	first := q.store.Spend.Allocate(Link(len(msg.TxIn)))
	if first.IsTerminal() {
		return nil, nil, false
	}

	fks := make([]Link, len(msg.TxIn))
	keys := make([][]byte, len(msg.TxIn))
	for i, in := range msg.TxIn {
		pointFK := Terminal
		if !coinbase {
			pointFK = q.setPoint(in.PreviousOutPoint.Hash[:])
			if pointFK.IsTerminal() {
				return nil, nil, false
			}
		}

		fks[i] = first + Link(i)
		keys[i] = tables.SpendKey(pointFK, in.PreviousOutPoint.Index)
		rec := &tables.SpendRecord{ParentFK: txFK, Sequence: in.Sequence}
		if !q.store.Spend.Set(fks[i], keys[i], rec) {
			return nil, nil, false
		}
	}
	return fks, keys, true
}

// setInputs writes the scripts and witnesses of msg keyed by its tx link.
func (q *Query) setInputs(msg *wire.MsgTx, txFK Link) bool {
	if len(msg.TxIn) == 0 {
		return true
	}
	rec := &tables.InputRecord{
		Scripts:   make([][]byte, len(msg.TxIn)),
		Witnesses: make([][][]byte, len(msg.TxIn)),
	}
	for i, in := range msg.TxIn {
		rec.Scripts[i] = in.SignatureScript
		rec.Witnesses[i] = in.Witness
	}
	return q.store.Input.Put(tables.LinkKey(txFK), rec)
}

// setPoint interns a previous tx hash.
func (q *Query) setPoint(hash []byte) Link {
	if link := q.store.Point.First(hash); !link.IsTerminal() {
		return link
	}
	return q.store.Point.PutLink(hash, &tables.PointRecord{})
}

func (q *Query) setBlock(block *wire.MsgBlock, ctx chain.Context) (Link, Code) {
	blk := btcutil.NewBlock(block)
	hash := blk.Hash()

	if link := q.store.Header.First(hash[:]); q.IsAssociated(link) {
		return link, Success
	}

	txFKs := make([]Link, 0, len(block.Transactions))
	for _, tx := range blk.Transactions() {
		fk := q.setTx(tx)
		if fk.IsTerminal() {
			logging.L.Error().Str("block", hash.String()).Str("txid", tx.Hash().String()).Msg("failed to archive tx")
			return Terminal, Integrity
		}
		txFKs = append(txFKs, fk)
	}

	header := q.setHeader(&block.Header, ctx)
	if header.IsTerminal() {
		return Terminal, Integrity
	}

	rec := &tables.TxsRecord{Wire: uint32(block.SerializeSize()), TxFKs: txFKs}
	if !q.store.Txs.Put(tables.LinkKey(header), rec) {
		logging.L.Error().Str("block", hash.String()).Msg("failed to associate txs")
		return Terminal, Integrity
	}

	logging.L.Debug().
		Str("block", hash.String()).
		Uint32("height", ctx.Height).
		Int("txs", len(txFKs)).
		Msg("archived block")
	return header, Success
}
