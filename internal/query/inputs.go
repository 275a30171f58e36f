package query

import (
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/wire"
	"github.com/setavenger/blindbit-chainstore/internal/tables"
)

// GetInput is the signature script and witness of input index of tx.
func (q *Query) GetInput(tx Link, index uint32) ([]byte, wire.TxWitness, bool) {
	rec := tables.InputAt{Index: index}
	if !q.store.Input.Find(tables.LinkKey(tx), &rec) {
		return nil, nil, false
	}
	return rec.Script, rec.Witness, true
}

// GetTransaction rebuilds the wire form of an archived tx, witnesses
// included.
func (q *Query) GetTransaction(tx Link) (*wire.MsgTx, bool) {
	var rec tables.TxRecord
	if !q.store.Tx.Get(tx, &rec) {
		return nil, false
	}

	var inputs tables.InputRecord
	if rec.InsCount > 0 {
		if !q.store.Input.Find(tables.LinkKey(tx), &inputs) || len(inputs.Scripts) != int(rec.InsCount) {
			return nil, false
		}
	}

	msg := wire.NewMsgTx(int32(rec.Version))
	msg.LockTime = rec.Locktime
	for index := uint32(0); index < rec.InsCount; index++ {
		spend := q.store.Puts.At(rec.PutsFK, index)
		point, prevIndex, ok := tables.DecodeSpendKey(q.store.Spend.GetKey(spend))
		if !ok {
			return nil, false
		}
		var prev chainhash.Hash
		if !point.IsTerminal() {
			if prev, ok = toHash(q.store.Point.GetKey(point)); !ok {
				return nil, false
			}
		}
		var sr tables.SpendRecord
		if !q.store.Spend.Get(spend, &sr) {
			return nil, false
		}

		in := wire.NewTxIn(wire.NewOutPoint(&prev, prevIndex), inputs.Scripts[index], inputs.Witnesses[index])
		in.Sequence = sr.Sequence
		msg.AddTxIn(in)
	}
	for index := uint32(0); index < rec.OutsCount; index++ {
		var out tables.OutputRecord
		if !q.store.Output.Get(q.store.Puts.At(rec.PutsFK, rec.InsCount+index), &out) {
			return nil, false
		}
		msg.AddTxOut(wire.NewTxOut(int64(out.Value), out.Script))
	}
	return msg, true
}

// GetBlock rebuilds the wire form of an associated block.
func (q *Query) GetBlock(header Link) (*wire.MsgBlock, bool) {
	bh, ok := q.GetHeader(header)
	if !ok {
		return nil, false
	}
	txs, ok := q.ToTransactions(header)
	if !ok {
		return nil, false
	}

	block := wire.NewMsgBlock(bh)
	for _, tx := range txs {
		msg, ok := q.GetTransaction(tx)
		if !ok {
			return nil, false
		}
		block.Transactions = append(block.Transactions, msg)
	}
	return block, true
}

// ToAddressOutputs is every archived output paying script, most recent
// first. It is empty when the address table is disabled.
func (q *Query) ToAddressOutputs(script []byte) []Link {
	if q.store.Address == nil {
		return nil
	}

	var outputs []Link
	for it := q.store.Address.It(tables.AddressKey(script)); it.IsMatch(); it.Advance() {
		var rec tables.AddressRecord
		if !q.store.Address.Get(it.Self(), &rec) {
			return nil
		}
		outputs = append(outputs, rec.OutputFK)
	}
	return outputs
}
