// tables defines the record layouts of every table in the store.
//
// Archives:  header, tx, txs, puts, point, spend, output, input.
// Indexes:   candidate, confirmed, strong_tx.
// Caches:    validated_bk, validated_tx.
// Optionals: address, neutrino.
package tables

import (
	"encoding/binary"

	"github.com/setavenger/blindbit-chainstore/internal/primitives"
)

type Link = primitives.Link

const (
	SizeHash   = 32
	SizeLink   = primitives.LinkSize
	SizeHeight = 4
	SizeIndex  = 4
	SizeCode   = 1
	SizeFlag   = 1
	SizeValue  = 8
	SizeU32    = 4
)

// block states held by validated_bk
const (
	BlockConfirmable   uint8 = 0
	BlockValid         uint8 = 1
	BlockUnconfirmable uint8 = 2
)

// tx states held by validated_tx
const (
	TxConnected    uint8 = 0
	TxPreconnected uint8 = 1
	TxDisconnected uint8 = 2
)

// LinkKey is the key of tables keyed by a foreign link.
func LinkKey(link Link) []byte {
	k := make([]byte, SizeLink)
	binary.LittleEndian.PutUint32(k, uint32(link))
	return k
}
