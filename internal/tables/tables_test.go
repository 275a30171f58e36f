package tables

import (
	"testing"

	"github.com/setavenger/blindbit-chainstore/internal/memory"
	"github.com/setavenger/blindbit-chainstore/internal/primitives"
	"github.com/stretchr/testify/require"
)

func region() *memory.Map {
	return memory.NewMap(memory.DefaultExpansion, 0)
}

func TestHeaderPartialDecoders(t *testing.T) {
	h := NewHeader(region(), region(), 8)
	require.True(t, h.Create())

	var key [SizeHash]byte
	key[0] = 0xaa
	link := h.PutLink(key[:], &HeaderRecord{
		ParentFK:  7,
		Flags:     0x55,
		Height:    42,
		MTP:       1_600_000_000,
		Timestamp: 1_600_000_600,
	})
	require.False(t, link.IsTerminal())

	var ctx HeaderContext
	require.True(t, h.Get(link, &ctx))
	require.Equal(t, HeaderContext{Flags: 0x55, Height: 42, MTP: 1_600_000_000}, ctx)

	var height HeaderHeight
	require.True(t, h.Get(link, &height))
	require.Equal(t, uint32(42), height.Height)

	var parent HeaderParent
	require.True(t, h.Get(link, &parent))
	require.Equal(t, Link(7), parent.ParentFK)

	var full HeaderRecord
	require.True(t, h.Find(key[:], &full))
	require.Equal(t, uint32(1_600_000_600), full.Timestamp)
}

func TestTxsPartialDecoders(t *testing.T) {
	txs := NewTxs(region(), region(), 8)
	require.True(t, txs.Create())
	require.True(t, txs.Put(LinkKey(3), &TxsRecord{Wire: 285, TxFKs: []Link{10, 11, 12}}))
	require.True(t, txs.Put(LinkKey(4), &TxsRecord{}))

	var cb TxsCoinbase
	require.True(t, txs.Find(LinkKey(3), &cb))
	require.Equal(t, Link(10), cb.CoinbaseFK)
	require.False(t, txs.Find(LinkKey(4), &cb))

	pos := TxsPosition{TxFK: 12}
	require.True(t, txs.Find(LinkKey(3), &pos))
	require.Equal(t, uint32(2), pos.Position)
	pos = TxsPosition{TxFK: 99}
	require.False(t, txs.Find(LinkKey(3), &pos))

	var quantity TxsQuantity
	require.True(t, txs.Find(LinkKey(3), &quantity))
	require.Equal(t, uint32(3), quantity.Quantity)

	var wire TxsWire
	require.True(t, txs.Find(LinkKey(3), &wire))
	require.Equal(t, uint32(285), wire.Wire)

	var all TxsRecord
	require.True(t, txs.Find(LinkKey(4), &all))
	require.Empty(t, all.TxFKs)
}

func TestPutsAt(t *testing.T) {
	puts := NewPuts(region())
	first := puts.PutLink(&PutsRecord{SpendFKs: []Link{1, 2}, OutputFKs: []Link{30}})
	second := puts.PutLink(&PutsRecord{SpendFKs: []Link{5}, OutputFKs: []Link{60, 61}})

	require.Equal(t, Link(2), puts.At(first, 1))
	require.Equal(t, Link(30), puts.At(first, 2))
	require.Equal(t, Link(5), puts.At(second, 0))
	require.Equal(t, Link(61), puts.At(second, 2))
	require.Equal(t, primitives.Terminal, puts.At(second, 3))
	require.Equal(t, primitives.Terminal, puts.At(primitives.Terminal, 0))
}

func TestSpendKey(t *testing.T) {
	pointFK, index, ok := DecodeSpendKey(SpendKey(17, 3))
	require.True(t, ok)
	require.Equal(t, Link(17), pointFK)
	require.Equal(t, uint32(3), index)

	_, _, ok = DecodeSpendKey([]byte{1})
	require.False(t, ok)
}

func TestHeightAt(t *testing.T) {
	h := NewHeight(region())
	require.True(t, h.Put(&HeightRecord{HeaderFK: 0}))
	require.True(t, h.Put(&HeightRecord{HeaderFK: 9}))
	require.Equal(t, Link(9), h.At(1))
	require.Equal(t, primitives.Terminal, h.At(2))
}

func TestHeaderPayloadFilled(t *testing.T) {
	w := primitives.NewWriter(make([]byte, headerPayload))
	require.True(t, (&HeaderRecord{Height: 1}).ToData(w))
	require.Equal(t, headerPayload, w.Position())

	body := region()
	h := NewHeader(region(), body, 8)
	require.True(t, h.Create())
	var key [SizeHash]byte
	require.True(t, h.Put(key[:], &HeaderRecord{}))
	require.Equal(t, SizeLink+SizeHash+headerPayload, body.Size())
}
