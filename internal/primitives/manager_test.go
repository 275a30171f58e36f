package primitives

import (
	"testing"

	"github.com/setavenger/blindbit-chainstore/internal/memory"
	"github.com/stretchr/testify/require"
)

func TestManagerRecordAllocate(t *testing.T) {
	m := NewManager(memory.NewMap(memory.DefaultExpansion, 0), 10)
	require.Equal(t, Link(0), m.Count())

	require.Equal(t, Link(0), m.Allocate(1))
	require.Equal(t, Link(1), m.Allocate(3))
	require.Equal(t, Link(4), m.Count())

	for link := Link(0); link < m.Count(); link++ {
		acc := m.Get(link)
		require.NotNil(t, acc, "link %d", link)
		require.GreaterOrEqual(t, len(acc.Data()), 10)
		acc.Release()
	}
	require.Nil(t, m.Get(4))
	require.Nil(t, m.Get(Terminal))
}

func TestManagerSlabAllocate(t *testing.T) {
	m := NewManager(memory.NewMap(memory.DefaultExpansion, 0), 0)
	require.True(t, m.IsSlab())
	require.Equal(t, Link(0), m.Allocate(100))
	require.Equal(t, Link(100), m.Allocate(42))
	require.Equal(t, Link(142), m.Count())

	acc := m.Get(100)
	require.NotNil(t, acc)
	require.Len(t, acc.Data(), 42)
	acc.Release()
	require.Nil(t, m.Get(142))
}

func TestManagerAllocateAtCapacity(t *testing.T) {
	m := NewManager(memory.NewMap(0, 30), 10)
	require.Equal(t, Link(0), m.Allocate(3))
	require.Equal(t, Terminal, m.Allocate(1))
	require.Equal(t, Link(3), m.Count())
	require.Equal(t, Terminal, m.Allocate(Terminal))
	require.Equal(t, Link(3), m.Count())
}

func TestManagerAllocateOverflow(t *testing.T) {
	m := NewManager(memory.NewMap(0, 0), 0)
	require.Equal(t, Link(0), m.Allocate(10))
	require.Equal(t, Terminal, m.Allocate(Terminal-5))
	require.Equal(t, Link(10), m.Count())
}

func TestManagerTruncate(t *testing.T) {
	m := NewManager(memory.NewMap(memory.DefaultExpansion, 0), 8)
	require.Equal(t, Link(0), m.Allocate(5))

	require.False(t, m.Truncate(5))
	require.False(t, m.Truncate(6))
	require.Equal(t, Link(5), m.Count())

	require.True(t, m.Truncate(2))
	require.Equal(t, Link(2), m.Count())
	require.Nil(t, m.Get(2))

	require.True(t, m.Truncate(0))
	require.Equal(t, Link(0), m.Count())
}
