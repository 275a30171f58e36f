package memory

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapAllocateGrows(t *testing.T) {
	m := NewMap(DefaultExpansion, 0)
	require.Equal(t, 0, m.Size())
	require.Equal(t, 0, m.Capacity())

	require.Equal(t, 0, m.Allocate(10))
	require.Equal(t, 10, m.Allocate(5))
	require.Equal(t, 15, m.Size())
	require.GreaterOrEqual(t, m.Capacity(), 15)
}

func TestMapAllocateAtLimit(t *testing.T) {
	m := NewMap(DefaultExpansion, 16)
	require.Equal(t, 0, m.Allocate(16))
	require.False(t, m.IsFull())
	require.Equal(t, EOF, m.Allocate(1))
	require.True(t, m.IsFull())
	require.Equal(t, 16, m.Size())
	require.Equal(t, EOF, m.Allocate(-1))

	m.ClearFull()
	require.False(t, m.IsFull())
}

func TestMapGet(t *testing.T) {
	m := NewMap(0, 0)
	require.Equal(t, 0, m.Allocate(4))

	a := m.Get(0)
	require.NotNil(t, a)
	copy(a.Data(), []byte{1, 2, 3, 4})
	a.Release()
	a.Release()

	a = m.Get(2)
	require.NotNil(t, a)
	require.Equal(t, []byte{3, 4}, a.Data())
	a.Release()

	// offset at the logical end is a valid empty view
	a = m.Get(4)
	require.NotNil(t, a)
	require.Empty(t, a.Data())
	a.Release()

	require.Nil(t, m.Get(5))
	require.Nil(t, m.Get(-1))
}

func TestMapResize(t *testing.T) {
	m := NewMap(100, 0)
	require.Equal(t, 0, m.Allocate(10))
	require.True(t, m.Resize(5))
	require.Equal(t, 5, m.Size())
	require.False(t, m.Resize(m.Capacity()+1))
	require.Equal(t, 5, m.Size())
}

func TestMapSnapshotLoad(t *testing.T) {
	m := NewMapFrom([]byte{9, 8, 7}, DefaultExpansion, 0)
	require.Equal(t, 3, m.Size())
	require.Equal(t, []byte{9, 8, 7}, m.Snapshot())

	m.Load(nil)
	require.Equal(t, 0, m.Size())
	require.Empty(t, m.Snapshot())
}
