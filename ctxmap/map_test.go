package ctxmap_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sabouaram/corpc/ctxmap"
)

func TestMap_StoreLoadDelete(t *testing.T) {
	m := ctxmap.New[string, int]()

	_, ok := m.Load("a")
	require.False(t, ok)

	m.Store("a", 1)
	v, ok := m.Load("a")
	require.True(t, ok)
	require.Equal(t, 1, v)

	actual, loaded := m.LoadOrStore("a", 2)
	require.True(t, loaded)
	require.Equal(t, 1, actual)

	m.Delete("a")
	_, ok = m.Load("a")
	require.False(t, ok)
}

func TestMap_RangeAndLen(t *testing.T) {
	m := ctxmap.New[int, string]()
	for i := 0; i < 5; i++ {
		m.Store(i, "v")
	}
	require.Equal(t, 5, m.Len())

	seen := 0
	m.Range(func(int, string) bool {
		seen++
		return seen < 3
	})
	require.Equal(t, 3, seen)
}
