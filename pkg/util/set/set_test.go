package set

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetDeduplicates(t *testing.T) {
	s := New("a", "b", "a")
	require.Equal(t, 2, s.Len())
	require.True(t, s.Contains("a"))
	require.True(t, s.Contains("b"))
	require.False(t, s.Contains("c"))
}

func TestSetAddRemove(t *testing.T) {
	s := New[int]()
	require.True(t, s.Empty())
	s.Add(1, 2, 3)
	s.Remove(2)
	require.Equal(t, 2, s.Len())
	require.False(t, s.Contains(2))
}

func TestSetSortedSlice(t *testing.T) {
	s := New(3, 1, 2)
	sorted := s.SortedSliceFunc(func(a, b int) bool { return a < b })
	require.Equal(t, []int{1, 2, 3}, sorted)
}

func TestSetRangeVisitsEverything(t *testing.T) {
	s := New("x", "y")
	visited := map[string]bool{}
	s.Range(func(value string) {
		visited[value] = true
	})
	require.Len(t, visited, 2)
}
