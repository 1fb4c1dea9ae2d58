package fat

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFreeList_PopsLowestFirst(t *testing.T) {
	fl := NewFreeList(7, 2, 9, 2)
	assert.Equal(t, 3, fl.Len(), "duplicates are ignored")

	fl.Push(4)
	fl.Push(4)

	var got []int
	for {
		b, ok := fl.Pop()
		if !ok {
			break
		}
		got = append(got, b)
	}
	assert.Equal(t, []int{2, 4, 7, 9}, got)
}

func TestFreeList_PeekAndContains(t *testing.T) {
	fl := NewFreeList()
	_, ok := fl.Peek()
	assert.False(t, ok)

	fl.Push(3)
	fl.Push(1)
	b, ok := fl.Peek()
	require.True(t, ok)
	assert.Equal(t, 1, b)
	assert.True(t, fl.Contains(3))

	_, _ = fl.Pop()
	assert.False(t, fl.Contains(1))
	assert.Equal(t, 1, fl.Len())
}
