package blocks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPool_RejectsBadCapacity(t *testing.T) {
	_, err := NewPool(0)
	require.ErrorIs(t, err, ErrBadCapacity)

	_, err = NewPool(-4)
	require.ErrorIs(t, err, ErrBadCapacity)
}

func TestPool_WriteFillsRemainingCapacity(t *testing.T) {
	p, err := NewPool(4)
	require.NoError(t, err)

	idx := p.Append()
	require.Equal(t, 0, idx)

	n, err := p.Write(idx, []byte("HE"))
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = p.Write(idx, []byte("LLOWORLD"))
	require.NoError(t, err)
	assert.Equal(t, 2, n, "only the remaining 2 bytes fit")

	payload, err := p.Payload(idx)
	require.NoError(t, err)
	assert.Equal(t, "HELL", string(payload))

	rem, err := p.Remaining(idx)
	require.NoError(t, err)
	assert.Zero(t, rem)

	n, err = p.Write(idx, []byte("X"))
	require.NoError(t, err)
	assert.Zero(t, n, "full block accepts nothing")
}

func TestPool_FreeClearsPayload(t *testing.T) {
	p, err := NewPool(8)
	require.NoError(t, err)

	idx := p.Append()
	_, err = p.Write(idx, []byte("data"))
	require.NoError(t, err)
	assert.EqualValues(t, 4, p.UsedBytes())

	require.NoError(t, p.Free(idx))

	used, err := p.Used(idx)
	require.NoError(t, err)
	assert.Zero(t, used)
	assert.Equal(t, 1, p.Len(), "freeing never removes the block")
	assert.Zero(t, p.UsedBytes())
}

func TestPool_BadIndex(t *testing.T) {
	p, err := NewPool(8)
	require.NoError(t, err)

	_, err = p.Payload(0)
	assert.ErrorIs(t, err, ErrBadIndex)

	_, err = p.Write(-1, []byte("x"))
	assert.ErrorIs(t, err, ErrBadIndex)

	assert.ErrorIs(t, p.Free(3), ErrBadIndex)
}

func TestPool_Restore(t *testing.T) {
	p, err := NewPool(4)
	require.NoError(t, err)

	require.NoError(t, p.Restore(2, []byte("LD")))
	assert.Equal(t, 3, p.Len(), "restore grows the pool up to the index")

	payload, err := p.Payload(2)
	require.NoError(t, err)
	assert.Equal(t, "LD", string(payload))

	used, err := p.Used(0)
	require.NoError(t, err)
	assert.Zero(t, used)

	err = p.Restore(0, []byte("TOOLONG"))
	assert.ErrorIs(t, err, ErrOverflow)
}
