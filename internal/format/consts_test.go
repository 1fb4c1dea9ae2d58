package format

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestChunkCount(t *testing.T) {
	tests := []struct {
		n, capacity, want int
	}{
		{0, 4, 1},
		{1, 4, 1},
		{4, 4, 1},
		{5, 4, 2},
		{10, 4, 3},
		{64, 32, 2},
		{65, 32, 3},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ChunkCount(tt.n, tt.capacity), "ChunkCount(%d, %d)", tt.n, tt.capacity)
	}
}

func TestHeadRef(t *testing.T) {
	assert.Nil(t, HeadRef(NoBlock))

	ref := HeadRef(7)
	if assert.NotNil(t, ref) {
		assert.Equal(t, 7, *ref)
	}
}

func TestBlockNodePayload(t *testing.T) {
	text := NewBlockNode([]byte("HELL"), 0, 1)
	assert.Equal(t, "HELL", text.Data)
	assert.Empty(t, text.Encoding)

	// A multi-byte rune split across blocks is not valid UTF-8 on its own.
	split := []byte("caf\xc3")
	bin := NewBlockNode(split, 0, NoBlock)
	assert.Equal(t, EncodingBase64, bin.Encoding)

	got, err := bin.Payload()
	assert.NoError(t, err)
	assert.Equal(t, split, got)

	_, err = BlockNode{Data: "x", Encoding: "rot13"}.Payload()
	assert.ErrorIs(t, err, ErrEncoding)
}

func TestTimestampJSON(t *testing.T) {
	var ts Timestamp
	assert.NoError(t, json.Unmarshal([]byte("1700000000"), &ts))
	assert.Equal(t, int64(1700000000), ts.Unix())

	want := time.Date(2024, 3, 1, 12, 30, 0, 500, time.UTC)
	b, err := json.Marshal(Timestamp{Time: want})
	assert.NoError(t, err)

	var back Timestamp
	assert.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, want.Equal(back.Time), "got %s", back.Time)

	assert.Error(t, json.Unmarshal([]byte("1.5e"), &back))
}
