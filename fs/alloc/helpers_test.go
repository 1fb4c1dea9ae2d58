package alloc

import (
	"testing"

	"github.com/joshuapare/blockfs/fs/blocks"
	"github.com/joshuapare/blockfs/fs/dirty"
	"github.com/joshuapare/blockfs/fs/fat"
	"github.com/stretchr/testify/require"
)

// newTestAllocator returns an allocator over an empty pool with the given
// block capacity, together with its table and dirty tracker.
func newTestAllocator(t testing.TB, capacity int) (*Allocator, *blocks.Pool, *fat.Table, *dirty.Tracker) {
	t.Helper()
	pool, err := blocks.NewPool(capacity)
	require.NoError(t, err)
	table := fat.NewTable()
	dt := dirty.NewTracker()
	return New(pool, table, dt), pool, table, dt
}

// payloads returns the payload of every block in chain as strings.
func payloads(t testing.TB, pool *blocks.Pool, chain []int) []string {
	t.Helper()
	out := make([]string, 0, len(chain))
	for _, b := range chain {
		p, err := pool.Payload(b)
		require.NoError(t, err)
		out = append(out, string(p))
	}
	return out
}
