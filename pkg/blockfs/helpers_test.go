package blockfs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/blockfs/pkg/types"
)

var testEpoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func testOptions(blockSize int, policy types.CopyPolicy) Options {
	opts := DefaultOptions()
	opts.BlockSize = blockSize
	opts.CopyPolicy = policy
	opts.Clock = func() time.Time { return testEpoch }
	return opts
}

func newTestEngine(t testing.TB, blockSize int, policy types.CopyPolicy) *Engine {
	t.Helper()
	e, err := New(testOptions(blockSize, policy))
	require.NoError(t, err)
	return e
}

// writeFile creates name in the current directory and writes content.
func writeFile(t testing.TB, e *Engine, name, content string) {
	t.Helper()
	require.NoError(t, e.Touch(name))
	require.NoError(t, e.Write(name, []byte(content)))
}

func readFile(t testing.TB, e *Engine, name string) string {
	t.Helper()
	data, err := e.Read(name)
	require.NoError(t, err)
	return string(data)
}
