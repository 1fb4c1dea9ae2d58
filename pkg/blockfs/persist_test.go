package blockfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/blockfs/fs/codec"
	"github.com/joshuapare/blockfs/internal/format"
	"github.com/joshuapare/blockfs/pkg/types"
)

func imagePath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), format.DefaultImageName)
}

func openTest(t *testing.T, path string, blockSize int, policy types.CopyPolicy) *Engine {
	t.Helper()
	e, err := Open(t.Context(), path, testOptions(blockSize, policy))
	require.NoError(t, err)
	return e
}

func TestOpen_RoundTrip(t *testing.T) {
	path := imagePath(t)

	e := openTest(t, path, 4, types.CopyDeep)
	writeFile(t, e, "a", "HELLOWORLD")
	require.NoError(t, e.MakeDir("docs"))
	require.NoError(t, e.ChangeDir("docs"))
	writeFile(t, e, "a", "same name, other directory")
	require.NoError(t, e.Touch("empty"))
	require.NoError(t, e.MakeDir("deeper"))
	require.NoError(t, e.ChangeDir(".."))
	require.NoError(t, e.Remove("a"))
	writeFile(t, e, "b", "HI")
	wantTree := e.Tree()
	wantFAT := e.FAT()
	require.NoError(t, e.Close(t.Context()))
	require.FileExists(t, path)

	e = openTest(t, path, 32, types.CopyDeep)
	defer e.Close(t.Context())

	assert.Equal(t, wantTree, e.Tree())
	assert.Equal(t, len(wantFAT), len(e.FAT()))
	assert.Equal(t, 4, e.Stats().BlockSize, "block size comes from the image")
	assert.False(t, e.Stats().Dirty)
	assert.Equal(t, "HI", readFile(t, e, "b"))
	require.NoError(t, e.ChangeDir("docs"))
	assert.Equal(t, "same name, other directory", readFile(t, e, "a"))
	_, err := e.Read("empty")
	assert.ErrorIs(t, err, types.ErrNotFound)
	require.NoError(t, e.Check())

	for i, rec := range e.FAT() {
		assert.Equal(t, wantFAT[i].Block, rec.Block)
		assert.Equal(t, wantFAT[i].Next, rec.Next)
		assert.True(t, wantFAT[i].CreatedAt.Equal(rec.CreatedAt))
	}
}

func TestOpen_FreshImageIsCreatedOnClose(t *testing.T) {
	path := imagePath(t)

	e := openTest(t, path, 32, types.CopyDeep)
	assert.Equal(t, path, e.Path())
	assert.NoFileExists(t, path)
	require.NoError(t, e.Close(t.Context()))
	assert.FileExists(t, path)

	e = openTest(t, path, 32, types.CopyDeep)
	assert.Empty(t, e.List().Files)
	require.NoError(t, e.Close(t.Context()))
}

func TestOpen_SaveKeepsSessionOpen(t *testing.T) {
	path := imagePath(t)
	e := openTest(t, path, 32, types.CopyDeep)
	writeFile(t, e, "f", "saved")

	require.NoError(t, e.Save(t.Context()))
	assert.False(t, e.Stats().Dirty)
	require.NoError(t, e.Write("f", []byte("+more")))
	assert.True(t, e.Stats().Dirty)
	require.NoError(t, e.Close(t.Context()))
	require.NoError(t, e.Close(t.Context()), "second close is a no-op")
	assert.ErrorIs(t, e.Save(t.Context()), types.ErrPersistenceUnavailable)

	e = openTest(t, path, 32, types.CopyDeep)
	defer e.Close(t.Context())
	assert.Equal(t, "saved+more", readFile(t, e, "f"))
}

func TestOpen_SharedChainsSurviveReload(t *testing.T) {
	path := imagePath(t)

	e := openTest(t, path, 4, types.CopyShared)
	writeFile(t, e, "a", "HELLO")
	require.NoError(t, e.MakeDir("d"))
	require.NoError(t, e.Copy("a", "d"))
	require.NoError(t, e.Close(t.Context()))

	e = openTest(t, path, 4, types.CopyShared)
	defer e.Close(t.Context())
	require.NoError(t, e.Remove("a"))
	assert.Equal(t, 0, e.Stats().FreeBlocks)

	require.NoError(t, e.ChangeDir("d"))
	assert.Equal(t, "HELLO", readFile(t, e, "a"))
	require.NoError(t, e.Check())
}

func TestOpen_ClosedEngineRejectsChanges(t *testing.T) {
	path := imagePath(t)
	e := openTest(t, path, 4, types.CopyDeep)
	writeFile(t, e, "a", "HELLO")
	require.NoError(t, e.MakeDir("d"))
	require.NoError(t, e.Close(t.Context()))

	assert.ErrorIs(t, e.Touch("b"), types.ErrPersistenceUnavailable)
	assert.ErrorIs(t, e.Write("a", []byte("!")), types.ErrPersistenceUnavailable)
	assert.ErrorIs(t, e.MakeDir("e"), types.ErrPersistenceUnavailable)
	assert.ErrorIs(t, e.Copy("a", "d"), types.ErrPersistenceUnavailable)
	assert.ErrorIs(t, e.Remove("a"), types.ErrPersistenceUnavailable)
	assert.ErrorIs(t, e.RemoveDir("d"), types.ErrPersistenceUnavailable)

	assert.Equal(t, "HELLO", readFile(t, e, "a"))
	assert.False(t, e.Stats().Dirty)

	e = openTest(t, path, 4, types.CopyDeep)
	assert.Equal(t, "HELLO", readFile(t, e, "a"))
	assert.Len(t, e.List().Files, 1)
	require.NoError(t, e.Close(t.Context()))
}

const legacyImage = `{
    "root": {
        "name": "root",
        "files": [{"name": "a", "size": 10}],
        "subdirectories": [
            {"name": "docs", "files": [{"name": "todo", "size": 0}], "subdirectories": []}
        ]
    },
    "blocks": [
        {"freeSpace": 0, "nextBlock": 1, "data": "HELL"},
        {"freeSpace": 0, "nextBlock": 2, "data": "OWOR"},
        {"freeSpace": 2, "nextBlock": -1, "data": "LD"},
        {"freeSpace": 4, "nextBlock": -1, "data": "STRY"}
    ],
    "fat": [
        {"blockNumber": 0, "fileName": "a", "fileSize": 4, "creationDate": 1700000000, "nextBlock": 2},
        {"blockNumber": 1, "fileName": "a", "fileSize": 8, "creationDate": 1700000000, "nextBlock": -1},
        {"blockNumber": 2, "fileName": "a", "fileSize": 10, "creationDate": 1700000000, "nextBlock": -1}
    ]
}`

func TestOpen_LegacyImage(t *testing.T) {
	path := imagePath(t)
	require.NoError(t, os.WriteFile(path, []byte(legacyImage), 0o644))

	e, err := Open(t.Context(), path, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, "HELLOWORLD", readFile(t, e, "a"))
	st := e.Stats()
	assert.Equal(t, 1, st.FreeBlocks, "block 3 has no record")
	assert.True(t, st.Dirty, "stray payload was cleared")

	writeFile(t, e, "b", "Z")
	info, err := e.Stat("b")
	require.NoError(t, err)
	assert.Equal(t, 3, info.Head)
	require.NoError(t, e.Close(t.Context()))

	img, err := codec.LoadFile(t.Context(), path)
	require.NoError(t, err)
	assert.Equal(t, format.ImageVersion, img.Version)
	require.NotNil(t, img.Root.Files[0].Head)
	assert.Equal(t, 0, *img.Root.Files[0].Head)
}

// Each write in an unversioned image started a fresh chain for the file.
const legacyOrphanImage = `{
    "root": {"name": "root", "files": [{"name": "a", "size": 2}], "subdirectories": []},
    "blocks": [
        {"freeSpace": 2, "nextBlock": -1, "data": "HI"},
        {"freeSpace": 2, "nextBlock": -1, "data": "XY"}
    ],
    "fat": [
        {"blockNumber": 0, "fileName": "a", "fileSize": 2, "creationDate": 1700000000, "nextBlock": -1},
        {"blockNumber": 1, "fileName": "a", "fileSize": 2, "creationDate": 1700000000, "nextBlock": -1}
    ]
}`

func TestOpen_LegacyUnreachableChainsAreReleased(t *testing.T) {
	path := imagePath(t)
	require.NoError(t, os.WriteFile(path, []byte(legacyOrphanImage), 0o644))

	e := openTest(t, path, 4, types.CopyDeep)

	assert.Equal(t, "HI", readFile(t, e, "a"))
	require.NoError(t, e.Check())
	st := e.Stats()
	assert.True(t, st.Dirty)
	assert.Equal(t, 1, st.FreeBlocks)

	require.NoError(t, e.Remove("a"))
	assert.Empty(t, e.FAT())
	require.NoError(t, e.Check())

	writeFile(t, e, "b", "NEWDATA")
	info, err := e.Stat("b")
	require.NoError(t, err)
	assert.Equal(t, 0, info.Head)
	assert.Equal(t, 2, info.Blocks)
	assert.Equal(t, 0, e.Stats().FreeBlocks)
	require.NoError(t, e.Close(t.Context()))
}

func TestOpen_CorruptImage(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    error
	}{
		{"garbage", "{not json", types.ErrCorrupt},
		{"newer version", `{"version": 99, "root": {"name": "root"}}`, types.ErrCorrupt},
		{"record beyond pool", `{"version": 1, "blockSize": 4, "root": {"name": "root"},
			"blocks": [], "fat": [{"blockNumber": 3, "fileName": "a", "nextBlock": -1}]}`, types.ErrCorrupt},
		{"dangling link", `{"version": 1, "blockSize": 4,
			"root": {"name": "root", "files": [{"name": "a", "size": 1, "head": 0}]},
			"blocks": [{"freeSpace": 3, "nextBlock": 7, "data": "x"}],
			"fat": [{"blockNumber": 0, "fileName": "a", "fileSize": 1, "nextBlock": 7}]}`, types.ErrCorrupt},
		{"unreachable record", `{"version": 1, "blockSize": 4,
			"root": {"name": "root", "files": [{"name": "a", "size": 1, "head": 0}]},
			"blocks": [{"freeSpace": 3, "nextBlock": -1, "data": "x"}, {"freeSpace": 3, "nextBlock": -1, "data": "y"}],
			"fat": [{"blockNumber": 0, "fileName": "a", "fileSize": 1, "nextBlock": -1},
				{"blockNumber": 1, "fileName": "a", "fileSize": 1, "nextBlock": -1}]}`, types.ErrCorrupt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := imagePath(t)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			_, err := Open(t.Context(), path, DefaultOptions())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestOpen_MissingDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", format.DefaultImageName)
	_, err := Open(t.Context(), path, DefaultOptions())
	assert.ErrorIs(t, err, types.ErrPersistenceUnavailable)
}
