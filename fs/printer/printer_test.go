package printer

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/blockfs/internal/format"
	"github.com/joshuapare/blockfs/pkg/types"
)

func plainOptions() Options {
	opts := DefaultOptions()
	opts.NoColor = true
	return opts
}

func TestPrinter_PrintListing_Text(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, plainOptions())

	err := p.PrintListing(types.Listing{
		Path:  "/root",
		Dirs:  []string{"docs", "src"},
		Files: []types.FileInfo{{Name: "a.txt", Size: 3}, {Name: "b.txt"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "docs/\nsrc/\na.txt\nb.txt\n", buf.String())
}

func TestPrinter_PrintListing_Long(t *testing.T) {
	var buf bytes.Buffer
	opts := plainOptions()
	opts.Long = true
	p := New(&buf, opts)

	require.NoError(t, p.PrintListing(types.Listing{
		Files: []types.FileInfo{{Name: "a.txt", Size: 40, Blocks: 2}},
	}))
	assert.Equal(t, "a.txt  40 bytes, 2 blocks\n", buf.String())
}

func TestPrinter_PrintListing_JSON(t *testing.T) {
	var buf bytes.Buffer
	opts := plainOptions()
	opts.Format = FormatJSON
	p := New(&buf, opts)

	in := types.Listing{Path: "/root", Dirs: []string{"d"}, Files: []types.FileInfo{{Name: "f", Size: 1, Head: 0, Blocks: 1}}}
	require.NoError(t, p.PrintListing(in))

	var out types.Listing
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, in, out)
}

func TestPrinter_PrintTree_Text(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, plainOptions())

	tree := types.DirTree{
		Name:  "root",
		Files: []types.FileInfo{{Name: "top.txt"}},
		Dirs: []types.DirTree{
			{Name: "a", Files: []types.FileInfo{{Name: "inner.txt"}}},
		},
	}
	require.NoError(t, p.PrintTree(tree))

	want := strings.Join([]string{
		"root/",
		"  top.txt",
		"  a/",
		"    inner.txt",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestPrinter_PrintFAT_Text(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, plainOptions())

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	entries := []types.FATEntry{
		{Block: 0, File: "hello.txt", Used: 4, Size: 4, CreatedAt: created, Next: 1},
		{Block: 1, File: "hello.txt", Used: 4, Size: 8, CreatedAt: created, Next: format.NoBlock},
	}
	require.NoError(t, p.PrintFAT(entries))

	out := buf.String()
	for _, want := range []string{"BLOCK", "FILE", "USED", "NEXT", "hello.txt", created.Local().Format(DefaultTimeLayout)} {
		assert.Contains(t, out, want)
	}

	var dataRows int
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "hello.txt") {
			dataRows++
		}
	}
	assert.Equal(t, 2, dataRows)
	assert.Contains(t, out, " - ")
}

func TestPrinter_PrintFAT_JSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	opts := plainOptions()
	opts.Format = FormatJSON
	p := New(&buf, opts)

	require.NoError(t, p.PrintFAT(nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestPrinter_PrintStats(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, plainOptions())

	require.NoError(t, p.PrintStats(types.Stats{
		BlockSize:   32,
		Blocks:      3,
		FreeBlocks:  1,
		UsedBytes:   40,
		Records:     4,
		LiveRecords: 2,
		Directories: 2,
		Files:       1,
		CopyPolicy:  types.CopyShared,
	}))

	out := buf.String()
	assert.Contains(t, out, "Block size:      32")
	assert.Contains(t, out, "Records:         4 (2 live)")
	assert.Contains(t, out, "Copy policy:     shared")
}

func TestNew_FillsDefaults(t *testing.T) {
	p := New(&bytes.Buffer{}, Options{})
	assert.Equal(t, FormatText, p.opts.Format)
	assert.Equal(t, DefaultIndentSize, p.opts.IndentSize)
	assert.Equal(t, DefaultTimeLayout, p.opts.TimeLayout)
}
