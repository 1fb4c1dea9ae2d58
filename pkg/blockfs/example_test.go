package blockfs_test

import (
	"errors"
	"fmt"

	"github.com/joshuapare/blockfs/pkg/blockfs"
	"github.com/joshuapare/blockfs/pkg/types"
)

// Example writes a file across several small blocks and shows the chain.
func Example() {
	fs, err := blockfs.New(blockfs.Options{BlockSize: 4})
	if err != nil {
		fmt.Println(err)
		return
	}

	_ = fs.Touch("a")
	_ = fs.Write("a", []byte("HELLOWORLD"))

	data, _ := fs.Read("a")
	fmt.Println(string(data))
	for _, e := range fs.FAT() {
		fmt.Println(e.Block, e.File, e.Used, e.Next)
	}
	// Output:
	// HELLOWORLD
	// 0 a 4 1
	// 1 a 4 2
	// 2 a 2 -1
}

// ExampleEngine_Copy shows the shared copy policy.
func ExampleEngine_Copy() {
	opts := blockfs.DefaultOptions()
	opts.CopyPolicy = types.CopyShared
	fs, _ := blockfs.New(opts)

	_ = fs.Touch("notes")
	_ = fs.Write("notes", []byte("draft"))
	_ = fs.MakeDir("backup")
	_ = fs.Copy("notes", "backup")
	_ = fs.Remove("notes")

	_ = fs.ChangeDir("backup")
	data, _ := fs.Read("notes")
	fmt.Println(string(data), fs.Stats().Blocks)

	_ = fs.ChangeDir("..")
	err := fs.ChangeDir("..")
	fmt.Println(errors.Is(err, types.ErrInvalidNavigation))
	// Output:
	// draft 1
	// true
}
