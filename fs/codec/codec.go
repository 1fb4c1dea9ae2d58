// Package codec converts a blockfs state to and from its persisted image.
//
// The namespace tree, the block pool and the allocation table are encoded as
// three independent parts of one format.Image. On decode the tree is rebuilt
// first (names, sizes and chain heads), then blocks and records verbatim by
// position. Files from images that predate chain heads are resolved by owner
// name against the restored table, the way the table was always searched.
package codec

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/joshuapare/blockfs/fs/blocks"
	"github.com/joshuapare/blockfs/fs/fat"
	"github.com/joshuapare/blockfs/fs/namespace"
	"github.com/joshuapare/blockfs/internal/format"
)

// ErrCorruptImage indicates an image whose parts do not fit together.
var ErrCorruptImage = errors.New("codec: corrupt image")

// State is a decoded file system.
type State struct {
	Tree  *namespace.Tree
	Pool  *blocks.Pool
	Table *fat.Table

	// Version is the format version the image was written with.
	Version int

	// Resolved counts files whose chain head was found by owner name.
	Resolved int
}

// Encode builds the persisted image of tree, pool and table.
func Encode(tree *namespace.Tree, pool *blocks.Pool, table *fat.Table) (*format.Image, error) {
	img := &format.Image{
		Version:   format.ImageVersion,
		BlockSize: pool.Capacity(),
		Root:      encodeDir(tree, namespace.Root),
		Blocks:    make([]format.BlockNode, pool.Len()),
		FAT:       make([]format.FATNode, 0, table.Len()),
	}

	for i := range pool.Len() {
		payload, err := pool.Payload(i)
		if err != nil {
			return nil, err
		}
		next := format.NoBlock
		if table.Owned(i) {
			if next, err = table.Next(i); err != nil {
				return nil, err
			}
		}
		img.Blocks[i] = format.NewBlockNode(payload, pool.Capacity()-len(payload), next)
	}

	for _, rec := range table.Records() {
		img.FAT = append(img.FAT, format.FATNode{
			BlockNumber:  rec.Block,
			FileName:     rec.Owner,
			FileSize:     rec.Size,
			CreationDate: format.Timestamp{Time: rec.CreatedAt},
			NextBlock:    rec.Next,
		})
	}
	return img, nil
}

func encodeDir(tree *namespace.Tree, d namespace.DirID) format.DirectoryNode {
	node := format.DirectoryNode{Name: tree.Name(d)}
	for _, f := range tree.Files(d) {
		node.Files = append(node.Files, format.FileNode{
			Name: f.Name,
			Size: f.Size,
			Head: format.HeadRef(f.Head),
		})
	}
	for _, name := range tree.Subdirs(d) {
		sub, err := tree.Dir(d, name)
		if err != nil {
			continue
		}
		node.Subdirectories = append(node.Subdirectories, encodeDir(tree, sub))
	}
	return node
}

// Decode rebuilds a state from img. blockSize is used when the image does
// not record one.
func Decode(img *format.Image, blockSize int) (*State, error) {
	if img.Version > format.ImageVersion {
		return nil, fmt.Errorf("%w: %d", format.ErrVersion, img.Version)
	}
	if img.BlockSize > 0 {
		blockSize = img.BlockSize
	}
	pool, err := blocks.NewPool(blockSize)
	if err != nil {
		return nil, err
	}
	for i, b := range img.Blocks {
		payload, err := b.Payload()
		if err != nil {
			return nil, fmt.Errorf("%w: block %d: %w", ErrCorruptImage, i, err)
		}
		if err := pool.Restore(i, payload); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptImage, err)
		}
	}

	records := make([]fat.Record, len(img.FAT))
	for i, n := range img.FAT {
		rec := fat.Record{
			Block:     n.BlockNumber,
			Owner:     n.FileName,
			Size:      n.FileSize,
			CreatedAt: n.CreationDate.Time,
			Next:      n.NextBlock,
		}
		if !rec.Retired() && (rec.Block < 0 || rec.Block >= len(img.Blocks)) {
			return nil, fmt.Errorf("%w: record %d names block %d of %d", ErrCorruptImage, i, rec.Block, len(img.Blocks))
		}
		// Unversioned images kept reliable links only on the blocks.
		if img.Version == 0 && !rec.Retired() {
			rec.Next = img.Blocks[rec.Block].NextBlock
		}
		records[i] = rec
	}
	table := fat.NewTable()
	if err := table.Restore(records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptImage, err)
	}

	rootName := img.Root.Name
	if rootName == "" {
		rootName = format.RootName
	}
	st := &State{
		Tree:    namespace.New(rootName),
		Pool:    pool,
		Table:   table,
		Version: img.Version,
	}
	if err := st.decodeDir(namespace.Root, img.Root); err != nil {
		return nil, err
	}
	return st, nil
}

func (st *State) decodeDir(d namespace.DirID, node format.DirectoryNode) error {
	for _, fn := range node.Files {
		head := format.NoBlock
		switch {
		case fn.Head != nil:
			head = *fn.Head
			if !st.Table.Owned(head) {
				return fmt.Errorf("%w: file %q starts at unowned block %d", ErrCorruptImage, fn.Name, head)
			}
		default:
			if rec, ok := st.Table.FirstByOwner(fn.Name); ok {
				head = rec.Block
				st.Resolved++
			}
		}
		if _, err := st.Tree.PutFile(d, namespace.File{Name: fn.Name, Size: fn.Size, Head: head}); err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptImage, err)
		}
	}
	for _, sub := range node.Subdirectories {
		id, err := st.Tree.CreateDir(d, sub.Name)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptImage, err)
		}
		if err := st.decodeDir(id, sub); err != nil {
			return err
		}
	}
	return nil
}

// Marshal renders img as indented JSON.
func Marshal(img *format.Image) ([]byte, error) {
	return json.MarshalIndent(img, "", "    ")
}

// Unmarshal parses an image rendered by Marshal.
func Unmarshal(data []byte) (*format.Image, error) {
	var img format.Image
	if err := json.Unmarshal(data, &img); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptImage, err)
	}
	return &img, nil
}
