/*
Package blockfs provides a small virtual file system stored in fixed-size
blocks, with a directory tree, an allocation table and a JSON image on disk.

# Quick Start

Open (or create) an image, write a file and read it back:

	fs, err := blockfs.Open(ctx, "filesystem.json", blockfs.DefaultOptions())
	if err != nil {
	    log.Fatal(err)
	}
	defer fs.Close(ctx)

	_ = fs.Touch("hello.txt")
	_ = fs.Write("hello.txt", []byte("HELLOWORLD"))
	data, _ := fs.Read("hello.txt")

# Storage Model

File content lives in a pool of blocks of equal capacity (32 bytes unless
Options.BlockSize says otherwise). A file's blocks form a chain recorded in
the allocation table: one live record per allocated block, naming its owner,
the declared file size after that chunk, a creation time and the next block.
Blocks are pure bytes; the table alone holds chain links. Each file stores
the head of its chain.

Writes append. The tail block is filled first, then new blocks are taken
from the free list, lowest index first, and the pool grows only when none is
free. Deleting a file retires its records (the table never shrinks) and
returns its blocks to the free list.

# Copy Policies

Copy duplicates a file into a subdirectory or the parent directory:

  - types.CopyDeep (default): the bytes are copied into a new chain.
  - types.CopyShared: the copy references the same chain. The first append
    to either file gives it a private chain (copy-on-write), and the blocks
    are released when the last holder is deleted.

# Persistence

Open holds an exclusive lock on "<image>.lock" for the life of the engine.
Save writes the whole image atomically (temp file, sync, rename). Close
saves when anything changed or when no image exists yet, then releases the
lock. After Close, operations that change the file system fail with
ErrPersistenceUnavailable; reads still work. Images written before chain
heads were recorded load by resolving each file's first record by owner
name, and blocks no file reaches are released.

# Error Handling

Every error returned by an Engine is a *types.Error:

	if errors.Is(err, types.ErrNotFound) {
	    // missing file, directory or never-written content
	}

# Thread Safety

Engine methods serialize on one mutex; an Engine may be shared between
goroutines, but only one operation runs at a time.
*/
package blockfs
