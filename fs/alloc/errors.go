package alloc

import "errors"

var (
	// ErrNoChain indicates an operation on a file that owns no blocks.
	ErrNoChain = errors.New("alloc: file has no allocated blocks")

	// ErrCorruptChain indicates a chain with a cycle or a dangling link.
	ErrCorruptChain = errors.New("alloc: corrupt block chain")

	// ErrInconsistent indicates pool, table and free list disagree.
	ErrInconsistent = errors.New("alloc: inconsistent allocation state")
)
