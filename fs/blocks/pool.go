// Package blocks implements the block pool: a growable sequence of
// fixed-capacity byte blocks addressed by index.
//
// Blocks hold bytes only. Which file owns a block and which block follows it
// is recorded by the allocation table (package fat); the pool never links
// blocks itself.
//
// Pool instances are not thread-safe. Callers must synchronize access
// externally.
package blocks

import (
	"errors"
	"fmt"
)

var (
	// ErrBadIndex indicates a block index outside the pool.
	ErrBadIndex = errors.New("blocks: block index out of range")
	// ErrBadCapacity indicates a non-positive block capacity.
	ErrBadCapacity = errors.New("blocks: capacity must be positive")
	// ErrOverflow indicates restored data larger than the block capacity.
	ErrOverflow = errors.New("blocks: payload exceeds block capacity")
)

// Block is a single storage block. len(Data) is the number of used bytes.
type Block struct {
	Data []byte
}

// Used returns the number of occupied bytes.
func (b *Block) Used() int { return len(b.Data) }

// Pool owns every block of a file system.
type Pool struct {
	capacity int
	blocks   []Block
}

// NewPool creates an empty pool whose blocks hold capacity bytes each.
func NewPool(capacity int) (*Pool, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrBadCapacity, capacity)
	}
	return &Pool{capacity: capacity}, nil
}

// Capacity returns the per-block capacity in bytes.
func (p *Pool) Capacity() int { return p.capacity }

// Len returns the number of blocks ever created. Blocks are never removed.
func (p *Pool) Len() int { return len(p.blocks) }

// Append adds a new empty block and returns its index.
func (p *Pool) Append() int {
	p.blocks = append(p.blocks, Block{})
	return len(p.blocks) - 1
}

// Write copies as much of data as fits into the remaining capacity of block
// idx, after its current payload, and returns the number of bytes copied.
func (p *Pool) Write(idx int, data []byte) (int, error) {
	b, err := p.block(idx)
	if err != nil {
		return 0, err
	}
	n := min(p.capacity-len(b.Data), len(data))
	if n <= 0 {
		return 0, nil
	}
	if b.Data == nil {
		b.Data = make([]byte, 0, p.capacity)
	}
	b.Data = append(b.Data, data[:n]...)
	return n, nil
}

// Payload returns the used bytes of block idx. The slice aliases pool
// memory and must not be modified or retained across mutations.
func (p *Pool) Payload(idx int) ([]byte, error) {
	b, err := p.block(idx)
	if err != nil {
		return nil, err
	}
	return b.Data, nil
}

// Used returns the number of occupied bytes in block idx.
func (p *Pool) Used(idx int) (int, error) {
	b, err := p.block(idx)
	if err != nil {
		return 0, err
	}
	return b.Used(), nil
}

// Remaining returns the free bytes left in block idx.
func (p *Pool) Remaining(idx int) (int, error) {
	used, err := p.Used(idx)
	if err != nil {
		return 0, err
	}
	return p.capacity - used, nil
}

// Free clears the payload of block idx.
func (p *Pool) Free(idx int) error {
	b, err := p.block(idx)
	if err != nil {
		return err
	}
	b.Data = nil
	return nil
}

// Restore replaces the payload of block idx, growing the pool up to idx if
// needed. Used when rebuilding a pool from a persisted image.
func (p *Pool) Restore(idx int, data []byte) error {
	if idx < 0 {
		return fmt.Errorf("%w: %d", ErrBadIndex, idx)
	}
	if len(data) > p.capacity {
		return fmt.Errorf("%w: block %d holds %d bytes, capacity %d", ErrOverflow, idx, len(data), p.capacity)
	}
	for len(p.blocks) <= idx {
		p.Append()
	}
	if len(data) == 0 {
		p.blocks[idx].Data = nil
		return nil
	}
	p.blocks[idx].Data = append(make([]byte, 0, p.capacity), data...)
	return nil
}

// UsedBytes returns the sum of used bytes across all blocks.
func (p *Pool) UsedBytes() int64 {
	var total int64
	for i := range p.blocks {
		total += int64(len(p.blocks[i].Data))
	}
	return total
}

func (p *Pool) block(idx int) (*Block, error) {
	if idx < 0 || idx >= len(p.blocks) {
		return nil, fmt.Errorf("%w: %d (pool has %d blocks)", ErrBadIndex, idx, len(p.blocks))
	}
	return &p.blocks[idx], nil
}
