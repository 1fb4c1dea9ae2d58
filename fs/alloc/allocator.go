package alloc

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/joshuapare/blockfs/fs/blocks"
	"github.com/joshuapare/blockfs/fs/fat"
	"github.com/joshuapare/blockfs/internal/format"
)

// Allocator manages block chains over a pool and an allocation table.
type Allocator struct {
	pool  *blocks.Pool
	table *fat.Table
	free  *fat.FreeList
	refs  map[int]int // chain head -> number of files referencing it
	dt    DirtyTracker
	now   func() time.Time
}

// New creates an allocator over pool and table. Every block without a live
// record is put on the free list.
//
// Parameters:
//   - pool: Block storage
//   - table: Allocation records describing pool
//   - dt: Dirty tracker notified of touched blocks (can be nil)
func New(pool *blocks.Pool, table *fat.Table, dt DirtyTracker) *Allocator {
	var freeBlocks []int
	for i := range pool.Len() {
		if !table.Owned(i) {
			freeBlocks = append(freeBlocks, i)
		}
	}
	return &Allocator{
		pool:  pool,
		table: table,
		free:  fat.NewFreeList(freeBlocks...),
		refs:  make(map[int]int),
		dt:    dt,
		now:   time.Now,
	}
}

// SetClock replaces the time source used for record creation times.
func (a *Allocator) SetClock(now func() time.Time) {
	if now != nil {
		a.now = now
	}
}

// Write stores data for owner and returns the chain head and the new file
// size. With head == format.NoBlock a new chain is started; otherwise data is
// appended to the chain at head. size is the file size before the write.
func (a *Allocator) Write(owner string, head int, size int64, data []byte) (int, int64, error) {
	if head != format.NoBlock && a.refs[head] > 1 {
		clone, err := a.Clone(head, owner)
		if err != nil {
			return head, size, err
		}
		a.refs[head]--
		head = clone
	}

	if head == format.NoBlock {
		first, newSize, err := a.writeChunks(owner, format.NoBlock, size, data)
		if err != nil {
			return format.NoBlock, size, err
		}
		a.refs[first] = 1
		return first, newSize, nil
	}

	if len(data) == 0 {
		return head, size, nil
	}

	chain, err := a.Chain(head)
	if err != nil {
		return head, size, err
	}
	tail := chain[len(chain)-1]

	n, err := a.pool.Write(tail, data)
	if err != nil {
		return head, size, err
	}
	if n > 0 {
		size += int64(n)
		if err := a.table.SetSize(tail, size); err != nil {
			return head, size, err
		}
		a.mark(tail)
	}
	if n == len(data) {
		return head, size, nil
	}

	_, size, err = a.writeChunks(owner, tail, size, data[n:])
	return head, size, err
}

// writeChunks allocates blocks for data and links them after prev, or starts
// a new chain when prev is format.NoBlock. It returns the first new block.
func (a *Allocator) writeChunks(owner string, prev int, size int64, data []byte) (int, int64, error) {
	first := format.NoBlock
	for {
		idx := a.take()
		n, err := a.pool.Write(idx, data)
		if err != nil {
			return first, size, err
		}
		data = data[n:]
		size += int64(n)

		_, err = a.table.Append(fat.Record{
			Block:     idx,
			Owner:     owner,
			Size:      size,
			CreatedAt: a.now(),
			Next:      format.NoBlock,
		})
		if err != nil {
			return first, size, err
		}
		if prev != format.NoBlock {
			if err := a.table.Link(prev, idx); err != nil {
				return first, size, err
			}
		}
		if first == format.NoBlock {
			first = idx
		}
		a.mark(idx)
		prev = idx

		if len(data) == 0 {
			return first, size, nil
		}
	}
}

// take returns the lowest free block, growing the pool when none is free.
func (a *Allocator) take() int {
	if idx, ok := a.free.Pop(); ok {
		return idx
	}
	return a.pool.Append()
}

// Read returns the concatenated payloads of the chain at head.
func (a *Allocator) Read(head int) ([]byte, error) {
	chain, err := a.Chain(head)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(chain)*a.pool.Capacity())
	for _, b := range chain {
		p, err := a.pool.Payload(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptChain, err)
		}
		out = append(out, p...)
	}
	return out, nil
}

// Chain returns the block indices of the chain at head in chain order.
func (a *Allocator) Chain(head int) ([]int, error) {
	if head == format.NoBlock {
		return nil, ErrNoChain
	}
	limit := a.table.LiveLen()
	var chain []int
	for cur := head; cur != format.NoBlock; {
		next, err := a.table.Next(cur)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorruptChain, err)
		}
		chain = append(chain, cur)
		if len(chain) > limit {
			return nil, fmt.Errorf("%w: cycle after %d blocks from %d", ErrCorruptChain, limit, head)
		}
		cur = next
	}
	return chain, nil
}

// Free drops one reference to the chain at head. When no references remain
// every block of the chain is cleared, its record retired and the block made
// available for reuse. It returns the number of blocks released.
func (a *Allocator) Free(head int) (int, error) {
	if head == format.NoBlock {
		return 0, ErrNoChain
	}
	if a.refs[head] > 1 {
		a.refs[head]--
		return 0, nil
	}

	chain, err := a.Chain(head)
	if err != nil {
		return 0, err
	}
	for _, b := range chain {
		if err := a.table.Retire(b); err != nil {
			return 0, err
		}
		if err := a.pool.Free(b); err != nil {
			return 0, err
		}
		a.free.Push(b)
		a.mark(b)
	}
	delete(a.refs, head)
	return len(chain), nil
}

// Clone copies the chain at head into a new chain owned by owner and
// returns the new head. The new chain starts with one reference.
func (a *Allocator) Clone(head int, owner string) (int, error) {
	data, err := a.Read(head)
	if err != nil {
		return format.NoBlock, err
	}
	first, _, err := a.writeChunks(owner, format.NoBlock, 0, data)
	if err != nil {
		return format.NoBlock, err
	}
	a.refs[first] = 1
	return first, nil
}

// Retain adds a reference to the chain at head.
func (a *Allocator) Retain(head int) error {
	if head == format.NoBlock {
		return ErrNoChain
	}
	if !a.table.Owned(head) {
		return fmt.Errorf("%w: head %d has no live record", ErrCorruptChain, head)
	}
	a.refs[head]++
	return nil
}

// Refs returns the number of references to the chain at head.
func (a *Allocator) Refs(head int) int { return a.refs[head] }

// FreeLen returns the number of blocks available for reuse.
func (a *Allocator) FreeLen() int { return a.free.Len() }

// NextFree returns the block the next allocation will use without growing
// the pool, if any.
func (a *Allocator) NextFree() (int, bool) { return a.free.Peek() }

// Reclaim clears payload left in blocks that have no live record and
// returns how many blocks it cleared.
func (a *Allocator) Reclaim() int {
	cleared := 0
	for i := range a.pool.Len() {
		if a.table.Owned(i) {
			continue
		}
		if used, _ := a.pool.Used(i); used > 0 {
			_ = a.pool.Free(i)
			a.mark(i)
			cleared++
		}
	}
	return cleared
}

// Unreachable returns, in ascending order, the owned blocks that no
// referenced chain reaches.
func (a *Allocator) Unreachable() []int {
	reached := make(map[int]struct{})
	for head := range a.refs {
		chain, err := a.Chain(head)
		if err != nil {
			continue
		}
		for _, b := range chain {
			reached[b] = struct{}{}
		}
	}
	var out []int
	for _, rec := range a.table.Live() {
		if _, ok := reached[rec.Block]; !ok {
			out = append(out, rec.Block)
		}
	}
	sort.Ints(out)
	return out
}

// Release retires the records of blocks, clears them and makes them
// available for reuse, regardless of references. It is meant for blocks
// reported by Unreachable.
func (a *Allocator) Release(blocks []int) error {
	for _, b := range blocks {
		if err := a.table.Retire(b); err != nil {
			return err
		}
		if err := a.pool.Free(b); err != nil {
			return err
		}
		a.free.Push(b)
		a.mark(b)
	}
	return nil
}

// Check verifies that every block is either owned by one live record or on
// the free list, that unowned blocks hold no bytes, that every referenced
// chain is acyclic, and that every owned block is reached by a referenced
// chain.
func (a *Allocator) Check() error {
	var errs []error
	for _, rec := range a.table.Live() {
		if rec.Block >= a.pool.Len() {
			errs = append(errs, fmt.Errorf("record for block %d beyond pool of %d", rec.Block, a.pool.Len()))
		}
	}
	for i := range a.pool.Len() {
		owned, free := a.table.Owned(i), a.free.Contains(i)
		switch {
		case owned && free:
			errs = append(errs, fmt.Errorf("block %d is owned and free", i))
		case !owned && !free:
			errs = append(errs, fmt.Errorf("block %d is neither owned nor free", i))
		case !owned:
			if used, _ := a.pool.Used(i); used > 0 {
				errs = append(errs, fmt.Errorf("free block %d holds %d bytes", i, used))
			}
		}
	}
	for head := range a.refs {
		if _, err := a.Chain(head); err != nil {
			errs = append(errs, fmt.Errorf("chain at %d: %w", head, err))
		}
	}
	for _, b := range a.Unreachable() {
		errs = append(errs, fmt.Errorf("block %d is owned but no file reaches it", b))
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInconsistent, errors.Join(errs...))
}

func (a *Allocator) mark(block int) {
	if a.dt != nil {
		a.dt.Add(block)
	}
}
