// Package fat implements the allocation table: one record per block
// allocation, binding the block to its owning file and to the next block of
// the chain. The table is the single source of truth for chain topology.
//
// Records are never removed. Freeing a chain retires its records (owner and
// link cleared) and leaves the slots in place, so the table only grows.
package fat

import (
	"errors"
	"fmt"
	"time"

	"github.com/joshuapare/blockfs/internal/format"
)

var (
	// ErrNoRecord indicates that no live record references the block.
	ErrNoRecord = errors.New("fat: no live record for block")
	// ErrDuplicate indicates a second live record for an already owned block.
	ErrDuplicate = errors.New("fat: block already owned by a live record")
	// ErrBadRecord indicates a record with an invalid block or link.
	ErrBadRecord = errors.New("fat: invalid record")
)

// Record is one allocation table entry.
type Record struct {
	Block     int       // block index this record describes
	Owner     string    // owning file name, "" once retired
	Size      int64     // aggregate file size after this block was written
	CreatedAt time.Time // allocation time
	Next      int       // successor block or format.NoBlock
}

// Retired reports whether the record no longer owns its block.
func (r Record) Retired() bool { return r.Owner == "" }

// Table is the allocation table. It is not thread-safe.
type Table struct {
	records []Record
	live    map[int]int // block index -> record index of its live record
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{live: make(map[int]int)}
}

// Append adds a live record and returns its slot index.
func (t *Table) Append(rec Record) (int, error) {
	if rec.Block < 0 || rec.Owner == "" {
		return 0, fmt.Errorf("%w: block %d owner %q", ErrBadRecord, rec.Block, rec.Owner)
	}
	if _, ok := t.live[rec.Block]; ok {
		return 0, fmt.Errorf("%w: %d", ErrDuplicate, rec.Block)
	}
	t.records = append(t.records, rec)
	slot := len(t.records) - 1
	t.live[rec.Block] = slot
	return slot, nil
}

// Lookup returns the live record for block.
func (t *Table) Lookup(block int) (Record, bool) {
	slot, ok := t.live[block]
	if !ok {
		return Record{}, false
	}
	return t.records[slot], true
}

// Owned reports whether block has a live record.
func (t *Table) Owned(block int) bool {
	_, ok := t.live[block]
	return ok
}

// Next returns the successor of block, or format.NoBlock at the end of a chain.
func (t *Table) Next(block int) (int, error) {
	slot, ok := t.live[block]
	if !ok {
		return format.NoBlock, fmt.Errorf("%w: %d", ErrNoRecord, block)
	}
	return t.records[slot].Next, nil
}

// Link makes next the successor of prev.
func (t *Table) Link(prev, next int) error {
	slot, ok := t.live[prev]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoRecord, prev)
	}
	t.records[slot].Next = next
	return nil
}

// SetSize updates the declared file size on the live record of block.
func (t *Table) SetSize(block int, size int64) error {
	slot, ok := t.live[block]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoRecord, block)
	}
	t.records[slot].Size = size
	return nil
}

// Retire clears owner, size and link of the live record of block. The slot
// stays in the table.
func (t *Table) Retire(block int) error {
	slot, ok := t.live[block]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNoRecord, block)
	}
	rec := &t.records[slot]
	rec.Owner = ""
	rec.Size = 0
	rec.Next = format.NoBlock
	delete(t.live, block)
	return nil
}

// FirstByOwner returns the first live record, in table order, owned by name.
func (t *Table) FirstByOwner(name string) (Record, bool) {
	for _, rec := range t.records {
		if rec.Owner == name && !rec.Retired() {
			return rec, true
		}
	}
	return Record{}, false
}

// Records returns a copy of every record, retired ones included.
func (t *Table) Records() []Record {
	out := make([]Record, len(t.records))
	copy(out, t.records)
	return out
}

// Live returns a copy of the live records in table order.
func (t *Table) Live() []Record {
	out := make([]Record, 0, len(t.live))
	for _, rec := range t.records {
		if !rec.Retired() {
			out = append(out, rec)
		}
	}
	return out
}

// Len returns the number of slots, retired ones included.
func (t *Table) Len() int { return len(t.records) }

// LiveLen returns the number of live records.
func (t *Table) LiveLen() int { return len(t.live) }

// Restore replaces the table contents with records, as read from an image.
// Retired records are kept verbatim; two live records for one block fail.
func (t *Table) Restore(records []Record) error {
	live := make(map[int]int, len(records))
	for i, rec := range records {
		if rec.Retired() {
			continue
		}
		if rec.Block < 0 {
			return fmt.Errorf("%w: slot %d has block %d", ErrBadRecord, i, rec.Block)
		}
		if prev, ok := live[rec.Block]; ok {
			return fmt.Errorf("%w: block %d in slots %d and %d", ErrDuplicate, rec.Block, prev, i)
		}
		live[rec.Block] = i
	}
	t.records = make([]Record, len(records))
	copy(t.records, records)
	t.live = live
	return nil
}
