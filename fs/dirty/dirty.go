// Package dirty tracks which parts of a file system changed since the last
// save, so a session that made no changes can skip rewriting its image.
//
// The tracker records touched block indices and a separate flag for
// namespace (directory tree) changes. It does not write anything itself; the
// engine consults it before persisting and resets it afterwards.
package dirty

import "sort"

// DirtyTracker is the minimal interface for components that only report
// modified blocks (e.g. the allocator).
type DirtyTracker interface {
	// Add marks block as modified.
	Add(block int)
}

// Tracker accumulates modified blocks and namespace changes.
//
// NOT thread-safe. Only one goroutine should use it at a time.
type Tracker struct {
	blocks map[int]struct{}
	meta   bool
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{blocks: make(map[int]struct{})}
}

// Add marks block as modified.
func (t *Tracker) Add(block int) {
	t.blocks[block] = struct{}{}
}

// MarkMeta records a namespace change.
func (t *Tracker) MarkMeta() { t.meta = true }

// Dirty reports whether anything changed since the last Reset.
func (t *Tracker) Dirty() bool {
	return t.meta || len(t.blocks) > 0
}

// Blocks returns the modified block indices in ascending order.
func (t *Tracker) Blocks() []int {
	out := make([]int, 0, len(t.blocks))
	for b := range t.blocks {
		out = append(out, b)
	}
	sort.Ints(out)
	return out
}

// Reset clears all marks, typically after a successful save.
func (t *Tracker) Reset() {
	clear(t.blocks)
	t.meta = false
}
