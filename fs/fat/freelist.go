package fat

import "container/heap"

// FreeList holds reusable block indices and always yields the lowest one
// first, which keeps first-fit allocation at O(log n).
type FreeList struct {
	h       intHeap
	members map[int]struct{}
}

// NewFreeList returns a free list seeded with blocks.
func NewFreeList(blocks ...int) *FreeList {
	fl := &FreeList{members: make(map[int]struct{}, len(blocks))}
	for _, b := range blocks {
		if _, ok := fl.members[b]; ok {
			continue
		}
		fl.members[b] = struct{}{}
		fl.h = append(fl.h, b)
	}
	heap.Init(&fl.h)
	return fl
}

// Push adds block to the list. Adding a block twice is a no-op.
func (fl *FreeList) Push(block int) {
	if _, ok := fl.members[block]; ok {
		return
	}
	fl.members[block] = struct{}{}
	heap.Push(&fl.h, block)
}

// Pop removes and returns the lowest free block.
func (fl *FreeList) Pop() (int, bool) {
	if fl.h.Len() == 0 {
		return 0, false
	}
	b := heap.Pop(&fl.h).(int)
	delete(fl.members, b)
	return b, true
}

// Peek returns the lowest free block without removing it.
func (fl *FreeList) Peek() (int, bool) {
	if fl.h.Len() == 0 {
		return 0, false
	}
	return fl.h[0], true
}

// Contains reports whether block is on the list.
func (fl *FreeList) Contains(block int) bool {
	_, ok := fl.members[block]
	return ok
}

// Len returns the number of free blocks.
func (fl *FreeList) Len() int { return fl.h.Len() }

type intHeap []int

func (h intHeap) Len() int           { return len(h) }
func (h intHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}
