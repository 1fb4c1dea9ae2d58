// Package alloc provides block chain allocation for blockfs.
//
// # Overview
//
// A file's content lives in a chain of blocks. The allocator coordinates the
// block pool (bytes) and the allocation table (ownership and links) so the
// two never disagree: every allocated block has exactly one live record, and
// every free block sits on the free list.
//
// # Allocator Interface
//
//   - Write(owner, head, size, data): start a chain or append to one
//   - Read(head): concatenate a chain's payloads
//   - Free(head): drop a reference, releasing the chain with the last one
//   - Clone(head, owner): deep copy a chain
//   - Retain(head): add a reference to a chain
//   - Check(): verify pool, table and free list agree
//
// # First-Fit Reuse
//
// New blocks are taken from the free list, lowest index first, before the
// pool grows. Writing N bytes into a fresh chain with block capacity B takes
// ceil(N/B) blocks; a zero-length write still takes one.
//
// # Appending
//
// Writing to an existing chain never truncates. The tail block's remaining
// capacity is filled first, further chunks are linked after it, and the
// declared size on each touched record is the file size after that chunk.
//
// # Shared Chains
//
// A chain may be referenced by more than one file (shared copies). Appending
// to a shared chain first clones it for the writer, so the other holders keep
// their bytes. Free only releases storage when the reference count reaches
// zero.
//
// # Thread Safety
//
// Allocator instances are not thread-safe. The engine serializes access.
//
// # Related Packages
//
//   - github.com/joshuapare/blockfs/fs/blocks: Byte storage
//   - github.com/joshuapare/blockfs/fs/fat: Allocation records and free list
//   - github.com/joshuapare/blockfs/fs/dirty: Tracks modified blocks
package alloc
