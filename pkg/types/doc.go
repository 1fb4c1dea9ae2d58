// Package types defines the shared vocabulary of blockfs: typed errors with
// stable categories, the copy policy, and the read-only views the engine
// hands out (listings, FAT entries, directory trees, statistics).
//
// Design goals:
//   - Typed errors with stable categories (not found/exists/navigation/...).
//   - Views are plain values; callers never hold pointers into engine state.
//
// This package has no dependencies beyond the standard library.
package types
