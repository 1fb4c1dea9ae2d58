// Package format houses the constants and the persisted image schema of a
// blockfs file system. It is kept independent from the engine packages so the
// codec and the engine can both depend on it without import cycles.
package format

const (
	// DefaultBlockSize is the capacity of a single storage block in bytes.
	DefaultBlockSize = 32

	// NoBlock marks the absence of a block (end of chain, unwritten file).
	NoBlock = -1

	// ImageVersion is written into every saved image. Images without a
	// version predate chain heads on file entries.
	ImageVersion = 1

	// DefaultImageName is the file a session loads from and saves to when
	// no path is given.
	DefaultImageName = "filesystem.json"

	// RootName is the name of the root directory.
	RootName = "root"

	// LockSuffix is appended to the image path to form the lock file path.
	LockSuffix = ".lock"
)

// ChunkCount returns the number of blocks needed to hold n bytes in blocks of
// the given capacity. A zero-length file still occupies one block.
func ChunkCount(n, capacity int) int {
	if n <= 0 {
		return 1
	}
	return (n + capacity - 1) / capacity
}
