package alloc

import "github.com/joshuapare/blockfs/fs/dirty"

// DirtyTracker is a type alias for the canonical interface defined in fs/dirty.
type DirtyTracker = dirty.DirtyTracker
