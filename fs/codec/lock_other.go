//go:build !unix && !windows

package codec

import "os"

// Platforms without advisory locks run unlocked.
func lockFile(*os.File) error { return nil }

func unlockFile(*os.File) error { return nil }
