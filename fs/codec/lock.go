package codec

import (
	"errors"
	"fmt"
	"os"

	"github.com/joshuapare/blockfs/internal/format"
)

// ErrLocked indicates another session holds the image lock.
var ErrLocked = errors.New("codec: image is locked by another session")

// Lock is an exclusive advisory lock on an image, held through a sibling
// lock file for the lifetime of a session.
type Lock struct {
	f    *os.File
	path string
}

// AcquireLock locks the image at imagePath without blocking. It fails with
// ErrLocked when another session holds the lock.
func AcquireLock(imagePath string) (*Lock, error) {
	path := imagePath + format.LockSuffix
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, err
	}
	return &Lock{f: f, path: path}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string { return l.path }

// Release unlocks and closes the lock file. Releasing twice is a no-op.
func (l *Lock) Release() error {
	if l == nil || l.f == nil {
		return nil
	}
	err := unlockFile(l.f)
	if cerr := l.f.Close(); err == nil {
		err = cerr
	}
	l.f = nil
	return err
}
