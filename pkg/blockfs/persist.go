package blockfs

import (
	"context"
	"errors"
	"io/fs"

	"github.com/joshuapare/blockfs/fs/codec"
	"github.com/joshuapare/blockfs/fs/namespace"
	"github.com/joshuapare/blockfs/internal/format"
	"github.com/joshuapare/blockfs/pkg/types"
)

// Open starts a session on the image at path. The image is loaded when it
// exists; otherwise the engine starts empty and the image is created on
// Close. The image stays locked until Close.
func Open(ctx context.Context, path string, opts Options) (*Engine, error) {
	opts = opts.withDefaults()

	lock, err := codec.AcquireLock(path)
	if err != nil {
		return nil, classify(err, "lock %s", path)
	}

	e, err := load(ctx, path, opts)
	if err != nil {
		_ = lock.Release()
		return nil, err
	}
	e.path = path
	e.lock = lock

	opts.Logger.Info("image opened",
		"path", path,
		"exists", e.exists,
		"block_size", e.pool.Capacity(),
		"blocks", e.pool.Len(),
		"records", e.table.Len(),
	)
	return e, nil
}

func load(ctx context.Context, path string, opts Options) (*Engine, error) {
	img, err := codec.LoadFile(ctx, path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(opts)
	}
	if err != nil {
		return nil, classify(err, "load %s", path)
	}

	st, err := codec.Decode(img, opts.BlockSize)
	if err != nil {
		return nil, classify(err, "decode %s", path)
	}

	e := newEngine(st.Tree, st.Pool, st.Table, opts)
	e.exists = true
	if st.Resolved > 0 {
		opts.Logger.Info("resolved chain heads by owner name", "path", path, "files", st.Resolved)
	}

	// Every file holding a chain counts as one reference, so chains shared
	// by copies survive until their last holder is removed.
	err = e.tree.Walk(namespace.Root, func(d namespace.DirID, _ int) error {
		for _, f := range e.tree.Files(d) {
			if f.Head == format.NoBlock {
				continue
			}
			if err := e.alloc.Retain(f.Head); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, classify(err, "load %s", path)
	}

	// Unversioned images started a new chain for every write to a file, and
	// only the first one was ever read back. The rest belong to nobody.
	if orphans := e.alloc.Unreachable(); len(orphans) > 0 && st.Version == 0 {
		if err := e.alloc.Release(orphans); err != nil {
			return nil, classify(err, "load %s", path)
		}
		opts.Logger.Warn("released blocks no file reaches", "path", path, "blocks", orphans)
	}

	if n := e.alloc.Reclaim(); n > 0 {
		opts.Logger.Warn("cleared stray data in unallocated blocks", "path", path, "blocks", n)
	}
	if err := e.alloc.Check(); err != nil {
		return nil, classify(err, "load %s", path)
	}
	return e, nil
}

// Path returns the image path, or "" for an in-memory engine.
func (e *Engine) Path() string { return e.path }

// Save writes the complete state to the image.
func (e *Engine) Save(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.save(ctx)
}

func (e *Engine) save(ctx context.Context) error {
	if e.path == "" {
		return types.Errorf(types.ErrKindPersistenceUnavailable, nil, "save: engine has no image")
	}
	if e.closed {
		return types.Errorf(types.ErrKindPersistenceUnavailable, nil, "save %s: engine is closed", e.path)
	}

	img, err := codec.Encode(e.tree, e.pool, e.table)
	if err != nil {
		return classify(err, "encode %s", e.path)
	}
	if err := codec.SaveFile(ctx, e.path, img); err != nil {
		return classify(err, "save %s", e.path)
	}

	e.log.Info("image saved",
		"path", e.path,
		"changed_blocks", len(e.dt.Blocks()),
		"blocks", len(img.Blocks),
		"records", len(img.FAT),
	)
	e.dt.Reset()
	e.exists = true
	return nil
}

// Close saves the image when anything changed or when it does not exist
// yet, then releases the lock. The lock is released even when the save
// fails. Closing twice is a no-op.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || e.path == "" {
		e.closed = true
		return nil
	}

	var saveErr error
	if e.dt.Dirty() || !e.exists {
		saveErr = e.save(ctx)
	}
	lockErr := e.lock.Release()
	e.closed = true

	if saveErr != nil {
		e.log.Error("image not saved on close", "path", e.path, "error", saveErr)
		return saveErr
	}
	if lockErr != nil {
		return classify(lockErr, "unlock %s", e.path)
	}
	e.log.Info("image closed", "path", e.path)
	return nil
}
