package blockfs

import (
	"log/slog"
	"sync"

	"github.com/joshuapare/blockfs/fs/alloc"
	"github.com/joshuapare/blockfs/fs/blocks"
	"github.com/joshuapare/blockfs/fs/codec"
	"github.com/joshuapare/blockfs/fs/dirty"
	"github.com/joshuapare/blockfs/fs/fat"
	"github.com/joshuapare/blockfs/fs/namespace"
	"github.com/joshuapare/blockfs/internal/format"
	"github.com/joshuapare/blockfs/pkg/types"
)

// Engine is a block file system session.
type Engine struct {
	mu sync.Mutex

	pool  *blocks.Pool
	table *fat.Table
	alloc *alloc.Allocator
	tree  *namespace.Tree
	dt    *dirty.Tracker
	cwd   namespace.DirID

	policy types.CopyPolicy
	log    *slog.Logger

	// Persistence, empty for in-memory engines.
	path   string
	lock   *codec.Lock
	exists bool
	closed bool
}

// New creates an empty in-memory engine. It cannot be saved.
func New(opts Options) (*Engine, error) {
	opts = opts.withDefaults()
	pool, err := blocks.NewPool(opts.BlockSize)
	if err != nil {
		return nil, classify(err, "block size %d", opts.BlockSize)
	}
	return newEngine(namespace.New(format.RootName), pool, fat.NewTable(), opts), nil
}

func newEngine(tree *namespace.Tree, pool *blocks.Pool, table *fat.Table, opts Options) *Engine {
	dt := dirty.NewTracker()
	a := alloc.New(pool, table, dt)
	a.SetClock(opts.Clock)
	return &Engine{
		pool:   pool,
		table:  table,
		alloc:  a,
		tree:   tree,
		dt:     dt,
		cwd:    namespace.Root,
		policy: opts.CopyPolicy,
		log:    opts.Logger,
	}
}

// List returns the content of the current directory.
func (e *Engine) List() types.Listing {
	e.mu.Lock()
	defer e.mu.Unlock()

	l := types.Listing{
		Path:  e.tree.Path(e.cwd),
		Dirs:  e.tree.Subdirs(e.cwd),
		Files: e.fileInfos(e.cwd),
	}
	if l.Dirs == nil {
		l.Dirs = []string{}
	}
	return l
}

// ChangeDir moves into the subdirectory called name, or to the parent for
// "..". Ascending from the root fails with types.ErrInvalidNavigation.
func (e *Engine) ChangeDir(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	d, err := e.resolveDir(name)
	if err != nil {
		return classify(err, "cd %s", name)
	}
	e.cwd = d
	return nil
}

// Pwd returns the path of the current directory.
func (e *Engine) Pwd() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Path(e.cwd)
}

// Cwd returns the name of the current directory.
func (e *Engine) Cwd() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Name(e.cwd)
}

// MakeDir creates an empty subdirectory in the current directory.
func (e *Engine) MakeDir(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen("mkdir %s", name); err != nil {
		return err
	}
	if _, err := e.tree.CreateDir(e.cwd, name); err != nil {
		return classify(err, "mkdir %s", name)
	}
	e.dt.MarkMeta()
	e.log.Debug("directory created", "dir", e.tree.Path(e.cwd), "name", name)
	return nil
}

// Touch creates an empty file in the current directory.
func (e *Engine) Touch(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen("touch %s", name); err != nil {
		return err
	}
	if _, err := e.tree.CreateFile(e.cwd, name); err != nil {
		return classify(err, "touch %s", name)
	}
	e.dt.MarkMeta()
	e.log.Debug("file created", "dir", e.tree.Path(e.cwd), "name", name)
	return nil
}

// Write appends data to the file called name. The first write to a file
// allocates its chain, even when data is empty.
func (e *Engine) Write(name string, data []byte) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen("write %s", name); err != nil {
		return err
	}
	f, err := e.tree.File(e.cwd, name)
	if err != nil {
		return classify(err, "write %s", name)
	}
	head, size, err := e.alloc.Write(f.Name, f.Head, f.Size, data)
	if err != nil {
		return classify(err, "write %s", name)
	}
	f.Head, f.Size = head, size
	e.dt.MarkMeta()
	e.log.Debug("file written", "name", f.Name, "bytes", len(data), "head", head, "size", size)
	return nil
}

// Read returns the content of the file called name. A file that was never
// written has no content and yields types.ErrNotFound.
func (e *Engine) Read(name string) ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := e.tree.File(e.cwd, name)
	if err != nil {
		return nil, classify(err, "read %s", name)
	}
	data, err := e.alloc.Read(f.Head)
	if err != nil {
		return nil, classify(err, "read %s", name)
	}
	return data, nil
}

// Stat describes the file called name.
func (e *Engine) Stat(name string) (types.FileInfo, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := e.tree.File(e.cwd, name)
	if err != nil {
		return types.FileInfo{}, classify(err, "stat %s", name)
	}
	return e.fileInfo(f), nil
}

// Remove deletes the file called name and releases its storage.
func (e *Engine) Remove(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen("rm %s", name); err != nil {
		return err
	}
	f, err := e.tree.RemoveFile(e.cwd, name)
	if err != nil {
		return classify(err, "rm %s", name)
	}
	e.dt.MarkMeta()
	n, err := e.release(f)
	if err != nil {
		return classify(err, "rm %s", name)
	}
	e.log.Debug("file removed", "name", f.Name, "blocks", n)
	return nil
}

// RemoveDir deletes the subdirectory called name with everything below it.
func (e *Engine) RemoveDir(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen("rmdir %s", name); err != nil {
		return err
	}
	var files, freed int
	err := e.tree.RemoveDir(e.cwd, name, func(f *namespace.File) error {
		n, err := e.release(f)
		files++
		freed += n
		return err
	})
	if files > 0 || err == nil {
		e.dt.MarkMeta()
	}
	if err != nil {
		return classify(err, "rmdir %s", name)
	}
	e.log.Debug("directory removed", "name", name, "files", files, "blocks", freed)
	return nil
}

// Copy duplicates the file called name into destDir, a subdirectory of the
// current directory or ".." for the parent. How content is duplicated
// depends on the engine's copy policy.
func (e *Engine) Copy(name, destDir string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.checkOpen("cp %s %s", name, destDir); err != nil {
		return err
	}
	src, err := e.tree.File(e.cwd, name)
	if err != nil {
		return classify(err, "cp %s", name)
	}
	dst, err := e.resolveDir(destDir)
	if err != nil {
		return classify(err, "cp %s: destination %s", name, destDir)
	}
	if _, err := e.tree.File(dst, src.Name); err == nil {
		return types.Errorf(types.ErrKindAlreadyExists, nil, "cp %s: %s already holds %s", name, e.tree.Path(dst), src.Name)
	}

	head := src.Head
	if head != format.NoBlock {
		switch e.policy {
		case types.CopyShared:
			err = e.alloc.Retain(head)
		default:
			head, err = e.alloc.Clone(head, src.Name)
		}
		if err != nil {
			return classify(err, "cp %s", name)
		}
	}

	if _, err := e.tree.PutFile(dst, namespace.File{Name: src.Name, Size: src.Size, Head: head}); err != nil {
		if head != format.NoBlock {
			_, _ = e.alloc.Free(head)
		}
		return classify(err, "cp %s", name)
	}
	e.dt.MarkMeta()
	e.log.Debug("file copied", "name", src.Name, "to", e.tree.Path(dst), "policy", e.policy.String(), "head", head)
	return nil
}

// FAT returns the live allocation records in table order.
func (e *Engine) FAT() []types.FATEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	live := e.table.Live()
	out := make([]types.FATEntry, 0, len(live))
	for _, rec := range live {
		used, _ := e.pool.Used(rec.Block)
		out = append(out, types.FATEntry{
			Block:     rec.Block,
			File:      rec.Owner,
			Used:      used,
			Size:      rec.Size,
			CreatedAt: rec.CreatedAt,
			Next:      rec.Next,
		})
	}
	return out
}

// Tree returns a snapshot of the current directory and everything below it.
func (e *Engine) Tree() types.DirTree {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirTree(e.cwd)
}

// Stats summarizes the engine state.
func (e *Engine) Stats() types.Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	dirs, files := e.tree.Count()
	return types.Stats{
		BlockSize:   e.pool.Capacity(),
		Blocks:      e.pool.Len(),
		FreeBlocks:  e.alloc.FreeLen(),
		UsedBytes:   e.pool.UsedBytes(),
		Records:     e.table.Len(),
		LiveRecords: e.table.LiveLen(),
		Directories: dirs,
		Files:       files,
		CopyPolicy:  e.policy,
		Dirty:       e.dt.Dirty(),
	}
}

// Check verifies the consistency of blocks, records and chains.
func (e *Engine) Check() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return classify(e.alloc.Check(), "check")
}

// checkOpen fails once the engine has been closed.
func (e *Engine) checkOpen(op string, args ...any) error {
	if e.closed {
		return types.Errorf(types.ErrKindPersistenceUnavailable, nil, op+": engine is closed", args...)
	}
	return nil
}

// resolveDir returns the directory name refers to from the current one.
func (e *Engine) resolveDir(name string) (namespace.DirID, error) {
	if name == ".." {
		return e.tree.Parent(e.cwd)
	}
	return e.tree.Dir(e.cwd, name)
}

// release frees the storage of a removed file.
func (e *Engine) release(f *namespace.File) (int, error) {
	if f.Head == format.NoBlock {
		return 0, nil
	}
	return e.alloc.Free(f.Head)
}

func (e *Engine) fileInfo(f *namespace.File) types.FileInfo {
	info := types.FileInfo{Name: f.Name, Size: f.Size, Head: f.Head}
	if chain, err := e.alloc.Chain(f.Head); err == nil {
		info.Blocks = len(chain)
	}
	return info
}

func (e *Engine) fileInfos(d namespace.DirID) []types.FileInfo {
	files := e.tree.Files(d)
	out := make([]types.FileInfo, 0, len(files))
	for _, f := range files {
		out = append(out, e.fileInfo(f))
	}
	return out
}

func (e *Engine) dirTree(d namespace.DirID) types.DirTree {
	t := types.DirTree{Name: e.tree.Name(d)}
	if files := e.fileInfos(d); len(files) > 0 {
		t.Files = files
	}
	for _, name := range e.tree.Subdirs(d) {
		sub, err := e.tree.Dir(d, name)
		if err != nil {
			continue
		}
		t.Dirs = append(t.Dirs, e.dirTree(sub))
	}
	return t
}
