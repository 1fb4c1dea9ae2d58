package namespace

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/joshuapare/blockfs/internal/format"
	"golang.org/x/text/unicode/norm"
)

var (
	// ErrNotFound indicates a missing file or directory.
	ErrNotFound = errors.New("namespace: not found")
	// ErrExists indicates a name already used in the directory.
	ErrExists = errors.New("namespace: already exists")
	// ErrAtRoot indicates an attempt to move above the root.
	ErrAtRoot = errors.New("namespace: already at root directory")
	// ErrBadName indicates a name that cannot be stored.
	ErrBadName = errors.New("namespace: invalid name")
	// ErrBadDir indicates a DirID that does not refer to a live directory.
	ErrBadDir = errors.New("namespace: invalid directory id")
)

// DirID addresses a directory in the arena.
type DirID int

const (
	// Root is the DirID of the root directory.
	Root DirID = 0

	noParent DirID = -1
)

// File is a file entry. Head is the first block of its chain, or
// format.NoBlock while nothing has been written.
type File struct {
	Name string
	Size int64
	Head int
}

type node struct {
	name    string
	parent  DirID
	files   map[string]*File
	subdirs map[string]DirID
	live    bool
}

// Tree is an arena-backed directory tree.
type Tree struct {
	nodes []node
	free  []DirID
}

// New returns a tree holding only a root directory called rootName.
func New(rootName string) *Tree {
	t := &Tree{}
	t.nodes = append(t.nodes, newNode(rootName, noParent))
	return t
}

func newNode(name string, parent DirID) node {
	return node{
		name:    name,
		parent:  parent,
		files:   make(map[string]*File),
		subdirs: make(map[string]DirID),
		live:    true,
	}
}

// Live reports whether d refers to an existing directory.
func (t *Tree) Live(d DirID) bool {
	return d >= 0 && int(d) < len(t.nodes) && t.nodes[d].live
}

func (t *Tree) node(d DirID) (*node, error) {
	if !t.Live(d) {
		return nil, fmt.Errorf("%w: %d", ErrBadDir, d)
	}
	return &t.nodes[d], nil
}

// Name returns the name of d, or "" for an invalid id.
func (t *Tree) Name(d DirID) string {
	if !t.Live(d) {
		return ""
	}
	return t.nodes[d].name
}

// Parent returns the parent of d. The root has none.
func (t *Tree) Parent(d DirID) (DirID, error) {
	n, err := t.node(d)
	if err != nil {
		return noParent, err
	}
	if n.parent == noParent {
		return noParent, ErrAtRoot
	}
	return n.parent, nil
}

// Path returns the absolute path of d, "/" for the root.
func (t *Tree) Path(d DirID) string {
	var parts []string
	for cur := d; t.Live(cur) && t.nodes[cur].parent != noParent; cur = t.nodes[cur].parent {
		parts = append(parts, t.nodes[cur].name)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/")
}

// CreateFile adds an empty file called name to d.
func (t *Tree) CreateFile(d DirID, name string) (*File, error) {
	f, err := t.PutFile(d, File{Name: name, Head: format.NoBlock})
	if err != nil {
		return nil, err
	}
	return f, nil
}

// PutFile adds a copy of f to d and returns the stored entry.
func (t *Tree) PutFile(d DirID, f File) (*File, error) {
	n, err := t.node(d)
	if err != nil {
		return nil, err
	}
	name, err := CleanName(f.Name)
	if err != nil {
		return nil, err
	}
	if _, ok := n.files[name]; ok {
		return nil, fmt.Errorf("%w: file %q", ErrExists, name)
	}
	f.Name = name
	stored := &f
	n.files[name] = stored
	return stored, nil
}

// CreateDir adds an empty subdirectory called name to d.
func (t *Tree) CreateDir(d DirID, name string) (DirID, error) {
	n, err := t.node(d)
	if err != nil {
		return noParent, err
	}
	name, err = CleanName(name)
	if err != nil {
		return noParent, err
	}
	if _, ok := n.subdirs[name]; ok {
		return noParent, fmt.Errorf("%w: directory %q", ErrExists, name)
	}

	var id DirID
	if k := len(t.free); k > 0 {
		id = t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[id] = newNode(name, d)
	} else {
		t.nodes = append(t.nodes, newNode(name, d))
		id = DirID(len(t.nodes) - 1)
	}
	// t.nodes may have grown; re-resolve the parent.
	t.nodes[d].subdirs[name] = id
	return id, nil
}

// File returns the file called name in d.
func (t *Tree) File(d DirID, name string) (*File, error) {
	n, err := t.node(d)
	if err != nil {
		return nil, err
	}
	f, ok := n.files[norm.NFC.String(name)]
	if !ok {
		return nil, fmt.Errorf("%w: file %q", ErrNotFound, name)
	}
	return f, nil
}

// Dir returns the subdirectory called name in d.
func (t *Tree) Dir(d DirID, name string) (DirID, error) {
	n, err := t.node(d)
	if err != nil {
		return noParent, err
	}
	id, ok := n.subdirs[norm.NFC.String(name)]
	if !ok {
		return noParent, fmt.Errorf("%w: directory %q", ErrNotFound, name)
	}
	return id, nil
}

// RemoveFile removes the file called name from d and returns it.
func (t *Tree) RemoveFile(d DirID, name string) (*File, error) {
	f, err := t.File(d, name)
	if err != nil {
		return nil, err
	}
	delete(t.nodes[d].files, f.Name)
	return f, nil
}

// RemoveDir removes the subdirectory called name from d together with its
// whole subtree. Depth first, each directory's files are handed to visit and
// removed before its subdirectories are emptied and removed. An error from
// visit stops the removal and is returned; entries already visited stay
// removed.
func (t *Tree) RemoveDir(d DirID, name string, visit func(*File) error) error {
	id, err := t.Dir(d, name)
	if err != nil {
		return err
	}
	if err := t.purge(id, visit); err != nil {
		return err
	}
	delete(t.nodes[d].subdirs, t.nodes[id].name)
	t.release(id)
	return nil
}

func (t *Tree) purge(id DirID, visit func(*File) error) error {
	n := &t.nodes[id]
	for _, fname := range sortedKeys(n.files) {
		if visit != nil {
			if err := visit(n.files[fname]); err != nil {
				return err
			}
		}
		delete(n.files, fname)
	}
	for _, dname := range sortedKeys(n.subdirs) {
		sub := n.subdirs[dname]
		if err := t.purge(sub, visit); err != nil {
			return err
		}
		delete(n.subdirs, dname)
		t.release(sub)
	}
	return nil
}

func (t *Tree) release(id DirID) {
	t.nodes[id] = node{parent: noParent}
	t.free = append(t.free, id)
}

// Files returns the files of d sorted by name.
func (t *Tree) Files(d DirID) []*File {
	if !t.Live(d) {
		return nil
	}
	n := &t.nodes[d]
	out := make([]*File, 0, len(n.files))
	for _, name := range sortedKeys(n.files) {
		out = append(out, n.files[name])
	}
	return out
}

// Subdirs returns the subdirectory names of d sorted by name.
func (t *Tree) Subdirs(d DirID) []string {
	if !t.Live(d) {
		return nil
	}
	return sortedKeys(t.nodes[d].subdirs)
}

// Walk calls fn for every directory of the subtree rooted at d, parents
// before children, subdirectories in name order.
func (t *Tree) Walk(d DirID, fn func(dir DirID, depth int) error) error {
	if !t.Live(d) {
		return fmt.Errorf("%w: %d", ErrBadDir, d)
	}
	return t.walk(d, 0, fn)
}

func (t *Tree) walk(d DirID, depth int, fn func(DirID, int) error) error {
	if err := fn(d, depth); err != nil {
		return err
	}
	for _, name := range t.Subdirs(d) {
		if err := t.walk(t.nodes[d].subdirs[name], depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Count returns the number of live directories (root included) and files.
func (t *Tree) Count() (dirs, files int) {
	for i := range t.nodes {
		if t.nodes[i].live {
			dirs++
			files += len(t.nodes[i].files)
		}
	}
	return dirs, files
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
