package types

import (
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Typed Errors (stable categories for programmatic handling)
// -----------------------------------------------------------------------------

// ErrKind classifies errors so callers can branch on intent rather than text.
type ErrKind int

const (
	ErrKindNotFound               ErrKind = iota // missing file/directory/allocation record
	ErrKindAlreadyExists                         // name collision on create or copy
	ErrKindInvalidNavigation                     // ascending past the root
	ErrKindInvalidName                           // empty or reserved names, separators
	ErrKindPersistenceUnavailable                // load/save I/O failure or locked image
	ErrKindCorrupt                               // inconsistent blocks/FAT after load
)

// String implements the Stringer interface for ErrKind.
func (k ErrKind) String() string {
	switch k {
	case ErrKindNotFound:
		return "NotFound"
	case ErrKindAlreadyExists:
		return "AlreadyExists"
	case ErrKindInvalidNavigation:
		return "InvalidNavigation"
	case ErrKindInvalidName:
		return "InvalidName"
	case ErrKindPersistenceUnavailable:
		return "PersistenceUnavailable"
	case ErrKindCorrupt:
		return "Corrupt"
	default:
		return fmt.Sprintf("ErrKind(%d)", int(k))
	}
}

// Error is a typed error with an optional underlying cause.
type Error struct {
	Kind ErrKind
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind, so errors.Is
// matches any error against the sentinel of its category.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || e == nil || t == nil {
		return false
	}
	return e.Kind == t.Kind
}

// Errorf builds an *Error of the given kind wrapping cause.
func Errorf(kind ErrKind, cause error, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), Err: cause}
}

// Sentinels commonly returned by the engine.
var (
	// ErrNotFound indicates a missing file, directory or allocation record.
	ErrNotFound = &Error{Kind: ErrKindNotFound, Msg: "not found"}
	// ErrAlreadyExists indicates a name collision within one directory.
	ErrAlreadyExists = &Error{Kind: ErrKindAlreadyExists, Msg: "already exists"}
	// ErrInvalidNavigation indicates an attempt to move above the root.
	ErrInvalidNavigation = &Error{Kind: ErrKindInvalidNavigation, Msg: "already at root directory"}
	// ErrInvalidName indicates a name that cannot be stored in a directory.
	ErrInvalidName = &Error{Kind: ErrKindInvalidName, Msg: "invalid name"}
	// ErrPersistenceUnavailable indicates a failed load or save.
	ErrPersistenceUnavailable = &Error{Kind: ErrKindPersistenceUnavailable, Msg: "persistence unavailable"}
	// ErrCorrupt indicates blocks and allocation records disagree.
	ErrCorrupt = &Error{Kind: ErrKindCorrupt, Msg: "corrupt file system state"}
)

// KindOf returns the kind of err when it is (or wraps) an *Error.
func KindOf(err error) (ErrKind, bool) {
	for err != nil {
		if e, ok := err.(*Error); ok {
			return e.Kind, true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return 0, false
		}
		err = u.Unwrap()
	}
	return 0, false
}

// -----------------------------------------------------------------------------
// Copy Policy
// -----------------------------------------------------------------------------

// CopyPolicy decides what a file copy does with the source's storage.
type CopyPolicy int

const (
	// CopyDeep duplicates the source bytes into a fresh block chain.
	CopyDeep CopyPolicy = iota
	// CopyShared makes the copy reference the source chain. The first append
	// to either file gives it a private chain; storage is released when the
	// last holder is deleted.
	CopyShared
)

// String implements the Stringer interface for CopyPolicy.
func (p CopyPolicy) String() string {
	switch p {
	case CopyDeep:
		return "deep"
	case CopyShared:
		return "shared"
	default:
		return fmt.Sprintf("CopyPolicy(%d)", int(p))
	}
}

// MarshalText renders the policy by name.
func (p CopyPolicy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// ParseCopyPolicy parses "deep" or "shared".
func ParseCopyPolicy(s string) (CopyPolicy, error) {
	switch s {
	case "deep", "":
		return CopyDeep, nil
	case "shared":
		return CopyShared, nil
	default:
		return CopyDeep, fmt.Errorf("unknown copy policy %q (want deep or shared)", s)
	}
}

// -----------------------------------------------------------------------------
// Views
// -----------------------------------------------------------------------------

// FileInfo describes a file entry.
type FileInfo struct {
	Name   string `json:"name"`
	Size   int64  `json:"size"`
	Head   int    `json:"head"`   // chain head block, -1 when never written
	Blocks int    `json:"blocks"` // blocks in the chain
}

// Listing is the content of one directory.
type Listing struct {
	Path  string     `json:"path"`
	Dirs  []string   `json:"dirs"`
	Files []FileInfo `json:"files"`
}

// FATEntry is one live allocation record as shown by the "fat" command.
type FATEntry struct {
	Block     int       `json:"block"`
	File      string    `json:"file"`
	Used      int       `json:"used"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
	Next      int       `json:"next"`
}

// DirTree is a recursive snapshot of a directory.
type DirTree struct {
	Name  string     `json:"name"`
	Files []FileInfo `json:"files,omitempty"`
	Dirs  []DirTree  `json:"dirs,omitempty"`
}

// Stats summarizes engine state.
type Stats struct {
	BlockSize   int        `json:"blockSize"`
	Blocks      int        `json:"blocks"`
	FreeBlocks  int        `json:"freeBlocks"`
	UsedBytes   int64      `json:"usedBytes"`
	Records     int        `json:"records"`
	LiveRecords int        `json:"liveRecords"`
	Directories int        `json:"directories"`
	Files       int        `json:"files"`
	CopyPolicy  CopyPolicy `json:"copyPolicy"`
	Dirty       bool       `json:"dirty"`
}
