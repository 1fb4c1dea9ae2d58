// Package namespace implements the directory tree of blockfs.
//
// # Overview
//
// Directories live in an arena and are addressed by DirID. A directory's
// parent is stored as an arena index, so upward navigation never involves an
// owning reference and removing a subtree cannot reach anything through the
// parent link. Slots of removed directories are recycled.
//
// Each directory maps names to files and, separately, names to
// subdirectories; a file and a directory may share a name.
//
// # Files
//
// A File carries its name, its size and the head of its block chain. The
// tree never allocates or frees storage: RemoveFile hands the removed entry
// back and RemoveDir passes every file of the subtree to a visitor so the
// caller can release the chains.
//
// # Names
//
// Names are NFC-normalized before they are stored or looked up, so the
// composed and decomposed spellings of a name refer to the same entry.
// Empty names, "." and "..", and names containing '/' or NUL are rejected.
//
// # Thread Safety
//
// Tree instances are not thread-safe.
package namespace
