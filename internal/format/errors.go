package format

import "errors"

var (
	// ErrVersion indicates an image written by a newer format version.
	ErrVersion = errors.New("format: unsupported image version")
	// ErrEncoding indicates block data in an unknown encoding.
	ErrEncoding = errors.New("format: unknown block data encoding")
)
