package format

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"
)

// EncodingBase64 marks block data stored as base64 because the payload is
// not valid UTF-8 (binary content, or a multi-byte rune split across blocks).
const EncodingBase64 = "base64"

// Image is the persisted form of a whole file system.
//
// Layout:
//
//	root   namespace tree (names and sizes, optional chain heads)
//	blocks every block, position == block index
//	fat    every allocation record, retired ones included
type Image struct {
	Version   int           `json:"version,omitempty"`
	BlockSize int           `json:"blockSize,omitempty"`
	Root      DirectoryNode `json:"root"`
	Blocks    []BlockNode   `json:"blocks"`
	FAT       []FATNode     `json:"fat"`
}

// DirectoryNode is one directory of the namespace tree.
type DirectoryNode struct {
	Name           string          `json:"name"`
	Files          []FileNode      `json:"files,omitempty"`
	Subdirectories []DirectoryNode `json:"subdirectories,omitempty"`
}

// FileNode is a file entry. Head is nil for images that predate chain heads;
// such files are resolved by owner name against the FAT at load time.
type FileNode struct {
	Name string `json:"name"`
	Size int64  `json:"size"`
	Head *int   `json:"head,omitempty"`
}

// BlockNode is one storage block. NextBlock mirrors the FAT link and is kept
// for readers of the image; the FAT is authoritative on load.
type BlockNode struct {
	FreeSpace int    `json:"freeSpace"`
	NextBlock int    `json:"nextBlock"`
	Data      string `json:"data"`
	Encoding  string `json:"encoding,omitempty"`
}

// NewBlockNode builds the node for a block payload.
func NewBlockNode(payload []byte, freeSpace, next int) BlockNode {
	n := BlockNode{FreeSpace: freeSpace, NextBlock: next}
	if utf8.Valid(payload) {
		n.Data = string(payload)
	} else {
		n.Data = base64.StdEncoding.EncodeToString(payload)
		n.Encoding = EncodingBase64
	}
	return n
}

// Payload returns the raw block bytes.
func (n BlockNode) Payload() ([]byte, error) {
	switch n.Encoding {
	case "":
		return []byte(n.Data), nil
	case EncodingBase64:
		return base64.StdEncoding.DecodeString(n.Data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrEncoding, n.Encoding)
	}
}

// FATNode is one allocation record.
type FATNode struct {
	BlockNumber  int       `json:"blockNumber"`
	FileName     string    `json:"fileName"`
	FileSize     int64     `json:"fileSize"`
	CreationDate Timestamp `json:"creationDate"`
	NextBlock    int       `json:"nextBlock"`
}

// HeadRef returns a pointer to a copy of head, or nil for NoBlock.
func HeadRef(head int) *int {
	if head == NoBlock {
		return nil
	}
	h := head
	return &h
}

// Timestamp is a record creation time. It is written as an RFC 3339 string
// and also accepts the integer Unix seconds of unversioned images.
type Timestamp struct {
	time.Time
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return t.Time.MarshalJSON()
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] != '"' && string(b) != "null" {
		var secs int64
		if err := json.Unmarshal(b, &secs); err != nil {
			return err
		}
		t.Time = time.Unix(secs, 0)
		return nil
	}
	return t.Time.UnmarshalJSON(b)
}
