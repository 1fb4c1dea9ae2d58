package blockfs

import (
	"errors"
	"fmt"

	"github.com/joshuapare/blockfs/fs/alloc"
	"github.com/joshuapare/blockfs/fs/blocks"
	"github.com/joshuapare/blockfs/fs/codec"
	"github.com/joshuapare/blockfs/fs/fat"
	"github.com/joshuapare/blockfs/fs/namespace"
	"github.com/joshuapare/blockfs/internal/format"
	"github.com/joshuapare/blockfs/pkg/types"
)

// classify wraps err from a lower layer in a *types.Error whose kind matches
// the cause. Errors that already are *types.Error pass through unchanged.
func classify(err error, op string, args ...any) error {
	if err == nil {
		return nil
	}
	var typed *types.Error
	if errors.As(err, &typed) {
		return err
	}

	msg := fmt.Sprintf(op, args...)
	switch {
	case errors.Is(err, alloc.ErrCorruptChain),
		errors.Is(err, alloc.ErrInconsistent),
		errors.Is(err, codec.ErrCorruptImage),
		errors.Is(err, format.ErrVersion),
		errors.Is(err, format.ErrEncoding),
		errors.Is(err, fat.ErrDuplicate),
		errors.Is(err, fat.ErrBadRecord),
		errors.Is(err, blocks.ErrBadIndex),
		errors.Is(err, blocks.ErrOverflow):
		return types.Errorf(types.ErrKindCorrupt, err, "%s", msg)
	case errors.Is(err, namespace.ErrNotFound),
		errors.Is(err, alloc.ErrNoChain),
		errors.Is(err, fat.ErrNoRecord):
		return types.Errorf(types.ErrKindNotFound, err, "%s", msg)
	case errors.Is(err, namespace.ErrExists):
		return types.Errorf(types.ErrKindAlreadyExists, err, "%s", msg)
	case errors.Is(err, namespace.ErrAtRoot):
		return types.Errorf(types.ErrKindInvalidNavigation, err, "%s", msg)
	case errors.Is(err, namespace.ErrBadName):
		return types.Errorf(types.ErrKindInvalidName, err, "%s", msg)
	default:
		// Lock contention, I/O failures and canceled contexts.
		return types.Errorf(types.ErrKindPersistenceUnavailable, err, "%s", msg)
	}
}
