package blockfs

import (
	"log/slog"
	"time"

	"github.com/joshuapare/blockfs/internal/format"
	"github.com/joshuapare/blockfs/internal/logger"
	"github.com/joshuapare/blockfs/pkg/types"
)

// Options controls engine construction.
type Options struct {
	// BlockSize is the capacity of every block in bytes. Images carry their
	// own block size, which wins over this value on Open.
	// Default: 32
	BlockSize int

	// CopyPolicy selects how Copy duplicates content.
	// Default: types.CopyDeep
	CopyPolicy types.CopyPolicy

	// Logger receives engine events. Open, save and close are logged at
	// Info, allocation details at Debug and recovered inconsistencies at Warn.
	// Default: a logger that discards everything
	Logger *slog.Logger

	// Clock supplies creation times for allocation records.
	// Default: time.Now
	Clock func() time.Time
}

// DefaultOptions returns the options used when a field is left zero.
func DefaultOptions() Options {
	return Options{
		BlockSize:  format.DefaultBlockSize,
		CopyPolicy: types.CopyDeep,
		Logger:     logger.Discard(),
		Clock:      time.Now,
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.BlockSize <= 0 {
		o.BlockSize = def.BlockSize
	}
	if o.Logger == nil {
		o.Logger = def.Logger
	}
	if o.Clock == nil {
		o.Clock = def.Clock
	}
	return o
}
