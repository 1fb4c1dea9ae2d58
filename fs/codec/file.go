package codec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joshuapare/blockfs/internal/format"
)

// SaveFile writes img to path. The image is written to a temporary file in
// the same directory, synced and renamed over path, so a failed save leaves
// the previous image in place.
func SaveFile(ctx context.Context, path string, img *format.Image) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Marshal(img)
	if err != nil {
		return fmt.Errorf("encode image: %w", err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp image: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write image: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close image: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace image: %w", err)
	}
	return nil
}

// LoadFile reads the image at path. A missing file yields an error matching
// os.ErrNotExist.
func LoadFile(ctx context.Context, path string) (*format.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
