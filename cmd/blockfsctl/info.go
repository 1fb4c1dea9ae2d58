package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newInfoCmd())
}

func newInfoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info",
		Short: "Validate an image and report basic metadata",
		Long: `The info command loads an image, verifies its blocks and allocation
records, and displays block, record, directory and file counts.

Example:
  blockfsctl info --image fs.json
  blockfsctl info --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.Context())
		},
	}
	return cmd
}

func runInfo(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := requireImage(); err != nil {
		return err
	}
	fs, logCloser, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer logCloser.Close()
	defer fs.Close(ctx)

	if err := fs.Check(); err != nil {
		return fmt.Errorf("image is inconsistent: %w", err)
	}
	stats := fs.Stats()

	// Output as JSON if requested
	if jsonOut {
		return printJSON(stats)
	}

	printInfo("\nImage Information:\n")
	printInfo("  File: %s\n", imagePath)
	if stat, err := os.Stat(imagePath); err == nil {
		size := stat.Size()
		if size < 1024 {
			printInfo("  Size: %d bytes\n", size)
		} else if size < 1024*1024 {
			printInfo("  Size: %.1f KB\n", float64(size)/1024)
		} else {
			printInfo("  Size: %.1f MB\n", float64(size)/(1024*1024))
		}
	}
	printInfo("  Block size: %d\n", stats.BlockSize)
	printInfo("  Blocks: %d (%d free)\n", stats.Blocks, stats.FreeBlocks)
	printInfo("  Used bytes: %d\n", stats.UsedBytes)
	printInfo("  Records: %d (%d live)\n", stats.Records, stats.LiveRecords)
	printInfo("  Directories: %d\n", stats.Directories)
	printInfo("  Files: %d\n", stats.Files)

	printInfo("\nValidation:\n")
	printInfo("  ✓ Every block owned or free\n")
	printInfo("  ✓ Chains acyclic\n")

	return nil
}
