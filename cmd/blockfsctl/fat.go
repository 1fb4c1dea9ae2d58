package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/blockfs/fs/printer"
)

func init() {
	rootCmd.AddCommand(newFATCmd())
}

func newFATCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fat",
		Short: "Display the allocation table",
		Long: `The fat command lists every live allocation record of an image: the
block, its owning file, the bytes used, the file size after that block,
the creation time and the next block of the chain.

Example:
  blockfsctl fat --image fs.json
  blockfsctl fat --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFAT(cmd.Context())
		},
	}
	return cmd
}

func runFAT(ctx context.Context) error {
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

	if err := printer.New(os.Stdout, printerOptions()).PrintFAT(fs.FAT()); err != nil {
		return fmt.Errorf("failed to display allocation table: %w", err)
	}
	return nil
}
