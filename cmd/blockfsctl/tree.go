package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/blockfs/fs/printer"
)

var treeLong bool

func init() {
	cmd := newTreeCmd()
	cmd.Flags().BoolVarP(&treeLong, "long", "l", false, "Show sizes and block counts")
	rootCmd.AddCommand(cmd)
}

func newTreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tree [dir]...",
		Short: "Display the directory tree",
		Long: `The tree command displays the directories and files of an image,
starting at the root or at the directory reached by following [dir]...

Example:
  blockfsctl tree --image fs.json
  blockfsctl tree docs drafts --long`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(cmd.Context(), args)
		},
	}
	return cmd
}

func runTree(ctx context.Context, args []string) error {
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

	for _, dir := range args {
		if err := fs.ChangeDir(dir); err != nil {
			return fmt.Errorf("failed to open directory: %w", err)
		}
	}

	opts := printerOptions()
	opts.Long = treeLong
	if err := printer.New(os.Stdout, opts).PrintTree(fs.Tree()); err != nil {
		return fmt.Errorf("failed to display tree: %w", err)
	}
	return nil
}
