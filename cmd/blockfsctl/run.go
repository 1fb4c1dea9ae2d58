package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/blockfs/internal/shell"
)

func init() {
	rootCmd.AddCommand(newRunCmd())
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <command>...",
		Short: "Run shell commands and save the image",
		Long: `The run command executes each argument as one shell line, in order,
then saves the image. It fails when any line failed.

Example:
  blockfsctl run "mkdir docs" "cd docs" "touch a" "write a hello"
  blockfsctl run "fat" --json`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLines(cmd.Context(), args)
		},
	}
	return cmd
}

func runLines(ctx context.Context, lines []string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fs, logCloser, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	sh := shell.New(fs, shell.Options{Out: os.Stdout, Err: os.Stderr, Printer: printerOptions()})
	if err := sh.RunLines(ctx, lines); err != nil {
		return err
	}
	if n := sh.Failures(); n > 0 {
		return fmt.Errorf("%d of %d command(s) failed", n, len(lines))
	}
	printVerbose("Saved %s\n", imagePath)
	return nil
}
