package main

import (
	"context"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/joshuapare/blockfs/internal/shell"
)

var shellPrompt bool

func init() {
	cmd := newShellCmd()
	cmd.Flags().BoolVar(&shellPrompt, "prompt", false, "Print prompts even when input is not a terminal")
	rootCmd.AddCommand(cmd)
}

func newShellCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive shell",
		Long: `The shell command reads commands line by line until exit or end of
input, then saves the image. Type help for the command list.

Example:
  blockfsctl shell --image fs.json
  printf 'touch a\nwrite a hello\nread a\n' | blockfsctl shell`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(cmd.Context())
		},
	}
	return cmd
}

func runShell(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	fs, logCloser, err := openEngine(ctx)
	if err != nil {
		return err
	}
	defer logCloser.Close()

	prompt := shellPrompt || (!quiet && isatty.IsTerminal(os.Stdin.Fd()))
	sh := shell.New(fs, shell.Options{
		Out:     os.Stdout,
		Err:     os.Stderr,
		Prompt:  prompt,
		Printer: printerOptions(),
	})
	return sh.Run(ctx, os.Stdin)
}
