package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/blockfs/fs/printer"
	"github.com/joshuapare/blockfs/internal/format"
	"github.com/joshuapare/blockfs/internal/logger"
	"github.com/joshuapare/blockfs/pkg/blockfs"
	"github.com/joshuapare/blockfs/pkg/types"
)

var (
	// Global flags
	verbose    bool
	quiet      bool
	jsonOut    bool
	noColor    bool
	imagePath  string
	blockSize  int
	copyPolicy string
	logEnabled bool
	logDir     string
)

var rootCmd = &cobra.Command{
	Use:   "blockfsctl",
	Short: "Work with blockfs block-storage images",
	Long: `blockfsctl opens a blockfs image (a JSON file holding a directory tree,
fixed-size data blocks and their allocation table) and lets you create,
write, copy and delete files in it. Without a subcommand it starts the
interactive shell.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShell(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().
		StringVar(&imagePath, "image", format.DefaultImageName, "Path of the image file")
	rootCmd.PersistentFlags().
		IntVar(&blockSize, "block-size", format.DefaultBlockSize, "Block size in bytes for new images")
	rootCmd.PersistentFlags().
		StringVar(&copyPolicy, "copy-policy", types.CopyDeep.String(), "How cp duplicates content (deep|shared)")
	rootCmd.PersistentFlags().BoolVar(&logEnabled, "log", false, "Write a JSON session log")
	rootCmd.PersistentFlags().
		StringVar(&logDir, "log-dir", "", "Directory for session logs (default ~/.blockfs/logs)")
}

func execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openEngine opens the image named by --image with the global flags applied.
// The returned closer releases the session log.
func openEngine(ctx context.Context) (*blockfs.Engine, io.Closer, error) {
	policy, err := types.ParseCopyPolicy(copyPolicy)
	if err != nil {
		return nil, nil, err
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log, logCloser, err := logger.New(logger.Options{Enabled: logEnabled, LogDir: logDir, Level: level})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log: %w", err)
	}

	opts := blockfs.DefaultOptions()
	opts.BlockSize = blockSize
	opts.CopyPolicy = policy
	opts.Logger = log

	printVerbose("Opening image: %s\n", imagePath)
	fs, err := blockfs.Open(ctx, imagePath, opts)
	if err != nil {
		logCloser.Close()
		return nil, nil, fmt.Errorf("failed to open image: %w", err)
	}
	return fs, logCloser, nil
}

// requireImage fails when the image does not exist, for commands that only
// inspect it.
func requireImage() error {
	if _, err := os.Stat(imagePath); err != nil {
		return fmt.Errorf("image not found: %w", err)
	}
	return nil
}

// printerOptions maps the global flags onto printer options.
func printerOptions() printer.Options {
	opts := printer.DefaultOptions()
	opts.NoColor = noColor
	if jsonOut {
		opts.Format = printer.FormatJSON
	}
	return opts
}

// Helper functions for output

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...any) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...any) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
