// Package shell implements the line-oriented command interface of blockfs.
//
// Each input line is split into a command word, a first argument and the
// rest of the line; the rest keeps its inner and trailing spaces, so
// "write notes hello  world" appends "hello  world". Errors are printed and
// never end the session. "exit" (or end of input) closes the engine, which
// persists the image.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/joshuapare/blockfs/fs/printer"
	"github.com/joshuapare/blockfs/pkg/blockfs"
)

// DefaultMaxLineSize is the longest input line Run accepts by default.
const DefaultMaxLineSize = 1 << 20

var (
	// ErrShutdown indicates that the image could not be saved when the
	// session ended.
	ErrShutdown = errors.New("shell: shutdown save failed")

	// ErrLineTooLong is reported for an input line over the size limit. The
	// line is skipped and the session goes on.
	ErrLineTooLong = errors.New("shell: input line too long")
)

// Options configures a shell.
type Options struct {
	// Out receives command output and prompts.
	Out io.Writer

	// Err receives error messages. Default: Out
	Err io.Writer

	// Prompt prints "<directory>> " before each line.
	Prompt bool

	// MaxLineSize limits the length of one input line in bytes.
	// Default: DefaultMaxLineSize
	MaxLineSize int

	// Printer controls how listings, trees and the FAT are rendered.
	Printer printer.Options
}

// Shell executes commands against one engine.
type Shell struct {
	fs      *blockfs.Engine
	out     io.Writer
	errOut  io.Writer
	prompt  bool
	maxLine int
	printer *printer.Printer

	promptStyle lipgloss.Style
	errorStyle  lipgloss.Style

	failures int
}

// New creates a shell over fs.
func New(fs *blockfs.Engine, opts Options) *Shell {
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	if opts.Err == nil {
		opts.Err = opts.Out
	}
	if opts.MaxLineSize <= 0 {
		opts.MaxLineSize = DefaultMaxLineSize
	}
	s := &Shell{
		fs:          fs,
		out:         opts.Out,
		errOut:      opts.Err,
		prompt:      opts.Prompt,
		maxLine:     opts.MaxLineSize,
		printer:     printer.New(opts.Out, opts.Printer),
		promptStyle: lipgloss.NewStyle(),
		errorStyle:  lipgloss.NewStyle(),
	}
	if !opts.Printer.NoColor {
		s.promptStyle = s.promptStyle.Foreground(lipgloss.Color("#7D56F4")).Bold(true)
		s.errorStyle = s.errorStyle.Foreground(lipgloss.Color("#FF4B4B"))
	}
	return s
}

// Failures returns how many commands failed so far.
func (s *Shell) Failures() int { return s.failures }

// Run reads commands from in until "exit" or end of input, then closes the
// engine. A failed save on close is reported and returned as ErrShutdown.
func (s *Shell) Run(ctx context.Context, in io.Reader) error {
	r := bufio.NewReader(in)
	for ctx.Err() == nil {
		if s.prompt {
			fmt.Fprint(s.out, s.promptStyle.Render(s.fs.Cwd()+">")+" ")
		}
		line, err := readLine(r, s.maxLine)
		if errors.Is(err, ErrLineTooLong) {
			s.printError(err)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			s.printError(fmt.Errorf("read input: %w", err))
			break
		}
		if !s.Exec(line) {
			break
		}
	}
	return s.shutdown(ctx)
}

// readLine returns the next line of r without its newline. A final line
// without newline is returned as is; io.EOF means nothing was left. A line
// over limit bytes is consumed whole and reported as ErrLineTooLong.
func readLine(r *bufio.Reader, limit int) (string, error) {
	var line []byte
	n := 0
	for {
		chunk, err := r.ReadSlice('\n')
		n += len(chunk)
		if n <= limit+1 {
			line = append(line, chunk...)
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil && (n == 0 || !errors.Is(err, io.EOF)) {
			return "", err
		}
		if len(chunk) > 0 && chunk[len(chunk)-1] == '\n' {
			n--
		}
		if n > limit {
			return "", fmt.Errorf("%w: %d bytes, limit %d", ErrLineTooLong, n, limit)
		}
		return strings.TrimSuffix(string(line), "\n"), nil
	}
}

// RunLines executes lines in order, stopping early at "exit", then closes
// the engine like Run.
func (s *Shell) RunLines(ctx context.Context, lines []string) error {
	for _, line := range lines {
		if ctx.Err() != nil || !s.Exec(line) {
			break
		}
	}
	return s.shutdown(ctx)
}

// Exec runs one command line. It returns false when the session should end.
func (s *Shell) Exec(line string) bool {
	name, arg, rest := parseLine(line)
	if name == "" {
		return true
	}
	if name == "exit" || name == "quit" {
		return false
	}

	cmd, ok := lookup(name)
	if !ok {
		s.failures++
		fmt.Fprintln(s.errOut, s.errorStyle.Render("unrecognized command: "+name))
		return true
	}
	if err := cmd.check(arg, rest); err != nil {
		s.printError(err)
		return true
	}
	if err := cmd.run(s, arg, rest); err != nil {
		s.printError(err)
	}
	return true
}

// shutdown closes the engine even when ctx is done, so an interrupted
// session still saves.
func (s *Shell) shutdown(ctx context.Context) error {
	if err := s.fs.Close(context.WithoutCancel(ctx)); err != nil {
		err = fmt.Errorf("%w: %w", ErrShutdown, err)
		s.printError(err)
		return err
	}
	return nil
}

func (s *Shell) printError(err error) {
	s.failures++
	fmt.Fprintln(s.errOut, s.errorStyle.Render("Error: "+err.Error()))
}

// parseLine splits line into a command word, its first argument and the
// remainder with leading spaces removed.
func parseLine(line string) (cmd, arg, rest string) {
	line = strings.TrimRight(line, "\r\n")
	cmd, line = nextWord(line)
	arg, line = nextWord(line)
	rest = strings.TrimLeft(line, " ")
	return cmd, arg, rest
}

func nextWord(s string) (word, rest string) {
	s = strings.TrimLeft(s, " \t")
	if i := strings.IndexAny(s, " \t"); i >= 0 {
		return s[:i], s[i:]
	}
	return s, ""
}
