// Package printer renders engine views (listings, trees, the FAT dump and
// stats) as human-readable text or JSON.
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/joshuapare/blockfs/internal/format"
	"github.com/joshuapare/blockfs/pkg/types"
)

const (
	DefaultIndentSize = 2
	DefaultTimeLayout = time.DateTime
)

// Format specifies the output format for printing.
type Format string

const (
	// FormatText outputs human-readable text format.
	FormatText Format = "text"

	// FormatJSON outputs JSON format.
	FormatJSON Format = "json"
)

// Options controls printing behavior.
type Options struct {
	// Format specifies output format (text, json).
	// Default: FormatText
	Format Format

	// IndentSize is the number of spaces per tree level (text format only).
	// Default: 2
	IndentSize int

	// Long adds size and chain length to listing and tree entries.
	// Default: false
	Long bool

	// NoColor disables lipgloss styling.
	// Default: false
	NoColor bool

	// TimeLayout formats creation dates in the FAT dump (text format only).
	// Default: time.DateTime
	TimeLayout string
}

// DefaultOptions returns sensible defaults for printing.
func DefaultOptions() Options {
	return Options{
		Format:     FormatText,
		IndentSize: DefaultIndentSize,
		TimeLayout: DefaultTimeLayout,
	}
}

// Printer writes views to an output writer.
type Printer struct {
	writer io.Writer
	opts   Options
	styles styles
}

type styles struct {
	dir    lipgloss.Style
	header lipgloss.Style
	border lipgloss.Style
	muted  lipgloss.Style
}

// New creates a printer writing to w.
func New(w io.Writer, opts Options) *Printer {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if opts.IndentSize <= 0 {
		opts.IndentSize = DefaultIndentSize
	}
	if opts.TimeLayout == "" {
		opts.TimeLayout = DefaultTimeLayout
	}
	return &Printer{writer: w, opts: opts, styles: newStyles(opts.NoColor)}
}

func newStyles(noColor bool) styles {
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{dir: plain, header: plain, border: plain, muted: plain}
	}
	return styles{
		dir:    lipgloss.NewStyle().Foreground(lipgloss.Color("#00D7FF")).Bold(true),
		header: lipgloss.NewStyle().Foreground(lipgloss.Color("#7D56F4")).Bold(true),
		border: lipgloss.NewStyle().Foreground(lipgloss.Color("#383838")),
		muted:  lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

// PrintListing prints one directory: subdirectories first with a trailing
// slash, then files.
func (p *Printer) PrintListing(l types.Listing) error {
	if p.opts.Format == FormatJSON {
		return p.printJSON(l)
	}
	for _, name := range l.Dirs {
		if _, err := fmt.Fprintln(p.writer, p.styles.dir.Render(name+"/")); err != nil {
			return err
		}
	}
	for _, f := range l.Files {
		if _, err := fmt.Fprintln(p.writer, p.fileLine(f)); err != nil {
			return err
		}
	}
	return nil
}

// PrintTree prints a directory subtree.
func (p *Printer) PrintTree(t types.DirTree) error {
	if p.opts.Format == FormatJSON {
		return p.printJSON(t)
	}
	return p.printTreeText(t, 0)
}

// PrintFAT prints the live allocation records as a table.
func (p *Printer) PrintFAT(entries []types.FATEntry) error {
	if p.opts.Format == FormatJSON {
		if entries == nil {
			entries = []types.FATEntry{}
		}
		return p.printJSON(entries)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			strconv.Itoa(e.Block),
			e.File,
			strconv.Itoa(e.Used),
			strconv.FormatInt(e.Size, 10),
			e.CreatedAt.Local().Format(p.opts.TimeLayout),
			nextLabel(e.Next),
		})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(p.styles.border).
		Headers("BLOCK", "FILE", "USED", "SIZE", "CREATED", "NEXT").
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return p.styles.header.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})

	_, err := fmt.Fprintln(p.writer, t.String())
	return err
}

// PrintStats prints an engine summary.
func (p *Printer) PrintStats(s types.Stats) error {
	if p.opts.Format == FormatJSON {
		return p.printJSON(s)
	}
	lines := []struct {
		label string
		value string
	}{
		{"Block size", strconv.Itoa(s.BlockSize)},
		{"Blocks", strconv.Itoa(s.Blocks)},
		{"Free blocks", strconv.Itoa(s.FreeBlocks)},
		{"Used bytes", strconv.FormatInt(s.UsedBytes, 10)},
		{"Records", fmt.Sprintf("%d (%d live)", s.Records, s.LiveRecords)},
		{"Directories", strconv.Itoa(s.Directories)},
		{"Files", strconv.Itoa(s.Files)},
		{"Copy policy", s.CopyPolicy.String()},
		{"Unsaved changes", strconv.FormatBool(s.Dirty)},
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(p.writer, "%-16s %s\n", l.label+":", l.value); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printTreeText(t types.DirTree, depth int) error {
	indent := fmt.Sprintf("%*s", depth*p.opts.IndentSize, "")
	if _, err := fmt.Fprintf(p.writer, "%s%s\n", indent, p.styles.dir.Render(t.Name+"/")); err != nil {
		return err
	}
	child := fmt.Sprintf("%*s", (depth+1)*p.opts.IndentSize, "")
	for _, f := range t.Files {
		if _, err := fmt.Fprintf(p.writer, "%s%s\n", child, p.fileLine(f)); err != nil {
			return err
		}
	}
	for _, d := range t.Dirs {
		if err := p.printTreeText(d, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) fileLine(f types.FileInfo) string {
	if !p.opts.Long {
		return f.Name
	}
	return f.Name + p.styles.muted.Render(fmt.Sprintf("  %d bytes, %d blocks", f.Size, f.Blocks))
}

func (p *Printer) printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(p.writer, "%s\n", data)
	return err
}

func nextLabel(next int) string {
	if next == format.NoBlock {
		return "-"
	}
	return strconv.Itoa(next)
}
