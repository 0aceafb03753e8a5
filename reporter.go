package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/fatih/color"
)

// Report is everything a sink may need to write the result of a run.
type Report struct {
	Document string
	Blocks   []Block
	Paths    []string
	Tree     string
	Summary  Summary
}

// Sink is the destination of the finished report.
type Sink interface {
	Emit(r Report) error
	String() string
}

// writerSink writes the document to a stream, normally stdout.
type writerSink struct {
	w    io.Writer
	name string
}

func (s writerSink) Emit(r Report) error {
	_, err := io.WriteString(s.w, r.Document)
	return err
}

func (s writerSink) String() string { return s.name }

// fileSink saves the document to a file.
type fileSink struct {
	path string
}

func (s fileSink) Emit(r Report) error {
	return os.WriteFile(s.path, []byte(r.Document), 0644)
}

func (s fileSink) String() string { return s.path }

// clipboardSink copies the document to the system clipboard.
type clipboardSink struct{}

func (clipboardSink) Emit(r Report) error {
	return clipboard.WriteAll(r.Document)
}

func (clipboardSink) String() string { return "clipboard" }

// ReporterConfig controls how a Reporter assembles and announces output.
type ReporterConfig struct {
	Progress io.Writer // receives one line per processed file; nil disables
	Color    bool
	DryRun   bool
	Tree     bool
	RootName string
}

// Reporter accumulates blocks, or bare paths in dry-run mode, in the order
// they are added.
type Reporter struct {
	cfg     ReporterConfig
	label   *color.Color
	body    strings.Builder
	blocks  []Block
	paths   []string
	summary Summary
}

// NewReporter creates a Reporter.
func NewReporter(cfg ReporterConfig) *Reporter {
	label := color.New(color.FgGreen)
	if cfg.Color {
		label.EnableColor()
	} else {
		label.DisableColor()
	}
	return &Reporter{cfg: cfg, label: label}
}

// AddPath records a matched file in dry-run mode.
func (r *Reporter) AddPath(e FileEntry) {
	r.paths = append(r.paths, e.RelPath)
	r.body.WriteString(e.RelPath)
	r.body.WriteString("\n")
	r.summary.TotalFiles++
	r.summary.TotalSize += e.Size
}

// AddBlock appends a rendered file.
func (r *Reporter) AddBlock(e FileEntry, b Block) {
	r.paths = append(r.paths, e.RelPath)
	r.blocks = append(r.blocks, b)
	b.AppendTo(&r.body)
	r.summary.TotalFiles++
	r.summary.TotalSize += e.Size

	if r.cfg.Progress != nil {
		fmt.Fprintf(r.cfg.Progress, "%s %s\n", r.label.Sprint("Processed:"), e.RelPath)
	}
}

// AddTokens adds to the token total of the summary.
func (r *Reporter) AddTokens(n int) {
	r.summary.TotalTokens += n
}

// Skip counts a matched file that was left out because of an error or a
// user decision.
func (r *Reporter) Skip() {
	r.summary.Skipped++
}

// Summary returns the totals so far.
func (r *Reporter) Summary() Summary {
	return r.summary
}

// Report assembles the final document.
func (r *Reporter) Report() Report {
	rep := Report{
		Blocks:  r.blocks,
		Paths:   r.paths,
		Summary: r.summary,
	}
	if r.cfg.Tree && !r.cfg.DryRun && len(r.paths) > 0 {
		rep.Tree = printTree(buildTree(r.paths, r.cfg.RootName))
		rep.Document = treeSection(rep.Tree)
	}
	rep.Document += r.body.String()
	return rep
}

// Flush writes the report to sink. Failures are returned as OutputError.
func (r *Reporter) Flush(sink Sink) error {
	if err := sink.Emit(r.Report()); err != nil {
		return &OutputError{Sink: sink.String(), Err: err}
	}
	return nil
}

// writeSummary prints the run totals.
func writeSummary(w io.Writer, s Summary, withTokens bool) {
	fmt.Fprintln(w, "--- Summary ---")
	fmt.Fprintf(w, "Total files processed: %d\n", s.TotalFiles)
	fmt.Fprintf(w, "Total size: %d bytes\n", s.TotalSize)
	if withTokens {
		fmt.Fprintf(w, "Total tokens: %d\n", s.TotalTokens)
	}
	if s.Skipped > 0 {
		fmt.Fprintf(w, "Files skipped: %d\n", s.Skipped)
	}
}
