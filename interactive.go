package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	fuzzyfinder "github.com/ktr0731/go-fuzzyfinder"
	"golang.org/x/term"
)

// Prompter asks whether a matched file should be included.
type Prompter interface {
	Confirm(rel string) (bool, error)
}

// linePrompter asks "[Y/n]" questions on out and reads answers from in.
type linePrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newLinePrompter(in io.Reader, out io.Writer) *linePrompter {
	return &linePrompter{in: bufio.NewReader(in), out: out}
}

// Confirm re-prompts until it reads an empty answer, y/yes or n/no.
// io.EOF is returned once input is exhausted.
func (p *linePrompter) Confirm(rel string) (bool, error) {
	for {
		fmt.Fprintf(p.out, "Process file %s? [Y/n] ", rel)
		line, err := p.in.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(p.out)
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "", "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
	}
}

// stdinIsTerminal reports whether in is an interactive terminal.
func stdinIsTerminal(in io.Reader) bool {
	f, ok := in.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// pickEntries opens a fuzzy finder over the matched files and returns the
// selected ones in their original order. A nil slice means the user aborted.
func pickEntries(entries []FileEntry) ([]FileEntry, error) {
	if len(entries) == 0 {
		return entries, nil
	}
	idx, err := fuzzyfinder.FindMulti(
		entries,
		func(i int) string {
			return entries[i].RelPath
		},
		fuzzyfinder.WithPreviewWindow(func(i, w, h int) string {
			if i == -1 {
				return "Tab selects files, Enter confirms."
			}
			e := entries[i]
			return fmt.Sprintf("Path: %s\nSize: %d bytes\nModified: %s", e.RelPath, e.Size, e.ModTime.Format("2006-01-02 15:04"))
		}),
	)
	if err != nil {
		if errors.Is(err, fuzzyfinder.ErrAbort) {
			return nil, nil
		}
		return nil, fmt.Errorf("fuzzy finder error: %w", err)
	}

	selected := make(map[int]bool, len(idx))
	for _, i := range idx {
		selected[i] = true
	}
	picked := make([]FileEntry, 0, len(idx))
	for i, e := range entries {
		if selected[i] {
			picked = append(picked, e)
		}
	}
	return picked, nil
}
