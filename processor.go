package main

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"
)

// Pipeline runs the matched files of a walk through the prompt, the Reader
// and the Formatter and hands the results to the Reporter.
type Pipeline struct {
	Matcher   *Matcher
	Reader    *Reader
	Formatter *Formatter
	Reporter  *Reporter
	Prompter  Prompter  // nil disables the per-file question
	Tokenizer Tokenizer // nil disables token counting
	Pick      func([]FileEntry) ([]FileEntry, error)
	DryRun    bool
	Logger    *zap.Logger
}

// Run walks root and processes every accepted file in traversal order.
// Per-file failures are logged and counted; only a bad root, a failed
// picker or cancellation stop the run.
func (p *Pipeline) Run(ctx context.Context, root string, skip ...string) error {
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	w, err := NewWalker(ctx, root, p.Matcher, p.Logger, skip...)
	if err != nil {
		return err
	}

	next := w.Next
	if p.Pick != nil {
		var entries []FileEntry
		for e, ok := w.Next(); ok; e, ok = w.Next() {
			entries = append(entries, e)
		}
		if err := w.Err(); err != nil {
			return err
		}
		picked, err := p.Pick(entries)
		if err != nil {
			return err
		}
		next = entryIterator(picked)
	}

	for e, ok := next(); ok; e, ok = next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !p.process(e) {
			p.Logger.Debug("input closed, skipping remaining files")
			break
		}
	}
	return w.Err()
}

// process handles one file. It returns false when no further files should
// be processed.
func (p *Pipeline) process(e FileEntry) bool {
	var doc *Document
	if p.Matcher.NeedsContent() {
		d, err := p.Reader.Read(e.Path)
		if err != nil {
			p.skip(e, err)
			return true
		}
		matched, err := p.Matcher.MatchContent(d.Content)
		if err != nil {
			p.skip(e, err)
			return true
		}
		if !matched {
			p.Logger.Debug("content pattern did not match", zap.String("path", e.RelPath))
			return true
		}
		doc = &d
	}

	if p.DryRun {
		p.Reporter.AddPath(e)
		return true
	}

	if p.Prompter != nil {
		ok, err := p.Prompter.Confirm(e.RelPath)
		if err != nil {
			p.Reporter.Skip()
			if !errors.Is(err, io.EOF) {
				p.Logger.Warn("prompt failed", zap.Error(err))
			}
			return false
		}
		if !ok {
			p.Reporter.Skip()
			return true
		}
	}

	if doc == nil {
		d, err := p.Reader.Read(e.Path)
		if err != nil {
			p.skip(e, err)
			return true
		}
		doc = &d
	}

	if p.Tokenizer != nil {
		p.Reporter.AddTokens(p.Tokenizer.CountTokens(doc.Content))
	}
	p.Reporter.AddBlock(e, p.Formatter.Block(e, *doc))
	return true
}

func (p *Pipeline) skip(e FileEntry, err error) {
	p.Logger.Warn("skipping file", zap.String("path", e.RelPath), zap.Error(err))
	p.Reporter.Skip()
}

// entryIterator yields entries in order.
func entryIterator(entries []FileEntry) func() (FileEntry, bool) {
	i := 0
	return func() (FileEntry, bool) {
		if i >= len(entries) {
			return FileEntry{}, false
		}
		i++
		return entries[i-1], true
	}
}
