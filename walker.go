package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"

	"go.uber.org/zap"
)

// dirFrame is a directory waiting to be listed.
type dirFrame struct {
	abs   string
	rel   string // "" for the root
	depth int
	rules ignoreRules
}

// Walker lazily yields the files under a root that pass the Matcher's
// metadata filters.
//
// Order is depth-first: within a directory, files come first in byte-wise
// lexical order, followed by the subdirectories in the same order. A Walker
// is single use; walking again requires a new Walker.
type Walker struct {
	ctx     context.Context
	root    string
	spec    *FilterSpec
	matcher *Matcher
	logger  *zap.Logger

	skip    map[string]struct{}
	visited map[string]struct{}
	stack   []*dirFrame
	pending []FileEntry
	err     error
}

// NewWalker prepares a walk of root. Paths in skip are never yielded. A
// missing or non-directory root is a ConfigError.
func NewWalker(ctx context.Context, root string, matcher *Matcher, logger *zap.Logger, skip ...string) (*Walker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, &ConfigError{Op: "resolve directory", Err: err}
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, &ConfigError{Op: "open directory", Err: err}
	}
	if !info.IsDir() {
		return nil, &ConfigError{Op: "open directory", Err: fmt.Errorf("%s is not a directory", root)}
	}

	w := &Walker{
		ctx:     ctx,
		root:    abs,
		spec:    matcher.spec,
		matcher: matcher,
		logger:  logger,
		skip:    make(map[string]struct{}, len(skip)),
		visited: make(map[string]struct{}),
		stack:   []*dirFrame{{abs: abs}},
	}
	for _, p := range skip {
		if p == "" {
			continue
		}
		if a, err := filepath.Abs(p); err == nil {
			w.skip[a] = struct{}{}
		}
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		w.visited[real] = struct{}{}
	}
	return w, nil
}

// Root returns the absolute walk root.
func (w *Walker) Root() string { return w.root }

// Next returns the next accepted file. It returns false when the walk is
// finished or the context was cancelled; Err tells the two apart.
func (w *Walker) Next() (FileEntry, bool) {
	for {
		if err := w.ctx.Err(); err != nil {
			w.err = err
			return FileEntry{}, false
		}
		if len(w.pending) > 0 {
			e := w.pending[0]
			w.pending = w.pending[1:]
			return e, true
		}
		if len(w.stack) == 0 {
			return FileEntry{}, false
		}
		frame := w.stack[len(w.stack)-1]
		w.stack = w.stack[:len(w.stack)-1]
		w.expand(frame)
	}
}

// Err returns the error that stopped the walk early, if any.
func (w *Walker) Err() error { return w.err }

// expand lists one directory, queueing accepted files and pushing the
// subdirectories that may be entered.
func (w *Walker) expand(frame *dirFrame) {
	entries, err := os.ReadDir(frame.abs)
	if err != nil {
		w.logger.Warn("skipping directory", zap.Error(&FileAccessError{Path: frame.abs, Err: err}))
		if len(entries) == 0 {
			return
		}
	}

	rules := frame.rules
	if w.spec.UseGitignore {
		rules = rules.withDir(frame.abs, w.logger)
	}
	limit := w.spec.DepthLimit()

	var subdirs []*dirFrame
	for _, entry := range entries {
		name := entry.Name()
		abs := filepath.Join(frame.abs, name)
		rel := path.Join(frame.rel, name)
		if _, ok := w.skip[abs]; ok {
			continue
		}

		info, ok := w.resolve(entry, abs)
		if !ok {
			continue
		}
		hidden := isHidden(name)

		if info.IsDir() {
			if limit >= 0 && frame.depth+1 > limit {
				continue
			}
			if !w.matcher.AcceptDir(rel, abs, hidden, rules) {
				continue
			}
			if !w.markVisited(abs) {
				continue
			}
			subdirs = append(subdirs, &dirFrame{abs: abs, rel: rel, depth: frame.depth + 1, rules: rules})
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		e := FileEntry{
			Path:    abs,
			RelPath: rel,
			Size:    info.Size(),
			ModTime: info.ModTime(),
			Hidden:  hidden,
			Depth:   frame.depth,
		}
		if w.matcher.Accept(e, rules) {
			w.pending = append(w.pending, e)
		}
	}

	slices.Reverse(subdirs)
	w.stack = append(w.stack, subdirs...)
}

// resolve returns file info for an entry, following symlinks when enabled.
func (w *Walker) resolve(entry fs.DirEntry, abs string) (fs.FileInfo, bool) {
	if entry.Type()&fs.ModeSymlink != 0 {
		if !w.spec.FollowSymlinks {
			w.logger.Debug("skipping symlink", zap.String("path", abs))
			return nil, false
		}
		info, err := os.Stat(abs)
		if err != nil {
			w.logger.Warn("skipping symlink", zap.Error(&FileAccessError{Path: abs, Err: err}))
			return nil, false
		}
		return info, true
	}
	info, err := entry.Info()
	if err != nil {
		w.logger.Warn("skipping entry", zap.Error(&FileAccessError{Path: abs, Err: err}))
		return nil, false
	}
	return info, true
}

// markVisited records the real path of a directory and reports whether it
// was new. Only symlinks can lead back to a visited directory, so the check
// is skipped when they are not followed.
func (w *Walker) markVisited(abs string) bool {
	if !w.spec.FollowSymlinks {
		return true
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		w.logger.Warn("skipping directory", zap.Error(&FileAccessError{Path: abs, Err: err}))
		return false
	}
	if _, seen := w.visited[real]; seen {
		w.logger.Warn("skipping already visited directory", zap.String("path", abs), zap.String("target", real))
		return false
	}
	w.visited[real] = struct{}{}
	return true
}

// isHidden checks if a base name is hidden (starts with '.').
func isHidden(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return len(name) > 0 && name[0] == '.'
}
