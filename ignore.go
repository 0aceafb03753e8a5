package main

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	gitignore "github.com/monochromegane/go-gitignore"
	"go.uber.org/zap"
)

const gitignoreFile = ".gitignore"

// ignoreRules is the set of .gitignore matchers that apply to one directory:
// those of the directory itself and of every ancestor up to the walk root.
type ignoreRules []gitignore.IgnoreMatcher

// withDir returns the rules extended by dir/.gitignore, if it exists. The
// receiver is never modified so sibling directories do not share rules.
func (r ignoreRules) withDir(dir string, logger *zap.Logger) ignoreRules {
	path := filepath.Join(dir, gitignoreFile)
	if _, err := os.Stat(path); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("could not stat .gitignore", zap.String("path", path), zap.Error(err))
		}
		return r
	}
	matcher, err := gitignore.NewGitIgnore(path, dir)
	if err != nil {
		logger.Warn("could not parse .gitignore", zap.String("path", path), zap.Error(err))
		return r
	}
	logger.Debug("loaded .gitignore", zap.String("path", path))

	extended := make(ignoreRules, len(r), len(r)+1)
	copy(extended, r)
	return append(extended, matcher)
}

// Match reports whether any applicable .gitignore ignores the absolute path.
func (r ignoreRules) Match(path string, isDir bool) bool {
	for _, m := range r {
		if m.Match(path, isDir) {
			return true
		}
	}
	return false
}
