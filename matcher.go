package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Matcher decides whether a file belongs in the output. Metadata checks run
// during the walk; the content check runs only for files that passed them.
type Matcher struct {
	spec   *FilterSpec
	logger *zap.Logger
}

// NewMatcher creates a Matcher for spec.
func NewMatcher(spec *FilterSpec, logger *zap.Logger) *Matcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Matcher{spec: spec, logger: logger}
}

// AcceptDir reports whether the walker may descend into a directory.
func (m *Matcher) AcceptDir(rel, abs string, hidden bool, rules ignoreRules) bool {
	if hidden && !m.spec.IncludeHidden {
		return false
	}
	if rule, excluded := matchesAnyRule(rel, true, m.spec.Excludes); excluded {
		m.logger.Debug("excluded directory", zap.String("path", rel), zap.String("pattern", rule.Raw))
		return false
	}
	if m.spec.UseGitignore && rules.Match(abs, true) {
		m.logger.Debug("gitignored directory", zap.String("path", rel))
		return false
	}
	return true
}

// Accept applies every metadata filter to a file: hidden policy, extension
// allow-list, exclusion patterns, .gitignore rules, size and modification time.
func (m *Matcher) Accept(e FileEntry, rules ignoreRules) bool {
	if e.Hidden && !m.spec.IncludeHidden {
		return false
	}
	if !m.allowedExtension(e.RelPath) {
		return false
	}
	if rule, excluded := matchesAnyRule(e.RelPath, false, m.spec.Excludes); excluded {
		m.logger.Debug("excluded file", zap.String("path", e.RelPath), zap.String("pattern", rule.Raw))
		return false
	}
	if m.spec.UseGitignore && rules.Match(e.Path, false) {
		m.logger.Debug("gitignored file", zap.String("path", e.RelPath))
		return false
	}
	if m.spec.Size != nil && !m.spec.Size.Match(e.Size) {
		return false
	}
	if m.spec.ModTime != nil && !m.spec.ModTime.Match(e.ModTime) {
		return false
	}
	return true
}

func (m *Matcher) allowedExtension(rel string) bool {
	if len(m.spec.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(rel), "."))
	if ext == "" {
		return false
	}
	_, ok := m.spec.Extensions[ext]
	return ok
}

// NeedsContent reports whether file content must be read before a file can
// be accepted.
func (m *Matcher) NeedsContent() bool {
	return m.spec.Content != nil
}

// MatchContent reports whether any line of text matches the content pattern.
func (m *Matcher) MatchContent(text string) (bool, error) {
	if m.spec.Content == nil {
		return true, nil
	}
	for _, line := range strings.Split(text, "\n") {
		ok, err := m.spec.Content.MatchString(strings.TrimSuffix(line, "\r"))
		if err != nil {
			return false, fmt.Errorf("content pattern %q: %w", m.spec.Content.String(), err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}
