package main

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"
)

type excludeMode int

const (
	// matchPath excludes paths matched by the pattern itself.
	matchPath excludeMode = iota
	// matchTree excludes a directory and everything beneath it ("dir/**", "dir/").
	matchTree
	// matchChildren excludes only the direct file children of a directory ("dir/*").
	matchChildren
)

// ExcludeRule is a compiled exclusion pattern.
type ExcludeRule struct {
	Raw      string
	segments []string
	mode     excludeMode
}

// ParseExcludeRule compiles an exclusion pattern. Patterns without a slash
// match base names at any depth, others are relative to the walk root.
func ParseExcludeRule(raw string) (ExcludeRule, error) {
	p := filepath.ToSlash(strings.TrimSpace(raw))
	if p == "" {
		return ExcludeRule{}, fmt.Errorf("empty exclude pattern")
	}
	anchored := strings.HasPrefix(p, "/")
	p = strings.TrimLeft(p, "/")

	mode := matchPath
	switch {
	case strings.HasSuffix(p, "/**"):
		mode, p = matchTree, strings.TrimSuffix(p, "/**")
	case strings.HasSuffix(p, "/*"):
		mode, p = matchChildren, strings.TrimSuffix(p, "/*")
	case strings.HasSuffix(p, "/"):
		mode, p = matchTree, strings.TrimRight(p, "/")
	}

	var segments []string
	if p != "" {
		segments = strings.Split(p, "/")
	}
	if !anchored && !strings.Contains(p, "/") && mode == matchPath {
		segments = append([]string{"**"}, segments...)
	}
	for _, seg := range segments {
		if _, err := path.Match(seg, ""); err != nil {
			return ExcludeRule{}, fmt.Errorf("invalid exclude pattern %q: %w", raw, err)
		}
	}
	return ExcludeRule{Raw: raw, segments: segments, mode: mode}, nil
}

// Match reports whether the slash-separated relative path is excluded.
func (r ExcludeRule) Match(rel string, isDir bool) bool {
	parts := strings.Split(rel, "/")
	switch r.mode {
	case matchTree:
		if len(r.segments) == 0 {
			return true
		}
		for i := 1; i <= len(parts); i++ {
			if globSegments(r.segments, parts[:i]) {
				return true
			}
		}
		return false
	case matchChildren:
		return !isDir && globSegments(r.segments, parts[:len(parts)-1])
	default:
		return globSegments(r.segments, parts)
	}
}

// globSegments matches path segments against pattern segments, where a "**"
// segment matches zero or more path segments.
func globSegments(pattern, parts []string) bool {
	for len(pattern) > 0 {
		if pattern[0] == "**" {
			rest := pattern[1:]
			for i := 0; i <= len(parts); i++ {
				if globSegments(rest, parts[i:]) {
					return true
				}
			}
			return false
		}
		if len(parts) == 0 {
			return false
		}
		if ok, _ := path.Match(pattern[0], parts[0]); !ok {
			return false
		}
		pattern, parts = pattern[1:], parts[1:]
	}
	return len(parts) == 0
}

// matchesAnyRule checks if the relative path matches any exclusion rule.
func matchesAnyRule(rel string, isDir bool, rules []ExcludeRule) (ExcludeRule, bool) {
	for _, rule := range rules {
		if rule.Match(rel, isDir) {
			return rule, true
		}
	}
	return ExcludeRule{}, false
}
