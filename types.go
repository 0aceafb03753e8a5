package main

import (
	"time"

	"github.com/dlclark/regexp2"
)

// FilterSpec is the filter configuration for one run. It is built once by
// NewFilterSpec and only read afterwards.
type FilterSpec struct {
	Extensions     map[string]struct{} // lowercase, without the leading dot; empty means any
	Recursive      bool
	MaxDepth       int // -1 for no limit
	IncludeHidden  bool
	Excludes       []ExcludeRule
	UseGitignore   bool
	Size           *SizeFilter
	ModTime        *TimeFilter
	Content        *regexp2.Regexp
	FollowSymlinks bool
}

// DepthLimit returns how many directory levels below the root may be
// entered, or -1 when there is no limit.
func (s *FilterSpec) DepthLimit() int {
	if !s.Recursive {
		return 0
	}
	return s.MaxDepth
}

// FileEntry is a file discovered by the Walker.
type FileEntry struct {
	Path    string // absolute path
	RelPath string // slash-separated path relative to the walk root
	Size    int64
	ModTime time.Time
	Hidden  bool
	Depth   int // directory levels below the root
}

// Document is the decoded content of a file.
type Document struct {
	Content  string
	Encoding string
	Checksum string // hex MD5 of the raw bytes, empty unless requested
	Size     int
}

// Block is one rendered file in the output document.
type Block struct {
	Language string
	RelPath  string
	Checksum string
	Content  string
}

// Summary holds aggregated information about the processed files.
type Summary struct {
	TotalFiles  int
	Skipped     int
	TotalSize   int64
	TotalTokens int
}
