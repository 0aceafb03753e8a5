package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// isGitURL checks if the directory argument looks like a Git repository URL.
func isGitURL(input string) bool {
	if strings.HasPrefix(input, "git@") {
		return true
	}
	remote := strings.HasPrefix(input, "https://") || strings.HasPrefix(input, "http://") ||
		strings.HasPrefix(input, "ssh://") || strings.HasPrefix(input, "git://")
	return remote && strings.HasSuffix(input, ".git")
}

// cloneGitRepo shallow-clones url into a temporary directory. The returned
// cleanup function removes it.
func cloneGitRepo(ctx context.Context, url string, progress io.Writer) (string, func(), error) {
	tempDir, err := os.MkdirTemp("", "code2md-git-")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temporary directory: %w", err)
	}
	cleanup := func() { _ = os.RemoveAll(tempDir) }

	_, err = git.PlainCloneContext(ctx, tempDir, false, &git.CloneOptions{
		URL:           url,
		Progress:      progress,
		Depth:         1,
		ReferenceName: plumbing.HEAD,
		SingleBranch:  true,
	})
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("failed to clone repository '%s': %w", url, err)
	}
	return tempDir, cleanup, nil
}
