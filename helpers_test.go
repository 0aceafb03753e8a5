package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// writeFile creates root/rel with content, making parent directories.
func writeFile(t *testing.T, root, rel, content string) string {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

// walkRel returns the relative paths yielded by a full walk of root.
func walkRel(t *testing.T, spec *FilterSpec, root string, logger *zap.Logger, skip ...string) []string {
	t.Helper()
	w, err := NewWalker(context.Background(), root, NewMatcher(spec, logger), logger, skip...)
	require.NoError(t, err)
	var rels []string
	for e, ok := w.Next(); ok; e, ok = w.Next() {
		rels = append(rels, e.RelPath)
	}
	require.NoError(t, w.Err())
	return rels
}

// recursiveSpec returns a spec that walks every visible file.
func recursiveSpec() *FilterSpec {
	return &FilterSpec{Extensions: map[string]struct{}{}, Recursive: true, MaxDepth: -1}
}
