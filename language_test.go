package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLanguageTableTagFor(t *testing.T) {
	table := DefaultLanguageTable()
	tests := map[string]string{
		"main.go":            "go",
		"lib.rs":             "rust",
		"script.sh":          "bash",
		"App.JS":             "javascript",
		"docs/README.md":     "markdown",
		"build/Makefile":     "makefile",
		"CMakeLists.txt":     "cmake",
		"notes.txt":          "",
		"LICENSE":            "",
		"archive.tar.gz":     "",
		"deploy/config.yaml": "yaml",
	}
	for path, want := range tests {
		assert.Equal(t, want, table.TagFor(path), path)
	}
}

func TestLoadLanguageTable(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "languages.yml", `
Zig:
  extensions: [".zig", "zon"]
Shell:
  tag: sh
  extensions: [".sh"]
Just:
  tag: just
  filenames: ["justfile"]
`)

	table, err := LoadLanguageTable(path)
	require.NoError(t, err)
	assert.Equal(t, "zig", table.TagFor("build.zig"))
	assert.Equal(t, "zig", table.TagFor("build.ZON"))
	assert.Equal(t, "sh", table.TagFor("run.sh"))
	assert.Equal(t, "just", table.TagFor("justfile"))
	assert.Equal(t, "go", table.TagFor("main.go"))

	// Overrides never leak into the built-in table.
	assert.Equal(t, "bash", DefaultLanguageTable().TagFor("run.sh"))

	table, err = LoadLanguageTable("")
	require.NoError(t, err)
	assert.Equal(t, "bash", table.TagFor("run.sh"))
}

func TestLoadLanguageTableSharedExtension(t *testing.T) {
	path := writeFile(t, t.TempDir(), "languages.yml", `
Delta: {extensions: [".foo"]}
Alpha: {extensions: [".foo"]}
Charlie: {extensions: [".foo"]}
Bravo: {extensions: [".foo"]}
`)
	for i := 0; i < 20; i++ {
		table, err := LoadLanguageTable(path)
		require.NoError(t, err)
		assert.Equal(t, "delta", table.TagFor("x.foo"))
	}
}

func TestLoadLanguageTableErrors(t *testing.T) {
	dir := t.TempDir()
	var cfgErr *ConfigError

	_, err := LoadLanguageTable(filepath.Join(dir, "missing.yml"))
	assert.ErrorAs(t, err, &cfgErr)

	bad := writeFile(t, dir, "bad.yml", "Go: [this is: not a mapping")
	_, err = LoadLanguageTable(bad)
	assert.ErrorAs(t, err, &cfgErr)
}
