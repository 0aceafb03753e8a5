package main

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// builtinTags maps lowercase extensions (without the dot) to fenced code
// block language tags.
var builtinTags = map[string]string{
	"py":    "python",
	"pyi":   "python",
	"js":    "javascript",
	"mjs":   "javascript",
	"cjs":   "javascript",
	"jsx":   "jsx",
	"ts":    "typescript",
	"tsx":   "tsx",
	"java":  "java",
	"kt":    "kotlin",
	"kts":   "kotlin",
	"scala": "scala",
	"c":     "c",
	"h":     "c",
	"cpp":   "cpp",
	"cc":    "cpp",
	"cxx":   "cpp",
	"hpp":   "cpp",
	"hh":    "cpp",
	"cs":    "csharp",
	"go":    "go",
	"rs":    "rust",
	"rb":    "ruby",
	"php":   "php",
	"swift": "swift",
	"lua":   "lua",
	"pl":    "perl",
	"r":     "r",
	"html":  "html",
	"htm":   "html",
	"css":   "css",
	"scss":  "scss",
	"less":  "less",
	"json":  "json",
	"xml":   "xml",
	"yaml":  "yaml",
	"yml":   "yaml",
	"toml":  "toml",
	"ini":   "ini",
	"sql":   "sql",
	"sh":    "bash",
	"bash":  "bash",
	"zsh":   "zsh",
	"ps1":   "powershell",
	"bat":   "batch",
	"md":    "markdown",
	"tex":   "latex",
	"proto": "protobuf",
	"vue":   "vue",
	"dart":  "dart",
	"ex":    "elixir",
	"exs":   "elixir",
	"erl":   "erlang",
	"hs":    "haskell",
	"ml":    "ocaml",
	"clj":   "clojure",
	"tf":    "hcl",
	"mk":    "makefile",
}

// builtinFilenames maps exact base names without a useful extension to tags.
var builtinFilenames = map[string]string{
	"Makefile":       "makefile",
	"GNUmakefile":    "makefile",
	"Dockerfile":     "dockerfile",
	"CMakeLists.txt": "cmake",
	"Gemfile":        "ruby",
	"Rakefile":       "ruby",
	"Jenkinsfile":    "groovy",
}

// LanguageInfo is one entry of a languages.yml file.
type LanguageInfo struct {
	Tag        string   `yaml:"tag"` // defaults to the lowercase language name
	Extensions []string `yaml:"extensions"`
	Filenames  []string `yaml:"filenames"`
}

// LanguageMap maps language names (e.g., "Go") to their details.
type LanguageMap map[string]LanguageInfo

// LanguageTable resolves the fenced code block tag for a file. It is not
// modified after construction.
type LanguageTable struct {
	extensionMap map[string]string
	filenameMap  map[string]string
}

// DefaultLanguageTable returns the built-in table.
func DefaultLanguageTable() *LanguageTable {
	return &LanguageTable{
		extensionMap: maps.Clone(builtinTags),
		filenameMap:  maps.Clone(builtinFilenames),
	}
}

// LoadLanguageTable returns the built-in table extended by the YAML file at
// path. Entries from the file win over built-in ones. An empty path returns
// the built-in table.
func LoadLanguageTable(path string) (*LanguageTable, error) {
	table := DefaultLanguageTable()
	if path == "" {
		return table, nil
	}

	yamlFile, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Op: "languages", Err: fmt.Errorf("error reading language file %s: %w", path, err)}
	}
	var langs LanguageMap
	if err := yaml.Unmarshal(yamlFile, &langs); err != nil {
		return nil, &ConfigError{Op: "languages", Err: fmt.Errorf("error parsing language file %s: %w", path, err)}
	}

	// Sorted so that an extension claimed twice resolves the same way every run.
	for _, name := range slices.Sorted(maps.Keys(langs)) {
		info := langs[name]
		tag := info.Tag
		if tag == "" {
			tag = strings.ToLower(name)
		}
		for _, ext := range info.Extensions {
			table.extensionMap[normalizeExtension(ext)] = tag
		}
		for _, fname := range info.Filenames {
			table.filenameMap[fname] = tag
		}
	}
	return table, nil
}

// TagFor returns the language tag for a path, or "" when unknown.
func (t *LanguageTable) TagFor(path string) string {
	baseName := filepath.Base(path)
	// Exact file names take precedence over extensions.
	if tag, ok := t.filenameMap[baseName]; ok {
		return tag
	}
	ext := normalizeExtension(filepath.Ext(baseName))
	if ext == "" {
		return ""
	}
	return t.extensionMap[ext]
}

// normalizeExtension lowercases an extension and strips its leading dot.
func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}
