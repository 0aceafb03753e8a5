package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// execute runs the root command with args and returns stdout, stderr and
// the exit code main would use.
func execute(t *testing.T, stdin string, args ...string) (string, string, int) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	var out, errOut bytes.Buffer
	cmd := newRootCmd(streams{in: strings.NewReader(stdin), out: &out, err: &errOut})
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), exitCode(err)
}

func TestRunScenarios(t *testing.T) {
	root := scenarioTree(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "python only",
			args: []string{"-R", "-t", "py"},
			want: "# a.py\n\n```python\nx = 12345\n```\n\n",
		},
		{
			name: "with hidden files",
			args: []string{"-R", "-t", "py", "-A"},
			want: "# .hidden.py\n\n```python\ny=12\n```\n\n# a.py\n\n```python\nx = 12345\n```\n\n",
		},
		{
			name: "size filter",
			args: []string{"-R", "-t", "py", "-A", "--file-size", ">8B"},
			want: "# a.py\n\n```python\nx = 12345\n```\n\n",
		},
		{
			name: "all visible files",
			args: []string{"-R"},
			want: "# a.py\n\n```python\nx = 12345\n```\n\n# sub/b.txt\n\n```\ntwenty bytes of txt\n```\n\n",
		},
		{
			name: "non-recursive",
			args: []string{"-t", "txt"},
			want: "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, code := execute(t, "", append([]string{"-d", root, "--no-color"}, tt.args...)...)
			assert.Equal(t, exitOK, code)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestRunPositionalDirectory(t *testing.T) {
	root := scenarioTree(t)
	out, _, code := execute(t, "", root, "-t", "py")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "# a.py\n\n```python\nx = 12345\n```\n\n", out)

	_, _, code = execute(t, "", root, "-d", root)
	assert.Equal(t, exitConfigError, code)
}

func TestRunDryRun(t *testing.T) {
	root := scenarioTree(t)
	full, _, code := execute(t, "", "-d", root, "-R", "-A")
	require.Equal(t, exitOK, code)
	dry, _, code := execute(t, "", "-d", root, "-R", "-A", "--dry-run", "--checksum")
	require.Equal(t, exitOK, code)

	assert.Equal(t, ".hidden.py\na.py\nsub/b.txt\n", dry)
	assert.Equal(t, strings.Split(strings.TrimSpace(dry), "\n"), headers(full))
}

func TestRunChecksum(t *testing.T) {
	root := scenarioTree(t)
	out, _, code := execute(t, "", "-d", root, "-t", "py", "--checksum")
	require.Equal(t, exitOK, code)
	assert.True(t, strings.HasPrefix(out, "# a.py (MD5: "+Checksum([]byte("x = 12345\n"))+")\n\n"), out)
}

func TestRunOutputFileIsStable(t *testing.T) {
	root := scenarioTree(t)
	outPath := filepath.Join(root, "all.md")

	for i := 0; i < 2; i++ {
		_, _, code := execute(t, "", "-d", root, "-R", "-o", outPath)
		require.Equal(t, exitOK, code)
	}
	first, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.NotContains(t, string(first), "# all.md")

	_, _, code := execute(t, "", "-d", root, "-R", "-o", outPath)
	require.Equal(t, exitOK, code)
	second, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRunProgressAndStats(t *testing.T) {
	root := scenarioTree(t)
	_, stderr, code := execute(t, "", "-d", root, "-R", "--no-color", "--stats")
	require.Equal(t, exitOK, code)
	assert.Contains(t, stderr, "Processed: a.py\n")
	assert.Contains(t, stderr, "Processed: sub/b.txt\n")
	assert.Contains(t, stderr, "Total files processed: 2\nTotal size: 30 bytes\n")
	assert.NotContains(t, stderr, "Total tokens")
}

func TestRunTree(t *testing.T) {
	root := scenarioTree(t)
	out, _, code := execute(t, "", "-d", root, "-R", "--tree")
	require.Equal(t, exitOK, code)
	want := "```\n" + filepath.Base(root) + "\n├── a.py\n└── sub/\n    └── b.txt\n```\n\n# a.py\n"
	assert.True(t, strings.HasPrefix(out, want), out)
}

func TestRunInteractive(t *testing.T) {
	root := scenarioTree(t)
	out, stderr, code := execute(t, "n\ny\n", "-d", root, "-R", "-i")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "# sub/b.txt\n\n```\ntwenty bytes of txt\n```\n\n", out)
	assert.Contains(t, stderr, "Process file a.py? [Y/n] ")
	assert.Contains(t, stderr, "Process file sub/b.txt? [Y/n] ")
	assert.Contains(t, stderr, "standard input is not a terminal")
}

func TestRunWarnings(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a.txt", "ok\n")
	writeFile(t, root, "b.dat", "\x00binary")

	out, stderr, code := execute(t, "", "-d", root)
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "# a.txt\n\n```\nok\n```\n\n", out)
	assert.Contains(t, stderr, "WARN")
	assert.Contains(t, stderr, "skipping file")

	_, stderr, code = execute(t, "", "-d", root, "--no-warn")
	assert.Equal(t, exitOK, code)
	assert.NotContains(t, stderr, "WARN")
}

func TestRunEncodingFallbackFromConfig(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "gbk.txt", "\xc4\xe3\xba\xc3\n")
	cfg := writeFile(t, t.TempDir(), "code2md.toml", "fallback_encodings = [\"gbk\"]\n")

	out, _, code := execute(t, "", "-d", root, "--config", cfg)
	require.Equal(t, exitOK, code)
	assert.Equal(t, "# gbk.txt\n\n```\n你好\n```\n\n", out)

	out, _, code = execute(t, "", "-d", root, "--encoding", "gbk")
	require.Equal(t, exitOK, code)
	assert.Contains(t, out, "你好")
}

func TestRunConfigFile(t *testing.T) {
	root := scenarioTree(t)
	cfg := writeFile(t, t.TempDir(), "config.toml", "recursive = true\ntype = [\"txt\"]\ndefault_excludes = [\"sub/*\"]\n")

	out, _, code := execute(t, "", "-d", root, "--config", cfg, "--dry-run")
	require.Equal(t, exitOK, code)
	assert.Empty(t, out)

	// -e replaces the configured default excludes.
	out, _, code = execute(t, "", "-d", root, "--config", cfg, "--dry-run", "-e", "*.py")
	require.Equal(t, exitOK, code)
	assert.Equal(t, "sub/b.txt\n", out)
}

func TestRunEnvironment(t *testing.T) {
	root := scenarioTree(t)
	t.Setenv("CODE2MD_RECURSIVE", "true")
	t.Setenv("CODE2MD_INCLUDE_INVISIBLE", "true")
	out, _, code := execute(t, "", "-d", root, "--dry-run")
	require.Equal(t, exitOK, code)
	assert.Equal(t, ".hidden.py\na.py\nsub/b.txt\n", out)
}

func TestRunExitCodes(t *testing.T) {
	root := scenarioTree(t)
	missingDir := filepath.Join(t.TempDir(), "nope", "out.md")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"bad size", []string{"-d", root, "--file-size", "huge"}, exitConfigError},
		{"size overflow", []string{"-d", root, "--file-size", ">99999999P"}, exitConfigError},
		{"bad time", []string{"-d", root, "--modified-time", "<someday"}, exitConfigError},
		{"bad regex", []string{"-d", root, "-G", "(unclosed"}, exitConfigError},
		{"bad glob", []string{"-d", root, "-e", "[z-"}, exitConfigError},
		{"bad encoding", []string{"-d", root, "--encoding", "klingon"}, exitConfigError},
		{"missing root", []string{"-d", filepath.Join(root, "missing")}, exitConfigError},
		{"unknown flag", []string{"--frobnicate"}, exitConfigError},
		{"bad tokenizer", []string{"-d", root, "--tokenizer", "abacus"}, exitConfigError},
		{"missing config", []string{"-d", root, "--config", filepath.Join(root, "none.toml")}, exitConfigError},
		{"conflicting sinks", []string{"-d", root, "-c", "--pdf", "x.pdf"}, exitConfigError},
		{"unwritable output", []string{"-d", root, "-o", missingDir}, exitOutputError},
		{"no matches", []string{"-d", root, "-t", "rs"}, exitOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, code := execute(t, "", tt.args...)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestRunUnreadableFile(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	root := scenarioTree(t)
	locked := writeFile(t, root, "locked.py", "secret\n")
	require.NoError(t, os.Chmod(locked, 0o000))

	out, stderr, code := execute(t, "", "-d", root, "-t", "py")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "# a.py\n\n```python\nx = 12345\n```\n\n", out)
	assert.Contains(t, stderr, "locked.py")
}

func TestRunPDF(t *testing.T) {
	root := scenarioTree(t)
	pdfPath := filepath.Join(t.TempDir(), "out.pdf")
	out, _, code := execute(t, "", "-d", root, "-R", "--pdf", pdfPath, "--tree")
	require.Equal(t, exitOK, code)
	assert.Empty(t, out)

	data, err := os.ReadFile(pdfPath)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestRunVersion(t *testing.T) {
	out, _, code := execute(t, "", "--version")
	assert.Equal(t, exitOK, code)
	assert.Equal(t, "code2md version dev\n", out)
}

func TestIsGitURL(t *testing.T) {
	for input, want := range map[string]bool{
		"https://github.com/user/repo.git": true,
		"git@github.com:user/repo.git":     true,
		"ssh://git@host/repo.git":          true,
		"https://github.com/user/repo":     false,
		"./local/dir.git":                  false,
		".":                                false,
	} {
		assert.Equal(t, want, isGitURL(input), input)
	}
}

func TestRunUnwritableOutputFailsBeforeWalk(t *testing.T) {
	root := scenarioTree(t)
	outPath := filepath.Join(t.TempDir(), "nope", "out.md")

	_, stderr, code := execute(t, "y\ny\n", "-d", root, "-R", "-i", "-o", outPath)
	assert.Equal(t, exitOutputError, code)
	assert.NotContains(t, stderr, "Process file")

	_, _, code = execute(t, "", "-d", root, "--pdf", t.TempDir())
	assert.Equal(t, exitOutputError, code)
}

func TestOutputPaths(t *testing.T) {
	assert.Empty(t, outputPaths(Options{Output: "-"}))
	assert.Equal(t, []string{"out.md", "out.pdf"}, outputPaths(Options{Output: "out.md", PDF: "out.pdf"}))
}
