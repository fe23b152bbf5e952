package linter

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lferrors "github.com/scan-io-git/lintfix/internal/errors"
)

// fakeLinter writes a shell script that records its argv, prints output for "check" and exits with checkCode.
func fakeLinter(t *testing.T, output string, checkCode, formatCode int) (string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake linter scripts need a POSIX shell")
	}

	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args.log")
	outputFile := filepath.Join(dir, "output.txt")
	require.NoError(t, os.WriteFile(outputFile, []byte(output), 0o644))

	script := "#!/bin/sh\n" +
		"echo \"$@\" >> '" + argsFile + "'\n" +
		"if [ \"$1\" = \"--version\" ]; then echo 'ruff 0.4.10'; exit 0; fi\n" +
		"if [ \"$1\" = \"format\" ]; then echo 'formatted'; exit " + strconv.Itoa(formatCode) + "; fi\n" +
		"echo 'warning: something on stderr' >&2\n" +
		"cat '" + outputFile + "'\n" +
		"exit " + strconv.Itoa(checkCode) + "\n"

	path := filepath.Join(dir, "fake-ruff")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path, argsFile
}

func readArgs(t *testing.T, argsFile string) []string {
	t.Helper()
	data, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestBuildCommandArgs(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		want []string
	}{
		{
			name: "defaults",
			opts: Options{Path: "ruff"},
			want: []string{"check", "--output-format", "json-lines", "/src"},
		},
		{
			name: "text with safe fixes and extra args",
			opts: Options{Path: "ruff", Format: FormatText, ApplySafeFixes: true, AdditionalArgs: []string{"--select", "F"}},
			want: []string{"check", "--output-format", "concise", "--fix", "--select", "F", "/src"},
		},
		{
			name: "custom command template",
			opts: Options{Path: "flake8", Format: FormatText, CommandArgs: []string{"--format=%(path)s:%(row)d:%(code)s:%(text)s", "{root}"}, AdditionalArgs: []string{"--max-line-length=100"}},
			want: []string{"--format=%(path)s:%(row)d:%(code)s:%(text)s", "/src", "--max-line-length=100"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.opts, nil).BuildCommandArgs("/src"))
		})
	}
}

func TestCollectIssuesFound(t *testing.T) {
	path, argsFile := fakeLinter(t, "foo.py:3:F401:'os' imported but unused\nbar.py:1:E402:module level import not at top of file\n", 1, 0)
	root := t.TempDir()

	l := New(Options{Path: path, Format: FormatText}, nil)
	result, err := l.Collect(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, []string{"foo.py", "bar.py"}, result.Group.Files())
	assert.Equal(t, []string{"check --output-format concise " + root}, readArgs(t, argsFile))
}

func TestCollectCleanRun(t *testing.T) {
	path, _ := fakeLinter(t, "", 0, 0)

	result, err := New(Options{Path: path}, nil).Collect(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Group.Len())
}

func TestCollectUnexpectedExitCode(t *testing.T) {
	path, _ := fakeLinter(t, "", 2, 0)

	_, err := New(Options{Path: path}, nil).Collect(context.Background(), t.TempDir())

	var invocationErr *lferrors.LinterInvocationError
	require.ErrorAs(t, err, &invocationErr)
	assert.Equal(t, 2, invocationErr.ExitCode)
	assert.Contains(t, invocationErr.Output, "something on stderr")
	assert.Equal(t, lferrors.KindLinterInvocation, lferrors.KindOf(err))
}

func TestCollectCustomIssueExitCodes(t *testing.T) {
	path, _ := fakeLinter(t, "foo.py:3:F401:unused\n", 2, 0)

	result, err := New(Options{Path: path, Format: FormatText, IssueExitCodes: []int{2}}, nil).Collect(context.Background(), t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Group.TotalIssues())
}

func TestCollectMissingLinter(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "does-not-exist")

	_, err := New(Options{Path: missing}, nil).Collect(context.Background(), t.TempDir())

	var invocationErr *lferrors.LinterInvocationError
	require.ErrorAs(t, err, &invocationErr)
	assert.Equal(t, missing, invocationErr.Linter)
}

func TestCollectFormatFirst(t *testing.T) {
	path, argsFile := fakeLinter(t, "", 0, 0)
	root := t.TempDir()

	_, err := New(Options{Path: path, FormatFirst: true}, nil).Collect(context.Background(), root)
	require.NoError(t, err)

	args := readArgs(t, argsFile)
	require.Len(t, args, 2)
	assert.Equal(t, "format "+root, args[0])
	assert.True(t, strings.HasPrefix(args[1], "check "))
}

func TestCollectFormatFailureIsFatal(t *testing.T) {
	path, argsFile := fakeLinter(t, "", 0, 2)

	_, err := New(Options{Path: path, FormatFirst: true}, nil).Collect(context.Background(), t.TempDir())

	var invocationErr *lferrors.LinterInvocationError
	require.ErrorAs(t, err, &invocationErr)
	assert.Len(t, readArgs(t, argsFile), 1, "check must not run after a failed format")
}

func TestCollectUndecodableDocument(t *testing.T) {
	path, _ := fakeLinter(t, "{not json", 1, 0)

	_, err := New(Options{Path: path, Format: FormatJSON}, nil).Collect(context.Background(), t.TempDir())

	var parseErr *lferrors.ParseError
	assert.ErrorAs(t, err, &parseErr)
	assert.Equal(t, lferrors.KindLinterInvocation, lferrors.KindOf(err))
}

func TestVersion(t *testing.T) {
	path, _ := fakeLinter(t, "", 0, 0)

	version, err := New(Options{Path: path}, nil).Version(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ruff 0.4.10", version)

	_, err = New(Options{Path: filepath.Join(t.TempDir(), "missing")}, nil).Version(context.Background())
	assert.Equal(t, lferrors.KindLinterInvocation, lferrors.KindOf(err))
}

func TestCollectSARIFRelativeURIsResolvedAgainstRoot(t *testing.T) {
	output := `{"version": "2.1.0", "runs": [{"tool": {"driver": {"name": "linter"}}, "results": [
  {"ruleId": "E501", "message": {"text": "Line too long"},
   "locations": [{"physicalLocation": {"artifactLocation": {"uri": "pkg/bar.py"}, "region": {"startLine": 4}}}]}]}]}`
	path, _ := fakeLinter(t, output, 1, 0)
	root := t.TempDir()

	result, err := New(Options{Path: path, Format: FormatSARIF}, nil).Collect(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "pkg", "bar.py")}, result.Group.Files())
}

func TestCollectMissingLinterLogsOnce(t *testing.T) {
	var logs bytes.Buffer
	_, err := New(Options{Path: filepath.Join(t.TempDir(), "missing")}, bufferLogger(&logs)).Collect(context.Background(), t.TempDir())

	assert.Equal(t, lferrors.KindLinterInvocation, lferrors.KindOf(err))
	assert.Equal(t, 1, strings.Count(logs.String(), "linter executable not found"))
}
