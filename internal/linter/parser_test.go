package linter

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lferrors "github.com/scan-io-git/lintfix/internal/errors"
	"github.com/scan-io-git/lintfix/internal/issues"
)

func bufferLogger(buf *bytes.Buffer) hclog.Logger {
	return hclog.New(&hclog.LoggerOptions{Output: buf, Level: hclog.Trace, DisableTime: true})
}

func TestParseTextSingleIssue(t *testing.T) {
	result, err := Parse(FormatText, strings.NewReader("foo.py:3:F401:'os' imported but unused\n"), nil)
	require.NoError(t, err)

	assert.Empty(t, result.Skipped)
	assert.Equal(t, []string{"foo.py"}, result.Group.Files())
	assert.Equal(t, []issues.Issue{
		{FilePath: "foo.py", Line: 3, RuleCode: "F401", Message: "'os' imported but unused"},
	}, result.Group.Issues("foo.py"))
}

func TestParseTextSkipsMalformedLine(t *testing.T) {
	var logs bytes.Buffer
	output := strings.Join([]string{
		"foo.py:3:F401:'os' imported but unused",
		"this line is not an issue",
		"bar.py:10:E501:line too long (120 > 88)",
	}, "\n")

	result, err := Parse(FormatText, strings.NewReader(output), bufferLogger(&logs))
	require.NoError(t, err)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 2, result.Skipped[0].Line)
	assert.Equal(t, "this line is not an issue", result.Skipped[0].Raw)
	assert.Equal(t, 1, strings.Count(logs.String(), "skipping unparseable linter output"))

	assert.Equal(t, []string{"foo.py", "bar.py"}, result.Group.Files())
	assert.Equal(t, 2, result.Group.TotalIssues())
	assert.Equal(t, "E501", result.Group.Issues("bar.py")[0].RuleCode)
}

func TestParseTextLine(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    issues.Issue
		wantErr bool
	}{
		{
			name: "colon separated",
			line: "pkg/mod.py:12:E711:comparison to None should be 'if cond is None:'",
			want: issues.Issue{FilePath: "pkg/mod.py", Line: 12, RuleCode: "E711", Message: "comparison to None should be 'if cond is None:'"},
		},
		{
			name: "ruff concise with fixable marker",
			line: "foo.py:3:8: F401 [*] `os` imported but unused",
			want: issues.Issue{FilePath: "foo.py", Line: 3, Column: 8, RuleCode: "F401", Message: "`os` imported but unused"},
		},
		{
			name: "without rule code",
			line: "foo.py:7:1: SyntaxError: Unexpected indentation",
			want: issues.Issue{FilePath: "foo.py", Line: 7, Column: 1, Message: "SyntaxError: Unexpected indentation"},
		},
		{name: "summary line", line: "Found 2 errors.", wantErr: true},
		{name: "zero line", line: "foo.py:0:F401:unused", wantErr: true},
		{name: "missing message", line: "foo.py:3:F401:", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseTextLine(tt.line)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSONLines(t *testing.T) {
	var logs bytes.Buffer
	output := `{"code":"F401","filename":"/src/foo.py","message":"` + "`os`" + ` imported but unused","location":{"row":1,"column":8}}
{"broken json
{"code":null,"filename":"/src/bar.py","message":"SyntaxError: Expected an expression","location":{"row":4,"column":1}}
{"code":"E501","filename":"/src/foo.py","message":"Line too long (99 > 88)","location":{"row":9,"column":89}}
{"code":"E501","filename":"","message":"no file","location":{"row":9,"column":89}}
`

	result, err := Parse(FormatJSONLines, strings.NewReader(output), bufferLogger(&logs))
	require.NoError(t, err)

	assert.Equal(t, []string{"/src/foo.py", "/src/bar.py"}, result.Group.Files())
	foo := result.Group.Issues("/src/foo.py")
	require.Len(t, foo, 2)
	assert.Equal(t, 1, foo[0].Line)
	assert.Equal(t, 9, foo[1].Line)
	assert.Equal(t, "", result.Group.Issues("/src/bar.py")[0].RuleCode)

	require.Len(t, result.Skipped, 2)
	assert.Equal(t, []int{2, 5}, []int{result.Skipped[0].Line, result.Skipped[1].Line})
	assert.Equal(t, 2, strings.Count(logs.String(), "skipping unparseable linter output"))
}

func TestParseJSONDocument(t *testing.T) {
	output := `[
  {"code":"F401","filename":"a.py","message":"unused import","location":{"row":2,"column":1}},
  {"code":"F841","filename":"a.py","message":"unused variable","location":null},
  {"code":"F841","filename":"b.py","message":"unused variable","location":{"row":5,"column":5}}
]`

	result, err := Parse(FormatJSON, strings.NewReader(output), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.py", "b.py"}, result.Group.Files())
	assert.Len(t, result.Skipped, 1)
	assert.Equal(t, 2, result.Skipped[0].Line)
}

func TestParseJSONDocumentEmptyAndBroken(t *testing.T) {
	result, err := Parse(FormatJSON, strings.NewReader("  \n"), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Group.Len())

	result, err = Parse(FormatJSON, strings.NewReader("[]"), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Group.Len())

	_, err = Parse(FormatJSON, strings.NewReader("[{"), nil)
	var parseErr *lferrors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParseSARIF(t *testing.T) {
	output := `{
  "version": "2.1.0",
  "$schema": "https://json.schemastore.org/sarif-2.1.0.json",
  "runs": [{
    "tool": {"driver": {"name": "ruff", "rules": []}},
    "results": [
      {"ruleId": "F401", "level": "error", "message": {"text": "` + "`os`" + ` imported but unused"},
       "locations": [{"physicalLocation": {"artifactLocation": {"uri": "file:///tmp/proj/foo.py"}, "region": {"startLine": 3, "startColumn": 8}}}]},
      {"ruleId": "E999", "level": "error", "message": {"text": "no location"}},
      {"ruleId": "E501", "level": "error", "message": {"text": "Line too long"},
       "locations": [{"physicalLocation": {"artifactLocation": {"uri": "pkg/bar.py"}, "region": {"startLine": 12}}}]}
    ]
  }]
}`

	result, err := Parse(FormatSARIF, strings.NewReader(output), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"/tmp/proj/foo.py", "pkg/bar.py"}, result.Group.Files())
	assert.Equal(t, issues.Issue{FilePath: "/tmp/proj/foo.py", Line: 3, Column: 8, RuleCode: "F401", Message: "`os` imported but unused"}, result.Group.Issues("/tmp/proj/foo.py")[0])
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, 2, result.Skipped[0].Line)
}

func TestParseSARIFBroken(t *testing.T) {
	_, err := Parse(FormatSARIF, strings.NewReader("not sarif"), nil)
	var parseErr *lferrors.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestParseUnsupportedFormat(t *testing.T) {
	_, err := Parse(Format("xml"), strings.NewReader(""), nil)
	assert.ErrorContains(t, err, "unsupported")
}

func TestParseTextMergesPathSpellings(t *testing.T) {
	result, err := Parse(FormatText, strings.NewReader("a.py:1:F401:unused import\n./a.py:2:E501:line too long\n"), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"a.py"}, result.Group.Files())
	assert.Len(t, result.Group.Issues("a.py"), 2)
}

func TestParseSARIFRelativeURIsInRoot(t *testing.T) {
	output := `{
  "version": "2.1.0",
  "runs": [{
    "tool": {"driver": {"name": "linter"}},
    "results": [
      {"ruleId": "E501", "message": {"text": "Line too long"},
       "locations": [{"physicalLocation": {"artifactLocation": {"uri": "pkg/bar.py", "uriBaseId": "%SRCROOT%"}, "region": {"startLine": 12}}}]},
      {"ruleId": "W291", "message": {"text": "Trailing whitespace"},
       "locations": [{"physicalLocation": {"artifactLocation": {"uri": "my%20file.py"}, "region": {"startLine": 1}}}]},
      {"ruleId": "F401", "message": {"text": "Unused import"},
       "locations": [{"physicalLocation": {"artifactLocation": {"uri": "file:///tmp/proj/foo.py"}, "region": {"startLine": 3}}}]}
    ]
  }]
}`
	root := filepath.Join("work", "proj")

	result, err := ParseInRoot(FormatSARIF, root, strings.NewReader(output), nil)
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "pkg", "bar.py"),
		filepath.Join(root, "my file.py"),
		filepath.FromSlash("/tmp/proj/foo.py"),
	}, result.Group.Files())
}
