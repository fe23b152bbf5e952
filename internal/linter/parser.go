package linter

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/hashicorp/go-hclog"

	lferrors "github.com/scan-io-git/lintfix/internal/errors"
	"github.com/scan-io-git/lintfix/internal/issues"
)

// Format is the linter output format requested and parsed.
type Format string

const (
	FormatJSONLines Format = "json-lines"
	FormatJSON      Format = "json"
	FormatSARIF     Format = "sarif"
	FormatText      Format = "text"
)

const maxLineSize = 10 * 1024 * 1024

// textIssuePattern accepts "path:line:CODE:message" and ruff's concise "path:line:col: CODE message".
var textIssuePattern = regexp.MustCompile(`^(.+?):(\d+):(?:(\d+):)?\s*(?:([A-Za-z]+[0-9]+)(?::|\s+|$))?\s*(.*)$`)

// ParseResult is the outcome of parsing linter output.
type ParseResult struct {
	Group   *issues.FileIssueGroup
	Skipped []*lferrors.ParseError
}

// ruffRecord is one diagnostic of ruff's json and json-lines output.
type ruffRecord struct {
	Filename string  `json:"filename"`
	Code     *string `json:"code"`
	Message  string  `json:"message"`
	Location *struct {
		Row    int `json:"row"`
		Column int `json:"column"`
	} `json:"location"`
}

func (r ruffRecord) toIssue() (issues.Issue, error) {
	if r.Filename == "" {
		return issues.Issue{}, fmt.Errorf("record has no filename")
	}
	if r.Message == "" {
		return issues.Issue{}, fmt.Errorf("record has no message")
	}
	if r.Location == nil || r.Location.Row < 1 {
		return issues.Issue{}, fmt.Errorf("record has no valid location")
	}
	issue := issues.Issue{
		FilePath: r.Filename,
		Line:     r.Location.Row,
		Column:   r.Location.Column,
		Message:  r.Message,
	}
	if r.Code != nil {
		issue.RuleCode = *r.Code
	}
	return issue, nil
}

// Parse turns linter output into a FileIssueGroup. Malformed records are logged once each and skipped.
// A json or sarif document that cannot be decoded at all is returned as a *ParseError.
func Parse(format Format, r io.Reader, logger hclog.Logger) (*ParseResult, error) {
	return ParseInRoot(format, "", r, logger)
}

// ParseInRoot is Parse for output produced over root: relative SARIF artifact URIs are resolved against it.
func ParseInRoot(format Format, root string, r io.Reader, logger hclog.Logger) (*ParseResult, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	var (
		result *ParseResult
		err    error
	)
	switch format {
	case FormatJSONLines:
		result, err = parseLines(r, parseJSONLine)
	case FormatText:
		result, err = parseLines(r, parseTextLine)
	case FormatJSON:
		result, err = parseJSONDocument(r)
	case FormatSARIF:
		result, err = parseSARIFDocument(r, root)
	default:
		return nil, fmt.Errorf("unsupported linter output format %q", format)
	}
	if err != nil {
		return nil, err
	}

	for _, skipped := range result.Skipped {
		logger.Warn("skipping unparseable linter output", "line", skipped.Line, "raw", skipped.Raw, "error", skipped.Err)
	}
	return result, nil
}

func parseLines(r io.Reader, parseLine func(string) (issues.Issue, error)) (*ParseResult, error) {
	result := &ParseResult{Group: issues.NewFileIssueGroup()}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		issue, err := parseLine(line)
		if err != nil {
			result.Skipped = append(result.Skipped, &lferrors.ParseError{Line: lineNo, Raw: line, Err: err})
			continue
		}
		result.Group.Add(issue)
	}
	if err := scanner.Err(); err != nil {
		return nil, &lferrors.ParseError{Err: fmt.Errorf("reading linter output: %w", err)}
	}
	return result, nil
}

func parseJSONLine(line string) (issues.Issue, error) {
	var record ruffRecord
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		return issues.Issue{}, err
	}
	return record.toIssue()
}

func parseTextLine(line string) (issues.Issue, error) {
	m := textIssuePattern.FindStringSubmatch(line)
	if m == nil {
		return issues.Issue{}, fmt.Errorf("line does not match path:line:code:message")
	}

	lineNo, err := strconv.Atoi(m[2])
	if err != nil || lineNo < 1 {
		return issues.Issue{}, fmt.Errorf("invalid line number %q", m[2])
	}
	column := 0
	if m[3] != "" {
		column, _ = strconv.Atoi(m[3])
	}

	message := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(m[5]), "[*]"))
	if message == "" {
		return issues.Issue{}, fmt.Errorf("line has no message")
	}

	return issues.Issue{
		FilePath: m[1],
		Line:     lineNo,
		Column:   column,
		RuleCode: m[4],
		Message:  message,
	}, nil
}

func parseJSONDocument(r io.Reader) (*ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &lferrors.ParseError{Err: fmt.Errorf("reading linter output: %w", err)}
	}

	result := &ParseResult{Group: issues.NewFileIssueGroup()}
	if len(bytes.TrimSpace(data)) == 0 {
		return result, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, &lferrors.ParseError{Err: fmt.Errorf("decoding JSON report: %w", err)}
	}

	for i, raw := range records {
		var record ruffRecord
		issue, err := func() (issues.Issue, error) {
			if err := json.Unmarshal(raw, &record); err != nil {
				return issues.Issue{}, err
			}
			return record.toIssue()
		}()
		if err != nil {
			result.Skipped = append(result.Skipped, &lferrors.ParseError{Line: i + 1, Raw: string(raw), Err: err})
			continue
		}
		result.Group.Add(issue)
	}
	return result, nil
}
