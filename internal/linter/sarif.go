package linter

import (
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/owenrumney/go-sarif/v2/sarif"

	lferrors "github.com/scan-io-git/lintfix/internal/errors"
	"github.com/scan-io-git/lintfix/internal/issues"
)

// parseSARIFDocument converts a SARIF report into issues. Relative artifact URIs are resolved against root.
func parseSARIFDocument(r io.Reader, root string) (*ParseResult, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &lferrors.ParseError{Err: fmt.Errorf("reading linter output: %w", err)}
	}

	report, err := sarif.FromBytes(data)
	if err != nil {
		return nil, &lferrors.ParseError{Err: fmt.Errorf("decoding SARIF report: %w", err)}
	}

	result := &ParseResult{Group: issues.NewFileIssueGroup()}
	record := 0
	for _, run := range report.Runs {
		for _, res := range run.Results {
			record++
			issue, err := sarifResultToIssue(res, root)
			if err != nil {
				result.Skipped = append(result.Skipped, &lferrors.ParseError{Line: record, Raw: describeSARIFResult(res), Err: err})
				continue
			}
			result.Group.Add(issue)
		}
	}
	return result, nil
}

// sarifResultToIssue converts a result that points at a physical file region into an issue.
func sarifResultToIssue(res *sarif.Result, root string) (issues.Issue, error) {
	if res == nil {
		return issues.Issue{}, fmt.Errorf("empty result")
	}
	if len(res.Locations) == 0 || res.Locations[0].PhysicalLocation == nil {
		return issues.Issue{}, fmt.Errorf("result has no physical location")
	}

	location := res.Locations[0].PhysicalLocation
	if location.ArtifactLocation == nil || location.ArtifactLocation.URI == nil || *location.ArtifactLocation.URI == "" {
		return issues.Issue{}, fmt.Errorf("result has no artifact uri")
	}
	if location.Region == nil || location.Region.StartLine == nil || *location.Region.StartLine < 1 {
		return issues.Issue{}, fmt.Errorf("result has no start line")
	}
	if res.Message.Text == nil || strings.TrimSpace(*res.Message.Text) == "" {
		return issues.Issue{}, fmt.Errorf("result has no message text")
	}

	path, err := uriToPath(*location.ArtifactLocation.URI, root)
	if err != nil {
		return issues.Issue{}, err
	}

	issue := issues.Issue{
		FilePath: path,
		Line:     *location.Region.StartLine,
		Message:  *res.Message.Text,
	}
	if location.Region.StartColumn != nil {
		issue.Column = *location.Region.StartColumn
	}
	if res.RuleID != nil {
		issue.RuleCode = *res.RuleID
	}
	return issue, nil
}

// uriToPath turns a SARIF artifact URI into a filesystem path.
// Relative URIs, including those carrying a uriBaseId, are joined onto root.
func uriToPath(uri, root string) (string, error) {
	if !strings.Contains(uri, "://") {
		unescaped, err := url.PathUnescape(uri)
		if err != nil {
			return "", fmt.Errorf("invalid artifact uri %q: %w", uri, err)
		}
		path := filepath.FromSlash(unescaped)
		if root != "" && !filepath.IsAbs(path) {
			path = filepath.Join(root, path)
		}
		return path, nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid artifact uri %q: %w", uri, err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported artifact uri scheme %q", u.Scheme)
	}
	return filepath.FromSlash(u.Path), nil
}

func describeSARIFResult(res *sarif.Result) string {
	if res == nil {
		return "<nil>"
	}
	rule := "<no rule>"
	if res.RuleID != nil {
		rule = *res.RuleID
	}
	return fmt.Sprintf("result %s", rule)
}
