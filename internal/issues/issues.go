package issues

import (
	"fmt"
	"path/filepath"
)

// Issue is a single problem reported by the linter.
type Issue struct {
	FilePath string `json:"file_path"`
	Line     int    `json:"line"`
	Column   int    `json:"column,omitempty"`
	RuleCode string `json:"rule_code"`
	Message  string `json:"message"`
}

// String renders the issue the way it is shown to the model and in logs.
func (i Issue) String() string {
	code := i.RuleCode
	if code == "" {
		code = "-"
	}
	return fmt.Sprintf("[%s] line %d: %s", code, i.Line, i.Message)
}

// FileIssueGroup maps file paths to the issues reported for them.
// Files keep the order of their first appearance and issues keep the order the linter reported them in.
type FileIssueGroup struct {
	order  []string
	byFile map[string][]Issue
}

// NewFileIssueGroup creates an empty group.
func NewFileIssueGroup() *FileIssueGroup {
	return &FileIssueGroup{byFile: make(map[string][]Issue)}
}

// GroupByFile builds a group from issues in report order.
func GroupByFile(list []Issue) *FileIssueGroup {
	g := NewFileIssueGroup()
	for _, issue := range list {
		g.Add(issue)
	}
	return g
}

// Add appends an issue to its file's list. The path is cleaned first so that
// different spellings of one file ("a.py", "./a.py") share a single entry.
func (g *FileIssueGroup) Add(issue Issue) {
	issue.FilePath = filepath.Clean(issue.FilePath)
	if _, ok := g.byFile[issue.FilePath]; !ok {
		g.order = append(g.order, issue.FilePath)
	}
	g.byFile[issue.FilePath] = append(g.byFile[issue.FilePath], issue)
}

// Files returns the file paths in order of first appearance.
func (g *FileIssueGroup) Files() []string {
	files := make([]string, len(g.order))
	copy(files, g.order)
	return files
}

// Issues returns a copy of the issues reported for path.
func (g *FileIssueGroup) Issues(path string) []Issue {
	list := g.byFile[filepath.Clean(path)]
	out := make([]Issue, len(list))
	copy(out, list)
	return out
}

// Contains reports whether path has at least one issue in the group.
func (g *FileIssueGroup) Contains(path string) bool {
	_, ok := g.byFile[filepath.Clean(path)]
	return ok
}

// Len returns the number of files in the group.
func (g *FileIssueGroup) Len() int {
	return len(g.order)
}

// TotalIssues returns the number of issues across all files.
func (g *FileIssueGroup) TotalIssues() int {
	total := 0
	for _, list := range g.byFile {
		total += len(list)
	}
	return total
}

// FixRequest is what gets sent to the completion API for one file.
type FixRequest struct {
	FilePath         string
	OriginalContents string
	Issues           []Issue
}

// FixResponse carries the replacement body proposed for one file.
type FixResponse struct {
	FilePath    string
	NewContents string
}
