package fixer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/scan-io-git/lintfix/internal/files"
)

// FileResult is the terminal outcome for one file.
type FileResult struct {
	Path      string `json:"path"`
	Issues    int    `json:"issues"`
	Status    State  `json:"status"`
	ErrorKind string `json:"error_kind,omitempty"`
	Message   string `json:"message,omitempty"`
}

// Report summarizes a fix run. Files keep the linter's first-appearance order.
type Report struct {
	RunID       string       `json:"run_id"`
	Root        string       `json:"root"`
	Linter      string       `json:"linter"`
	StartedAt   time.Time    `json:"started_at"`
	FinishedAt  time.Time    `json:"finished_at"`
	TotalIssues int          `json:"total_issues"`
	ParseErrors int          `json:"parse_errors"`
	Files       []FileResult `json:"files"`
}

// Fixed returns the number of files that were overwritten.
func (r *Report) Fixed() int {
	return r.count(StateFixed)
}

// Failed returns the number of files that ended in a failure.
func (r *Report) Failed() int {
	return r.count(StateFailed)
}

func (r *Report) count(state State) int {
	n := 0
	for _, f := range r.Files {
		if f.Status == state {
			n++
		}
	}
	return n
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	fixedStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	failedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	mutedStyle  = lipgloss.NewStyle().Faint(true)
)

// Render writes a human readable summary of the run to w.
func (r *Report) Render(w io.Writer) error {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render("lintfix report"))
	sb.WriteString(mutedStyle.Render(fmt.Sprintf(" run %s", r.RunID)))
	sb.WriteString("\n")

	if len(r.Files) == 0 {
		sb.WriteString("No issues reported by the linter.\n")
	}
	for _, f := range r.Files {
		switch f.Status {
		case StateFixed:
			sb.WriteString(fmt.Sprintf("%s %s (%d issues)\n", fixedStyle.Render("FIXED "), f.Path, f.Issues))
		default:
			sb.WriteString(fmt.Sprintf("%s %s (%d issues): %s: %s\n", failedStyle.Render("FAILED"), f.Path, f.Issues, f.ErrorKind, f.Message))
		}
	}

	summary := fmt.Sprintf("files: %d, fixed: %d, failed: %d, issues: %d", len(r.Files), r.Fixed(), r.Failed(), r.TotalIssues)
	if r.ParseErrors > 0 {
		summary += fmt.Sprintf(", skipped linter records: %d", r.ParseErrors)
	}
	sb.WriteString(titleStyle.Render(summary))
	sb.WriteString("\n")

	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteJSON stores the report as indented JSON at path.
func (r *Report) WriteJSON(path string) error {
	path, err := files.ExpandPath(path)
	if err != nil {
		return fmt.Errorf("failed to expand path %q: %w", path, err)
	}

	data, err := json.MarshalIndent(r, "", "    ")
	if err != nil {
		return fmt.Errorf("error marshaling the report: %w", err)
	}
	if err := files.WriteJsonFile(path, data); err != nil {
		return fmt.Errorf("error writing report to %q: %w", path, err)
	}
	return nil
}
