package fixer

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/go-hclog"

	lferrors "github.com/scan-io-git/lintfix/internal/errors"
	"github.com/scan-io-git/lintfix/internal/files"
	"github.com/scan-io-git/lintfix/internal/issues"
)

// Applier overwrites files with fixed contents. Only files named in the issue group
// and located under root may be written.
type Applier struct {
	root    string
	allowed map[string]struct{}
	logger  hclog.Logger
}

// NewApplier creates an Applier restricted to the files of group. An empty root disables the root check.
func NewApplier(root string, group *issues.FileIssueGroup, logger hclog.Logger) *Applier {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	allowed := make(map[string]struct{}, group.Len())
	for _, path := range group.Files() {
		allowed[path] = struct{}{}
	}
	return &Applier{root: root, allowed: allowed, logger: logger}
}

// Apply replaces the whole content of resp.FilePath with resp.NewContents.
// The file must already exist; its permissions are kept.
func (a *Applier) Apply(resp issues.FixResponse) error {
	if _, ok := a.allowed[resp.FilePath]; !ok {
		return &lferrors.FileWriteError{Path: resp.FilePath, Err: errors.New("file has no reported issues")}
	}

	if _, err := files.EnsureWithinRoot(a.root, resp.FilePath); err != nil {
		return &lferrors.FileWriteError{Path: resp.FilePath, Err: err}
	}

	f, err := os.OpenFile(resp.FilePath, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return &lferrors.FileWriteError{Path: resp.FilePath, Err: err}
	}

	if _, err := f.WriteString(resp.NewContents); err != nil {
		_ = f.Close()
		return &lferrors.FileWriteError{Path: resp.FilePath, Err: fmt.Errorf("writing contents: %w", err)}
	}
	if err := f.Close(); err != nil {
		return &lferrors.FileWriteError{Path: resp.FilePath, Err: err}
	}

	a.logger.Debug("file overwritten", "path", resp.FilePath, "bytes", len(resp.NewContents))
	return nil
}
