package git

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5"
)

// FindRepositoryPath finds the git repository containing folder.
func FindRepositoryPath(folder string) (string, error) {
	if folder == "" {
		return "", fmt.Errorf("source folder is not set")
	}

	folder, err := filepath.Abs(folder)
	if err != nil {
		return "", err
	}

	// check if source folder is a subfolder of a git repository
	for {
		if _, err := git.PlainOpen(folder); err == nil {
			return folder, nil
		}

		// move up one level
		parent := filepath.Dir(folder)
		if parent == folder {
			break
		}
		folder = parent
	}

	return "", ErrNotRepository
}

// DirtyFiles returns the paths, out of the given ones, that have uncommitted or untracked changes
// in the repository containing root. Paths outside the repository are ignored.
func DirtyFiles(root string, paths []string) ([]string, error) {
	repoPath, err := FindRepositoryPath(root)
	if err != nil {
		return nil, err
	}

	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open repository %q: %w", repoPath, err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		if err == git.ErrIsBareRepository {
			return nil, ErrNoWorktree
		}
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}
	status, err := wt.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to read worktree status: %w", err)
	}

	var dirty []string
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			continue
		}
		rel, err := filepath.Rel(repoPath, abs)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}

		fileStatus, ok := status[filepath.ToSlash(rel)]
		if !ok {
			continue
		}
		if fileStatus.Worktree != git.Unmodified || fileStatus.Staging != git.Unmodified {
			dirty = append(dirty, path)
		}
	}

	sort.Strings(dirty)
	return dirty, nil
}
