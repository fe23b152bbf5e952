package git

import "errors"

// Repo errors
var (
	ErrNotRepository = errors.New("target folder is not inside a git repository")
	ErrNoWorktree    = errors.New("repository has no worktree")
)
