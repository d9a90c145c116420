package git

import (
	"context"
	"errors"
	"os/exec"
)

// ErrGitNotFound indicates git is not installed or not in PATH
var ErrGitNotFound = errors.New("git not found: please install git (https://git-scm.com)")

// CheckGit verifies that git is available in PATH
func CheckGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return ErrGitNotFound
	}
	return nil
}

// IsRepo reports whether path is a git repository or inside one (bare or not).
func IsRepo(ctx context.Context, path string) bool {
	return runGit(ctx, path, "rev-parse", "--git-dir") == nil
}

// Toplevel returns the root of the worktree containing path.
func Toplevel(ctx context.Context, path string) (string, error) {
	return lineGit(ctx, path, "rev-parse", "--show-toplevel")
}

// CommonDir returns the absolute git directory shared by all worktrees of
// the repository containing path.
func CommonDir(ctx context.Context, path string) (string, error) {
	return lineGit(ctx, path, "rev-parse", "--path-format=absolute", "--git-common-dir")
}
