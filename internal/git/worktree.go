package git

import (
	"context"
	"fmt"
	"strings"
)

// Worktree is one entry of `git worktree list --porcelain`.
type Worktree struct {
	Path     string
	Branch   string // short branch name, "" when detached or bare
	Commit   string
	Bare     bool
	Detached bool
	Locked   bool
	Prunable bool // admin files exist but the directory is gone
}

// ListWorktrees returns every worktree registered with the repository,
// including the main one (bare or not).
func ListWorktrees(ctx context.Context, dir string) ([]Worktree, error) {
	out, err := outputGit(ctx, dir, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, fmt.Errorf("failed to list worktrees: %w", err)
	}
	return parseWorktrees(string(out)), nil
}

func parseWorktrees(out string) []Worktree {
	var worktrees []Worktree
	var current Worktree

	flush := func() {
		if current.Path != "" {
			worktrees = append(worktrees, current)
		}
		current = Worktree{}
	}

	for line := range strings.SplitSeq(out, "\n") {
		switch {
		case strings.HasPrefix(line, "worktree "):
			flush()
			current.Path = strings.TrimPrefix(line, "worktree ")
		case strings.HasPrefix(line, "HEAD "):
			current.Commit = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch refs/heads/"):
			current.Branch = strings.TrimPrefix(line, "branch refs/heads/")
		case line == "bare":
			current.Bare = true
		case line == "detached":
			current.Detached = true
		case line == "locked" || strings.HasPrefix(line, "locked "):
			current.Locked = true
		case line == "prunable" || strings.HasPrefix(line, "prunable "):
			current.Prunable = true
		}
	}
	flush()

	return worktrees
}

// AddWorktree checks out an existing local branch into a new worktree at path.
func AddWorktree(ctx context.Context, dir, path, branch string) error {
	if err := runGit(ctx, dir, "worktree", "add", path, branch); err != nil {
		return fmt.Errorf("add worktree %s: %w", path, err)
	}
	return nil
}

// RemoveWorktree removes the worktree at path. Without force git refuses when
// the worktree has modifications or untracked files.
func RemoveWorktree(ctx context.Context, dir, path string, force bool) error {
	args := []string{"worktree", "remove"}
	if force {
		args = append(args, "--force")
	}
	args = append(args, path)
	if err := runGit(ctx, dir, args...); err != nil {
		return fmt.Errorf("remove worktree %s: %w", path, err)
	}
	return nil
}

// MoveWorktree relocates a worktree.
func MoveWorktree(ctx context.Context, dir, from, to string) error {
	if err := runGit(ctx, dir, "worktree", "move", from, to); err != nil {
		return fmt.Errorf("move worktree %s: %w", from, err)
	}
	return nil
}

// PruneWorktrees drops admin files of worktrees whose directory is gone.
func PruneWorktrees(ctx context.Context, dir string) error {
	if err := runGit(ctx, dir, "worktree", "prune"); err != nil {
		return fmt.Errorf("prune worktrees: %w", err)
	}
	return nil
}
