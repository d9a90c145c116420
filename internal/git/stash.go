package git

import (
	"context"
	"fmt"
	"strings"
)

// StashEntry is one entry of `git stash list`.
type StashEntry struct {
	Index   int
	Commit  string
	Subject string // reflog subject, "On <branch>: <message>"
}

// Stash saves tracked and untracked changes of the worktree at path under
// message and returns the stash commit id.
func Stash(ctx context.Context, path, message string) (string, error) {
	if err := runGit(ctx, path, "stash", "push", "--include-untracked", "-m", message); err != nil {
		return "", fmt.Errorf("failed to stash changes: %w", err)
	}
	commit, err := lineGit(ctx, path, "rev-parse", "--verify", "refs/stash")
	if err != nil {
		return "", fmt.Errorf("failed to read stash: %w", err)
	}
	return commit, nil
}

// StashApply applies the stash commit to the worktree at path and drops its
// entry from the stash list.
func StashApply(ctx context.Context, path, commit string) error {
	if err := runGit(ctx, path, "stash", "apply", "--index", commit); err != nil {
		return fmt.Errorf("failed to apply stash %s: %w", commit, err)
	}
	entries, err := ListStashes(ctx, path)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.Commit == commit {
			return runGit(ctx, path, "stash", "drop", "--quiet", fmt.Sprintf("stash@{%d}", e.Index))
		}
	}
	return nil
}

// ListStashes returns the repository's stash entries, newest first.
// It reads the stash reflog directly so it also works from a bare repository.
func ListStashes(ctx context.Context, dir string) ([]StashEntry, error) {
	_, ok, err := RevParse(ctx, dir, "refs/stash")
	if err != nil || !ok {
		return nil, err
	}
	out, err := outputGit(ctx, dir, "log", "--walk-reflogs", "--format=%H%x00%gs", "refs/stash")
	if err != nil {
		return nil, fmt.Errorf("list stashes: %w", err)
	}
	var entries []StashEntry
	for i, line := range splitLines(out) {
		commit, subject, _ := strings.Cut(line, "\x00")
		entries = append(entries, StashEntry{Index: i, Commit: commit, Subject: subject})
	}
	return entries, nil
}
