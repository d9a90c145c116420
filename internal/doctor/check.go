package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/raphi011/em/internal/git"
	"github.com/raphi011/em/internal/lifecycle"
	"github.com/raphi011/em/internal/project"
	"github.com/raphi011/em/internal/status"
)

// checkWorktreeIssues reports stale, misplaced and detached worktrees.
func checkWorktreeIssues(repo *project.Repository, wts []git.Worktree) []Issue {
	paths := repo.Resolver()
	var issues []Issue

	for _, wt := range wts {
		if wt.Bare {
			continue
		}
		key := wt.Branch
		if key == "" {
			key = wt.Path
		}

		switch {
		case wt.Prunable:
			issues = append(issues, Issue{
				Kind:        KindStale,
				Key:         key,
				Description: fmt.Sprintf("worktree directory %s is gone", wt.Path),
				FixAction:   FixPrune,
				Category:    CategoryGit,
				Path:        wt.Path,
			})

		case wt.Detached:
			if !isBelow(repo.Root, wt.Path) {
				continue
			}
			issues = append(issues, Issue{
				Kind:        KindDetached,
				Key:         key,
				Description: fmt.Sprintf("worktree has no branch (HEAD at %s)", shortCommit(wt.Commit)),
				Category:    CategoryGit,
				Path:        wt.Path,
			})

		case wt.Branch != "" && wt.Path != repo.Main && wt.Path != paths.PathFor(wt.Branch):
			want := paths.PathFor(wt.Branch)
			issue := Issue{
				Kind:        KindMisplaced,
				Key:         key,
				Description: fmt.Sprintf("worktree is at %s, expected %s", wt.Path, want),
				Category:    CategoryGit,
				Path:        wt.Path,
				Target:      want,
			}
			if _, err := os.Lstat(want); os.IsNotExist(err) {
				issue.FixAction = FixMove
			} else {
				issue.Description += " (occupied)"
			}
			issues = append(issues, issue)
		}
	}
	return issues
}

// checkOrphanDirs reports directories below the root that decode to a
// branch name but are not registered worktrees.
func checkOrphanDirs(repo *project.Repository, wts []git.Worktree) ([]Issue, error) {
	entries, err := os.ReadDir(repo.Root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	registered := make(map[string]bool, len(wts))
	for _, wt := range wts {
		registered[wt.Path] = true
	}

	paths := repo.Resolver()
	var issues []Issue
	for _, e := range entries {
		if !e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		path := filepath.Join(repo.Root, e.Name())
		if registered[path] || path == repo.Main {
			continue
		}
		branch, err := paths.BranchFor(path)
		if err != nil {
			continue
		}
		issues = append(issues, Issue{
			Kind:        KindOrphanDir,
			Key:         branch,
			Description: "directory is not a registered worktree",
			Category:    CategoryOrphan,
			Path:        path,
		})
	}
	return issues, nil
}

// checkDuplicates reports branches without a worktree that point at the
// same commit as a checked-out branch. Checked-out branches sharing a commit
// are noted: a fresh copy looks the same as a rename interrupted after the
// new worktree was added.
func checkDuplicates(branches []git.Branch, wts []git.Worktree) []Issue {
	bound := make(map[string]bool)
	for _, wt := range wts {
		if wt.Branch != "" && !wt.Prunable {
			bound[wt.Branch] = true
		}
	}
	byCommit := make(map[string][]string)
	for _, b := range branches {
		if b.Origin != git.Local || strings.HasPrefix(b.Name, status.ControlPrefix) {
			continue
		}
		byCommit[b.Commit] = append(byCommit[b.Commit], b.Name)
	}

	var issues []Issue
	for commit, names := range byCommit {
		if len(names) < 2 {
			continue
		}
		var withWorktree []string
		for _, n := range names {
			if bound[n] {
				withWorktree = append(withWorktree, n)
			}
		}
		if len(withWorktree) == 0 {
			continue
		}
		if len(withWorktree) > 1 {
			issues = append(issues, Issue{
				Kind: KindSameCommit,
				Key:  strings.Join(withWorktree, ", "),
				Description: fmt.Sprintf("checked out at the same commit (%s); if an em mv between them was interrupted, em rm the old name",
					shortCommit(commit)),
				Category: CategoryInfo,
			})
		}
		for _, n := range names {
			if bound[n] {
				continue
			}
			issues = append(issues, Issue{
				Kind: KindDuplicate,
				Key:  n,
				Description: fmt.Sprintf("not checked out and at the same commit (%s) as %s; interrupted rename or copy? (em rm %s)",
					shortCommit(commit), strings.Join(withWorktree, ", "), n),
				Category: CategoryInterrupted,
			})
		}
	}
	slices.SortFunc(issues, func(a, b Issue) int { return strings.Compare(a.Key, b.Key) })
	return issues
}

// checkStashes reports stash entries left by an autostash rename.
func checkStashes(stashes []git.StashEntry) []Issue {
	var issues []Issue
	for _, s := range stashes {
		i := strings.Index(s.Subject, lifecycle.StashPrefix)
		if i < 0 {
			continue
		}
		issues = append(issues, Issue{
			Kind:        KindStash,
			Key:         fmt.Sprintf("stash@{%d}", s.Index),
			Description: fmt.Sprintf("changes from an unfinished %q (git stash apply %s)", s.Subject[i:], shortCommit(s.Commit)),
			Category:    CategoryInterrupted,
		})
	}
	return issues
}

func isBelow(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	return err == nil && rel != "." && !strings.HasPrefix(rel, "..")
}

func shortCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
