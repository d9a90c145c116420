package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestParseWorktrees(t *testing.T) {
	t.Parallel()

	out := `worktree /p/.em/repo
bare

worktree /p/exp1
HEAD 1111111111111111111111111111111111111111
branch refs/heads/exp1

worktree /p/detached
HEAD 2222222222222222222222222222222222222222
detached

worktree /p/gone
HEAD 3333333333333333333333333333333333333333
branch refs/heads/gone
locked manual
prunable gitdir file points to non-existent location
`
	got := parseWorktrees(out)
	if len(got) != 4 {
		t.Fatalf("parseWorktrees() returned %d entries, want 4: %+v", len(got), got)
	}

	tests := []struct {
		idx  int
		want Worktree
	}{
		{0, Worktree{Path: "/p/.em/repo", Bare: true}},
		{1, Worktree{Path: "/p/exp1", Branch: "exp1", Commit: "1111111111111111111111111111111111111111"}},
		{2, Worktree{Path: "/p/detached", Commit: "2222222222222222222222222222222222222222", Detached: true}},
		{3, Worktree{Path: "/p/gone", Branch: "gone", Commit: "3333333333333333333333333333333333333333", Locked: true, Prunable: true}},
	}
	for _, tt := range tests {
		if got[tt.idx] != tt.want {
			t.Errorf("worktree[%d] = %+v, want %+v", tt.idx, got[tt.idx], tt.want)
		}
	}
}

func TestParseWorktrees_Empty(t *testing.T) {
	t.Parallel()
	if got := parseWorktrees(""); len(got) != 0 {
		t.Errorf("parseWorktrees(\"\") = %+v, want none", got)
	}
}

// TestWorktreeLifecycle covers add, list, move, remove and prune.
//
// Scenario: add a worktree, move it, delete its directory behind git's back
// Expected: list reflects each change and prune clears the stale entry
func TestWorktreeLifecycle(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := setupBareRepo(t)
	base := filepath.Dir(filepath.Dir(repo))

	wt := addTestWorktree(t, repo, "exp1")
	wts, err := ListWorktrees(ctx, repo)
	if err != nil {
		t.Fatal(err)
	}
	if !hasWorktree(wts, wt, "exp1") {
		t.Fatalf("exp1 worktree not listed: %+v", wts)
	}
	if !wts[0].Bare {
		t.Errorf("main worktree should be bare: %+v", wts[0])
	}

	moved := filepath.Join(base, "moved")
	if err := MoveWorktree(ctx, repo, wt, moved); err != nil {
		t.Fatalf("MoveWorktree() error = %v", err)
	}
	wts, _ = ListWorktrees(ctx, repo)
	if !hasWorktree(wts, moved, "exp1") {
		t.Fatalf("moved worktree not listed: %+v", wts)
	}

	if err := os.RemoveAll(moved); err != nil {
		t.Fatal(err)
	}
	wts, _ = ListWorktrees(ctx, repo)
	for _, w := range wts {
		if w.Path == moved && !w.Prunable {
			t.Errorf("deleted worktree should be prunable: %+v", w)
		}
	}
	if err := PruneWorktrees(ctx, repo); err != nil {
		t.Fatal(err)
	}
	wts, _ = ListWorktrees(ctx, repo)
	if len(wts) != 1 {
		t.Errorf("after prune got %d worktrees, want 1", len(wts))
	}
}

func TestRemoveWorktree_DirtyNeedsForce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := setupBareRepo(t)
	wt := addTestWorktree(t, repo, "exp1")
	writeFile(t, filepath.Join(wt, "scratch.txt"), "wip\n")

	if err := RemoveWorktree(ctx, repo, wt, false); err == nil {
		t.Fatal("RemoveWorktree() without force should fail on untracked files")
	}
	if err := RemoveWorktree(ctx, repo, wt, true); err != nil {
		t.Fatalf("RemoveWorktree(force) error = %v", err)
	}
	if _, err := os.Stat(wt); !os.IsNotExist(err) {
		t.Errorf("worktree directory still exists: %v", err)
	}
}

func hasWorktree(wts []Worktree, path, branch string) bool {
	for _, w := range wts {
		if w.Path == path && w.Branch == branch {
			return true
		}
	}
	return false
}
