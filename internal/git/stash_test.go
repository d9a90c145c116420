package git

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestStashAcrossWorktrees moves uncommitted work between two worktrees.
//
// Scenario: stash a modified and an untracked file in one worktree, apply in another
// Expected: both files appear in the target and the stash list is empty again
func TestStashAcrossWorktrees(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo := setupBareRepo(t)
	src := addTestWorktree(t, repo, "exp1")
	dst := addTestWorktree(t, repo, "exp2")

	writeFile(t, filepath.Join(src, "README.md"), "# changed\n")
	writeFile(t, filepath.Join(src, "new.txt"), "new\n")

	commit, err := Stash(ctx, src, "em rename exp1 -> exp2")
	if err != nil {
		t.Fatalf("Stash() error = %v", err)
	}
	if dirty, _ := IsDirty(ctx, src); dirty {
		t.Error("source still dirty after stash")
	}

	entries, err := ListStashes(ctx, repo)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Commit != commit || !strings.Contains(entries[0].Subject, "em rename") {
		t.Fatalf("ListStashes() = %+v", entries)
	}

	if err := StashApply(ctx, dst, commit); err != nil {
		t.Fatalf("StashApply() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dst, "README.md"))
	if err != nil || string(data) != "# changed\n" {
		t.Errorf("README.md in target = %q, %v", data, err)
	}
	if _, err := os.Stat(filepath.Join(dst, "new.txt")); err != nil {
		t.Errorf("untracked file not restored: %v", err)
	}

	entries, err = ListStashes(ctx, repo)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("stash not dropped: %+v", entries)
	}
}

func TestListStashes_None(t *testing.T) {
	t.Parallel()
	repo := setupBareRepo(t)
	entries, err := ListStashes(context.Background(), repo)
	if err != nil || len(entries) != 0 {
		t.Errorf("ListStashes() = %+v, %v, want none", entries, err)
	}
}
