package doctor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/raphi011/em/internal/cmd"
	"github.com/raphi011/em/internal/git"
	"github.com/raphi011/em/internal/lifecycle"
	"github.com/raphi011/em/internal/output"
	"github.com/raphi011/em/internal/project"
)

func gitRun(t *testing.T, dir string, args ...string) {
	t.Helper()
	if err := cmd.RunContext(context.Background(), dir, "git", args...); err != nil {
		t.Fatalf("git %v: %v", args, err)
	}
}

// setupProject clones a one-commit origin into a fresh project.
func setupProject(t *testing.T) (*project.Repository, *lifecycle.Engine) {
	t.Helper()
	ctx := context.Background()
	tmp, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	origin := filepath.Join(tmp, "origin.git")
	seed := filepath.Join(tmp, "seed")
	gitRun(t, "", "init", "--quiet", "--bare", origin)
	gitRun(t, "", "clone", "--quiet", origin, seed)
	for _, args := range [][]string{
		{"config", "user.email", "test@test.com"},
		{"config", "user.name", "Test User"},
		{"config", "commit.gpgsign", "false"},
		{"symbolic-ref", "HEAD", "refs/heads/main"},
		{"commit", "-q", "--allow-empty", "-m", "Initial commit"},
		{"push", "-q", "origin", "main"},
	} {
		gitRun(t, seed, args...)
	}

	dest, err := lifecycle.Clone(ctx, nil, lifecycle.CloneOptions{URL: origin, Dest: filepath.Join(tmp, "proj")})
	if err != nil {
		t.Fatal(err)
	}
	gitDir := project.RepoPath(dest)
	gitRun(t, gitDir, "config", "user.email", "test@test.com")
	gitRun(t, gitDir, "config", "user.name", "Test User")
	repo, err := project.Load(ctx, dest, nil)
	if err != nil {
		t.Fatal(err)
	}
	return repo, lifecycle.New(repo, nil)
}

func kinds(issues []Issue) map[string]Issue {
	out := make(map[string]Issue)
	for _, i := range issues {
		out[i.Kind+":"+i.Key] = i
	}
	return out
}

func TestCheck_Healthy(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, eng := setupProject(t)
	if _, err := eng.Checkout(ctx, "main"); err != nil {
		t.Fatal(err)
	}

	issues, stats, err := Check(ctx, repo)
	if err != nil {
		t.Fatal(err)
	}
	if len(issues) != 0 {
		t.Errorf("Check() = %+v, want no issues", issues)
	}
	if stats.Healthy != 1 {
		t.Errorf("Healthy = %d, want 1", stats.Healthy)
	}
}

// TestRun_FindsAndFixes covers every issue kind.
//
// Scenario: a deleted worktree, a hand-placed worktree, a stray directory,
// a branch duplicating a checked-out one, a detached worktree and an em stash
// Expected: all are reported; --fix prunes and moves, leaving only report-only issues
func TestRun_FindsAndFixes(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, eng := setupProject(t)
	paths := repo.Resolver()

	stale, err := eng.Copy(ctx, "main", "stale")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.RemoveAll(stale.Path); err != nil {
		t.Fatal(err)
	}

	gitRun(t, repo.GitDir, "branch", "moved", "refs/remotes/origin/main")
	handPlaced := filepath.Join(repo.Base, "somewhere-else")
	gitRun(t, repo.GitDir, "worktree", "add", "-q", handPlaced, "moved")

	if err := os.Mkdir(paths.PathFor("orphan"), 0o755); err != nil {
		t.Fatal(err)
	}

	exp, err := eng.Copy(ctx, "main", "exp1")
	if err != nil {
		t.Fatal(err)
	}
	gitRun(t, repo.GitDir, "branch", "exp1-copy", "exp1")

	detached := paths.PathFor("detached")
	gitRun(t, repo.GitDir, "worktree", "add", "-q", "--detach", detached, "refs/remotes/origin/main")

	if err := os.WriteFile(filepath.Join(exp.Path, "wip.txt"), []byte("wip\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := git.Stash(ctx, exp.Path, lifecycle.StashMessage("exp1", "exp2")); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	ctx = output.WithPrinter(ctx, output.New(&buf, ""))
	issues, err := Run(ctx, repo, false)
	if err != nil {
		t.Fatal(err)
	}

	got := kinds(issues)
	for _, key := range []string{
		KindStale + ":stale",
		KindMisplaced + ":moved",
		KindOrphanDir + ":orphan",
		KindDuplicate + ":exp1-copy",
		KindDetached + ":" + detached,
		KindStash + ":stash@{0}",
	} {
		if _, ok := got[key]; !ok {
			t.Errorf("missing issue %s in %+v", key, issues)
		}
	}
	if _, ok := got[KindDuplicate+":exp1"]; ok {
		t.Error("checked-out branch exp1 should not be reported as duplicate")
	}
	if got[KindMisplaced+":moved"].FixAction != FixMove {
		t.Errorf("misplaced worktree should be movable: %+v", got[KindMisplaced+":moved"])
	}
	if !strings.Contains(buf.String(), "em doctor --fix") {
		t.Errorf("output should suggest --fix:\n%s", buf.String())
	}

	buf.Reset()
	if _, err := Run(ctx, repo, true); err != nil {
		t.Fatalf("Run(fix) error = %v\n%s", err, buf.String())
	}
	if _, err := os.Stat(paths.PathFor("moved")); err != nil {
		t.Errorf("moved worktree not at canonical path: %v", err)
	}

	issues, _, err = Check(ctx, repo)
	if err != nil {
		t.Fatal(err)
	}
	for _, i := range issues {
		if i.FixAction != "" {
			t.Errorf("fixable issue remains after --fix: %+v", i)
		}
	}
}

// TestCheckDuplicates_BothCheckedOut covers a rename interrupted after the
// new worktree was added.
//
// Scenario: exp1 and exp2 are both checked out at one commit, old has no worktree
// Expected: exp1/exp2 get a same-commit note, old is a duplicate, neither
// note counts as a problem
func TestCheckDuplicates_BothCheckedOut(t *testing.T) {
	t.Parallel()
	const commit = "0123456789abcdef0123456789abcdef01234567"
	branches := []git.Branch{
		{Name: "exp1", Origin: git.Local, Commit: commit},
		{Name: "exp2", Origin: git.Local, Commit: commit},
		{Name: "old", Origin: git.Local, Commit: commit},
		{Name: "exp1", Origin: git.Remote, Commit: commit},
		{Name: "solo", Origin: git.Local, Commit: "fedcba9876543210fedcba9876543210fedcba98"},
	}
	wts := []git.Worktree{
		{Path: "/p/exp1", Branch: "exp1", Commit: commit},
		{Path: "/p/exp2", Branch: "exp2", Commit: commit},
	}

	got := kinds(checkDuplicates(branches, wts))
	note, ok := got[KindSameCommit+":exp1, exp2"]
	if !ok {
		t.Fatalf("missing same-commit note in %+v", got)
	}
	if note.Category != CategoryInfo || note.FixAction != "" {
		t.Errorf("same-commit note = %+v, want report-only info", note)
	}
	if !strings.Contains(note.Description, "0123456") {
		t.Errorf("description should name the commit: %q", note.Description)
	}
	if _, ok := got[KindDuplicate+":old"]; !ok {
		t.Errorf("missing duplicate for old in %+v", got)
	}
	if len(got) != 2 {
		t.Errorf("checkDuplicates() = %+v, want 2 issues", got)
	}
}

// TestRun_NotesOnly verifies notes alone keep the project healthy.
//
// Scenario: exp1 is copied to exp2, so both are checked out at one commit
// Expected: "No issues found" is printed together with the note
func TestRun_NotesOnly(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	repo, eng := setupProject(t)
	if _, err := eng.Copy(ctx, "main", "exp1"); err != nil {
		t.Fatal(err)
	}
	if _, err := eng.Copy(ctx, "exp1", "exp2"); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	ctx = output.WithPrinter(ctx, output.New(&buf, ""))
	issues, err := Run(ctx, repo, false)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := kinds(issues)[KindSameCommit+":exp1, exp2"]; !ok {
		t.Errorf("missing same-commit note in %+v", issues)
	}
	out := buf.String()
	if !strings.Contains(out, "No issues found") || !strings.Contains(out, "Notes:") {
		t.Errorf("Run() output:\n%s", out)
	}
}
