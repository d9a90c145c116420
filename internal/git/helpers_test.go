package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// resolveTempDir creates a temp directory and resolves macOS symlinks.
func resolveTempDir(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	resolved, err := filepath.EvalSymlinks(tmpDir)
	if err != nil {
		t.Fatalf("failed to resolve symlinks for %s: %v", tmpDir, err)
	}
	return resolved
}

// configureTestRepo sets git user config and disables GPG signing.
func configureTestRepo(t *testing.T, repoPath string) {
	t.Helper()
	ctx := context.Background()
	for _, args := range [][]string{
		{"config", "user.email", "test@test.com"},
		{"config", "user.name", "Test User"},
		{"config", "commit.gpgsign", "false"},
	} {
		if err := runGit(ctx, repoPath, args...); err != nil {
			t.Fatalf("failed to run git %v: %v", args, err)
		}
	}
}

// setupOrigin creates a bare "origin" repository whose main branch holds one
// commit. Returns the origin path.
func setupOrigin(t *testing.T, tmpDir string) string {
	t.Helper()
	ctx := context.Background()
	originPath := filepath.Join(tmpDir, "origin.git")
	seedPath := filepath.Join(tmpDir, "seed")

	if err := runGit(ctx, "", "init", "--bare", "-b", "main", originPath); err != nil {
		t.Fatalf("failed to init bare origin: %v", err)
	}
	if err := runGit(ctx, "", "clone", "--quiet", originPath, seedPath); err != nil {
		t.Fatalf("failed to clone origin: %v", err)
	}
	configureTestRepo(t, seedPath)
	writeFile(t, filepath.Join(seedPath, "README.md"), "# test\n")
	for _, args := range [][]string{
		{"symbolic-ref", "HEAD", "refs/heads/main"},
		{"add", "README.md"},
		{"commit", "-q", "-m", "Initial commit"},
		{"push", "-q", "origin", "main"},
	} {
		if err := runGit(ctx, seedPath, args...); err != nil {
			t.Fatalf("failed to run git %v: %v", args, err)
		}
	}
	return originPath
}

// setupBareRepo creates a bare project repository with an "origin" remote
// that has been fetched. Returns the bare repository path.
func setupBareRepo(t *testing.T) string {
	t.Helper()
	ctx := context.Background()
	tmpDir := resolveTempDir(t)
	origin := setupOrigin(t, tmpDir)

	repo := filepath.Join(tmpDir, "project", ".em", "repo")
	if err := InitBare(ctx, repo); err != nil {
		t.Fatal(err)
	}
	configureTestRepo(t, repo)
	if err := AddRemote(ctx, repo, "origin", origin); err != nil {
		t.Fatal(err)
	}
	if err := Fetch(ctx, repo, "origin"); err != nil {
		t.Fatal(err)
	}
	return repo
}

// addTestWorktree creates branch from origin/main and checks it out next to
// the .em directory. Returns the worktree path.
func addTestWorktree(t *testing.T, repo, branch string) string {
	t.Helper()
	ctx := context.Background()
	if err := CreateBranch(ctx, repo, branch, RemoteRef("origin", "main")); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(filepath.Dir(filepath.Dir(repo)), branch)
	if err := AddWorktree(ctx, repo, path, branch); err != nil {
		t.Fatal(err)
	}
	return path
}

// commitFile writes a file in the worktree and commits it.
func commitFile(t *testing.T, wt, name, content string) {
	t.Helper()
	ctx := context.Background()
	writeFile(t, filepath.Join(wt, name), content)
	if err := runGit(ctx, wt, "add", name); err != nil {
		t.Fatal(err)
	}
	if err := runGit(ctx, wt, "commit", "-q", "-m", "add "+name); err != nil {
		t.Fatal(err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}
