//go:build integration

package main

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

// resolvePath resolves symlinks in a path.
// This is needed on macOS where /var is a symlink to /private/var.
func resolvePath(t *testing.T, path string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		t.Fatalf("failed to resolve path %s: %v", path, err)
	}
	return resolved
}

// runGitCommand runs git in dir and returns its output.
func runGitCommand(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("failed to run git %v: %v\n%s", args, err, out)
	}
	return string(out)
}

// setupOrigin creates a bare repository with one commit on main that
// ignores .env files. Returns its path.
func setupOrigin(t *testing.T, dir string) string {
	t.Helper()
	origin := filepath.Join(dir, "origin.git")
	scratch := filepath.Join(dir, "scratch")

	runGitCommand(t, dir, "init", "--bare", "--quiet", origin)
	runGitCommand(t, origin, "symbolic-ref", "HEAD", "refs/heads/main")
	runGitCommand(t, dir, "init", "--quiet", scratch)
	for _, kv := range [][2]string{
		{"user.email", "test@test.com"},
		{"user.name", "Test User"},
		{"commit.gpgsign", "false"},
	} {
		runGitCommand(t, scratch, "config", kv[0], kv[1])
	}
	if err := os.WriteFile(filepath.Join(scratch, ".gitignore"), []byte(".env\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(scratch, "README.md"), []byte("# model\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	runGitCommand(t, scratch, "add", ".")
	runGitCommand(t, scratch, "commit", "--quiet", "-m", "Initial commit")
	runGitCommand(t, scratch, "push", "--quiet", origin, "HEAD:refs/heads/main")
	return origin
}

// setupEnv isolates em from the user's configuration and shell.
// configTOML, if non-empty, becomes the config file.
func setupEnv(t *testing.T, dir, configTOML string) {
	t.Helper()
	cfgPath := filepath.Join(dir, "config.toml")
	if configTOML != "" {
		if err := os.WriteFile(cfgPath, []byte(configTOML), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv("EM_CONFIG", cfgPath)
	for _, k := range []string{"EM_BRANCH", "EM_CD_FILE", "EM_REMOTE", "EM_WORKTREE_DIR", "EM_THEME"} {
		t.Setenv(k, "")
	}
	for _, kv := range [][2]string{
		{"GIT_AUTHOR_NAME", "Test User"},
		{"GIT_AUTHOR_EMAIL", "test@test.com"},
		{"GIT_COMMITTER_NAME", "Test User"},
		{"GIT_COMMITTER_EMAIL", "test@test.com"},
	} {
		t.Setenv(kv[0], kv[1])
	}
}

// setupProject clones a fresh origin into dir/proj and returns the project
// path. Tests using it cannot run in parallel: em reads the working
// directory and environment.
func setupProject(t *testing.T, configTOML string) string {
	t.Helper()
	tmp := resolvePath(t, t.TempDir())
	setupEnv(t, tmp, configTOML)
	origin := setupOrigin(t, tmp)

	if _, _, err := runEm(t, tmp, "clone", origin, "proj"); err != nil {
		t.Fatalf("em clone: %v", err)
	}
	return filepath.Join(tmp, "proj")
}

// runEm executes the em command line in dir.
func runEm(t *testing.T, dir string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Chdir(dir)

	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err = root.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

// mustEm is runEm that fails the test on error and returns trimmed stdout.
func mustEm(t *testing.T, dir string, args ...string) string {
	t.Helper()
	stdout, stderr, err := runEm(t, dir, args...)
	if err != nil {
		t.Fatalf("em %s: %v\n%s", strings.Join(args, " "), err, stderr)
	}
	return strings.TrimSpace(stdout)
}
