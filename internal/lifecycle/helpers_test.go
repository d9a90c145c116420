package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/raphi011/em/internal/cmd"
	"github.com/raphi011/em/internal/git"
	"github.com/raphi011/em/internal/project"
)

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	require.NoError(t, cmd.RunContext(context.Background(), dir, "git", args...), "git %v", args)
}

func configure(t *testing.T, dir string) {
	t.Helper()
	runGit(t, dir, "config", "user.email", "test@test.com")
	runGit(t, dir, "config", "user.name", "Test User")
	runGit(t, dir, "config", "commit.gpgsign", "false")
}

// setupOrigin creates a bare repository whose main branch holds one commit.
func setupOrigin(t *testing.T, tmp string) string {
	t.Helper()
	origin := filepath.Join(tmp, "origin.git")
	seed := filepath.Join(tmp, "seed")
	runGit(t, "", "init", "--quiet", "--bare", origin)
	runGit(t, "", "clone", "--quiet", origin, seed)
	configure(t, seed)
	require.NoError(t, os.WriteFile(filepath.Join(seed, "README.md"), []byte("# test\n"), 0o644))
	runGit(t, seed, "symbolic-ref", "HEAD", "refs/heads/main")
	runGit(t, seed, "add", "README.md")
	runGit(t, seed, "commit", "-q", "-m", "Initial commit")
	runGit(t, seed, "push", "-q", "origin", "main")
	return origin
}

type fixture struct {
	eng    *Engine
	repo   *project.Repository
	origin string
	tmp    string
}

// newFixture clones a fresh origin into a project and opens an engine on it.
// g wraps the git binary when non-nil.
func newFixture(t *testing.T, wrap func(Git) Git) *fixture {
	t.Helper()
	ctx := context.Background()
	tmp, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	origin := setupOrigin(t, tmp)

	dest, err := Clone(ctx, nil, CloneOptions{URL: origin, Dest: filepath.Join(tmp, "proj")})
	require.NoError(t, err)
	configure(t, project.RepoPath(dest))

	repo, err := project.Load(ctx, dest, nil)
	require.NoError(t, err)

	var g Git = CLI{}
	if wrap != nil {
		g = wrap(g)
	}
	return &fixture{eng: New(repo, g), repo: repo, origin: origin, tmp: tmp}
}

func (f *fixture) commit(t *testing.T, wt, name, content string) {
	t.Helper()
	f.write(t, wt, name, content)
	runGit(t, wt, "add", name)
	runGit(t, wt, "commit", "-q", "-m", "add "+name)
}

func (f *fixture) write(t *testing.T, wt, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(wt, name), []byte(content), 0o644))
}

func (f *fixture) tip(t *testing.T, branch string) string {
	t.Helper()
	commit, ok, err := git.RevParse(context.Background(), f.repo.GitDir, git.LocalRef(branch))
	require.NoError(t, err)
	if !ok {
		return ""
	}
	return commit
}

func (f *fixture) worktreesFor(t *testing.T, branch string) []git.Worktree {
	t.Helper()
	wts, err := git.ListWorktrees(context.Background(), f.repo.GitDir)
	require.NoError(t, err)
	var out []git.Worktree
	for _, wt := range wts {
		if wt.Branch == branch {
			out = append(out, wt)
		}
	}
	return out
}

var errInjected = errors.New("injected failure")

// crash is the panic value faultGit uses to simulate a killed process.
type crash struct{ step string }

// faultGit runs real git but fails or crashes before a chosen step.
type faultGit struct {
	Git
	failAt  string
	crashAt string
	calls   []string
}

func (f *faultGit) step(name string) error {
	f.calls = append(f.calls, name)
	if name == f.crashAt {
		panic(crash{step: name})
	}
	if name == f.failAt {
		return fmt.Errorf("%s: %w", name, errInjected)
	}
	return nil
}

func (f *faultGit) CreateRootCommit(ctx context.Context, dir, message string) (string, error) {
	if err := f.step("CreateRootCommit"); err != nil {
		return "", err
	}
	return f.Git.CreateRootCommit(ctx, dir, message)
}

func (f *faultGit) CreateBranch(ctx context.Context, dir, name, start string) error {
	if err := f.step("CreateBranch"); err != nil {
		return err
	}
	return f.Git.CreateBranch(ctx, dir, name, start)
}

func (f *faultGit) CreateTrackingBranch(ctx context.Context, dir, remote, name string) error {
	if err := f.step("CreateTrackingBranch"); err != nil {
		return err
	}
	return f.Git.CreateTrackingBranch(ctx, dir, remote, name)
}

func (f *faultGit) DeleteBranch(ctx context.Context, dir, name string, force bool) error {
	if err := f.step("DeleteBranch"); err != nil {
		return err
	}
	return f.Git.DeleteBranch(ctx, dir, name, force)
}

func (f *faultGit) AddWorktree(ctx context.Context, dir, path, branch string) error {
	if err := f.step("AddWorktree"); err != nil {
		return err
	}
	return f.Git.AddWorktree(ctx, dir, path, branch)
}

func (f *faultGit) RemoveWorktree(ctx context.Context, dir, path string, force bool) error {
	if err := f.step("RemoveWorktree"); err != nil {
		return err
	}
	return f.Git.RemoveWorktree(ctx, dir, path, force)
}

func (f *faultGit) Stash(ctx context.Context, path, message string) (string, error) {
	if err := f.step("Stash"); err != nil {
		return "", err
	}
	return f.Git.Stash(ctx, path, message)
}

func (f *faultGit) StashApply(ctx context.Context, path, commit string) error {
	if err := f.step("StashApply"); err != nil {
		return err
	}
	return f.Git.StashApply(ctx, path, commit)
}

func (f *faultGit) Push(ctx context.Context, dir, remote, branch string) (git.PushResult, error) {
	if err := f.step("Push"); err != nil {
		return git.PushResult{}, err
	}
	return f.Git.Push(ctx, dir, remote, branch)
}

// runCrashing runs op and reports the step it crashed at, or "".
func runCrashing(op func()) (step string) {
	defer func() {
		if r := recover(); r != nil {
			c, ok := r.(crash)
			if !ok {
				panic(r)
			}
			step = c.step
		}
	}()
	op()
	return ""
}
