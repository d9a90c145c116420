package lifecycle

import (
	"context"

	"github.com/raphi011/em/internal/git"
)

// Git is the set of git primitives the engine composes. The default
// implementation is CLI; tests substitute one that fails or panics at a
// chosen step.
type Git interface {
	ListBranches(ctx context.Context, dir, remote string) ([]git.Branch, error)
	ListWorktrees(ctx context.Context, dir string) ([]git.Worktree, error)
	RevParse(ctx context.Context, dir, ref string) (string, bool, error)
	IsDirty(ctx context.Context, path string) (bool, error)
	ContainedIn(ctx context.Context, dir, commit, prefix string) ([]string, error)

	LsRemote(ctx context.Context, dir, remote string) ([]git.Branch, error)
	InitBare(ctx context.Context, path string) error
	AddRemote(ctx context.Context, dir, name, url string) error
	Fetch(ctx context.Context, dir, remote string) error
	FetchBranch(ctx context.Context, dir, remote, name string) error
	Push(ctx context.Context, dir, remote, branch string) (git.PushResult, error)

	CreateRootCommit(ctx context.Context, dir, message string) (string, error)
	CreateBranch(ctx context.Context, dir, name, start string) error
	CreateTrackingBranch(ctx context.Context, dir, remote, name string) error
	DeleteBranch(ctx context.Context, dir, name string, force bool) error
	AddWorktree(ctx context.Context, dir, path, branch string) error
	RemoveWorktree(ctx context.Context, dir, path string, force bool) error
	PruneWorktrees(ctx context.Context, dir string) error
	Stash(ctx context.Context, path, message string) (string, error)
	StashApply(ctx context.Context, path, commit string) error

	Diff(ctx context.Context, dir, from, to string, opts git.DiffOptions) (string, error)
}

// CLI runs the git binary.
type CLI struct{}

var _ Git = CLI{}

func (CLI) ListBranches(ctx context.Context, dir, remote string) ([]git.Branch, error) {
	return git.ListBranches(ctx, dir, remote)
}

func (CLI) ListWorktrees(ctx context.Context, dir string) ([]git.Worktree, error) {
	return git.ListWorktrees(ctx, dir)
}

func (CLI) RevParse(ctx context.Context, dir, ref string) (string, bool, error) {
	return git.RevParse(ctx, dir, ref)
}

func (CLI) IsDirty(ctx context.Context, path string) (bool, error) {
	return git.IsDirty(ctx, path)
}

func (CLI) ContainedIn(ctx context.Context, dir, commit, prefix string) ([]string, error) {
	return git.ContainedIn(ctx, dir, commit, prefix)
}

func (CLI) LsRemote(ctx context.Context, dir, remote string) ([]git.Branch, error) {
	return git.LsRemote(ctx, dir, remote)
}

func (CLI) InitBare(ctx context.Context, path string) error {
	return git.InitBare(ctx, path)
}

func (CLI) AddRemote(ctx context.Context, dir, name, url string) error {
	return git.AddRemote(ctx, dir, name, url)
}

func (CLI) Fetch(ctx context.Context, dir, remote string) error {
	return git.Fetch(ctx, dir, remote)
}

func (CLI) FetchBranch(ctx context.Context, dir, remote, name string) error {
	return git.FetchBranch(ctx, dir, remote, name)
}

func (CLI) Push(ctx context.Context, dir, remote, branch string) (git.PushResult, error) {
	return git.Push(ctx, dir, remote, branch)
}

func (CLI) CreateRootCommit(ctx context.Context, dir, message string) (string, error) {
	return git.CreateRootCommit(ctx, dir, message)
}

func (CLI) CreateBranch(ctx context.Context, dir, name, start string) error {
	return git.CreateBranch(ctx, dir, name, start)
}

func (CLI) CreateTrackingBranch(ctx context.Context, dir, remote, name string) error {
	return git.CreateTrackingBranch(ctx, dir, remote, name)
}

func (CLI) DeleteBranch(ctx context.Context, dir, name string, force bool) error {
	return git.DeleteBranch(ctx, dir, name, force)
}

func (CLI) AddWorktree(ctx context.Context, dir, path, branch string) error {
	return git.AddWorktree(ctx, dir, path, branch)
}

func (CLI) RemoveWorktree(ctx context.Context, dir, path string, force bool) error {
	return git.RemoveWorktree(ctx, dir, path, force)
}

func (CLI) PruneWorktrees(ctx context.Context, dir string) error {
	return git.PruneWorktrees(ctx, dir)
}

func (CLI) Stash(ctx context.Context, path, message string) (string, error) {
	return git.Stash(ctx, path, message)
}

func (CLI) StashApply(ctx context.Context, path, commit string) error {
	return git.StashApply(ctx, path, commit)
}

func (CLI) Diff(ctx context.Context, dir, from, to string, opts git.DiffOptions) (string, error) {
	return git.Diff(ctx, dir, from, to, opts)
}
