// Package lifecycle creates, copies, checks out, renames, removes and pushes
// branch worktrees.
//
// Each operation is a short sequence of git primitives. Preconditions are
// checked on a fresh read of the repository before anything changes, network
// steps run before local ones, and new state is created before old state is
// removed. When a later step fails, earlier steps of the same operation are
// undone where that is safe. A process killed between steps leaves either
// the old state or a duplicate that `em doctor`, `em ls` and a retried
// command can see and finish.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/raphi011/em/internal/git"
	"github.com/raphi011/em/internal/log"
	"github.com/raphi011/em/internal/project"
	"github.com/raphi011/em/internal/worktree"
)

// ErrGit marks git failures that fit no other code.
var ErrGit = errors.New("git command failed")

// Result describes the worktree an operation produced or touched.
type Result struct {
	Branch  string
	Path    string
	Created bool // a worktree was bound by this call
}

// Engine runs lifecycle operations against one repository.
type Engine struct {
	repo  *project.Repository
	git   Git
	paths worktree.Resolver
}

// New returns an engine for repo. A nil g uses the git binary.
func New(repo *project.Repository, g Git) *Engine {
	if g == nil {
		g = CLI{}
	}
	return &Engine{repo: repo, git: g, paths: repo.Resolver()}
}

// Repository returns the repository the engine operates on.
func (e *Engine) Repository() *project.Repository { return e.repo }

// state is the part of the repository an operation decides on. It is read
// fresh at the start of every operation.
type state struct {
	local     map[string]git.Branch
	remote    map[string]git.Branch
	worktrees []git.Worktree
}

func (e *Engine) load(ctx context.Context) (*state, error) {
	branches, err := e.git.ListBranches(ctx, e.repo.GitDir, e.repo.Remote)
	if err != nil {
		return nil, err
	}
	wts, err := e.git.ListWorktrees(ctx, e.repo.GitDir)
	if err != nil {
		return nil, err
	}
	st := &state{
		local:     make(map[string]git.Branch),
		remote:    make(map[string]git.Branch),
		worktrees: wts,
	}
	for _, b := range branches {
		if b.Origin == git.Remote {
			st.remote[b.Name] = b
		} else {
			st.local[b.Name] = b
		}
	}
	return st, nil
}

func (st *state) boundTo(branch string) []git.Worktree {
	var out []git.Worktree
	for _, wt := range st.worktrees {
		if wt.Branch == branch && !wt.Bare {
			out = append(out, wt)
		}
	}
	return out
}

func (st *state) bound(branch string) (git.Worktree, bool) {
	wts := st.boundTo(branch)
	if len(wts) == 0 {
		return git.Worktree{}, false
	}
	return wts[0], true
}

func (st *state) registered(path string) (git.Worktree, bool) {
	for _, wt := range st.worktrees {
		if wt.Path == path {
			return wt, true
		}
	}
	return git.Worktree{}, false
}

// checkBindings verifies branch is bound to at most one worktree and its
// canonical path is not registered to anything else.
func (e *Engine) checkBindings(ctx context.Context, op string, st *state, branch string) error {
	path := e.paths.PathFor(branch)
	if wts := st.boundTo(branch); len(wts) > 1 {
		return e.inconsistent(ctx, op, branch, path,
			fmt.Errorf("bound to %d worktrees (%s, %s)", len(wts), wts[0].Path, wts[1].Path))
	}
	if wt, ok := st.registered(path); ok && wt.Branch != branch {
		owner := wt.Branch
		if owner == "" {
			owner = "a detached HEAD"
		}
		return e.inconsistent(ctx, op, branch, path, fmt.Errorf("path is registered to %s", owner))
	}
	return nil
}

// checkConsistent additionally requires the bound worktree to sit at its
// canonical path with its directory present. The main worktree of an
// adopted repository is exempt from the path rule.
func (e *Engine) checkConsistent(ctx context.Context, op string, st *state, branch string) error {
	if err := e.checkBindings(ctx, op, st, branch); err != nil {
		return err
	}
	wt, ok := st.bound(branch)
	if !ok {
		return nil
	}
	if wt.Prunable {
		return e.inconsistent(ctx, op, branch, wt.Path, errors.New("worktree directory is missing"))
	}
	if wt.Path != e.paths.PathFor(branch) && !e.isMain(wt) {
		return e.inconsistent(ctx, op, branch, wt.Path,
			fmt.Errorf("worktree is not at %s", e.paths.PathFor(branch)))
	}
	return nil
}

func (e *Engine) isMain(wt git.Worktree) bool {
	return e.repo.Main != "" && wt.Path == e.repo.Main
}

func (e *Engine) inconsistent(ctx context.Context, op, branch, path string, cause error) error {
	log.FromContext(ctx).Warnf("internal inconsistency in %s %s: %v", op, branch, cause)
	return newError(op, ErrInconsistent, branch, path, cause)
}

// resolveSource returns the commit of branch, preferring the local branch,
// then the cached remote-tracking ref, then fetching it from the remote.
// fromRemote reports whether the commit came from the remote.
func (e *Engine) resolveSource(ctx context.Context, op string, st *state, branch string, notFound error) (commit string, fromRemote bool, err error) {
	if b, ok := st.local[branch]; ok {
		return b.Commit, false, nil
	}
	if b, ok := st.remote[branch]; ok {
		return b.Commit, true, nil
	}

	log.FromContext(ctx).Debug("fetching branch", "remote", e.repo.Remote, "branch", branch)
	if err := e.git.FetchBranch(ctx, e.repo.GitDir, e.repo.Remote, branch); err != nil {
		if errors.Is(err, git.ErrRemoteRefNotFound) {
			return "", false, newError(op, notFound, branch, "", nil)
		}
		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", false, newError(op, ErrRemoteUnavailable, branch, "", err)
	}
	commit, ok, err := e.git.RevParse(ctx, e.repo.GitDir, git.RemoteRef(e.repo.Remote, branch))
	if err != nil {
		return "", false, newError(op, ErrGit, branch, "", err)
	}
	if !ok {
		return "", false, newError(op, notFound, branch, "", nil)
	}
	return commit, true, nil
}

// bind checks out branch at its canonical path. If that fails and
// createdBranch is set, the branch is deleted again.
func (e *Engine) bind(ctx context.Context, op, branch string, createdBranch bool) (string, error) {
	path := e.paths.PathFor(branch)
	if err := e.git.AddWorktree(ctx, e.repo.GitDir, path, branch); err != nil {
		if createdBranch {
			undo := context.WithoutCancel(ctx)
			e.rollback(ctx, "delete branch "+branch, e.git.DeleteBranch(undo, e.repo.GitDir, branch, true))
		}
		return "", newError(op, ErrGit, branch, path, err)
	}
	return path, nil
}

// rollback logs a failed compensation step. The original error is what the
// caller reports.
func (e *Engine) rollback(ctx context.Context, step string, err error) {
	if err != nil {
		log.FromContext(ctx).Warnf("rollback failed (%s): %v", step, err)
	}
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
