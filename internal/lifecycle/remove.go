package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/raphi011/em/internal/log"
)

// RemoveOptions relax the safety checks of Remove.
type RemoveOptions struct {
	DiscardChanges bool // remove even if the worktree has uncommitted changes
	DiscardCommits bool // remove even if the tip is on no remote branch
}

var errMainWorktree = errors.New("the main worktree of an adopted repository cannot be removed")

// Remove deletes the worktree bound to name and then the local branch.
func (e *Engine) Remove(ctx context.Context, name string, opts RemoveOptions) (Result, error) {
	const op = "remove"
	st, err := e.load(ctx)
	if err != nil {
		return Result{}, newError(op, ErrGit, name, "", err)
	}
	if err := e.checkBindings(ctx, op, st, name); err != nil {
		return Result{}, err
	}
	branch, hasLocal := st.local[name]
	wt, bound := st.bound(name)
	if !hasLocal && !bound {
		return Result{}, newError(op, ErrBranchNotFound, name, "", nil)
	}
	if bound && e.isMain(wt) {
		return Result{}, newError(op, ErrUnsafe, name, wt.Path, errMainWorktree)
	}

	if bound && !wt.Prunable && !opts.DiscardChanges {
		dirty, err := e.git.IsDirty(ctx, wt.Path)
		if err != nil {
			return Result{}, newError(op, ErrGit, name, wt.Path, err)
		}
		if dirty {
			return Result{}, newError(op, ErrUnpushedChanges, name, wt.Path,
				errors.New("worktree has uncommitted changes"))
		}
	}
	if hasLocal && !opts.DiscardCommits {
		refs, err := e.git.ContainedIn(ctx, e.repo.GitDir, branch.Commit, "refs/remotes")
		if err != nil {
			return Result{}, newError(op, ErrGit, name, "", err)
		}
		if len(refs) == 0 {
			return Result{}, newError(op, ErrUnpushedChanges, name, "",
				fmt.Errorf("commit %s is not on any remote branch", short(branch.Commit)))
		}
	}

	res := Result{Branch: name}
	if bound {
		res.Path = wt.Path
		if wt.Prunable {
			err = e.git.PruneWorktrees(ctx, e.repo.GitDir)
		} else {
			err = e.git.RemoveWorktree(ctx, e.repo.GitDir, wt.Path, true)
		}
		if err != nil {
			return Result{}, newError(op, ErrGit, name, wt.Path, err)
		}
	}
	if hasLocal {
		if err := e.git.DeleteBranch(ctx, e.repo.GitDir, name, true); err != nil {
			return Result{}, newError(op, ErrGit, name, "", err)
		}
	}
	log.FromContext(ctx).Debug("removed branch", "branch", name, "path", res.Path)
	return res, nil
}

// RenameOptions control Rename.
type RenameOptions struct {
	Autostash bool // carry uncommitted changes over with git stash

	// BeforeRemove runs once the new worktree exists and before the old one
	// is removed. Used to carry ignored files over.
	BeforeRemove func(ctx context.Context, oldPath, newPath string)
}

// Rename moves branch from to the name to. The new branch and worktree are
// created first, then the old worktree and branch are removed. A crash in
// between leaves both branches at the same commit; `em doctor` reports the
// pair and `em rm` of the old name finishes the rename.
func (e *Engine) Rename(ctx context.Context, from, to string, opts RenameOptions) (Result, error) {
	const op = "rename"
	st, err := e.load(ctx)
	if err != nil {
		return Result{}, newError(op, ErrGit, from, "", err)
	}
	if err := e.checkConsistent(ctx, op, st, from); err != nil {
		return Result{}, err
	}
	if err := e.checkBindings(ctx, op, st, to); err != nil {
		return Result{}, err
	}
	branch, ok := st.local[from]
	if !ok {
		return Result{}, newError(op, ErrBranchNotFound, from, "", nil)
	}
	toPath := e.paths.PathFor(to)
	if _, ok := st.local[to]; ok {
		return Result{}, newError(op, ErrTargetAlreadyExists, to, "", nil)
	}
	if _, ok := st.bound(to); ok {
		return Result{}, newError(op, ErrTargetAlreadyExists, to, "", nil)
	}
	if pathExists(toPath) {
		return Result{}, newError(op, ErrTargetAlreadyExists, to, toPath, errPathExists)
	}

	wt, bound := st.bound(from)
	if bound && e.isMain(wt) {
		return Result{}, newError(op, ErrUnsafe, from, wt.Path, errMainWorktree)
	}
	dirty := false
	if bound {
		if dirty, err = e.git.IsDirty(ctx, wt.Path); err != nil {
			return Result{}, newError(op, ErrGit, from, wt.Path, err)
		}
		if dirty && !opts.Autostash {
			return Result{}, newError(op, ErrUncommittedChanges, from, wt.Path, nil)
		}
	}

	logger := log.FromContext(ctx)
	undo := context.WithoutCancel(ctx)

	var stash string
	if dirty {
		stash, err = e.git.Stash(ctx, wt.Path, StashMessage(from, to))
		if err != nil {
			return Result{}, newError(op, ErrGit, from, wt.Path, err)
		}
		logger.Debug("stashed changes", "branch", from, "stash", stash)
	}
	restore := func() {
		if stash != "" {
			e.rollback(ctx, "restore stash in "+wt.Path, e.git.StashApply(undo, wt.Path, stash))
		}
	}

	if err := e.git.CreateBranch(ctx, e.repo.GitDir, to, branch.Commit); err != nil {
		restore()
		return Result{}, newError(op, ErrGit, to, "", err)
	}
	res := Result{Branch: to}
	if bound {
		if res.Path, err = e.bind(ctx, op, to, true); err != nil {
			restore()
			return Result{}, err
		}
		res.Created = true
	}
	if stash != "" {
		if err := e.git.StashApply(ctx, res.Path, stash); err != nil {
			return Result{}, newError(op, ErrGit, to, res.Path,
				fmt.Errorf("changes remain in stash %s: %w", short(stash), err))
		}
	}

	if bound {
		if opts.BeforeRemove != nil {
			opts.BeforeRemove(ctx, wt.Path, res.Path)
		}
		if err := e.git.RemoveWorktree(ctx, e.repo.GitDir, wt.Path, true); err != nil {
			return Result{}, newError(op, ErrGit, from, wt.Path, err)
		}
	}
	if err := e.git.DeleteBranch(ctx, e.repo.GitDir, from, true); err != nil {
		return Result{}, newError(op, ErrGit, from, "", err)
	}
	logger.Debug("renamed branch", "from", from, "to", to, "path", res.Path)
	return res, nil
}

// StashMessage is the message of the stash entry an autostash rename
// creates. `em doctor` looks for it to report interrupted renames.
func StashMessage(from, to string) string {
	return fmt.Sprintf("%s %s -> %s", StashPrefix, from, to)
}

// StashPrefix starts every stash message written by em.
const StashPrefix = "em rename"

func short(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}

