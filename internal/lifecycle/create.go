package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"github.com/raphi011/em/internal/log"
)

var errPathExists = errors.New("path exists")

// CreateEmpty creates branch name with a single empty root commit and
// binds a worktree to it.
func (e *Engine) CreateEmpty(ctx context.Context, name string) (Result, error) {
	const op = "empty"
	st, err := e.load(ctx)
	if err != nil {
		return Result{}, newError(op, ErrGit, name, "", err)
	}
	if err := e.checkBindings(ctx, op, st, name); err != nil {
		return Result{}, err
	}
	path := e.paths.PathFor(name)
	if _, ok := st.local[name]; ok {
		return Result{}, newError(op, ErrBranchAlreadyExists, name, "", nil)
	}
	if pathExists(path) {
		return Result{}, newError(op, ErrBranchAlreadyExists, name, path, errPathExists)
	}

	commit, err := e.git.CreateRootCommit(ctx, e.repo.GitDir, fmt.Sprintf("Init %q", name))
	if err != nil {
		return Result{}, newError(op, ErrGit, name, "", err)
	}
	if err := e.git.CreateBranch(ctx, e.repo.GitDir, name, commit); err != nil {
		return Result{}, newError(op, ErrGit, name, "", err)
	}
	if path, err = e.bind(ctx, op, name, true); err != nil {
		return Result{}, err
	}
	log.FromContext(ctx).Debug("created empty branch", "branch", name, "commit", commit)
	return Result{Branch: name, Path: path, Created: true}, nil
}

// Copy creates branch dst at the current commit of src and binds a worktree
// to it. src may be a local or a remote branch. Copying a branch onto itself
// is a checkout.
func (e *Engine) Copy(ctx context.Context, src, dst string) (Result, error) {
	const op = "copy"
	if src == dst {
		return e.Checkout(ctx, dst)
	}
	st, err := e.load(ctx)
	if err != nil {
		return Result{}, newError(op, ErrGit, dst, "", err)
	}
	if err := e.checkBindings(ctx, op, st, dst); err != nil {
		return Result{}, err
	}
	path := e.paths.PathFor(dst)
	if _, ok := st.local[dst]; ok {
		return Result{}, newError(op, ErrTargetAlreadyExists, dst, "", nil)
	}
	if _, ok := st.bound(dst); ok {
		return Result{}, newError(op, ErrTargetAlreadyExists, dst, "", nil)
	}
	if pathExists(path) {
		return Result{}, newError(op, ErrTargetAlreadyExists, dst, path, errPathExists)
	}

	commit, _, err := e.resolveSource(ctx, op, st, src, ErrSourceNotFound)
	if err != nil {
		return Result{}, err
	}

	if err := e.git.CreateBranch(ctx, e.repo.GitDir, dst, commit); err != nil {
		return Result{}, newError(op, ErrGit, dst, "", err)
	}
	if path, err = e.bind(ctx, op, dst, true); err != nil {
		return Result{}, err
	}
	log.FromContext(ctx).Debug("copied branch", "from", src, "to", dst, "commit", commit)
	return Result{Branch: dst, Path: path, Created: true}, nil
}

// Checkout returns the worktree bound to name, creating it from the local
// branch or from the remote branch of the same name when there is none.
func (e *Engine) Checkout(ctx context.Context, name string) (Result, error) {
	const op = "checkout"
	st, err := e.load(ctx)
	if err != nil {
		return Result{}, newError(op, ErrGit, name, "", err)
	}
	if err := e.checkConsistent(ctx, op, st, name); err != nil {
		return Result{}, err
	}
	if wt, ok := st.bound(name); ok {
		return Result{Branch: name, Path: wt.Path}, nil
	}

	path := e.paths.PathFor(name)
	if pathExists(path) {
		return Result{}, newError(op, ErrDestinationExists, name, path,
			errors.New("directory exists but is not a worktree"))
	}

	if _, ok := st.local[name]; ok {
		if path, err = e.bind(ctx, op, name, false); err != nil {
			return Result{}, err
		}
		return Result{Branch: name, Path: path, Created: true}, nil
	}

	if _, _, err := e.resolveSource(ctx, op, st, name, ErrBranchNotFound); err != nil {
		return Result{}, err
	}
	if err := e.git.CreateTrackingBranch(ctx, e.repo.GitDir, e.repo.Remote, name); err != nil {
		return Result{}, newError(op, ErrGit, name, "", err)
	}
	if path, err = e.bind(ctx, op, name, true); err != nil {
		return Result{}, err
	}
	log.FromContext(ctx).Debug("checked out remote branch", "remote", e.repo.Remote, "branch", name)
	return Result{Branch: name, Path: path, Created: true}, nil
}
