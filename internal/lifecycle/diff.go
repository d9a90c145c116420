package lifecycle

import (
	"context"
	"errors"
	"slices"

	"github.com/raphi011/em/internal/git"
)

// Diff returns the diff between the tips of branches a and b. Each name is
// looked up as a local branch first, then as a remote-tracking branch.
func (e *Engine) Diff(ctx context.Context, a, b string, opts git.DiffOptions) (string, error) {
	const op = "diff"
	st, err := e.load(ctx)
	if err != nil {
		return "", newError(op, ErrGit, a, "", err)
	}
	from, ok := e.tipRef(st, a)
	if !ok {
		return "", newError(op, ErrBranchNotFound, a, "", nil)
	}
	to, ok := e.tipRef(st, b)
	if !ok {
		return "", newError(op, ErrBranchNotFound, b, "", nil)
	}
	out, err := e.git.Diff(ctx, e.repo.GitDir, from, to, opts)
	if err != nil {
		return "", newError(op, ErrGit, a, "", err)
	}
	return out, nil
}

func (e *Engine) tipRef(st *state, name string) (string, bool) {
	if _, ok := st.local[name]; ok {
		return git.LocalRef(name), true
	}
	if _, ok := st.remote[name]; ok {
		return git.RemoteRef(e.repo.Remote, name), true
	}
	return "", false
}

var errNotCheckedOut = errors.New("branch is not checked out (use em co)")

// Path returns the worktree bound to name, or the project base for "".
func (e *Engine) Path(ctx context.Context, name string) (string, error) {
	const op = "path"
	if name == "" {
		return e.repo.Base, nil
	}
	st, err := e.load(ctx)
	if err != nil {
		return "", newError(op, ErrGit, name, "", err)
	}
	if wt, ok := st.bound(name); ok {
		return wt.Path, nil
	}
	return "", newError(op, ErrBranchNotFound, name, "", errNotCheckedOut)
}

// Branches returns the local branch names, for completion and pickers.
func (e *Engine) Branches(ctx context.Context, withRemote bool) ([]string, error) {
	st, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	for name := range st.local {
		seen[name] = true
		names = append(names, name)
	}
	if withRemote {
		for name := range st.remote {
			if !seen[name] {
				names = append(names, name)
			}
		}
	}
	slices.Sort(names)
	return names, nil
}
