package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/raphi011/em/internal/git"
	"github.com/raphi011/em/internal/log"
	"github.com/raphi011/em/internal/project"
)

// PushResult is the outcome of Push.
type PushResult struct {
	Branch   string
	Remote   string
	UpToDate bool
	Created  bool   // the remote branch did not exist before
	Summary  string // git's summary, e.g. "abc123..def456"
}

// Push pushes branch name to the same name on the configured remote.
func (e *Engine) Push(ctx context.Context, name string) (PushResult, error) {
	const op = "push"
	st, err := e.load(ctx)
	if err != nil {
		return PushResult{}, newError(op, ErrGit, name, "", err)
	}
	if _, ok := st.local[name]; !ok {
		return PushResult{}, newError(op, ErrBranchNotFound, name, "", nil)
	}
	if wt, ok := st.bound(name); ok && !wt.Prunable {
		if dirty, err := e.git.IsDirty(ctx, wt.Path); err == nil && dirty {
			log.FromContext(ctx).Warnf("%s has uncommitted changes that will not be pushed", name)
		}
	}

	res, err := e.git.Push(ctx, e.repo.GitDir, e.repo.Remote, name)
	if err != nil {
		if ctx.Err() != nil {
			return PushResult{}, ctx.Err()
		}
		// Without a status line git never talked to the remote, unless it
		// refused the credentials.
		if !git.PushRejected(err) && res.Flag == 0 {
			return PushResult{}, newError(op, ErrRemoteUnavailable, name, "", err)
		}
		return PushResult{}, newError(op, ErrRemoteRejected, name, "", err)
	}
	return PushResult{
		Branch:   name,
		Remote:   e.repo.Remote,
		UpToDate: res.UpToDate(),
		Created:  res.Created(),
		Summary:  res.Summary,
	}, nil
}

// CloneOptions configure Clone.
type CloneOptions struct {
	URL    string
	Dest   string // project directory; defaults to DefaultDest(URL)
	Remote string // remote name; defaults to origin
}

// Clone creates a new project at opts.Dest holding a bare clone of opts.URL.
// The project is assembled in a temporary sibling directory and renamed into
// place, so an interrupted clone leaves no half-built project behind.
func Clone(ctx context.Context, g Git, opts CloneOptions) (string, error) {
	const op = "clone"
	if g == nil {
		g = CLI{}
	}
	if opts.Remote == "" {
		opts.Remote = "origin"
	}
	dest := opts.Dest
	if dest == "" {
		dest = DefaultDest(opts.URL)
	}
	dest, err := filepath.Abs(dest)
	if err != nil {
		return "", newError(op, ErrGit, "", opts.Dest, err)
	}
	if pathExists(dest) {
		return "", newError(op, ErrDestinationExists, "", dest, nil)
	}

	if _, err := g.LsRemote(ctx, "", opts.URL); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", newError(op, ErrRemoteUnavailable, "", opts.URL, err)
	}

	tmp, err := os.MkdirTemp(filepath.Dir(dest), "."+filepath.Base(dest)+".clone-")
	if err != nil {
		return "", newError(op, ErrGit, "", dest, err)
	}
	if err := buildProject(ctx, g, tmp, opts.URL, opts.Remote); err != nil {
		_ = os.RemoveAll(tmp)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", newError(op, ErrRemoteUnavailable, "", opts.URL, err)
	}
	// Rename would silently replace an empty directory created meanwhile.
	if pathExists(dest) {
		_ = os.RemoveAll(tmp)
		return "", newError(op, ErrDestinationExists, "", dest, nil)
	}
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.RemoveAll(tmp)
		return "", newError(op, ErrDestinationExists, "", dest, err)
	}
	log.FromContext(ctx).Debug("cloned", "url", opts.URL, "dest", dest)
	return dest, nil
}

// buildProject creates .em/repo below base as a bare repository fetched
// from url.
func buildProject(ctx context.Context, g Git, base, url, remote string) error {
	gitDir := project.RepoPath(base)
	if err := g.InitBare(ctx, gitDir); err != nil {
		return err
	}
	if err := g.AddRemote(ctx, gitDir, remote, url); err != nil {
		return err
	}
	return g.Fetch(ctx, gitDir, remote)
}

// DefaultDest derives the project directory name from a clone URL:
// the last path element without a trailing .git.
func DefaultDest(url string) string {
	name := strings.TrimRight(url, "/")
	if i := strings.LastIndexAny(name, "/:"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".git")
	if name == "" {
		return "repo"
	}
	return name
}

// InitOptions configure Init.
type InitOptions struct {
	Base   string // directory to turn into a project
	Target string // existing repository path or clone URL; empty means the repository enclosing Base
	Remote string
}

// Init makes Base a project. An existing repository is adopted by
// pointing .em/repo at it; anything else is cloned into .em/repo.
func Init(ctx context.Context, g Git, opts InitOptions) (*project.Repository, error) {
	const op = "init"
	if g == nil {
		g = CLI{}
	}
	if opts.Remote == "" {
		opts.Remote = "origin"
	}
	entry := project.RepoPath(opts.Base)
	if pathExists(entry) {
		return nil, newError(op, ErrDestinationExists, "", entry, errors.New("already an em project"))
	}

	target := opts.Target
	if target == "" {
		top, err := git.Toplevel(ctx, opts.Base)
		if err != nil {
			return nil, newError(op, ErrNotFound, "", opts.Base,
				errors.New("no git repository found; pass a repository path or URL"))
		}
		target = top
	}

	if git.IsRepo(ctx, target) {
		if err := project.Adopt(ctx, opts.Base, target); err != nil {
			return nil, newError(op, ErrGit, "", target, err)
		}
	} else {
		if _, err := g.LsRemote(ctx, "", target); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, newError(op, ErrRemoteUnavailable, "", target, err)
		}
		if err := initClone(ctx, g, opts.Base, target, opts.Remote); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, newError(op, ErrRemoteUnavailable, "", target, err)
		}
	}

	repo, err := project.Load(ctx, opts.Base, nil)
	if err != nil {
		return nil, newError(op, ErrGit, "", opts.Base, err)
	}
	repo.Remote = opts.Remote
	return repo, nil
}

// initClone builds .em in a temporary directory below base and renames it
// into place.
func initClone(ctx context.Context, g Git, base, url, remote string) error {
	tmp, err := os.MkdirTemp(base, ".em-init-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(tmp)
	if err := buildProject(ctx, g, tmp, url, remote); err != nil {
		return err
	}
	if err := os.Rename(filepath.Join(tmp, project.MarkerDir), filepath.Join(base, project.MarkerDir)); err != nil {
		return fmt.Errorf("move repository into place: %w", err)
	}
	return nil
}
