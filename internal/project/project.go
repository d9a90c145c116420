// Package project locates and opens em projects.
//
// A project is a base directory holding a .em directory. .em/repo is either
// a bare repository created by clone, or a file naming an existing
// repository adopted by init. Worktrees live directly below the worktrees
// root, which defaults to the base directory. A configured worktree_dir gets
// one subdirectory per project.
package project

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/raphi011/em/internal/config"
	"github.com/raphi011/em/internal/git"
	"github.com/raphi011/em/internal/worktree"
)

// MarkerDir is the directory that marks a project base.
const MarkerDir = ".em"

// ErrNotProject is returned when no project encloses the start directory.
var ErrNotProject = errors.New("not inside an em project (no .em directory found)")

// Repository is the handle for one project, opened once per invocation.
type Repository struct {
	Base   string // project base directory
	GitDir string // directory git commands run against
	Root   string // worktrees root
	Remote string

	// Main is the main worktree of an adopted repository, empty for bare clones.
	Main string
}

// Resolver returns the path resolver for the worktrees root.
func (r *Repository) Resolver() worktree.Resolver {
	return worktree.Resolver{Root: r.Root}
}

// RepoPath returns the location of the repository entry below base.
func RepoPath(base string) string {
	return filepath.Join(base, MarkerDir, "repo")
}

// Find walks up from start to the nearest directory containing .em.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	// git reports worktree paths with symlinks resolved.
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	for {
		info, err := os.Stat(filepath.Join(dir, MarkerDir))
		if err == nil && info.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrNotProject
		}
		dir = parent
	}
}

// ProjectPlaceholder in worktree_dir is replaced by the project's directory name.
const ProjectPlaceholder = "{project}"

// WorktreeRoot returns the worktrees root of the project at base for a
// configured worktree_dir. The setting is shared by all projects, so each
// project gets its own directory below it: dir/<base name>, or dir with
// {project} replaced when the placeholder is present.
func WorktreeRoot(base, dir string) string {
	name := filepath.Base(base)
	root := filepath.Join(dir, name)
	if strings.Contains(dir, ProjectPlaceholder) {
		root = filepath.Clean(strings.ReplaceAll(dir, ProjectPlaceholder, name))
	}
	// git reports worktree paths with symlinks resolved; the project
	// directory itself may not exist yet.
	parent, leaf := filepath.Split(root)
	if resolved, err := filepath.EvalSymlinks(parent); err == nil {
		root = filepath.Join(resolved, leaf)
	}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		root = resolved
	}
	return root
}

// Open finds the project enclosing start and resolves its layout using cfg.
func Open(ctx context.Context, start string, cfg *config.Config) (*Repository, error) {
	base, err := Find(start)
	if err != nil {
		return nil, err
	}
	return Load(ctx, base, cfg)
}

// Load opens the project at base.
func Load(ctx context.Context, base string, cfg *config.Config) (*Repository, error) {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	repo := &Repository{Base: base, Root: base, Remote: cfg.Remote}
	if repo.Remote == "" {
		repo.Remote = config.DefaultRemote
	}
	if cfg.WorktreeDir != "" {
		repo.Root = WorktreeRoot(base, cfg.WorktreeDir)
	}

	entry := RepoPath(base)
	info, err := os.Stat(entry)
	if err != nil {
		return nil, fmt.Errorf("open project %s: %w", base, err)
	}
	if info.IsDir() {
		repo.GitDir = entry
	} else {
		data, err := os.ReadFile(entry)
		if err != nil {
			return nil, fmt.Errorf("open project %s: %w", base, err)
		}
		target := strings.TrimSpace(string(data))
		if target == "" {
			return nil, fmt.Errorf("open project %s: %s is empty", base, entry)
		}
		repo.GitDir = target
		repo.Main = target
	}

	if !git.IsRepo(ctx, repo.GitDir) {
		return nil, fmt.Errorf("open project %s: %s is not a git repository", base, repo.GitDir)
	}
	return repo, nil
}

// Adopt turns base into a project for the existing repository at repoDir by
// writing the .em/repo pointer. base must not already be a project.
func Adopt(ctx context.Context, base, repoDir string) error {
	if !git.IsRepo(ctx, repoDir) {
		return fmt.Errorf("%s is not a git repository", repoDir)
	}
	top, err := git.Toplevel(ctx, repoDir)
	if err != nil {
		// bare repository
		if top, err = filepath.Abs(repoDir); err != nil {
			return err
		}
	}
	entry := RepoPath(base)
	if _, err := os.Lstat(entry); err == nil {
		return fmt.Errorf("%s is already an em project", base)
	}
	if err := os.MkdirAll(filepath.Dir(entry), 0o755); err != nil {
		return err
	}
	return os.WriteFile(entry, []byte(top+"\n"), 0o644)
}
