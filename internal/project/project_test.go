package project

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/raphi011/em/internal/cmd"
	"github.com/raphi011/em/internal/config"
	"github.com/raphi011/em/internal/git"
)

func resolveTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestFind(t *testing.T) {
	t.Parallel()
	base := resolveTempDir(t)
	nested := filepath.Join(base, "feature%2Fx", "src", "pkg")
	if err := os.MkdirAll(filepath.Join(base, MarkerDir), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := Find(nested)
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got != base {
		t.Errorf("Find() = %q, want %q", got, base)
	}
}

func TestFind_NotProject(t *testing.T) {
	t.Parallel()
	_, err := Find(resolveTempDir(t))
	if !errors.Is(err, ErrNotProject) {
		t.Errorf("Find() error = %v, want ErrNotProject", err)
	}
}

// TestLoad_Bare verifies a cloned layout opens with defaults.
//
// Scenario: .em/repo is a bare repository and no worktree_dir is configured
// Expected: GitDir is .em/repo, Root is the base, Main is empty
func TestLoad_Bare(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	base := resolveTempDir(t)
	if err := git.InitBare(ctx, RepoPath(base)); err != nil {
		t.Fatal(err)
	}

	repo, err := Load(ctx, base, nil)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if repo.GitDir != RepoPath(base) || repo.Root != base || repo.Main != "" {
		t.Errorf("Load() = %+v", repo)
	}
	if repo.Remote != config.DefaultRemote {
		t.Errorf("Remote = %q, want %q", repo.Remote, config.DefaultRemote)
	}
	if got := repo.Resolver().PathFor("a/b"); got != filepath.Join(base, "a%2Fb") {
		t.Errorf("PathFor() = %q", got)
	}
}

func TestLoad_ConfigOverrides(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	base := resolveTempDir(t)
	if err := git.InitBare(ctx, RepoPath(base)); err != nil {
		t.Fatal(err)
	}
	cfg := config.Default()
	cfg.WorktreeDir = "/srv/worktrees"
	cfg.Remote = "upstream"

	repo, err := Load(ctx, base, &cfg)
	if err != nil {
		t.Fatal(err)
	}
	want := filepath.Join("/srv/worktrees", filepath.Base(base))
	if repo.Root != want || repo.Remote != "upstream" {
		t.Errorf("Load() = %+v, want Root %q", repo, want)
	}
}

func TestWorktreeRoot(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		base string
		dir  string
		want string
	}{
		{"appends project name", "/home/u/api", "/srv/wt", "/srv/wt/api"},
		{"placeholder", "/home/u/api", "/srv/{project}-wt", "/srv/api-wt"},
		{"placeholder in middle", "/home/u/api", "/srv/{project}/trees", "/srv/api/trees"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := WorktreeRoot(tt.base, tt.dir); got != tt.want {
				t.Errorf("WorktreeRoot(%q, %q) = %q, want %q", tt.base, tt.dir, got, tt.want)
			}
		})
	}
}

// TestLoad_SharedWorktreeDir keeps projects apart below one worktree_dir.
//
// Scenario: two projects load with the same worktree_dir
// Expected: their roots differ, so the same branch maps to different paths
func TestLoad_SharedWorktreeDir(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tmp := resolveTempDir(t)
	cfg := config.Default()
	cfg.WorktreeDir = filepath.Join(tmp, "shared")

	var paths []string
	for _, name := range []string{"api", "web"} {
		base := filepath.Join(tmp, name)
		if err := git.InitBare(ctx, RepoPath(base)); err != nil {
			t.Fatal(err)
		}
		repo, err := Load(ctx, base, &cfg)
		if err != nil {
			t.Fatalf("Load(%s) error = %v", name, err)
		}
		if repo.Root != filepath.Join(cfg.WorktreeDir, name) {
			t.Errorf("Root = %q, want below %q", repo.Root, cfg.WorktreeDir)
		}
		paths = append(paths, repo.Resolver().PathFor("main"))
	}
	if paths[0] == paths[1] {
		t.Errorf("both projects map main to %q", paths[0])
	}
}

func TestAdoptAndLoad(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	tmp := resolveTempDir(t)
	existing := filepath.Join(tmp, "existing")
	if err := os.MkdirAll(existing, 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := gitInit(ctx, existing); err != nil {
		t.Fatal(err)
	}
	base := filepath.Join(tmp, "project")

	if err := Adopt(ctx, base, existing); err != nil {
		t.Fatalf("Adopt() error = %v", err)
	}
	if err := Adopt(ctx, base, existing); err == nil {
		t.Error("second Adopt() should fail")
	}

	repo, err := Open(ctx, base, nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if repo.GitDir != existing || repo.Main != existing {
		t.Errorf("Open() = %+v, want GitDir and Main %q", repo, existing)
	}
}

func TestLoad_NotRepository(t *testing.T) {
	t.Parallel()
	base := resolveTempDir(t)
	if err := os.MkdirAll(RepoPath(base), 0o755); err != nil {
		t.Fatal(err)
	}
	// An empty directory below a temp dir is not a repository.
	if _, err := Load(context.Background(), base, nil); err == nil {
		t.Error("Load() of an empty .em/repo should fail")
	}
}

func gitInit(ctx context.Context, dir string) (string, error) {
	if err := cmd.RunContext(ctx, dir, "git", "init", "--quiet"); err != nil {
		return "", err
	}
	return dir, nil
}
