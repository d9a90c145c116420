// Package preserve copies git-ignored files such as .env into new worktrees.
//
// A fresh worktree only has tracked files. Files matching the configured
// [preserve] patterns are copied from an existing worktree so the new one is
// usable right away. Existing files are never overwritten.
package preserve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/raphi011/em/internal/cmd"
	"github.com/raphi011/em/internal/config"
	"github.com/raphi011/em/internal/git"
	"github.com/raphi011/em/internal/log"
)

// ErrNoSourceWorktree is returned when no worktree other than the target exists.
var ErrNoSourceWorktree = errors.New("no source worktree found")

// FindSourceWorktree picks the worktree to copy preserved files from: the one
// bound to preferBranch if any, else the first checked-out worktree that is
// not targetPath.
func FindSourceWorktree(ctx context.Context, gitDir, preferBranch, targetPath string) (string, error) {
	worktrees, err := git.ListWorktrees(ctx, gitDir)
	if err != nil {
		return "", err
	}

	usable := func(wt git.Worktree) bool {
		return !wt.Bare && !wt.Prunable && wt.Path != targetPath
	}
	if preferBranch != "" {
		for _, wt := range worktrees {
			if usable(wt) && wt.Branch == preferBranch {
				return wt.Path, nil
			}
		}
	}
	for _, wt := range worktrees {
		if usable(wt) {
			return wt.Path, nil
		}
	}
	return "", ErrNoSourceWorktree
}

// FindIgnoredFiles returns paths (relative to worktreeDir) of all git-ignored
// files present in the worktree.
func FindIgnoredFiles(ctx context.Context, worktreeDir string) ([]string, error) {
	out, err := cmd.OutputContext(ctx, worktreeDir, "git",
		"ls-files", "--others", "--ignored", "--exclude-standard")
	if err != nil {
		return nil, fmt.Errorf("git ls-files: %w", err)
	}

	raw := strings.TrimSpace(string(out))
	if raw == "" {
		return nil, nil
	}
	return strings.Split(raw, "\n"), nil
}

// matchesPattern reports whether relPath should be preserved. Patterns match
// the basename; a path with any segment listed in exclude is skipped.
func matchesPattern(relPath string, patterns, exclude []string) bool {
	for seg := range strings.SplitSeq(filepath.ToSlash(relPath), "/") {
		if slices.Contains(exclude, seg) {
			return false
		}
	}

	base := filepath.Base(relPath)
	for _, pat := range patterns {
		if matched, _ := filepath.Match(pat, base); matched {
			return true
		}
	}
	return false
}

// CopyFile copies src to dst with src's permission bits, creating parent
// directories. It returns false without error if dst already exists.
func CopyFile(src, dst string) (bool, error) {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return false, err
	}

	dstFile, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, srcInfo.Mode().Perm())
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}
		return false, err
	}
	defer dstFile.Close()

	srcFile, err := os.Open(src)
	if err != nil {
		os.Remove(dst)
		return false, err
	}
	defer srcFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		os.Remove(dst)
		return false, err
	}
	return true, nil
}

// Files copies git-ignored files matching cfg from sourceDir into targetDir
// and returns the relative paths copied. Per-file failures are logged and
// skipped.
func Files(ctx context.Context, cfg config.PreserveConfig, sourceDir, targetDir string) ([]string, error) {
	if len(cfg.Patterns) == 0 {
		return nil, nil
	}
	l := log.FromContext(ctx)

	ignored, err := FindIgnoredFiles(ctx, sourceDir)
	if err != nil {
		return nil, err
	}

	var copied []string
	for _, relPath := range ignored {
		if !matchesPattern(relPath, cfg.Patterns, cfg.Exclude) {
			continue
		}
		ok, err := CopyFile(filepath.Join(sourceDir, relPath), filepath.Join(targetDir, relPath))
		if err != nil {
			l.Debug("preserve: failed to copy file", "file", relPath, "error", err)
			continue
		}
		if ok {
			copied = append(copied, relPath)
		}
	}
	return copied, nil
}

// Into finds a source worktree for targetDir and copies preserved files
// into it. A missing source is not an error.
func Into(ctx context.Context, cfg config.PreserveConfig, gitDir, preferBranch, targetDir string) ([]string, error) {
	if len(cfg.Patterns) == 0 {
		return nil, nil
	}
	source, err := FindSourceWorktree(ctx, gitDir, preferBranch, targetDir)
	if errors.Is(err, ErrNoSourceWorktree) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	copied, err := Files(ctx, cfg, source, targetDir)
	if err != nil {
		return nil, err
	}
	if len(copied) > 0 {
		log.FromContext(ctx).Printf("Preserved %d file(s) from %s\n", len(copied), source)
	}
	return copied, nil
}
