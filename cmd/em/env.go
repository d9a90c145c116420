package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/raphi011/em/internal/config"
	"github.com/raphi011/em/internal/git"
	"github.com/raphi011/em/internal/hooks"
	"github.com/raphi011/em/internal/lifecycle"
	"github.com/raphi011/em/internal/log"
	"github.com/raphi011/em/internal/preserve"
	"github.com/raphi011/em/internal/project"
	"github.com/raphi011/em/internal/ui/picker"
)

// newGit returns the git primitives the engine runs on.
var newGit = func() lifecycle.Git { return lifecycle.CLI{} }

// openEngine finds the project containing the working directory.
func openEngine(ctx context.Context) (*lifecycle.Engine, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	repo, err := project.Open(ctx, wd, config.FromContext(ctx))
	if err != nil {
		return nil, err
	}
	return lifecycle.New(repo, newGit()), nil
}

func isInteractive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stderr.Fd())
}

var errNoCurrentBranch = errors.New(`"." needs a branch: run inside a worktree or set EM_BRANCH`)

// resolveDot expands the "." shorthand (and an empty name) to the current
// branch: EM_BRANCH if set, else the branch of the worktree containing the
// working directory.
func resolveDot(ctx context.Context, eng *lifecycle.Engine, name string) (string, error) {
	if name != "" && name != "." {
		return name, nil
	}
	if b := config.FromContext(ctx).Branch; b != "" {
		return b, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return currentBranch(ctx, eng.Repository(), wd)
}

// currentBranch maps dir to the branch of the worktree it lies in.
func currentBranch(ctx context.Context, repo *project.Repository, dir string) (string, error) {
	if resolved, err := filepath.EvalSymlinks(dir); err == nil {
		dir = resolved
	}
	worktrees, err := git.ListWorktrees(ctx, repo.GitDir)
	if err != nil {
		return "", err
	}
	// The innermost worktree wins when one contains another.
	branch, best := "", -1
	for _, wt := range worktrees {
		if wt.Bare || wt.Branch == "" {
			continue
		}
		rel, err := filepath.Rel(wt.Path, dir)
		if err == nil && filepath.IsLocal(rel) && len(wt.Path) > best {
			branch, best = wt.Branch, len(wt.Path)
		}
	}
	if best < 0 {
		return "", errNoCurrentBranch
	}
	return branch, nil
}

// pickBranch lets the user choose a branch when none was given on a TTY.
func pickBranch(ctx context.Context, eng *lifecycle.Engine, title string, withRemote bool) (string, error) {
	if !isInteractive() {
		return "", errors.New("branch name required")
	}
	names, err := eng.Branches(ctx, withRemote)
	if err != nil {
		return "", err
	}
	items := make([]picker.Item, len(names))
	for i, n := range names {
		items[i] = picker.Item{Label: n}
	}
	idx, ok, err := picker.Run(title, items)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", errCancelled
	}
	return names[idx], nil
}

var errCancelled = errors.New("cancelled")

// hookFlags are the hook-related flags shared by mutating commands.
type hookFlags struct {
	names  []string
	noHook bool
	dryRun bool
	args   []string
}

func (f *hookFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.names, "hook", nil, "Run named hook(s) instead of the configured ones")
	cmd.Flags().BoolVar(&f.noHook, "no-hook", false, "Skip hooks")
	cmd.Flags().BoolVar(&f.dryRun, "hook-dry-run", false, "Print hook commands instead of running them")
	cmd.Flags().StringSliceVarP(&f.args, "arg", "a", nil, "Set hook variable KEY=VALUE (KEY=- reads stdin)")
	cmd.MarkFlagsMutuallyExclusive("hook", "no-hook")
	cmd.MarkFlagsMutuallyExclusive("hook-dry-run", "no-hook")
	_ = cmd.RegisterFlagCompletionFunc("hook", completeHooks)
}

// run executes the hooks selected for trigger. Failures of configured hooks
// are warnings since the operation already succeeded; a hook named with
// --hook failing is an error.
func (f *hookFlags) run(ctx context.Context, trigger hooks.CommandType, repo *project.Repository, branch, path string) error {
	cfg := config.FromContext(ctx)
	var matches []hooks.HookMatch
	for _, name := range f.selection() {
		m, err := hooks.SelectHooks(cfg.Hooks, name, f.noHook, trigger)
		if err != nil {
			return err
		}
		matches = append(matches, m...)
	}
	if len(matches) == 0 {
		return nil
	}
	env, err := hooks.ParseEnv(f.args, os.Stdin)
	if err != nil {
		return err
	}
	hctx := hooks.Context{
		Path:    path,
		Branch:  branch,
		Base:    repo.Base,
		Trigger: trigger,
		Env:     env,
		DryRun:  f.dryRun,
	}
	if len(f.names) > 0 {
		return hooks.RunAll(ctx, matches, hctx)
	}
	hooks.RunAllNonFatal(ctx, matches, hctx)
	return nil
}

// selection returns the --hook names, or a single "" meaning "configured".
func (f *hookFlags) selection() []string {
	if len(f.names) == 0 {
		return []string{""}
	}
	return f.names
}

// preserveInto copies configured ignored files into a new worktree.
func preserveInto(ctx context.Context, repo *project.Repository, from, target string) {
	cfg := config.FromContext(ctx)
	if _, err := preserve.Into(ctx, cfg.Preserve, repo.GitDir, from, target); err != nil {
		log.FromContext(ctx).Warnf("preserve files: %v", err)
	}
}
