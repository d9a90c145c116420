package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphi011/em/internal/config"
	"github.com/raphi011/em/internal/hooks"
	"github.com/raphi011/em/internal/lifecycle"
	"github.com/raphi011/em/internal/log"
	"github.com/raphi011/em/internal/output"
	"github.com/raphi011/em/internal/ui/prompt"
)

func newRemoveCmd() *cobra.Command {
	var (
		force bool
		yes   bool
		hf    hookFlags
	)

	cmd := &cobra.Command{
		Use:     "rm <branch>...",
		Short:   "Remove branches and their worktrees",
		Aliases: []string{"remove"},
		GroupID: GroupCore,
		Args:    cobra.MinimumNArgs(1),
		Long: `Remove the worktree of each branch, then delete the local branch.

A branch is only removed when its worktree has no uncommitted changes and its
tip is contained in a remote branch. --force removes it anyway, discarding
changes and unpushed commits.

On a terminal em asks for confirmation unless -y is given or
confirm_remove = false is configured.`,
		Example: `  em rm exp1
  em rm exp1 exp2 -y
  em rm . --force    # remove the current branch`,
		ValidArgsFunction: completeBranches(false),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			eng, err := openEngine(ctx)
			if err != nil {
				return err
			}
			repo := eng.Repository()

			names := make([]string, len(args))
			for i, a := range args {
				if names[i], err = resolveDot(ctx, eng, a); err != nil {
					return err
				}
			}

			if !yes && cfg.ConfirmRemove && isInteractive() {
				detail := ""
				if force {
					detail = "--force discards uncommitted changes and unpushed commits"
				}
				res, err := prompt.Confirm(fmt.Sprintf("Remove %s?", joinNames(names)), detail)
				if err != nil {
					return err
				}
				if !res.Confirmed {
					return errCancelled
				}
			}

			opts := lifecycle.RemoveOptions{DiscardChanges: force, DiscardCommits: force}
			wd, _ := os.Getwd()
			if resolved, err := filepath.EvalSymlinks(wd); err == nil {
				wd = resolved
			}
			var errs []error
			leftCwd := false
			for _, name := range names {
				res, err := eng.Remove(ctx, name, opts)
				if err != nil {
					errs = append(errs, err)
					continue
				}
				log.FromContext(ctx).Printf("Removed %s\n", name)
				if res.Path != "" && within(res.Path, wd) {
					leftCwd = true
				}
				if err := hf.run(ctx, hooks.CommandRm, repo, name, repo.Base); err != nil {
					errs = append(errs, err)
				}
			}

			if leftCwd {
				if err := output.FromContext(ctx).Navigate(repo.Base); err != nil {
					errs = append(errs, err)
				}
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Discard uncommitted changes and unpushed commits")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Do not ask for confirmation")
	hf.register(cmd)
	return cmd
}

func joinNames(names []string) string {
	if len(names) == 1 {
		return names[0]
	}
	return fmt.Sprintf("%d branches (%s)", len(names), strings.Join(names, ", "))
}

// within reports whether dir is path or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(path, dir)
	return err == nil && filepath.IsLocal(rel)
}
