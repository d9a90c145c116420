package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raphi011/em/internal/config"
	"github.com/raphi011/em/internal/hooks"
	"github.com/raphi011/em/internal/lifecycle"
	"github.com/raphi011/em/internal/log"
	"github.com/raphi011/em/internal/output"
	"github.com/raphi011/em/internal/preserve"
)

func newMoveCmd() *cobra.Command {
	var (
		autostash bool
		hf        hookFlags
	)

	cmd := &cobra.Command{
		Use:     "mv <old> <new>",
		Short:   "Rename a branch and move its worktree",
		Aliases: []string{"rename"},
		GroupID: GroupCore,
		Args:    cobra.ExactArgs(2),
		Long: `Rename branch old to new. The new branch and worktree are created first,
then the old ones are removed.

Uncommitted changes block the rename unless --autostash carries them over.
Git-ignored files matching [preserve] patterns move with the worktree.
When run from inside the old worktree, the shell follows to the new one.

If em is interrupted midway, both names exist at the same commit; 'em doctor'
reports it and 'em rm <old>' finishes the rename.`,
		Example: `  em mv exp1 exp/attention
  em mv . exp/final --autostash`,
		ValidArgsFunction: completeBranches(false),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := openEngine(ctx)
			if err != nil {
				return err
			}
			from, err := resolveDot(ctx, eng, args[0])
			if err != nil {
				return err
			}

			wd, _ := os.Getwd()
			if resolved, err := filepath.EvalSymlinks(wd); err == nil {
				wd = resolved
			}

			cfg := config.FromContext(ctx)
			var oldPath string
			res, err := eng.Rename(ctx, from, args[1], lifecycle.RenameOptions{
				Autostash: autostash,
				BeforeRemove: func(ctx context.Context, old, newPath string) {
					oldPath = old
					if _, err := preserve.Files(ctx, cfg.Preserve, old, newPath); err != nil {
						log.FromContext(ctx).Warnf("preserve files: %v", err)
					}
				},
			})
			if err != nil {
				return err
			}
			log.FromContext(ctx).Printf("Renamed %s to %s\n", from, res.Branch)

			if err := hf.run(ctx, hooks.CommandMove, eng.Repository(), res.Branch, res.Path); err != nil {
				return err
			}
			// Follow the worktree only when the shell was standing in it.
			if res.Path == "" || oldPath == "" || !within(oldPath, wd) {
				return nil
			}
			return output.FromContext(ctx).Navigate(res.Path)
		},
	}

	cmd.Flags().BoolVar(&autostash, "autostash", false, "Carry uncommitted changes over with git stash")
	hf.register(cmd)
	return cmd
}
