package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/em/internal/hooks"
	"github.com/raphi011/em/internal/log"
	"github.com/raphi011/em/internal/output"
)

func newCheckoutCmd() *cobra.Command {
	var hf hookFlags

	cmd := &cobra.Command{
		Use:     "co [branch]",
		Short:   "Check out a branch in its worktree",
		Aliases: []string{"checkout"},
		GroupID: GroupCore,
		Args:    cobra.MaximumNArgs(1),
		Long: `Print (or, with the shell wrapper, change to) the worktree of a branch,
creating it first if needed. A branch that only exists on the remote gets a
local tracking branch.

Without an argument on a terminal, a fuzzy picker lists local and remote
branches.`,
		Example: `  em co exp1
  em co             # pick interactively`,
		ValidArgsFunction: completeBranches(true),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := openEngine(ctx)
			if err != nil {
				return err
			}

			var name string
			if len(args) == 1 {
				name = args[0]
			} else if name, err = pickBranch(ctx, eng, "Check out", true); err != nil {
				return err
			}
			if name, err = resolveDot(ctx, eng, name); err != nil {
				return err
			}

			res, err := eng.Checkout(ctx, name)
			if err != nil {
				return err
			}
			if res.Created {
				log.FromContext(ctx).Printf("Checked out %s at %s\n", name, res.Path)
				preserveInto(ctx, eng.Repository(), "", res.Path)
				if err := hf.run(ctx, hooks.CommandCo, eng.Repository(), res.Branch, res.Path); err != nil {
					return err
				}
			}
			return output.FromContext(ctx).Navigate(res.Path)
		},
	}

	hf.register(cmd)
	return cmd
}
