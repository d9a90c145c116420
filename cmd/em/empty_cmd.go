package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/em/internal/hooks"
	"github.com/raphi011/em/internal/log"
	"github.com/raphi011/em/internal/output"
)

func newEmptyCmd() *cobra.Command {
	var hf hookFlags

	cmd := &cobra.Command{
		Use:     "empty <branch>",
		Short:   "Create a branch with no history and check it out",
		GroupID: GroupCore,
		Args:    cobra.ExactArgs(1),
		Long: `Create a new branch whose only commit is an empty root commit, and check
it out in its own worktree. Use it to start an experiment from scratch.`,
		Example: `  em empty exp/baseline`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := openEngine(ctx)
			if err != nil {
				return err
			}

			res, err := eng.CreateEmpty(ctx, args[0])
			if err != nil {
				return err
			}
			log.FromContext(ctx).Printf("Created empty branch %s at %s\n", res.Branch, res.Path)

			if err := hf.run(ctx, hooks.CommandEmpty, eng.Repository(), res.Branch, res.Path); err != nil {
				return err
			}
			return output.FromContext(ctx).Navigate(res.Path)
		},
	}

	hf.register(cmd)
	return cmd
}
