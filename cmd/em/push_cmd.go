package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/raphi011/em/internal/hooks"
	"github.com/raphi011/em/internal/lifecycle"
	"github.com/raphi011/em/internal/log"
	"github.com/raphi011/em/internal/ui/progress"
)

func newPushCmd() *cobra.Command {
	var hf hookFlags

	cmd := &cobra.Command{
		Use:     "push [branch]",
		Short:   "Push a branch to the remote",
		GroupID: GroupRemote,
		Args:    cobra.MaximumNArgs(1),
		Long: `Push the branch to the same name on the configured remote and set it as
upstream. Without an argument the current branch is pushed.

A rejected push (for example after amending pushed commits) fails with git's
message; em never force-pushes.`,
		Example: `  em push exp1
  em push`,
		ValidArgsFunction: completeBranches(false),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := openEngine(ctx)
			if err != nil {
				return err
			}
			var name string
			if len(args) == 1 {
				name = args[0]
			}
			if name, err = resolveDot(ctx, eng, name); err != nil {
				return err
			}

			res, err := progress.While(ctx, "Pushing "+name+"...", func(ctx context.Context) (lifecycle.PushResult, error) {
				return eng.Push(ctx, name)
			})
			if err != nil {
				return err
			}

			l := log.FromContext(ctx)
			switch {
			case res.UpToDate:
				l.Printf("%s is up to date on %s\n", name, res.Remote)
			case res.Created:
				l.Printf("Pushed %s to %s (new branch)\n", name, res.Remote)
			default:
				l.Printf("Pushed %s to %s (%s)\n", name, res.Remote, res.Summary)
			}

			path, err := eng.Path(ctx, name)
			if err != nil {
				path = eng.Repository().Base
			}
			return hf.run(ctx, hooks.CommandPush, eng.Repository(), name, path)
		},
	}

	hf.register(cmd)
	return cmd
}
