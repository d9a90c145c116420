package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/em/internal/git"
	"github.com/raphi011/em/internal/output"
)

func newDiffCmd() *cobra.Command {
	var opts git.DiffOptions

	cmd := &cobra.Command{
		Use:     "diff <a> [b]",
		Short:   "Diff two branches",
		GroupID: GroupCore,
		Args:    cobra.RangeArgs(1, 2),
		Long: `Show the diff between the tips of branches a and b. b defaults to the
current branch. Remote branches can be compared without checking them out.

Only committed state is compared; use git diff inside a worktree for
uncommitted changes.`,
		Example: `  em diff main exp1
  em diff main --stat       # main against the current branch
  em diff exp1 exp2 --name-only`,
		ValidArgsFunction: completeBranches(true),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := openEngine(ctx)
			if err != nil {
				return err
			}

			a, err := resolveDot(ctx, eng, args[0])
			if err != nil {
				return err
			}
			b := "."
			if len(args) == 2 {
				b = args[1]
			}
			if b, err = resolveDot(ctx, eng, b); err != nil {
				return err
			}

			out, err := eng.Diff(ctx, a, b, opts)
			if err != nil {
				return err
			}
			output.FromContext(ctx).Print(out)
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.NameOnly, "name-only", false, "Show only names of changed files")
	cmd.Flags().BoolVar(&opts.Stat, "stat", false, "Show a diffstat")
	cmd.MarkFlagsMutuallyExclusive("name-only", "stat")
	return cmd
}
