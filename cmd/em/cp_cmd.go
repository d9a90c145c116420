package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/em/internal/hooks"
	"github.com/raphi011/em/internal/lifecycle"
	"github.com/raphi011/em/internal/log"
	"github.com/raphi011/em/internal/output"
)

func newCopyCmd() *cobra.Command {
	var hf hookFlags

	cmd := &cobra.Command{
		Use:     "cp [src] [dst]",
		Short:   "Copy a branch into a new branch and worktree",
		GroupID: GroupCore,
		Args:    cobra.MaximumNArgs(2),
		Long: `Create branch dst at the current commit of src and check it out.

src may be a local or a remote branch; a remote branch that was never fetched
is fetched first. An omitted or "." src is the current branch. An omitted or
"." dst means the same name as src, which checks src out.

Git-ignored files matching [preserve] patterns are copied from src's worktree.`,
		Example: `  em cp main exp/lr-sweep   # branch off main
  em cp . exp2              # copy the current branch
  em cp exp1                # check out exp1 (same as em co exp1)`,
		ValidArgsFunction: completeBranches(true),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := openEngine(ctx)
			if err != nil {
				return err
			}

			var src, dst string
			if len(args) > 0 {
				src = args[0]
			}
			if len(args) > 1 {
				dst = args[1]
			}
			if src, err = resolveDot(ctx, eng, src); err != nil {
				return err
			}
			if dst == "" || dst == "." {
				dst = src
			}

			var res lifecycle.Result
			trigger := hooks.CommandCopy
			if dst == src {
				trigger = hooks.CommandCo
				res, err = eng.Checkout(ctx, src)
			} else {
				res, err = eng.Copy(ctx, src, dst)
			}
			if err != nil {
				return err
			}

			if res.Created {
				if trigger == hooks.CommandCopy {
					log.FromContext(ctx).Printf("Copied %s to %s at %s\n", src, dst, res.Path)
				} else {
					log.FromContext(ctx).Printf("Checked out %s at %s\n", dst, res.Path)
				}
				preserveInto(ctx, eng.Repository(), src, res.Path)
				if err := hf.run(ctx, trigger, eng.Repository(), res.Branch, res.Path); err != nil {
					return err
				}
			}
			return output.FromContext(ctx).Navigate(res.Path)
		},
	}

	hf.register(cmd)
	return cmd
}
