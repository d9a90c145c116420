package main

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/raphi011/em/internal/log"
	"github.com/raphi011/em/internal/output"
)

func newCdCmd() *cobra.Command {
	var (
		interactive     bool
		copyToClipboard bool
	)

	cmd := &cobra.Command{
		Use:     "cd [branch]",
		Short:   "Print the worktree path of a branch",
		GroupID: GroupUtility,
		Args:    cobra.MaximumNArgs(1),
		Long: `Print the path of the worktree bound to branch, or the project directory
when no branch is given. The branch must be checked out (see em co).

With the shell wrapper from 'em shell-init' the shell changes into the
directory instead.`,
		Example: `  cd "$(em cd exp1)"
  em cd exp1           # with the shell wrapper
  em cd -i             # pick a checked-out branch
  em cd --copy exp1    # copy the path to the clipboard`,
		ValidArgsFunction: completeBranches(false),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := openEngine(ctx)
			if err != nil {
				return err
			}

			var name string
			switch {
			case len(args) == 1:
				if name, err = resolveDot(ctx, eng, args[0]); err != nil {
					return err
				}
			case interactive:
				if name, err = pickBranch(ctx, eng, "Go to", false); err != nil {
					return err
				}
			}

			path, err := eng.Path(ctx, name)
			if err != nil {
				return err
			}

			if copyToClipboard {
				if err := clipboard.WriteAll(path); err != nil {
					return fmt.Errorf("copy to clipboard: %w", err)
				}
				log.FromContext(ctx).Printf("Copied %s\n", path)
				return nil
			}
			return output.FromContext(ctx).Navigate(path)
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Pick the branch interactively")
	cmd.Flags().BoolVarP(&copyToClipboard, "copy", "c", false, "Copy the path to the clipboard instead")
	return cmd
}
