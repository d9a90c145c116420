package main

import (
	"github.com/spf13/cobra"

	"github.com/raphi011/em/internal/doctor"
)

func newDoctorCmd() *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:     "doctor",
		Short:   "Check worktrees for problems",
		GroupID: GroupUtility,
		Args:    cobra.NoArgs,
		Long: `Check the project for worktree problems:

  stale        registered worktree whose directory is gone (fixable)
  misplaced    worktree not at its branch's path (fixable)
  detached     worktree without a branch
  orphan-dir   directory that looks like a worktree but is not registered
  duplicate    branch at the same commit as another, without a worktree
               (an interrupted em mv or em cp)
  same-commit  checked-out branches at one commit; a note only, since a fresh
               em cp looks the same as an em mv interrupted before the old
               worktree was removed
  stash        changes left in the stash by an interrupted em mv --autostash

--fix repairs the fixable ones. The rest never touch user data and are only
reported.`,
		Example: `  em doctor
  em doctor --fix`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			eng, err := openEngine(ctx)
			if err != nil {
				return err
			}
			_, err = doctor.Run(ctx, eng.Repository(), fix)
			return err
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Repair fixable issues")
	return cmd
}
