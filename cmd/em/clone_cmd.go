package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/raphi011/em/internal/config"
	"github.com/raphi011/em/internal/hooks"
	"github.com/raphi011/em/internal/lifecycle"
	"github.com/raphi011/em/internal/log"
	"github.com/raphi011/em/internal/output"
	"github.com/raphi011/em/internal/project"
	"github.com/raphi011/em/internal/ui/progress"
)

func newCloneCmd() *cobra.Command {
	var hf hookFlags

	cmd := &cobra.Command{
		Use:     "clone <url> [dir]",
		Short:   "Clone a repository into a new project",
		GroupID: GroupRemote,
		Args:    cobra.RangeArgs(1, 2),
		Long: `Clone a repository into a new em project. The repository is stored bare
in <dir>/.em/repo; branches are checked out next to it with em co or em cp.

dir defaults to the last path element of url without ".git".`,
		Example: `  em clone git@github.com:org/model.git
  em clone https://github.com/org/model.git experiments`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			opts := lifecycle.CloneOptions{URL: args[0], Remote: cfg.Remote}
			if len(args) == 2 {
				opts.Dest = args[1]
			}

			base, err := progress.While(ctx, "Cloning "+opts.URL+"...", func(ctx context.Context) (string, error) {
				return lifecycle.Clone(ctx, newGit(), opts)
			})
			if err != nil {
				return err
			}
			log.FromContext(ctx).Printf("Cloned %s into %s\n", opts.URL, base)

			repo, err := project.Load(ctx, base, cfg)
			if err != nil {
				return err
			}
			if err := hf.run(ctx, hooks.CommandClone, repo, "", base); err != nil {
				return err
			}
			return output.FromContext(ctx).Navigate(base)
		},
	}

	hf.register(cmd)
	return cmd
}
