package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/raphi011/em/internal/config"
	"github.com/raphi011/em/internal/lifecycle"
	"github.com/raphi011/em/internal/log"
	"github.com/raphi011/em/internal/project"
	"github.com/raphi011/em/internal/ui/progress"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "init [repo-or-url]",
		Short:   "Make the current directory an em project",
		GroupID: GroupRemote,
		Args:    cobra.MaximumNArgs(1),
		Long: `Turn the current directory into an em project.

Without an argument, the git repository containing the current directory is
adopted. A path to an existing repository adopts that repository; its own
working tree stays where it is. Anything else is treated as a URL and cloned
into .em/repo.`,
		Example: `  cd ~/src/model && em init         # adopt this repository
  mkdir exps && cd exps && em init ~/src/model
  mkdir exps && cd exps && em init git@github.com:org/model.git`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			wd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			opts := lifecycle.InitOptions{Base: wd, Remote: cfg.Remote}
			if len(args) == 1 {
				opts.Target = args[0]
			}

			repo, err := progress.While(ctx, "Initializing...", func(ctx context.Context) (*project.Repository, error) {
				return lifecycle.Init(ctx, newGit(), opts)
			})
			if err != nil {
				return err
			}

			l := log.FromContext(ctx)
			if repo.Main != "" {
				l.Printf("Adopted %s\n", repo.Main)
			} else {
				l.Printf("Cloned %s into %s\n", opts.Target, repo.GitDir)
			}
			l.Printf("Worktrees will be created in %s\n", repo.Root)
			return nil
		},
	}
	return cmd
}
