package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raphi011/em/internal/config"
	"github.com/raphi011/em/internal/git"
	"github.com/raphi011/em/internal/lifecycle"
	"github.com/raphi011/em/internal/log"
	"github.com/raphi011/em/internal/output"
	"github.com/raphi011/em/internal/ui/styles"
)

var (
	verbose bool
	quiet   bool
)

// Command group IDs for organizing help output
const (
	GroupCore    = "core"
	GroupRemote  = "remote"
	GroupUtility = "utility"
	GroupConfig  = "config"
)

// skipSetup lists commands that run without git or a loaded config.
var skipSetup = map[string]bool{
	"completion":       true,
	"__complete":       true,
	"__completeNoDesc": true,
	"help":             true,
	"shell-init":       true,
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "em",
		Short: "Experiment manager: one git worktree per branch",
		Long: `em keeps every branch of a repository checked out in its own directory.

Each branch lives at <project>/<branch> (with "/" and other unsafe characters
escaped), so experiments can be compared, diffed and removed without
stash/checkout cycles.`,
		SilenceUsage:               true,
		SilenceErrors:              true,
		SuggestionsMinimumDistance: 2,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = log.WithLogger(ctx, log.New(cmd.ErrOrStderr(), verbose, quiet))
			ctx = output.WithPrinter(ctx, output.New(cmd.OutOrStdout(), os.Getenv(output.CdFileEnv)))

			if skipSetup[cmd.Name()] {
				cmd.SetContext(ctx)
				return nil
			}

			cfg, err := config.Load()
			if err != nil {
				log.FromContext(ctx).Warnf("%v (using defaults)", err)
				cfg = config.Default()
			}
			styles.Init(cfg.Theme)
			ctx = config.WithConfig(ctx, &cfg)
			cmd.SetContext(ctx)

			return git.CheckGit()
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show git commands being executed")
	root.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Suppress all log output")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")

	root.Version = versionString()
	root.SetVersionTemplate("{{.Version}}\n")

	root.AddGroup(
		&cobra.Group{ID: GroupCore, Title: "Branch Commands:"},
		&cobra.Group{ID: GroupRemote, Title: "Remote Commands:"},
		&cobra.Group{ID: GroupUtility, Title: "Utility Commands:"},
		&cobra.Group{ID: GroupConfig, Title: "Configuration Commands:"},
	)

	root.AddCommand(
		newListCmd(),
		newEmptyCmd(),
		newCopyCmd(),
		newCheckoutCmd(),
		newMoveCmd(),
		newRemoveCmd(),
		newDiffCmd(),

		newCloneCmd(),
		newInitCmd(),
		newPushCmd(),

		newCdCmd(),
		newDoctorCmd(),

		newShellInitCmd(),
		newConfigCmd(),
	)
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	root := newRootCmd()
	err := root.ExecuteContext(ctx)
	if err == nil {
		return lifecycle.ExitOK
	}
	reportError(err)
	return lifecycle.ExitCode(err)
}

func reportError(err error) {
	fmt.Fprintf(os.Stderr, "em: %v\n", err)
	if hint := lifecycle.Hint(err); hint != "" {
		fmt.Fprintf(os.Stderr, "hint: %s\n", hint)
	}
	if errors.Is(err, lifecycle.ErrInconsistent) {
		fmt.Fprintln(os.Stderr, "em refused to change anything; the repository state needs attention.")
	}
}
