package main

import (
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/raphi011/em/internal/config"
	"github.com/raphi011/em/internal/log"
	"github.com/raphi011/em/internal/output"
	"github.com/raphi011/em/internal/ui/static"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "config",
		Short:   "Manage configuration",
		Aliases: []string{"cfg"},
		GroupID: GroupConfig,
		Long: `Manage em configuration.

The config file is ~/.config/em/config.toml, or $EM_CONFIG when set.
EM_WORKTREE_DIR, EM_REMOTE, EM_THEME and EM_BRANCH override it.`,
		Example: `  em config init      # write a commented default config
  em config show      # print the effective config
  em config hooks     # list configured hooks`,
	}

	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd(), newConfigHooksCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.Init(force)
			if err != nil {
				return err
			}
			log.FromContext(cmd.Context()).Printf("Created %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			out := output.FromContext(ctx)

			if cfg.Path != "" {
				out.Printf("# %s\n", cfg.Path)
			} else {
				out.Println("# defaults (no config file)")
			}
			if err := toml.NewEncoder(out.Writer()).Encode(cfg); err != nil {
				return err
			}
			for _, name := range hookNames(cfg.Hooks) {
				h := cfg.Hooks.Hooks[name]
				out.Printf("\n[hooks.%s]\n", name)
				if err := toml.NewEncoder(out.Writer()).Encode(h); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func newConfigHooksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hooks",
		Short: "List configured hooks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			names := hookNames(cfg.Hooks)
			if len(names) == 0 {
				log.FromContext(ctx).Println("No hooks configured")
				return nil
			}

			rows := make([][]string, len(names))
			for i, name := range names {
				h := cfg.Hooks.Hooks[name]
				on := "(--hook only)"
				if len(h.On) > 0 {
					on = strings.Join(h.On, ", ")
				}
				rows[i] = []string{name, on, h.Description}
			}
			output.FromContext(ctx).Print(static.RenderTable([]string{"NAME", "ON", "DESCRIPTION"}, rows))
			return nil
		},
	}
}

func hookNames(cfg config.HooksConfig) []string {
	names := make([]string, 0, len(cfg.Hooks))
	for name := range cfg.Hooks {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
