package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"
	"github.com/spf13/cobra"

	"github.com/raphi011/em/internal/config"
	"github.com/raphi011/em/internal/git"
	"github.com/raphi011/em/internal/log"
	"github.com/raphi011/em/internal/output"
	"github.com/raphi011/em/internal/status"
	"github.com/raphi011/em/internal/ui/progress"
	"github.com/raphi011/em/internal/ui/static"
	"github.com/raphi011/em/internal/ui/styles"
)

func newListCmd() *cobra.Command {
	var (
		all        bool
		full       bool
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:     "ls [filter]",
		Short:   "List branches and their status",
		Aliases: []string{"list"},
		GroupID: GroupCore,
		Args:    cobra.MaximumNArgs(1),
		Long: `List local branches with their worktree and status.

Status is one of:
  clean            checked out, nothing to commit or push
  not pushed       commits missing on the remote
  modified         uncommitted changes in the worktree
  not checked out  local branch without a worktree
  remote only      exists only on the remote (shown with -a)
  unknown          remote state could not be determined (-s while offline)

Without -s the remote state is taken from the last fetch. The filter
argument narrows the listing by fuzzy match on the branch name.`,
		Example: `  em ls              # local branches
  em ls -a           # include remote-only branches
  em ls -s           # fetch first for up-to-date remote status
  em ls exp          # fuzzy filter
  em ls --json       # machine readable`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			if !cmd.Flags().Changed("all") {
				all = cfg.List.All
			}
			if !cmd.Flags().Changed("status") {
				full = cfg.List.Status
			}

			eng, err := openEngine(ctx)
			if err != nil {
				return err
			}
			repo := eng.Repository()

			var snap *git.Snapshot
			if full {
				spin := progress.NewSpinner(os.Stderr, "Fetching "+repo.Remote+"...")
				spin.Start()
				snap, err = git.ScanWithProgress(ctx, repo.GitDir, repo.Remote, git.ScanFull, func(p git.ScanPhase) {
					if p == git.PhaseStatus {
						spin.UpdateMessage("Reading status...")
					}
				})
				spin.Stop()
			} else {
				snap, err = git.Scan(ctx, repo.GitDir, repo.Remote, git.ScanFast)
			}
			if err != nil {
				return err
			}
			if snap.RemoteErr != nil {
				log.FromContext(ctx).Warnf("could not reach %s, remote status unknown: %v", repo.Remote, snap.RemoteErr)
			}

			entries := status.Aggregate(snap, status.Options{All: all})
			if len(args) == 1 {
				entries = filterEntries(entries, args[0])
			}

			out := output.FromContext(ctx)
			if jsonOutput {
				if entries == nil {
					entries = []status.Entry{}
				}
				enc := json.NewEncoder(out.Writer())
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			for i := range entries {
				entries[i].Path = displayPath(repo.Base, entries[i].Path)
			}
			out.Print(static.RenderStatus(entries))
			if summary := static.StatusSummary(entries); summary != "" {
				out.Printf("\n%s\n", styles.MutedStyle.Render(summary))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include remote-only branches")
	cmd.Flags().BoolVarP(&full, "status", "s", false, "Fetch the remote before computing status")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}

type entrySource []status.Entry

func (s entrySource) String(i int) string { return s[i].Branch }
func (s entrySource) Len() int            { return len(s) }

// filterEntries keeps entries whose branch fuzzy-matches pattern, best
// matches first.
func filterEntries(entries []status.Entry, pattern string) []status.Entry {
	matches := fuzzy.FindFrom(pattern, entrySource(entries))
	out := make([]status.Entry, len(matches))
	for i, m := range matches {
		out[i] = entries[m.Index]
	}
	return out
}

// displayPath shortens paths below base to base-relative form.
func displayPath(base, path string) string {
	if path == "" {
		return ""
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return "./" + filepath.ToSlash(rel)
}
