package doctor

import (
	"context"
	"fmt"
	"os"

	"github.com/raphi011/em/internal/git"
	"github.com/raphi011/em/internal/output"
	"github.com/raphi011/em/internal/project"
)

// fixAllIssues applies fixes for all fixable issues. Pruning runs once no
// matter how many stale worktrees there are.
func fixAllIssues(ctx context.Context, repo *project.Repository, issues []Issue) error {
	out := output.FromContext(ctx)
	var fixed, failed int
	pruned := false

	for _, issue := range issues {
		switch issue.FixAction {
		case FixPrune:
			if !pruned {
				if err := git.PruneWorktrees(ctx, repo.GitDir); err != nil {
					out.Printf("  ✗ Failed to prune stale worktrees: %v\n", err)
					failed++
					continue
				}
				pruned = true
			}
			out.Printf("  ✓ Pruned %q\n", issue.Key)
			fixed++

		case FixMove:
			if _, err := os.Lstat(issue.Target); !os.IsNotExist(err) {
				out.Printf("  ✗ Cannot move %q: %s is occupied\n", issue.Key, issue.Target)
				failed++
				continue
			}
			if err := git.MoveWorktree(ctx, repo.GitDir, issue.Path, issue.Target); err != nil {
				out.Printf("  ✗ Failed to move %q: %v\n", issue.Key, err)
				failed++
				continue
			}
			out.Printf("  ✓ Moved %q to %s\n", issue.Key, issue.Target)
			fixed++
		}
	}

	out.Printf("\nFixed %d issues", fixed)
	if failed > 0 {
		out.Printf(", %d failed", failed)
	}
	out.Println()
	if failed > 0 {
		return fmt.Errorf("%d fixes failed", failed)
	}
	return nil
}
