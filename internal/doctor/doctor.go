package doctor

import (
	"context"

	"github.com/raphi011/em/internal/git"
	"github.com/raphi011/em/internal/output"
	"github.com/raphi011/em/internal/project"
)

// Run checks the repository for worktree anomalies, prints them and, with
// fix set, repairs the fixable ones. It returns the issues found.
func Run(ctx context.Context, repo *project.Repository, fix bool) ([]Issue, error) {
	out := output.FromContext(ctx)

	out.Println("Checking worktrees...")
	issues, stats, err := Check(ctx, repo)
	if err != nil {
		return nil, err
	}

	printSummary(out, stats)

	if len(issues) == stats.Info {
		out.Println("\n✓ No issues found")
		printIssuesByCategory(out, issues)
		return issues, nil
	}

	out.Printf("\nFound %d issues:\n", len(issues)-stats.Info)
	printIssuesByCategory(out, issues)

	if fix {
		if stats.Fixable == 0 {
			out.Println("\nNothing to fix automatically.")
			return issues, nil
		}
		out.Println()
		return issues, fixAllIssues(ctx, repo, issues)
	}

	if stats.Fixable > 0 {
		out.Println("\nRun 'em doctor --fix' to repair.")
	}
	return issues, nil
}

// Check collects issues without printing or changing anything.
func Check(ctx context.Context, repo *project.Repository) ([]Issue, IssueStats, error) {
	var stats IssueStats

	wts, err := git.ListWorktrees(ctx, repo.GitDir)
	if err != nil {
		return nil, stats, err
	}
	branches, err := git.ListBranches(ctx, repo.GitDir, repo.Remote)
	if err != nil {
		return nil, stats, err
	}
	stashes, err := git.ListStashes(ctx, repo.GitDir)
	if err != nil {
		return nil, stats, err
	}

	issues := checkWorktreeIssues(repo, wts)
	orphans, err := checkOrphanDirs(repo, wts)
	if err != nil {
		return nil, stats, err
	}
	issues = append(issues, orphans...)
	issues = append(issues, checkDuplicates(branches, wts)...)
	issues = append(issues, checkStashes(stashes)...)

	broken := make(map[string]bool)
	for _, issue := range issues {
		switch {
		case issue.Category == CategoryInfo:
			stats.Info++
		case issue.Category == CategoryInterrupted:
			stats.Interrupted++
		case issue.FixAction != "":
			stats.Fixable++
		default:
			stats.ReportOnly++
		}
		if issue.Path != "" {
			broken[issue.Path] = true
		}
	}
	for _, wt := range wts {
		if !wt.Bare && !broken[wt.Path] {
			stats.Healthy++
		}
	}
	return issues, stats, nil
}

// printSummary prints a categorized summary.
func printSummary(out *output.Printer, stats IssueStats) {
	out.Println()
	out.Printf("  ✓ %d worktrees healthy\n", stats.Healthy)
	if stats.Fixable > 0 {
		out.Printf("  ⚠ %d fixable\n", stats.Fixable)
	}
	if stats.ReportOnly > 0 {
		out.Printf("  ⚠ %d need manual attention\n", stats.ReportOnly)
	}
	if stats.Interrupted > 0 {
		out.Printf("  ⚠ %d left by interrupted operations\n", stats.Interrupted)
	}
}

// printIssuesByCategory groups and prints issues.
func printIssuesByCategory(out *output.Printer, issues []Issue) {
	byCategory := make(map[IssueCategory][]Issue)
	for _, issue := range issues {
		byCategory[issue.Category] = append(byCategory[issue.Category], issue)
	}

	categoryNames := map[IssueCategory]string{
		CategoryGit:         "Worktree issues",
		CategoryOrphan:      "Orphan directories",
		CategoryInterrupted: "Interrupted operations",
		CategoryInfo:        "Notes",
	}

	for _, cat := range []IssueCategory{CategoryGit, CategoryOrphan, CategoryInterrupted, CategoryInfo} {
		catIssues := byCategory[cat]
		if len(catIssues) == 0 {
			continue
		}

		out.Printf("\n%s:\n", categoryNames[cat])
		for _, issue := range catIssues {
			out.Printf("  • [%s] %s: %s\n", issue.Kind, issue.Key, issue.Description)
		}
	}
}
