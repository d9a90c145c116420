package doctor

// IssueCategory groups issues by type.
type IssueCategory string

const (
	// CategoryGit represents problems with git's worktree registrations.
	CategoryGit IssueCategory = "git"
	// CategoryOrphan represents directories git does not know about.
	CategoryOrphan IssueCategory = "orphan"
	// CategoryInterrupted represents leftovers of interrupted operations.
	CategoryInterrupted IssueCategory = "interrupted"
	// CategoryInfo represents notes that are not problems by themselves.
	CategoryInfo IssueCategory = "info"
)

// Issue kinds.
const (
	KindStale      = "stale"
	KindMisplaced  = "misplaced"
	KindDetached   = "detached"
	KindOrphanDir  = "orphan-dir"
	KindDuplicate  = "duplicate"
	KindSameCommit = "same-commit"
	KindStash      = "stash"
)

// Fix actions.
const (
	FixPrune = "prune"
	FixMove  = "move"
)

// Issue represents a problem detected by doctor.
type Issue struct {
	Kind        string
	Key         string        // branch name, or path when there is no branch
	Description string        // human-readable description
	FixAction   string        // what --fix would do, empty if report only
	Category    IssueCategory // issue category
	Path        string        // worktree or directory the issue is about
	Target      string        // destination for FixMove
}

// IssueStats tracks counts by category.
type IssueStats struct {
	Healthy     int // worktrees with no issue
	Fixable     int
	ReportOnly  int
	Interrupted int
	Info        int // notes, not counted as issues
}
