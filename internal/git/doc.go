// Package git provides git operations via shell commands.
//
// All operations shell out to the git CLI through [cmd.OutputContext], so the
// user's SSH keys, credential helpers and config apply unchanged. Every
// function takes a context and the directory git runs in (-C): the project's
// git directory for ref and worktree administration, or a worktree path for
// working-tree queries.
//
// # Reading state
//
// The Repository State Reader surface:
//
//   - [ListBranches]: local and remote-tracking branches, tagged by origin
//   - [ListWorktrees]: parsed `git worktree list --porcelain`
//   - [StatusOf]: dirty/ahead/behind for a checked-out branch
//   - [Scan]: all of the above in fast-local or full-remote mode
//
// # Primitives
//
// Branch, worktree, fetch/push, diff, stash and plumbing helpers used by the
// lifecycle engine. Each is a single git invocation so callers can sequence
// them with well-defined interruption points.
package git
