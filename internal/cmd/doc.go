// Package cmd runs external commands (git, hook shells) with context
// cancellation, stderr capture and verbose command logging.
//
// em shells out to the git binary rather than linking a git library, so
// user configuration (credential helpers, SSH keys, hooks) applies unchanged.
//
// # Usage
//
//	if err := cmd.RunContext(ctx, dir, "git", "worktree", "prune"); err != nil {
//	    // err.Error() is git's trimmed stderr when there was any
//	}
//
//	out, err := cmd.OutputContext(ctx, "", "git", "-C", dir, "branch", "--list")
//
// Failures are returned as *[Error], which keeps stdout, stderr and the exit
// error separately so callers can inspect a command's porcelain output even
// when it exited non-zero.
package cmd
