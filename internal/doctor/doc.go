// Package doctor finds and repairs worktree anomalies an interrupted em
// command or manual git use can leave behind.
//
// Detected issues:
//
//   - stale: a registered worktree whose directory is gone (fixed by pruning)
//   - misplaced: a worktree that is not at the path its branch maps to
//     (fixed by moving it when the target is free)
//   - detached: a worktree below the worktrees root with no branch
//   - orphan-dir: a directory below the root named like a branch but not
//     registered with git; it may hold user data and is never touched
//   - duplicate: a branch without a worktree at the same commit as a branch
//     with one, which is what an interrupted rename or copy leaves
//   - stash: a stash entry written by an autostash rename that did not finish
//
// # Usage
//
//	issues, err := doctor.Run(ctx, repo, false) // report only
//	issues, err := doctor.Run(ctx, repo, true)  // report and fix
//
// Each [Issue] names the branch or path, a description and the fix action,
// empty for issues that are only reported.
package doctor
