// Package hooks runs user-configured shell commands after em operations.
//
// Hooks are defined in the config file and run after operations that
// create, move or remove a worktree, or push a branch:
//
//	[hooks.install]
//	command = "cd {path} && npm ci"
//	on = ["cp", "co", "empty"]
//
//	[hooks.notify]
//	command = "echo 'removed {branch}'"
//	on = ["rm"]
//
// A hook without "on" only runs when named explicitly with --hook. --no-hook
// skips all hooks for one invocation.
//
// # Placeholders
//
//   - {path}: absolute worktree path (empty for rm, which deletes it)
//   - {branch}: branch name
//   - {base}: project base directory
//   - {trigger}: the command that ran the hook (clone, empty, cp, co, mv, rm, push)
//   - {key}, {key:raw}, {key:-default}: values passed with --arg key=value
//
// Values are single-quoted for the shell unless the :raw form is used.
// Hooks run in the worktree, or in the project base when there is none.
// Failures are reported as warnings; the operation itself already succeeded.
package hooks
