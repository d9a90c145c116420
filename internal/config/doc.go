// Package config handles loading and validation of em configuration.
//
// Configuration is read from ~/.config/em/config.toml (or $EM_CONFIG) with
// environment variable overrides.
//
// # Configuration Sources (highest priority first)
//
//   - EM_WORKTREE_DIR, EM_REMOTE, EM_THEME env vars
//   - Config file settings
//   - Default values
//
// EM_BRANCH is read separately: it overrides what the "." shorthand resolves to.
//
// # Key Settings
//
//   - worktree_dir: where worktrees live (default: the project directory);
//     each project uses <worktree_dir>/<project>, or {project} in the path
//   - remote: remote for fetch/push (default: "origin")
//   - confirm_remove: prompt before "em rm" (default: true)
//   - [list] all/status: defaults for "em ls -a/-s"
//   - [preserve] patterns/exclude: ignored files copied into new worktrees
//
// # Hooks Configuration
//
// Hooks are defined in [hooks.NAME] sections:
//
//	[hooks.setup]
//	command = "make setup"
//	on = ["empty", "cp"]
//
// Hooks with "on" run automatically after matching operations; hooks without
// "on" only run via --hook=name.
package config
