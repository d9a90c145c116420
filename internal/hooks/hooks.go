package hooks

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"regexp"
	"slices"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/raphi011/em/internal/config"
	"github.com/raphi011/em/internal/log"
	"github.com/raphi011/em/internal/output"
)

// shellQuote escapes a string for safe use in shell commands.
// e.g., "it's" becomes 'it'\''s'
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "'\\''") + "'"
}

// CommandType identifies which command is triggering the hook
type CommandType string

const (
	CommandClone CommandType = "clone"
	CommandEmpty CommandType = "empty"
	CommandCopy  CommandType = "cp"
	CommandCo    CommandType = "co"
	CommandMove  CommandType = "mv"
	CommandRm    CommandType = "rm"
	CommandPush  CommandType = "push"
)

// Context holds the values for placeholder substitution
type Context struct {
	Path    string            // absolute worktree path
	Branch  string            // branch name
	Base    string            // project base directory
	Trigger CommandType       // command that triggered the hook
	Env     map[string]string // custom variables from --arg key=value flags
	DryRun  bool              // if true, print command instead of executing
}

// workDir is where the hook runs: the worktree if it exists, else the base.
func (c Context) workDir() string {
	if c.Path != "" {
		if info, err := os.Stat(c.Path); err == nil && info.IsDir() {
			return c.Path
		}
	}
	return c.Base
}

// HookMatch represents a hook that matched the current command
type HookMatch struct {
	Hook config.Hook
	Name string
}

// SelectHooks determines which hooks to run based on config and CLI flags.
// If hookName is set only that hook runs, regardless of its "on" list.
// Returns an error if the named hook doesn't exist.
func SelectHooks(cfg config.HooksConfig, hookName string, noHook bool, cmdType CommandType) ([]HookMatch, error) {
	if noHook {
		return nil, nil
	}

	if hookName != "" {
		hook, exists := cfg.Hooks[hookName]
		if !exists {
			return nil, fmt.Errorf("unknown hook %q", hookName)
		}
		return []HookMatch{{Hook: hook, Name: hookName}}, nil
	}

	return findMatchingHooks(cfg, cmdType), nil
}

// findMatchingHooks returns all hooks that have the command type in their
// "on" list, sorted by name so they run in a stable order.
func findMatchingHooks(cfg config.HooksConfig, cmdType CommandType) []HookMatch {
	var matches []HookMatch
	for name, hook := range cfg.Hooks {
		if hookMatchesCommand(hook, cmdType) {
			matches = append(matches, HookMatch{Hook: hook, Name: name})
		}
	}
	slices.SortFunc(matches, func(a, b HookMatch) int { return strings.Compare(a.Name, b.Name) })
	return matches
}

// hookMatchesCommand returns true if cmdType is in the hook's "on" list.
// Special value "all" matches all command types.
func hookMatchesCommand(hook config.Hook, cmdType CommandType) bool {
	for _, on := range hook.On {
		if on == "all" || on == string(cmdType) {
			return true
		}
	}
	return false
}

// RunAll runs matched hooks and returns on the first failure.
func RunAll(ctx context.Context, matches []HookMatch, hctx Context) error {
	for _, match := range matches {
		if err := runHook(ctx, match, hctx); err != nil {
			return fmt.Errorf("hook %q failed: %w", match.Name, err)
		}
	}
	return nil
}

// RunAllNonFatal runs all matched hooks, logging failures as warnings.
func RunAllNonFatal(ctx context.Context, matches []HookMatch, hctx Context) {
	for _, match := range matches {
		if err := runHook(ctx, match, hctx); err != nil {
			log.FromContext(ctx).Warnf("hook %q failed for %s: %v", match.Name, hctx.Branch, err)
		}
	}
}

// runHook executes a single hook with variable substitution.
func runHook(ctx context.Context, match HookMatch, hctx Context) error {
	command := SubstitutePlaceholders(match.Hook.Command, hctx)
	out := output.FromContext(ctx)
	logger := log.FromContext(ctx)

	if hctx.DryRun {
		out.Printf("[dry-run] %s: %s\n", match.Name, command)
		return nil
	}

	logger.Printf("Running hook '%s'...\n", match.Name)

	shellCmd := exec.CommandContext(ctx, "sh", "-c", command)
	shellCmd.Dir = hctx.workDir()
	shellCmd.Stdout = logger.Writer()
	shellCmd.Stderr = logger.Writer()
	shellCmd.Stdin = os.Stdin
	shellCmd.Env = append(os.Environ(),
		"EM_PATH="+hctx.Path,
		"EM_BRANCH="+hctx.Branch,
		"EM_TRIGGER="+string(hctx.Trigger),
	)

	if err := shellCmd.Run(); err != nil {
		return err
	}

	if match.Hook.Description != "" {
		logger.Printf("  ✓ %s\n", match.Hook.Description)
	}
	return nil
}

// readStdinIfPiped reads all content from stdin if it's piped (not a TTY).
// Returns empty string and nil if stdin is a TTY (interactive).
func readStdinIfPiped(stdin *os.File) (string, error) {
	if isatty.IsTerminal(stdin.Fd()) || isatty.IsCygwinTerminal(stdin.Fd()) {
		return "", nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return string(data), nil
}

// ParseEnv parses "key=value" strings into a map. A value of "-" reads
// piped stdin; stdin is read once and shared by all such keys.
func ParseEnv(envSlice []string, stdin *os.File) (map[string]string, error) {
	result := make(map[string]string)
	var stdinKeys []string

	for _, e := range envSlice {
		key, value, ok := strings.Cut(e, "=")
		if !ok {
			return nil, fmt.Errorf("invalid env format %q: expected KEY=VALUE", e)
		}
		if key == "" {
			return nil, fmt.Errorf("invalid env format %q: key cannot be empty", e)
		}
		if value == "-" {
			stdinKeys = append(stdinKeys, key)
		} else {
			result[key] = value
		}
	}

	if len(stdinKeys) > 0 {
		content, err := readStdinIfPiped(stdin)
		if err != nil {
			return nil, err
		}
		if content == "" {
			return nil, fmt.Errorf("stdin not piped: KEY=- requires piped input")
		}
		for _, key := range stdinKeys {
			result[key] = content
		}
	}

	return result, nil
}

// envPlaceholderRegex matches {key}, {key:raw}, or {key:-default}.
var envPlaceholderRegex = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)(?:(:raw)|:-([^}]*))?\}`)

// SubstitutePlaceholders replaces {placeholder} with shell-quoted values
// from hctx. Unknown keys expand to their default, or to an empty string.
func SubstitutePlaceholders(command string, hctx Context) string {
	static := map[string]string{
		"path":    hctx.Path,
		"branch":  hctx.Branch,
		"base":    hctx.Base,
		"trigger": string(hctx.Trigger),
	}

	return envPlaceholderRegex.ReplaceAllStringFunc(command, func(match string) string {
		submatch := envPlaceholderRegex.FindStringSubmatch(match)
		key := submatch[1]
		isRaw := submatch[2] == ":raw"
		defaultVal := submatch[3]

		val, ok := static[key]
		if !ok {
			val, ok = hctx.Env[key]
		}
		if !ok {
			val = defaultVal
		}
		if isRaw {
			return val
		}
		return shellQuote(val)
	})
}
