package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Hook defines a command run after a lifecycle operation.
type Hook struct {
	Command     string   `toml:"command"`
	Description string   `toml:"description"`
	On          []string `toml:"on"` // operations this hook runs on (empty = only via --hook)
}

// HooksConfig holds hook-related configuration.
type HooksConfig struct {
	Hooks map[string]Hook `toml:"-"` // parsed from [hooks.NAME] sections
}

// ListConfig holds defaults for `em ls`.
type ListConfig struct {
	All    bool `toml:"all"`    // include remote-only branches
	Status bool `toml:"status"` // refresh remote state before listing
}

// PreserveConfig selects git-ignored files copied into new worktrees.
type PreserveConfig struct {
	Patterns []string `toml:"patterns"` // glob patterns matched against file basenames
	Exclude  []string `toml:"exclude"`  // path segments that are never copied
}

// ThemeConfig selects the color theme for tables and prompts.
type ThemeConfig struct {
	Name string `toml:"name"`
	Mode string `toml:"mode"` // "auto", "light" or "dark"
}

// Config holds the em configuration.
type Config struct {
	WorktreeDir   string         `toml:"worktree_dir"`
	Remote        string         `toml:"remote"`
	ConfirmRemove bool           `toml:"confirm_remove"`
	List          ListConfig     `toml:"list"`
	Preserve      PreserveConfig `toml:"preserve"`
	Theme         ThemeConfig    `toml:"theme"`
	Hooks         HooksConfig    `toml:"-"`

	// Branch overrides the branch the "." shorthand resolves to (EM_BRANCH).
	Branch string `toml:"-"`
	// Path is the file the configuration was loaded from, empty for defaults.
	Path string `toml:"-"`
}

// DefaultRemote is the remote used when none is configured.
const DefaultRemote = "origin"

// Default returns the default configuration.
func Default() Config {
	return Config{
		Remote:        DefaultRemote,
		ConfirmRemove: true,
		Theme:         ThemeConfig{Name: "default", Mode: "auto"},
		Hooks:         HooksConfig{Hooks: map[string]Hook{}},
	}
}

type ctxKey struct{}

// WithConfig attaches the configuration to the context.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext returns the configuration attached to ctx, or nil.
func FromContext(ctx context.Context) *Config {
	cfg, _ := ctx.Value(ctxKey{}).(*Config)
	return cfg
}

// ValidatePath checks that the path is absolute or starts with ~.
// Relative paths like "." are rejected because they depend on the cwd.
func ValidatePath(path, fieldName string) error {
	if path == "" {
		return nil
	}
	if path[0] == '~' {
		return nil
	}
	if !filepath.IsAbs(path) {
		return fmt.Errorf("%s must be absolute or start with ~, got: %q", fieldName, path)
	}
	return nil
}

// expandPath expands ~ to the user's home directory
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expand ~: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	if path == "~" {
		return os.UserHomeDir()
	}
	return path, nil
}

// ConfigPath returns the config file location: $EM_CONFIG, or
// ~/.config/em/config.toml.
func ConfigPath() (string, error) {
	if p := os.Getenv("EM_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "em", "config.toml"), nil
}

// rawConfig is used for the initial TOML decode; hooks need custom parsing
// and confirm_remove must distinguish "unset" from false.
type rawConfig struct {
	WorktreeDir   string         `toml:"worktree_dir"`
	Remote        string         `toml:"remote"`
	ConfirmRemove *bool          `toml:"confirm_remove"`
	List          ListConfig     `toml:"list"`
	Preserve      PreserveConfig `toml:"preserve"`
	Theme         ThemeConfig    `toml:"theme"`
	Hooks         map[string]any `toml:"hooks"`
}

// Load reads the config file and applies environment overrides.
// A missing file yields Default() without error.
func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Default()
		return cfg, applyEnv(&cfg, os.Getenv)
	}
	return LoadFile(path, os.Getenv)
}

// LoadFile reads the config at path, then applies overrides from getenv.
func LoadFile(path string, getenv func(string) string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return cfg, applyEnv(&cfg, getenv)
	case err != nil:
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	parsed, err := parse(data)
	if err != nil {
		return Default(), fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	parsed.Path = path
	if err := applyEnv(&parsed, getenv); err != nil {
		return Default(), err
	}
	return parsed, nil
}

func parse(data []byte) (Config, error) {
	var raw rawConfig
	if err := toml.Unmarshal(data, &raw); err != nil {
		return Config{}, err
	}

	cfg := Default()
	cfg.WorktreeDir = raw.WorktreeDir
	if raw.Remote != "" {
		cfg.Remote = raw.Remote
	}
	if raw.ConfirmRemove != nil {
		cfg.ConfirmRemove = *raw.ConfirmRemove
	}
	cfg.List = raw.List
	cfg.Preserve = raw.Preserve
	if raw.Theme.Name != "" {
		cfg.Theme.Name = raw.Theme.Name
	}
	if raw.Theme.Mode != "" {
		cfg.Theme.Mode = raw.Theme.Mode
	}
	cfg.Hooks = parseHooksConfig(raw.Hooks)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv applies EM_* overrides, validating and expanding paths afterwards.
func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("EM_WORKTREE_DIR"); v != "" {
		cfg.WorktreeDir = v
	}
	if v := getenv("EM_REMOTE"); v != "" {
		cfg.Remote = v
	}
	if v := getenv("EM_THEME"); v != "" {
		cfg.Theme.Name = v
	}
	cfg.Branch = getenv("EM_BRANCH")

	if err := ValidatePath(cfg.WorktreeDir, "worktree_dir"); err != nil {
		return err
	}
	expanded, err := expandPath(cfg.WorktreeDir)
	if err != nil {
		return fmt.Errorf("expand worktree_dir: %w", err)
	}
	cfg.WorktreeDir = expanded
	return validateEnum(cfg.Theme.Name, "theme.name", ValidThemeNames)
}

// parseHooksConfig extracts HooksConfig from the raw [hooks.NAME] tables.
func parseHooksConfig(raw map[string]any) HooksConfig {
	hc := HooksConfig{
		Hooks: make(map[string]Hook),
	}

	for key, value := range raw {
		hookMap, ok := value.(map[string]any)
		if !ok {
			continue
		}
		hook := Hook{}
		if cmd, ok := hookMap["command"].(string); ok {
			hook.Command = cmd
		}
		if desc, ok := hookMap["description"].(string); ok {
			hook.Description = desc
		}
		if on, ok := hookMap["on"].([]any); ok {
			for _, v := range on {
				if s, ok := v.(string); ok {
					hook.On = append(hook.On, s)
				}
			}
		}
		hc.Hooks[key] = hook
	}

	return hc
}

const defaultConfig = `# em configuration

# Directory holding one worktree per checked-out branch.
# Defaults to the project directory (the one containing .em/).
# Must be an absolute path or start with ~. Each project gets its own
# directory below it, or wherever {project} appears in the path.
# worktree_dir = "~/experiments"

# Remote used for fetch, push and remote-only listings.
remote = "origin"

# Ask before "em rm" deletes a worktree (skip with -y).
confirm_remove = true

# Defaults for "em ls".
[list]
all = false     # same as -a: include remote-only branches
status = false  # same as -s: fetch before computing pushed state

# Copy git-ignored files matching these basenames from the source worktree
# into worktrees created by "em cp" and "em mv".
[preserve]
patterns = []   # e.g. [".env", "*.local"]
exclude = []    # path segments never copied, e.g. ["node_modules"]

[theme]
name = "default"  # default, dracula, nord, gruvbox, none
mode = "auto"     # auto, light, dark

# Hooks run after a lifecycle operation succeeds, with the working directory
# set to the affected worktree ("rm" hooks run in the project directory).
#
# [hooks.setup]
# command = "make setup"
# description = "Prepare a fresh experiment"
# on = ["empty", "cp", "co"]
#
# Available "on" values: "clone", "empty", "cp", "co", "mv", "rm", "push", "all".
# Hooks without "on" only run via --hook=name.
#
# Placeholders: {path} {branch} {base} {trigger} and {key} / {key:-default}
# for variables passed with --arg key=value.
`

// Init writes a commented default config to ConfigPath().
// An existing file is only overwritten when force is set.
func Init(force bool) (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return "", errors.New("config file already exists: " + path)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(defaultConfig), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
